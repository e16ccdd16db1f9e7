package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chairtime/models"
	"chairtime/utils"

	"go.uber.org/zap"
)

const (
	classifyTemperature = 0.3
	answerTemperature   = 0.7

	classifyMaxTokens = 20
	extractMaxTokens  = 50
	answerMaxTokens   = 150

	// answerHistoryTurns is how many recent turns are fed to general answers.
	answerHistoryTurns = 4
)

const classifySystemPrompt = `You are an intent classifier for an appointment booking assistant.
Current conversation stage: %s

Classify the user's message into ONE of these intents:
- booking_inquiry: User wants to book an appointment or asking about availability
- confirm_booking: User is confirming a proposed appointment time
- cancel_booking: User wants to cancel or reschedule
- general_question: Asking about services, prices, location, etc.
- greeting: Just saying hi/hello
- unknown: Anything else

Respond with ONLY the intent name, nothing else.`

const extractSystemPrompt = `Extract the date and time from the user's message.
If no specific time is mentioned, assume they want afternoon (2 PM).
Return in format: YYYY-MM-DD HH:MM
If no date can be extracted, return "NONE"

Examples:
- "tomorrow at 3pm" -> (tomorrow's date) 15:00
- "next monday" -> (calculate next Monday) 14:00
- "this saturday morning" -> (calculate Saturday) 10:00`

const answerSystemPrompt = `You are a helpful assistant for %s.
Answer questions about services, typical prices, and general booking information.
Keep responses friendly, concise, and encourage booking an appointment.
If you don't know something specific, say so and offer to have them book a visit.`

// OpenAIClassifier calls an OpenAI-compatible chat completions API.
type OpenAIClassifier struct {
	apiKey       string
	baseURL      string
	model        string
	businessName string
	location     *time.Location
	httpClient   *http.Client
}

// NewOpenAIClassifier builds a classifier against an OpenAI-compatible endpoint.
func NewOpenAIClassifier(apiKey, baseURL, model, businessName string, location *time.Location) *OpenAIClassifier {
	return &OpenAIClassifier{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		model:        model,
		businessName: businessName,
		location:     location,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// chatCompletion performs one non-streaming chat completion call.
func (c *OpenAIClassifier) chatCompletion(ctx context.Context, messages []chatMessage, temperature float64, maxTokens int) (string, error) {
	payload, err := json.Marshal(chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("language model request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("language model returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("language model returned no choices")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

// Classify asks the model for one label from the closed intent set.
func (c *OpenAIClassifier) Classify(ctx context.Context, text string, conv *models.Conversation) (models.Intent, error) {
	stage := models.StageInitial
	if conv != nil && conv.Stage != "" {
		stage = conv.Stage
	}

	out, err := c.chatCompletion(ctx, []chatMessage{
		{Role: "system", Content: fmt.Sprintf(classifySystemPrompt, stage)},
		{Role: "user", Content: text},
	}, classifyTemperature, classifyMaxTokens)
	if err != nil {
		return models.IntentUnknown, err
	}

	label := strings.ToLower(strings.TrimSpace(out))
	return models.ParseIntent(label), nil
}

// ExtractDateTime asks the model for a concrete date/time in the business
// time zone, or nil when the message carries none.
func (c *OpenAIClassifier) ExtractDateTime(ctx context.Context, text string, now time.Time) (*time.Time, error) {
	userPrompt := fmt.Sprintf("Today is %s (%s). Message: %s",
		now.In(c.location).Format("2006-01-02"),
		now.In(c.location).Weekday(),
		text,
	)

	out, err := c.chatCompletion(ctx, []chatMessage{
		{Role: "system", Content: extractSystemPrompt},
		{Role: "user", Content: userPrompt},
	}, classifyTemperature, extractMaxTokens)
	if err != nil {
		return nil, err
	}

	out = strings.TrimSpace(out)
	if strings.EqualFold(out, "NONE") {
		return nil, nil
	}

	parsed, err := time.ParseInLocation("2006-01-02 15:04", out, c.location)
	if err != nil {
		// The model answered outside the contract; treat it as no extraction.
		utils.GetLogger().Warn("Unparseable date/time from model", zap.String("raw", out))
		return nil, nil
	}
	return &parsed, nil
}

// Answer handles general questions with a short business prompt and the most
// recent turns of the conversation.
func (c *OpenAIClassifier) Answer(ctx context.Context, text string, history []models.Message) (string, error) {
	messages := []chatMessage{
		{Role: "system", Content: fmt.Sprintf(answerSystemPrompt, c.businessName)},
	}
	start := 0
	if len(history) > answerHistoryTurns {
		start = len(history) - answerHistoryTurns
	}
	for _, m := range history[start:] {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: text})

	out, err := c.chatCompletion(ctx, messages, answerTemperature, answerMaxTokens)
	if err != nil {
		return "", err
	}
	return out, nil
}
