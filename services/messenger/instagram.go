package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chairtime/utils"

	"go.uber.org/zap"
)

// InstagramService sends direct messages through the Graph API send endpoint.
type InstagramService struct {
	baseURL     string
	version     string
	accessToken string
	httpClient  *http.Client
}

// NewInstagramService builds a Graph API messenger client.
func NewInstagramService(baseURL, version, accessToken string) *InstagramService {
	return &InstagramService{
		baseURL:     strings.TrimRight(baseURL, "/"),
		version:     version,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

type sendMessageRequest struct {
	Recipient     recipient `json:"recipient"`
	Message       message   `json:"message"`
	MessagingType string    `json:"messaging_type"`
}

type recipient struct {
	ID string `json:"id"`
}

type message struct {
	Text string `json:"text"`
}

// SendMessage posts a text reply to the given user.
func (s *InstagramService) SendMessage(ctx context.Context, recipientID, text string) error {
	payload, err := json.Marshal(sendMessageRequest{
		Recipient:     recipient{ID: recipientID},
		Message:       message{Text: text},
		MessagingType: "RESPONSE",
	})
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/me/messages?access_token=%s", s.baseURL, s.version, s.accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graph api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("graph api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	utils.GetLogger().Debug("Message sent", zap.String("recipientId", recipientID))
	return nil
}
