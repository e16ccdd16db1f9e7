package intent

import (
	"context"
	"strings"
	"time"

	"chairtime/models"
)

// KeywordClassifier is a deterministic keyword-scoring classifier. It serves
// deployments without a language model configured and keeps the bot usable
// when no API key is present.
type KeywordClassifier struct {
	patterns map[models.Intent][]string
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		patterns: map[models.Intent][]string{
			models.IntentBookingInquiry: {
				"book", "appointment", "schedule", "available", "availability",
				"slot", "come in", "free", "opening", "when can",
			},
			models.IntentConfirmBooking: {
				"yes", "confirm", "that works", "sounds good", "perfect",
				"sure", "ok", "okay", "the first", "the second",
			},
			models.IntentCancelBooking: {
				"cancel", "reschedule", "can't make", "cannot make", "move my",
			},
			models.IntentGeneralQuestion: {
				"price", "cost", "how much", "services", "location", "address",
				"where", "offer", "hours", "open",
			},
			models.IntentGreeting: {
				"hello", "hi", "hey", "good morning", "good evening",
				"what's up", "yo",
			},
		},
	}
}

// Classify scores each intent by keyword hits; no hits yields unknown.
func (kc *KeywordClassifier) Classify(_ context.Context, text string, _ *models.Conversation) (models.Intent, error) {
	lower := strings.ToLower(text)

	best := models.IntentUnknown
	bestScore := 0
	// Fixed iteration order so ties resolve deterministically.
	for _, it := range models.KnownIntents {
		score := 0
		for _, keyword := range kc.patterns[it] {
			if strings.Contains(lower, keyword) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = it
		}
	}
	return best, nil
}

// ExtractDateTime is not supported by keyword matching.
func (kc *KeywordClassifier) ExtractDateTime(_ context.Context, _ string, _ time.Time) (*time.Time, error) {
	return nil, nil
}

// Answer is not supported; callers fall back to canned service info.
func (kc *KeywordClassifier) Answer(_ context.Context, _ string, _ []models.Message) (string, error) {
	return "", ErrAnswerUnavailable
}
