// Package intent classifies inbound messages onto a closed intent set and
// extracts booking entities such as the requested date and time.
package intent

import (
	"context"
	"errors"
	"time"

	"chairtime/models"
)

// ErrAnswerUnavailable signals that the classifier cannot produce a free-form
// answer; callers should fall back to a canned response.
var ErrAnswerUnavailable = errors.New("answer unavailable")

// Classifier maps free text onto the closed intent set. Failures of the
// underlying model call are returned as errors, never swallowed.
type Classifier interface {
	// Classify returns one intent from the closed set; unrecognized text
	// yields models.IntentUnknown.
	Classify(ctx context.Context, text string, conv *models.Conversation) (models.Intent, error)
	// ExtractDateTime pulls a requested date/time out of the message, or nil
	// when none can be extracted.
	ExtractDateTime(ctx context.Context, text string, now time.Time) (*time.Time, error)
	// Answer produces a free-form reply for general questions using recent
	// conversation history.
	Answer(ctx context.Context, text string, history []models.Message) (string, error)
}
