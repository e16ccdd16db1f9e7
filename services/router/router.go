// Package router drives the per-message conversation flow: classify the
// inbound text, consult the booking engine, and render a reply.
package router

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"chairtime/models"
	"chairtime/services/booking"
	"chairtime/services/conversation"
	"chairtime/services/intent"
	"chairtime/services/response"
	"chairtime/utils"

	"go.uber.org/zap"
)

// Router handles one inbound message and returns the reply to send.
type Router interface {
	HandleMessage(ctx context.Context, userID, text string) (string, error)
}

// DefaultRouter is the concrete message router.
type DefaultRouter struct {
	Classifier intent.Classifier
	Engine     booking.Engine
	Responses  *response.Generator
	Store      conversation.Store

	DefaultServiceType string
	DurationMinutes    int
	Location           *time.Location

	// Now is overridable in tests; defaults to time.Now.
	Now func() time.Time
}

func (r *DefaultRouter) now() time.Time {
	if r.Now != nil {
		return r.Now().In(r.Location)
	}
	return time.Now().In(r.Location)
}

// HandleMessage routes a single message through intent detection and the
// booking flow. Collaborator failures are returned to the caller, which is
// expected to reply with a generic apology instead of crashing.
func (r *DefaultRouter) HandleMessage(ctx context.Context, userID, text string) (string, error) {
	logger := utils.GetLogger()

	conv, err := r.Store.Get(ctx, userID)
	if err != nil {
		// A lost context degrades the conversation, it doesn't kill it.
		logger.Warn("Failed to load conversation context", zap.String("userId", userID), zap.Error(err))
		conv = models.NewConversation()
	}
	conv.Append("user", text)

	reply, err := r.dispatch(ctx, userID, text, conv)
	if err != nil {
		return "", err
	}

	conv.Append("assistant", reply)
	if err := r.Store.Set(ctx, userID, conv); err != nil {
		logger.Warn("Failed to save conversation context", zap.String("userId", userID), zap.Error(err))
	}
	return reply, nil
}

func (r *DefaultRouter) dispatch(ctx context.Context, userID, text string, conv *models.Conversation) (string, error) {
	logger := utils.GetLogger()

	detected, err := r.Classifier.Classify(ctx, text, conv)
	if err != nil {
		return "", fmt.Errorf("classify intent: %w", err)
	}
	logger.Info("Detected intent",
		zap.String("userId", userID),
		zap.String("intent", string(detected)),
		zap.String("stage", conv.Stage),
	)

	switch detected {
	case models.IntentGreeting:
		conv.Stage = models.StageGreeted
		return r.Responses.Greeting(userID), nil

	case models.IntentBookingInquiry:
		when, err := r.Classifier.ExtractDateTime(ctx, text, r.now())
		if err != nil {
			return "", fmt.Errorf("extract date/time: %w", err)
		}
		if when == nil {
			conv.Stage = models.StageAskingDateTime
			return r.Responses.AskDateTime(userID), nil
		}
		return r.attemptBooking(ctx, userID, *when, conv)

	case models.IntentConfirmBooking:
		if conv.Stage != models.StageShowingAvailability && conv.Stage != models.StageAwaitingConfirmation {
			return r.Responses.Fallback(userID), nil
		}
		slot := resolveConfirmedSlot(text, conv)
		if slot == nil {
			conv.Stage = models.StageAwaitingConfirmation
			return r.Responses.ClarifyTime(userID), nil
		}
		return r.attemptBooking(ctx, userID, *slot, conv)

	case models.IntentCancelBooking:
		return r.cancelBooking(ctx, userID, conv)

	case models.IntentGeneralQuestion:
		answer, err := r.Classifier.Answer(ctx, text, conv.History)
		if errors.Is(err, intent.ErrAnswerUnavailable) {
			return r.Responses.ServiceInfo(), nil
		}
		if err != nil {
			return "", fmt.Errorf("answer question: %w", err)
		}
		return answer, nil

	default:
		return r.Responses.Fallback(userID), nil
	}
}

// attemptBooking runs the booking engine for a concrete start time and maps
// the outcome to a reply, updating conversation state along the way.
func (r *DefaultRouter) attemptBooking(ctx context.Context, userID string, start time.Time, conv *models.Conversation) (string, error) {
	serviceType := conv.ServiceType
	if serviceType == "" {
		serviceType = r.DefaultServiceType
	}

	req := models.AppointmentRequest{
		UserID:          userID,
		CustomerName:    "Customer",
		Start:           start,
		DurationMinutes: r.DurationMinutes,
		ServiceType:     serviceType,
	}

	result, err := r.Engine.Book(ctx, req)
	if booking.IsRetryable(err) {
		// The calendar hiccupped; the conversation survives and the user can
		// simply try again.
		utils.GetLogger().Warn("Booking attempt failed", zap.String("userId", userID), zap.Error(err))
		return r.Responses.BookingError(), nil
	}
	if err != nil {
		return "", fmt.Errorf("book appointment: %w", err)
	}

	switch result.Outcome {
	case booking.OutcomeConfirmed:
		conv.Stage = models.StageCompleted
		conv.LastBookingID = result.Booking.ID
		conv.LastBookingAt = &result.Booking.Start
		conv.ProposedSlots = nil
		conv.PendingSlot = nil
		return r.Responses.Confirmation(userID, result.Booking.Start), nil

	case booking.OutcomeConflict:
		conv.Stage = models.StageShowingAvailability
		conv.ProposedSlots = conv.ProposedSlots[:0]
		for _, s := range result.Alternatives {
			conv.ProposedSlots = append(conv.ProposedSlots, s.Start)
		}
		first := result.Alternatives[0].Start
		conv.PendingSlot = &first
		return r.Responses.Availability(result.Alternatives), nil

	case booking.OutcomeOutsideHours:
		return r.Responses.OutOfHours(), nil

	case booking.OutcomeInPast:
		return r.Responses.PastTime(), nil

	default: // OutcomeNoSlots
		return r.Responses.Availability(nil), nil
	}
}

func (r *DefaultRouter) cancelBooking(ctx context.Context, userID string, conv *models.Conversation) (string, error) {
	bookingID := conv.LastBookingID
	bookedAt := conv.LastBookingAt

	// The conversation context may have expired since the booking was made;
	// fall back to the user's next upcoming booking on record.
	if bookingID == "" {
		next, err := r.Engine.NextBooking(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("look up upcoming booking: %w", err)
		}
		if next == nil {
			return r.Responses.NothingToCancel(), nil
		}
		bookingID = next.ID
		bookedAt = &next.Start
	}

	if err := r.Engine.Cancel(ctx, bookingID); err != nil {
		return "", fmt.Errorf("cancel booking: %w", err)
	}

	conv.Stage = models.StageCancelled
	cancelledAt := r.now()
	if bookedAt != nil {
		cancelledAt = *bookedAt
	}
	conv.LastBookingID = ""
	conv.LastBookingAt = nil
	return r.Responses.Cancellation(cancelledAt), nil
}

// affirmations match a plain "yes" to the first proposed slot.
var affirmations = []string{"yes", "confirm", "book it", "that works", "sounds good", "sure", "perfect", "ok"}

// resolveConfirmedSlot matches the user's confirmation against the slots the
// bot proposed: a slot number ("2"), an affirmative ("sounds good"), or a
// time mention matching one of the proposals.
func resolveConfirmedSlot(text string, conv *models.Conversation) *time.Time {
	lower := strings.ToLower(strings.TrimSpace(text))

	// A bare or embedded slot number.
	for _, field := range strings.Fields(lower) {
		field = strings.Trim(field, ".,!#")
		if n, err := strconv.Atoi(field); err == nil {
			if n >= 1 && n <= len(conv.ProposedSlots) {
				return &conv.ProposedSlots[n-1]
			}
		}
	}

	// A time mention like "2pm" or "14:00" against the proposed slots.
	for i, slot := range conv.ProposedSlots {
		clock := strings.ToLower(slot.Format("3:04pm"))
		hourOnly := strings.ToLower(slot.Format("3pm"))
		military := slot.Format("15:04")
		if strings.Contains(lower, clock) || strings.Contains(lower, military) {
			return &conv.ProposedSlots[i]
		}
		if slot.Minute() == 0 && strings.Contains(strings.ReplaceAll(lower, " ", ""), hourOnly) {
			return &conv.ProposedSlots[i]
		}
	}

	for _, word := range affirmations {
		if strings.Contains(lower, word) {
			return conv.PendingSlot
		}
	}
	return nil
}
