package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"chairtime/models"

	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

// NewReminderTask builds the asynq task carrying a reminder payload,
// scheduled to fire at the given time.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// AsynqReminderScheduler enqueues reminder tasks ahead of confirmed bookings.
type AsynqReminderScheduler struct {
	Client      *asynq.Client
	LeadMinutes int
}

// Schedule enqueues a reminder DM for leadMinutes before the appointment.
// Appointments starting sooner than the lead time get no reminder.
func (s *AsynqReminderScheduler) Schedule(_ context.Context, booking models.Booking) error {
	fireAt := booking.Start.Add(-time.Duration(s.LeadMinutes) * time.Minute)
	if !fireAt.After(time.Now()) {
		return nil
	}

	payload := models.ReminderPayload{
		BookingID: booking.ID,
		UserID:    booking.UserID,
		Text: fmt.Sprintf("Reminder: your %s appointment is coming up at %s. See you soon!",
			booking.ServiceType, booking.Start.Format("3:04 PM")),
		FireDate: fireAt.Format(time.RFC3339),
	}

	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return err
	}
	if _, err := s.Client.Enqueue(task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue reminder for booking %s: %w", booking.ID, err)
	}
	return nil
}
