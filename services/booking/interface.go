// Package booking implements the slot-booking engine: business-hours policy,
// conflict detection against the external calendar, and the forward scan for
// alternative slots.
package booking

import (
	"context"

	"chairtime/models"
)

// Outcome labels the result of a booking attempt.
type Outcome string

const (
	OutcomeConfirmed    Outcome = "confirmed"
	OutcomeConflict     Outcome = "conflict"
	OutcomeOutsideHours Outcome = "outside_hours"
	OutcomeInPast       Outcome = "in_past"
	OutcomeNoSlots      Outcome = "no_slots"
)

// Result is the decision for one booking attempt. Booking is set only on
// OutcomeConfirmed; Alternatives only on OutcomeConflict.
type Result struct {
	Outcome      Outcome
	Booking      *models.Booking
	Alternatives []models.Slot
}

// Engine decides and executes appointment bookings.
type Engine interface {
	Book(ctx context.Context, req models.AppointmentRequest) (*Result, error)
	Cancel(ctx context.Context, bookingID string) error
	// NextBooking returns the user's soonest upcoming confirmed booking, or
	// nil when there is none.
	NextBooking(ctx context.Context, userID string) (*models.Booking, error)
}

// ReminderScheduler schedules a reminder message ahead of a confirmed booking.
type ReminderScheduler interface {
	Schedule(ctx context.Context, booking models.Booking) error
}
