// Package calendar wraps the external calendar collaborator. The booking
// engine only ever queries busy intervals and inserts or deletes events;
// the calendar itself is not owned by this service.
package calendar

import (
	"context"
	"time"

	"chairtime/models"
)

// Service defines the calendar operations the booking engine depends on.
type Service interface {
	// BusyIntervals returns the busy blocks between from and to.
	BusyIntervals(ctx context.Context, from, to time.Time) ([]models.TimeRange, error)
	// CreateEvent inserts an appointment event and returns its event ID.
	CreateEvent(ctx context.Context, req models.AppointmentRequest) (string, error)
	// DeleteEvent removes a previously created event.
	DeleteEvent(ctx context.Context, eventID string) error
}
