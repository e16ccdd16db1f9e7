package booking

import (
	"context"
	"time"

	bookingRepo "chairtime/database/repository/booking"
	"chairtime/models"
	"chairtime/services/calendar"
	"chairtime/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// slotDisplayLayout renders slot times for user-facing messages.
const slotDisplayLayout = "Monday, January 2 at 3:04 PM"

// DefaultEngine is the concrete booking engine.
type DefaultEngine struct {
	Calendar       calendar.Service
	Repo           bookingRepo.BookingRepository
	Reminders      ReminderScheduler
	Hours          BusinessHours
	MaxSuggestions int
	Location       *time.Location

	// Now is overridable in tests; defaults to time.Now.
	Now func() time.Time
}

func (e *DefaultEngine) now() time.Time {
	if e.Now != nil {
		return e.Now().In(e.Location)
	}
	return time.Now().In(e.Location)
}

// Book validates the request against business rules, checks the calendar for
// conflicts, and either confirms the appointment or proposes alternatives.
// The calendar is never queried for requests rejected on local policy.
func (e *DefaultEngine) Book(ctx context.Context, req models.AppointmentRequest) (*Result, error) {
	logger := utils.GetLogger()
	now := e.now()
	start := req.Start.In(e.Location)
	req.Start = start

	if start.Before(now) {
		return &Result{Outcome: OutcomeInPast}, nil
	}
	if !e.Hours.Contains(start, req.DurationMinutes) {
		return &Result{Outcome: OutcomeOutsideHours}, nil
	}

	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, e.Location)
	dayEnd := dayStart.Add(24 * time.Hour)

	busy, err := e.Calendar.BusyIntervals(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, NewCalendarError(err)
	}

	requested := models.TimeRange{Start: start, End: req.End()}
	for _, block := range busy {
		if requested.Overlaps(block) {
			alternatives := e.alternatives(dayStart, busy, req, now)
			if len(alternatives) == 0 {
				return &Result{Outcome: OutcomeNoSlots}, nil
			}
			return &Result{Outcome: OutcomeConflict, Alternatives: alternatives}, nil
		}
	}

	eventID, err := e.Calendar.CreateEvent(ctx, req)
	if err != nil {
		return nil, NewCalendarError(err)
	}

	booking := models.Booking{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		CustomerName: req.CustomerName,
		ServiceType:  req.ServiceType,
		Start:        start,
		End:          req.End(),
		EventID:      eventID,
		Status:       models.BookingStatusConfirmed,
	}

	// The calendar event is the source of truth; record-keeping and reminder
	// scheduling failures must not undo a confirmed booking.
	if e.Repo != nil {
		if err := e.Repo.Create(&booking); err != nil {
			logger.Warn("Failed to record booking", zap.String("bookingId", booking.ID), zap.Error(err))
		}
	}
	if e.Reminders != nil {
		if err := e.Reminders.Schedule(ctx, booking); err != nil {
			logger.Warn("Failed to schedule reminder", zap.String("bookingId", booking.ID), zap.Error(err))
		}
	}

	logger.Info("Booking confirmed",
		zap.String("bookingId", booking.ID),
		zap.String("userId", booking.UserID),
		zap.Time("start", booking.Start),
	)
	return &Result{Outcome: OutcomeConfirmed, Booking: &booking}, nil
}

// alternatives scans forward from the requested time in duration increments
// for free slots within the remaining business hours of the day. When nothing
// is free after the requested time, the whole day is scanned from opening so
// an earlier same-day slot can still be offered.
func (e *DefaultEngine) alternatives(day time.Time, busy []models.TimeRange, req models.AppointmentRequest, now time.Time) []models.Slot {
	free := subtractBusy(e.Hours.WindowsFor(day), busy)

	slots := e.scan(free, req.Start, req.DurationMinutes, now)
	if len(slots) == 0 {
		slots = e.scan(free, e.Hours.OpeningTime(day), req.DurationMinutes, now)
	}
	return slots
}

// scan steps through the free intervals in duration-sized increments,
// collecting candidate slots starting no earlier than from.
func (e *DefaultEngine) scan(free []models.TimeRange, from time.Time, durationMinutes int, now time.Time) []models.Slot {
	duration := time.Duration(durationMinutes) * time.Minute
	max := e.MaxSuggestions
	if max <= 0 {
		max = 3
	}

	var slots []models.Slot
	for _, interval := range free {
		start := interval.Start
		if start.Before(from) {
			// Align the first candidate inside this interval to the scan origin.
			offset := from.Sub(interval.Start)
			steps := offset / duration
			if offset%duration != 0 {
				steps++
			}
			start = interval.Start.Add(steps * duration)
		}
		for t := start; !t.Add(duration).After(interval.End); t = t.Add(duration) {
			if !t.After(now) {
				continue
			}
			slots = append(slots, models.Slot{
				Start:     t,
				Formatted: t.Format(slotDisplayLayout),
			})
			if len(slots) >= max {
				return slots
			}
		}
	}
	return slots
}

// NextBooking returns the user's soonest upcoming confirmed booking.
func (e *DefaultEngine) NextBooking(_ context.Context, userID string) (*models.Booking, error) {
	if e.Repo == nil {
		return nil, nil
	}
	upcoming, err := e.Repo.UpcomingByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(upcoming) == 0 {
		return nil, nil
	}
	return &upcoming[0], nil
}

// Cancel deletes the calendar event of a booking and marks its record cancelled.
func (e *DefaultEngine) Cancel(ctx context.Context, bookingID string) error {
	if e.Repo == nil {
		return &EngineError{Code: "notFound", Message: "booking records unavailable"}
	}
	booking, err := e.Repo.GetByID(bookingID)
	if err != nil {
		return err
	}
	if booking.Status == models.BookingStatusCancelled {
		return nil
	}

	if booking.EventID != "" {
		if err := e.Calendar.DeleteEvent(ctx, booking.EventID); err != nil {
			return NewCalendarError(err)
		}
	}

	booking.Status = models.BookingStatusCancelled
	if err := e.Repo.Update(booking); err != nil {
		return err
	}

	utils.GetLogger().Info("Booking cancelled",
		zap.String("bookingId", booking.ID),
		zap.String("userId", booking.UserID),
	)
	return nil
}
