package models

import "time"

// AppointmentRequest is a desired booking prior to confirmation.
type AppointmentRequest struct {
	UserID          string    `json:"userId"`
	CustomerName    string    `json:"customerName"`
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"durationMinutes"`
	ServiceType     string    `json:"serviceType"`
}

// End returns the exclusive end of the requested interval.
func (r AppointmentRequest) End() time.Time {
	return r.Start.Add(time.Duration(r.DurationMinutes) * time.Minute)
}

// Slot is a candidate appointment interval offered to the user.
type Slot struct {
	Start     time.Time `json:"start"`
	Formatted string    `json:"formatted"` // e.g. "Saturday, March 7 at 2:00 PM"
}

// TimeRange is a half-open [Start, End) interval, used for busy blocks
// sourced from the external calendar.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether two half-open intervals intersect.
func (t TimeRange) Overlaps(other TimeRange) bool {
	return t.Start.Before(other.End) && other.Start.Before(t.End)
}

// Booking statuses.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Booking is a confirmed appointment record.
type Booking struct {
	ID           string    `bson:"id" json:"id"`
	UserID       string    `bson:"userId" json:"userId"`
	CustomerName string    `bson:"customerName" json:"customerName"`
	ServiceType  string    `bson:"serviceType" json:"serviceType"`
	Start        time.Time `bson:"start" json:"start"`
	End          time.Time `bson:"end" json:"end"`
	EventID      string    `bson:"eventId" json:"eventId"` // calendar event ID
	Status       string    `bson:"status" json:"status"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ReminderPayload is the asynq task payload for appointment reminders.
type ReminderPayload struct {
	BookingID string `json:"bookingId"`
	UserID    string `json:"userId"`
	Text      string `json:"text"`
	FireDate  string `json:"fireDate"`
}
