// Package response renders user-facing replies. The mapping from
// (intent, outcome) to text is pure: the same inputs always produce the same
// reply, with phrasing variants chosen by a stable hash of the user ID.
package response

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"chairtime/models"
)

const displayLayout = "Monday, January 2 at 3:04 PM"

// Generator renders every reply the bot can send.
type Generator struct {
	BusinessName string
	HoursLabel   string // e.g. "9:00 AM - 6:00 PM"
}

func NewGenerator(businessName, hoursLabel string) *Generator {
	return &Generator{BusinessName: businessName, HoursLabel: hoursLabel}
}

// pick selects a phrasing variant deterministically from the user ID.
func pick(userID string, variants []string) string {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return variants[h.Sum32()%uint32(len(variants))]
}

// Greeting responds to an initial hello.
func (g *Generator) Greeting(userID string) string {
	variants := []string{
		fmt.Sprintf("Hey! Thanks for reaching out. I can help you book an appointment with %s. When would you like to come in?", g.BusinessName),
		fmt.Sprintf("Hello! I can help you schedule an appointment with %s. What day were you thinking?", g.BusinessName),
		"Hey there! When are you looking to book an appointment?",
	}
	return pick(userID, variants)
}

// AskDateTime asks the user for a preferred date and time.
func (g *Generator) AskDateTime(userID string) string {
	variants := []string{
		"What day and time work best for you? Just let me know like 'tomorrow at 2pm' or 'next Monday morning'.",
		"When would you like to come in? Give me a day and time, like 'Saturday at 3pm'.",
		"What's your preferred day and time? I can check availability for you.",
	}
	return pick(userID, variants)
}

// Availability lists alternative slots after a conflict.
func (g *Generator) Availability(slots []models.Slot) string {
	if len(slots) == 0 {
		return "Sorry, I'm not seeing any available slots right now. Could you try a different day or time?"
	}

	var b strings.Builder
	b.WriteString("That time is taken, but here are the nearest available times:\n\n")
	for i, slot := range slots {
		fmt.Fprintf(&b, "%d. %s\n", i+1, slot.Formatted)
	}
	b.WriteString("\nWhich one works for you? Just reply with the number or the time!")
	return b.String()
}

// Confirmation confirms a completed booking.
func (g *Generator) Confirmation(userID string, start time.Time) string {
	formatted := start.Format(displayLayout)
	variants := []string{
		fmt.Sprintf("You're all set! Your appointment is confirmed for %s. See you then!", formatted),
		fmt.Sprintf("Booked! You're scheduled for %s. Looking forward to it!", formatted),
		fmt.Sprintf("Perfect! You're confirmed for %s. We'll see you there!", formatted),
	}
	return pick(userID, variants) + "\n\nYou'll get a reminder before your appointment. If you need to cancel or reschedule, just let me know!"
}

// OutOfHours rejects a request outside the business schedule.
func (g *Generator) OutOfHours() string {
	return fmt.Sprintf("We're open %s. Can you choose a time during those hours?", g.HoursLabel)
}

// PastTime rejects a request in the past.
func (g *Generator) PastTime() string {
	return "That time has already passed. Can you pick a time later today or another day?"
}

// ClarifyTime asks which proposed slot the user meant.
func (g *Generator) ClarifyTime(userID string) string {
	variants := []string{
		"Just to confirm - which time slot did you want? Let me know the specific time!",
		"Which one of those times works for you? Just tell me the number or the time you prefer.",
		"Can you confirm which time you'd like? Just let me know!",
	}
	return pick(userID, variants)
}

// Cancellation acknowledges a cancelled booking.
func (g *Generator) Cancellation(start time.Time) string {
	return fmt.Sprintf("No problem, your appointment for %s has been cancelled. If you want to rebook, just let me know when works for you!", start.Format(displayLayout))
}

// NothingToCancel is sent when no booking exists to cancel.
func (g *Generator) NothingToCancel() string {
	return "I don't see an upcoming appointment under your name. If you'd like to book one, just tell me when you're free!"
}

// ServiceInfo describes the business offering.
func (g *Generator) ServiceInfo() string {
	return fmt.Sprintf("%s offers haircuts, trims, beard grooming, fades, and lineups. Prices typically range from $30-50 depending on the service.\n\nWant to book an appointment? Let me know when you're free!", g.BusinessName)
}

// Fallback covers unrecognized messages.
func (g *Generator) Fallback(userID string) string {
	variants := []string{
		"Sorry, I didn't quite catch that. Are you looking to book an appointment? Let me know what day works for you!",
		"I want to make sure I help you right! Are you trying to book, reschedule, or cancel an appointment?",
		"Hmm, I'm not sure I understood. Want to book an appointment? Just tell me when you're free!",
	}
	return pick(userID, variants)
}

// BookingError is sent when a booking attempt fails downstream.
func (g *Generator) BookingError() string {
	return "Oops, something went wrong creating your appointment. Can you try again? If this keeps happening, please contact us directly."
}

// GenericError covers any collaborator failure on the request path.
func (g *Generator) GenericError() string {
	return "Sorry, I'm having trouble processing your message right now. Please try again in a moment."
}
