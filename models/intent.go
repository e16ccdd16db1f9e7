package models

// Intent is the classified purpose of an inbound message. The set is closed;
// anything the classifier cannot place lands on IntentUnknown.
type Intent string

const (
	IntentGreeting        Intent = "greeting"
	IntentBookingInquiry  Intent = "booking_inquiry"
	IntentConfirmBooking  Intent = "confirm_booking"
	IntentCancelBooking   Intent = "cancel_booking"
	IntentGeneralQuestion Intent = "general_question"
	IntentUnknown         Intent = "unknown"
)

// KnownIntents lists every intent the classifier may return.
var KnownIntents = []Intent{
	IntentGreeting,
	IntentBookingInquiry,
	IntentConfirmBooking,
	IntentCancelBooking,
	IntentGeneralQuestion,
	IntentUnknown,
}

// ParseIntent maps a raw classifier label onto the closed intent set.
func ParseIntent(label string) Intent {
	for _, it := range KnownIntents {
		if string(it) == label {
			return it
		}
	}
	return IntentUnknown
}
