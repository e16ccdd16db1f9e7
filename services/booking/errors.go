package booking

import "fmt"

// EngineError is a typed booking failure.
type EngineError struct {
	Code      string
	Message   string
	Retryable bool
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewCalendarError wraps a calendar collaborator failure. These are retryable:
// the conversation survives and the user may simply try again.
func NewCalendarError(err error) error {
	return &EngineError{
		Code:      "calendarUnavailable",
		Message:   err.Error(),
		Retryable: true,
	}
}

// IsRetryable reports whether err represents a transient collaborator failure.
func IsRetryable(err error) bool {
	if ee, ok := err.(*EngineError); ok {
		return ee.Retryable
	}
	return false
}
