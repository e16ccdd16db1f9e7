package models

import "time"

// Conversation stages.
const (
	StageInitial              = "initial"
	StageGreeted              = "greeted"
	StageAskingDateTime       = "asking_datetime"
	StageShowingAvailability  = "showing_availability"
	StageAwaitingConfirmation = "awaiting_confirmation"
	StageCompleted            = "completed"
	StageCancelled            = "cancelled"
)

// historyLimit caps the rolling message history kept per conversation.
const historyLimit = 10

// Message is a single turn in the conversation history.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Conversation is the per-user context kept between webhook deliveries.
type Conversation struct {
	Stage         string      `json:"stage"`
	History       []Message   `json:"history,omitempty"`
	ServiceType   string      `json:"serviceType,omitempty"`
	ProposedSlots []time.Time `json:"proposedSlots,omitempty"`
	PendingSlot   *time.Time  `json:"pendingSlot,omitempty"`
	LastBookingID string      `json:"lastBookingId,omitempty"`
	LastBookingAt *time.Time  `json:"lastBookingAt,omitempty"`
}

// NewConversation returns a fresh conversation in the initial stage.
func NewConversation() *Conversation {
	return &Conversation{Stage: StageInitial}
}

// Append records a turn, trimming the history to the most recent entries.
func (c *Conversation) Append(role, content string) {
	c.History = append(c.History, Message{Role: role, Content: content})
	if len(c.History) > historyLimit {
		c.History = c.History[len(c.History)-historyLimit:]
	}
}

// RecentHistory returns up to n most recent turns.
func (c *Conversation) RecentHistory(n int) []Message {
	if len(c.History) <= n {
		return c.History
	}
	return c.History[len(c.History)-n:]
}
