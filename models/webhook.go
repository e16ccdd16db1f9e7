package models

// WebhookEvent is the Instagram Graph API webhook envelope.
type WebhookEvent struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry carries the events for a single page/account.
type WebhookEntry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging,omitempty"`
	Changes   []ChangeEvent    `json:"changes,omitempty"`
}

// MessagingEvent is a single direct-message delivery.
type MessagingEvent struct {
	Sender    Principal     `json:"sender"`
	Recipient Principal     `json:"recipient"`
	Timestamp int64         `json:"timestamp"`
	Message   *MessageEvent `json:"message,omitempty"`
}

// Principal identifies a messaging participant.
type Principal struct {
	ID string `json:"id"`
}

// MessageEvent is the message body of a messaging event.
type MessageEvent struct {
	MID    string `json:"mid"`
	Text   string `json:"text"`
	IsEcho bool   `json:"is_echo,omitempty"`
}

// ChangeEvent covers non-messaging webhook fields such as comments.
type ChangeEvent struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

// ChangeValue is the payload of a change event (comment text and author).
type ChangeValue struct {
	ID   string    `json:"id"`
	Text string    `json:"text"`
	From Principal `json:"from"`
}
