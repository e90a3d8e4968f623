package models

import "time"

// MessageType distinguishes outgoing from incoming messages.
type MessageType string

const (
	MessageSent     MessageType = "sent"
	MessageReceived MessageType = "received"
)

// MessageFormat is the payload format of a message or template.
type MessageFormat string

const (
	FormatJSON   MessageFormat = "json"
	FormatText   MessageFormat = "text"
	FormatBinary MessageFormat = "binary"
)

// Message is a single sent or received frame. Immutable once created; owned by
// exactly one Connection.
type Message struct {
	ID        string        `json:"id"`
	Type      MessageType   `json:"type"`
	Content   string        `json:"content"`
	Format    MessageFormat `json:"format"`
	Timestamp time.Time     `json:"timestamp"`
	Size      int           `json:"size"`
}
