package models

import "time"

// ConnectionStatus is the lifecycle state of a Connection.
type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
	StatusError        ConnectionStatus = "error"
)

// Connection is a logical WebSocket endpoint entry with lifecycle state and
// message history. Status, Error and Messages are runtime-only: they are never
// persisted and always reset on load.
type Connection struct {
	ID        string           `json:"id"`
	URL       string           `json:"url"`
	Status    ConnectionStatus `json:"status"`
	Error     string           `json:"error,omitempty"`
	Messages  []*Message       `json:"messages"`
	CreatedAt time.Time        `json:"created_at"`
}

// SavedConnection is the persisted form of a Connection.
type SavedConnection struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// SavedConnectionList is the value stored under the connections key.
type SavedConnectionList struct {
	Connections []SavedConnection `json:"connections"`
	SelectedID  string            `json:"selected_id,omitempty"`
}
