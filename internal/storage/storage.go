package storage

import (
	"context"
	"errors"
)

// Logical keys. Everything the application persists lives under one of these.
// Collection, history and connection values are JSON with RFC3339 date fields;
// the theme value is a plain string.
const (
	KeyCollections = "collections"
	KeyHistory     = "history"
	KeyConnections = "connections"
	KeyTheme       = "theme"
)

// ErrNotFound is returned by GetItem when a key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// Store defines the interface for key-value persistence
type Store interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error

	// Close closes the storage connection
	Close() error
}
