package errors

import (
	"errors"
	"fmt"
)

// Common error types
var (
	// Connection errors
	ErrNoConnectionSelected = errors.New("no connection selected")
	ErrNotConnected         = errors.New("connection is not connected")

	// Message errors
	ErrInvalidJSON  = errors.New("invalid JSON")
	ErrEmptyMessage = errors.New("message is empty")

	// Probe errors
	ErrProbeTimeout = errors.New("probe timeout")
)

// ConnectionError represents a connection-related error
type ConnectionError struct {
	ID  string
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("connection '%s' (%s): %v", e.ID, e.URL, e.Err)
	}
	return fmt.Sprintf("connection '%s': %v", e.ID, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// StorageError represents a persistence failure for one logical key
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s '%s': %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
