package memory

import (
	"context"
	"sync"

	"wsup/internal/storage"
)

// Store is an in-memory Store implementation used by tests and ephemeral
// sessions. Nothing written here survives the process.
type Store struct {
	mu    sync.RWMutex
	items map[string]string
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{items: make(map[string]string)}
}

func (s *Store) GetItem(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (s *Store) SetItem(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

func (s *Store) RemoveItem(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

func (s *Store) Close() error { return nil }
