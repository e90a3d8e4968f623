// Package library owns the persisted library of message templates, their
// collections, and the recently-used URL history.
package library

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"wsup/internal/storage"
	"wsup/internal/storage/models"
	"wsup/internal/vars"
)

// historyLimit caps the URL history at the most-recently-used unique URLs.
const historyLimit = 20

// Store owns collections, templates and URL history. Every mutation is
// durably written to the persistence interface immediately; write failures are
// logged and swallowed, after which state continues in memory only.
type Store struct {
	store storage.Store

	mu          sync.RWMutex
	collections []*models.Collection
	history     []models.HistoryItem
}

// New creates a Store and loads persisted state. A store with no persisted
// collections is seeded with a default example collection.
func New(ctx context.Context, store storage.Store) *Store {
	s := &Store{store: store}
	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	raw, err := s.store.GetItem(ctx, storage.KeyCollections)
	switch {
	case err == storage.ErrNotFound:
		s.collections = defaultCollections()
		s.persistCollections(ctx)
	case err != nil:
		log.Printf("library: load collections: %v", err)
		s.collections = defaultCollections()
	default:
		var cols []*models.Collection
		if err := json.Unmarshal([]byte(raw), &cols); err != nil {
			log.Printf("library: decode collections: %v", err)
			s.collections = defaultCollections()
		} else {
			for _, c := range cols {
				if c.Templates == nil {
					c.Templates = []*models.MessageTemplate{}
				}
			}
			s.collections = cols
		}
	}

	raw, err = s.store.GetItem(ctx, storage.KeyHistory)
	if err == nil {
		if err := json.Unmarshal([]byte(raw), &s.history); err != nil {
			log.Printf("library: decode history: %v", err)
		}
	} else if err != storage.ErrNotFound {
		log.Printf("library: load history: %v", err)
	}
}

func defaultCollections() []*models.Collection {
	now := time.Now()
	return []*models.Collection{{
		ID:         uuid.NewString(),
		Name:       "Examples",
		IsExpanded: true,
		Templates: []*models.MessageTemplate{
			{
				ID:          uuid.NewString(),
				Name:        "Hello World",
				Content:     `{"message": "Hello, World!"}`,
				Format:      models.FormatJSON,
				Description: "Simple hello world message",
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			{
				ID:          uuid.NewString(),
				Name:        "Echo with Variables",
				Content:     `{"action": "echo", "data": {"name": "{{name}}", "timestamp": "{{timestamp}}"}}`,
				Format:      models.FormatJSON,
				Description: "Echo message with template variables",
				Variables: []models.TemplateVariable{
					{Name: "name", DefaultValue: "User", Description: "Your name"},
					{Name: "timestamp", DefaultValue: now.Format(time.RFC3339), Description: "Current timestamp"},
				},
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
	}}
}

// persistCollections writes the full collections array. Callers hold the lock.
func (s *Store) persistCollections(ctx context.Context) {
	data, err := json.Marshal(s.collections)
	if err != nil {
		log.Printf("library: encode collections: %v", err)
		return
	}
	if err := s.store.SetItem(ctx, storage.KeyCollections, string(data)); err != nil {
		log.Printf("library: save collections: %v", err)
	}
}

// persistHistory writes the full history array. Callers hold the lock.
func (s *Store) persistHistory(ctx context.Context) {
	data, err := json.Marshal(s.history)
	if err != nil {
		log.Printf("library: encode history: %v", err)
		return
	}
	if err := s.store.SetItem(ctx, storage.KeyHistory, string(data)); err != nil {
		log.Printf("library: save history: %v", err)
	}
}

// Collections returns a snapshot of the collection list.
func (s *Store) Collections() []*models.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Collection, len(s.collections))
	copy(out, s.collections)
	return out
}

// History returns a snapshot of the URL history, most recent first.
func (s *Store) History() []models.HistoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.HistoryItem, len(s.history))
	copy(out, s.history)
	return out
}

// AddCollection creates an expanded empty collection and persists it.
func (s *Store) AddCollection(ctx context.Context, name string) *models.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	col := &models.Collection{
		ID:         uuid.NewString(),
		Name:       name,
		Templates:  []*models.MessageTemplate{},
		IsExpanded: true,
	}
	s.collections = append(s.collections, col)
	s.persistCollections(ctx)
	return col
}

// RemoveCollection deletes the collection and all its templates. Tabs bound to
// those templates are the tab session manager's concern, not the store's.
func (s *Store) RemoveCollection(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.collections[:0]
	for _, c := range s.collections {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.collections = kept
	s.persistCollections(ctx)
}

// RenameCollection sets a collection's name.
func (s *Store) RenameCollection(ctx context.Context, id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.collections {
		if c.ID == id {
			c.Name = name
			s.persistCollections(ctx)
			return
		}
	}
}

// ToggleCollection flips a collection's expanded flag. UI state only; not
// written through on its own.
func (s *Store) ToggleCollection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.collections {
		if c.ID == id {
			c.IsExpanded = !c.IsExpanded
			return
		}
	}
}

// ExpandCollection forces a collection open.
func (s *Store) ExpandCollection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.collections {
		if c.ID == id {
			c.IsExpanded = true
			return
		}
	}
}

// TemplateData carries the caller-supplied fields of a new template.
type TemplateData struct {
	Name        string
	Content     string
	Format      models.MessageFormat
	Description string
	Variables   []models.TemplateVariable
}

// AddTemplate appends a new template to the named collection and returns it.
// A no-op returning nil when the collection id is unknown.
func (s *Store) AddTemplate(ctx context.Context, collectionID string, data TemplateData) *models.MessageTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.collections {
		if c.ID != collectionID {
			continue
		}
		now := time.Now()
		tmpl := &models.MessageTemplate{
			ID:          uuid.NewString(),
			Name:        data.Name,
			Content:     data.Content,
			Format:      data.Format,
			Description: data.Description,
			Variables:   data.Variables,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		c.Templates = append(c.Templates, tmpl)
		s.persistCollections(ctx)
		return tmpl
	}
	return nil
}

// RemoveTemplate removes a template by id within the named collection.
func (s *Store) RemoveTemplate(ctx context.Context, collectionID, templateID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.collections {
		if c.ID != collectionID {
			continue
		}
		kept := c.Templates[:0]
		for _, t := range c.Templates {
			if t.ID != templateID {
				kept = append(kept, t)
			}
		}
		c.Templates = kept
		s.persistCollections(ctx)
		return
	}
}

// TemplateUpdate carries the fields to merge into an existing template. Nil
// fields are left unchanged.
type TemplateUpdate struct {
	Name        *string
	Content     *string
	Format      *models.MessageFormat
	Description *string
	Variables   []models.TemplateVariable
}

// UpdateTemplate merges the partial update and refreshes UpdatedAt. Returns
// the updated template, or nil when the ids are unknown.
func (s *Store) UpdateTemplate(ctx context.Context, collectionID, templateID string, update TemplateUpdate) *models.MessageTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.collections {
		if c.ID != collectionID {
			continue
		}
		for _, t := range c.Templates {
			if t.ID != templateID {
				continue
			}
			if update.Name != nil {
				t.Name = *update.Name
			}
			if update.Content != nil {
				t.Content = *update.Content
			}
			if update.Format != nil {
				t.Format = *update.Format
			}
			if update.Description != nil {
				t.Description = *update.Description
			}
			if update.Variables != nil {
				t.Variables = update.Variables
			}
			t.UpdatedAt = time.Now()
			s.persistCollections(ctx)
			return t
		}
	}
	return nil
}

// FindTemplate locates a template by id across all collections.
func (s *Store) FindTemplate(templateID string) (*models.Collection, *models.MessageTemplate) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.collections {
		for _, t := range c.Templates {
			if t.ID == templateID {
				return c, t
			}
		}
	}
	return nil, nil
}

// AddToHistory moves url to the head of the history, de-duplicated by exact
// match and truncated to the history limit.
func (s *Store) AddToHistory(ctx context.Context, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := []models.HistoryItem{{URL: url, LastUsed: time.Now()}}
	for _, h := range s.history {
		if h.URL != url {
			items = append(items, h)
		}
	}
	if len(items) > historyLimit {
		items = items[:historyLimit]
	}
	s.history = items
	s.persistHistory(ctx)
}

// ClearHistory empties the URL history.
func (s *Store) ClearHistory(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = nil
	s.persistHistory(ctx)
}

// ResolveTemplate returns the template content with every placeholder that has
// a non-empty value substituted.
func (s *Store) ResolveTemplate(tmpl *models.MessageTemplate, values map[string]string) string {
	return vars.Resolve(tmpl.Content, values)
}

// ParseTemplateVariables returns the unique variable names in content, in
// first-occurrence order.
func (s *Store) ParseTemplateVariables(content string) []string {
	return vars.Parse(content)
}
