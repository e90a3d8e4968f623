package library

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsup/internal/storage/memory"
	"wsup/internal/storage/models"
)

func newTestStore(t *testing.T) (*Store, *memory.Store) {
	t.Helper()
	mem := memory.New()
	return New(context.Background(), mem), mem
}

func TestSeedsDefaultCollection(t *testing.T) {
	s, _ := newTestStore(t)

	cols := s.Collections()
	require.Len(t, cols, 1)
	assert.Equal(t, "Examples", cols[0].Name)
	assert.True(t, cols[0].IsExpanded)
	assert.Len(t, cols[0].Templates, 2)
}

func TestAddCollectionPersists(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)

	col := s.AddCollection(ctx, "Payments")
	require.NotNil(t, col)
	assert.NotEmpty(t, col.ID)
	assert.True(t, col.IsExpanded)
	assert.Empty(t, col.Templates)

	// A fresh store over the same persistence sees the new collection.
	reloaded := New(ctx, mem)
	names := []string{}
	for _, c := range reloaded.Collections() {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "Payments")
}

func TestRemoveCollection(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	col := s.AddCollection(ctx, "Doomed")
	s.AddTemplate(ctx, col.ID, TemplateData{Name: "t", Content: "x", Format: models.FormatText})

	s.RemoveCollection(ctx, col.ID)

	for _, c := range s.Collections() {
		assert.NotEqual(t, col.ID, c.ID)
	}
	// Removing an unknown id is a no-op.
	before := len(s.Collections())
	s.RemoveCollection(ctx, "nope")
	assert.Len(t, s.Collections(), before)
}

func TestAddTemplate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	col := s.AddCollection(ctx, "API")

	tmpl := s.AddTemplate(ctx, col.ID, TemplateData{
		Name:    "Ping",
		Content: `{"op": "ping"}`,
		Format:  models.FormatJSON,
	})
	require.NotNil(t, tmpl)
	assert.NotEmpty(t, tmpl.ID)
	assert.Equal(t, tmpl.CreatedAt, tmpl.UpdatedAt)

	// Unknown collection id: silent no-op.
	assert.Nil(t, s.AddTemplate(ctx, "missing", TemplateData{Name: "x"}))
}

func TestUpdateTemplateRefreshesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	col := s.AddCollection(ctx, "API")
	tmpl := s.AddTemplate(ctx, col.ID, TemplateData{Name: "Ping", Content: "a", Format: models.FormatText})

	created := tmpl.CreatedAt
	time.Sleep(5 * time.Millisecond)

	content := "b"
	updated := s.UpdateTemplate(ctx, col.ID, tmpl.ID, TemplateUpdate{Content: &content})
	require.NotNil(t, updated)
	assert.Equal(t, "b", updated.Content)
	assert.Equal(t, "Ping", updated.Name)
	assert.Equal(t, created, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created))

	// Unknown ids: silent no-op.
	assert.Nil(t, s.UpdateTemplate(ctx, col.ID, "missing", TemplateUpdate{Content: &content}))
}

func TestRemoveTemplate(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	col := s.AddCollection(ctx, "API")
	tmpl := s.AddTemplate(ctx, col.ID, TemplateData{Name: "Ping", Content: "a", Format: models.FormatText})

	s.RemoveTemplate(ctx, col.ID, tmpl.ID)
	_, found := s.FindTemplate(tmpl.ID)
	assert.Nil(t, found)
}

func TestAddToHistory(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	s.AddToHistory(ctx, "ws://a")
	s.AddToHistory(ctx, "ws://b")
	s.AddToHistory(ctx, "ws://a")

	hist := s.History()
	require.Len(t, hist, 2)
	assert.Equal(t, "ws://a", hist[0].URL)
	assert.Equal(t, "ws://b", hist[1].URL)

	// Inserting a 21st distinct URL drops the oldest.
	for i := 0; i < 20; i++ {
		s.AddToHistory(ctx, fmt.Sprintf("ws://host-%d", i))
	}
	hist = s.History()
	require.Len(t, hist, 20)
	assert.Equal(t, "ws://host-19", hist[0].URL)
	for _, h := range hist {
		assert.NotEqual(t, "ws://b", h.URL)
	}
}

func TestRoundTripPreservesTemplates(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	col := s.AddCollection(ctx, "API")
	tmpl := s.AddTemplate(ctx, col.ID, TemplateData{
		Name:    "Echo",
		Content: `{"name": "{{name}}"}`,
		Format:  models.FormatJSON,
		Variables: []models.TemplateVariable{
			{Name: "name", DefaultValue: "User"},
		},
	})

	reloaded := New(ctx, mem)
	_, got := reloaded.FindTemplate(tmpl.ID)
	require.NotNil(t, got)
	assert.Equal(t, tmpl.Name, got.Name)
	assert.Equal(t, tmpl.Content, got.Content)
	assert.Equal(t, tmpl.Format, got.Format)
	assert.Equal(t, tmpl.Variables, got.Variables)
	assert.WithinDuration(t, tmpl.CreatedAt, got.CreatedAt, time.Second)
	assert.WithinDuration(t, tmpl.UpdatedAt, got.UpdatedAt, time.Second)
}

func TestResolveTemplate(t *testing.T) {
	s, _ := newTestStore(t)
	tmpl := &models.MessageTemplate{Content: "{{a}}-{{b}}"}

	assert.Equal(t, "1-{{b}}", s.ResolveTemplate(tmpl, map[string]string{"a": "1"}))
	assert.Equal(t, []string{"name", "id"}, s.ParseTemplateVariables("Hello {{name}}, id={{id}} again {{name}}"))
}
