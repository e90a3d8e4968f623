package models

import "time"

// TemplateVariable is a persisted default value for a {{name}} placeholder.
// The authoritative variable set is always derived from the template content;
// this record only caches defaults and descriptions.
type TemplateVariable struct {
	Name         string `json:"name"`
	DefaultValue string `json:"default_value"`
	Description  string `json:"description,omitempty"`
}

// MessageTemplate is a named, persisted, reusable message body.
type MessageTemplate struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Content     string             `json:"content"`
	Format      MessageFormat      `json:"format"`
	Description string             `json:"description,omitempty"`
	Variables   []TemplateVariable `json:"variables,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Collection is a named grouping of templates. Templates belong to exactly one
// collection.
type Collection struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Templates  []*MessageTemplate `json:"templates"`
	IsExpanded bool               `json:"is_expanded"`
}
