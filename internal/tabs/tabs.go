// Package tabs owns the set of open editor tabs. Tabs are session-only state:
// they are never persisted and always start from a single default tab.
//
// A Manager is owned by the single UI update loop and is not safe for
// concurrent use.
package tabs

import (
	"fmt"
	"strings"

	"wsup/internal/storage/models"
	"wsup/internal/vars"
)

const (
	defaultName    = "Untitled"
	defaultContent = `{"message": "Hello, {{name}}!"}`
)

// Tab is an in-memory editing session for a message body. TemplateID is empty
// for unsaved drafts; for template-bound tabs the Original* fields snapshot
// the template's last-saved state for dirty comparison.
type Tab struct {
	ID             string
	Name           string
	Content        string
	Format         models.MessageFormat
	VariableValues map[string]string

	TemplateID      string
	OriginalContent string
	OriginalName    string
	OriginalFormat  models.MessageFormat
}

// Modified reports whether the tab has unsaved changes. Template-bound tabs
// compare content, name and format against the saved snapshot; a draft tab is
// modified whenever it has any non-blank content, since it has no baseline.
func (t *Tab) Modified() bool {
	if t.TemplateID != "" {
		return t.Content != t.OriginalContent ||
			t.Name != t.OriginalName ||
			t.Format != t.OriginalFormat
	}
	return strings.TrimSpace(t.Content) != ""
}

// Manager owns the tab list and the active tab. The list is never empty in
// steady state.
type Manager struct {
	tabs     []*Tab
	activeID string
	nextID   int
}

// NewManager creates a manager holding one default tab.
func NewManager() *Manager {
	m := &Manager{}
	m.NewTab()
	return m
}

func (m *Manager) newID() string {
	m.nextID++
	return fmt.Sprintf("tab-%d", m.nextID)
}

// Tabs returns the open tabs in order.
func (m *Manager) Tabs() []*Tab {
	return m.tabs
}

// ActiveTab returns the currently active tab.
func (m *Manager) ActiveTab() *Tab {
	for _, t := range m.tabs {
		if t.ID == m.activeID {
			return t
		}
	}
	return nil
}

// SelectTab activates the tab with the given id. Unknown ids are ignored.
func (m *Manager) SelectTab(id string) {
	for _, t := range m.tabs {
		if t.ID == id {
			m.activeID = id
			return
		}
	}
}

// NewTab creates an empty draft tab and activates it.
func (m *Manager) NewTab() *Tab {
	t := &Tab{
		ID:             m.newID(),
		Name:           defaultName,
		Content:        defaultContent,
		Format:         models.FormatJSON,
		VariableValues: map[string]string{},
	}
	t.VariableValues, _ = vars.Sync(t.Content, t.VariableValues)
	m.tabs = append(m.tabs, t)
	m.activeID = t.ID
	return t
}

// OpenTemplate opens a template in a new tab, or activates the existing tab
// already bound to it. At most one tab is ever bound to a given template id.
func (m *Manager) OpenTemplate(tmpl *models.MessageTemplate) *Tab {
	for _, t := range m.tabs {
		if t.TemplateID == tmpl.ID {
			m.activeID = t.ID
			return t
		}
	}

	values := map[string]string{}
	for _, v := range tmpl.Variables {
		values[v.Name] = v.DefaultValue
	}

	t := &Tab{
		ID:              m.newID(),
		Name:            tmpl.Name,
		Content:         tmpl.Content,
		Format:          tmpl.Format,
		VariableValues:  values,
		TemplateID:      tmpl.ID,
		OriginalContent: tmpl.Content,
		OriginalName:    tmpl.Name,
		OriginalFormat:  tmpl.Format,
	}
	t.VariableValues, _ = vars.Sync(t.Content, t.VariableValues)
	m.tabs = append(m.tabs, t)
	m.activeID = t.ID
	return t
}

// CloseTab removes the tab. Closing the active tab activates the tab at the
// same index in the remaining list, or the last one; closing the last
// remaining tab creates a fresh default tab.
func (m *Manager) CloseTab(id string) {
	idx := -1
	for i, t := range m.tabs {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	m.tabs = append(m.tabs[:idx], m.tabs[idx+1:]...)

	if m.activeID != id {
		return
	}
	if len(m.tabs) == 0 {
		m.NewTab()
		return
	}
	if idx > len(m.tabs)-1 {
		idx = len(m.tabs) - 1
	}
	m.activeID = m.tabs[idx].ID
}

// Update carries fields to merge into the active tab. Nil fields are left
// unchanged.
type Update struct {
	Name           *string
	Content        *string
	Format         *models.MessageFormat
	VariableValues map[string]string
}

// UpdateActiveTab merges the update into the active tab only. Editing the
// content re-syncs the variable value map against the newly detected
// variable set.
func (m *Manager) UpdateActiveTab(update Update) {
	t := m.ActiveTab()
	if t == nil {
		return
	}
	if update.Name != nil {
		t.Name = *update.Name
	}
	if update.VariableValues != nil {
		t.VariableValues = update.VariableValues
	}
	if update.Format != nil {
		t.Format = *update.Format
	}
	if update.Content != nil {
		t.Content = *update.Content
		t.VariableValues, _ = vars.Sync(t.Content, t.VariableValues)
	}
}

// MarkSaved binds the tab to the template and re-snapshots the dirty-tracking
// baseline after an explicit save.
func (m *Manager) MarkSaved(tabID string, tmpl *models.MessageTemplate) {
	for _, t := range m.tabs {
		if t.ID != tabID {
			continue
		}
		t.TemplateID = tmpl.ID
		t.Name = tmpl.Name
		t.OriginalContent = tmpl.Content
		t.OriginalName = tmpl.Name
		t.OriginalFormat = tmpl.Format
		return
	}
}

// RefreshFromTemplate re-snapshots the baseline of every tab bound to the
// template, after the template changed elsewhere (e.g. a rename in the
// library).
func (m *Manager) RefreshFromTemplate(tmpl *models.MessageTemplate) {
	for _, t := range m.tabs {
		if t.TemplateID != tmpl.ID {
			continue
		}
		t.OriginalContent = tmpl.Content
		t.OriginalName = tmpl.Name
		t.OriginalFormat = tmpl.Format
	}
}

// DetachTemplate unbinds every tab pointing at a deleted template, turning
// them back into drafts so dirty tracking stays meaningful.
func (m *Manager) DetachTemplate(templateID string) {
	for _, t := range m.tabs {
		if t.TemplateID == templateID {
			t.TemplateID = ""
			t.OriginalContent = ""
			t.OriginalName = ""
			t.OriginalFormat = ""
		}
	}
}
