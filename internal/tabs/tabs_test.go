package tabs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsup/internal/storage/models"
)

func tmpl(id, name, content string) *models.MessageTemplate {
	return &models.MessageTemplate{
		ID:      id,
		Name:    name,
		Content: content,
		Format:  models.FormatJSON,
	}
}

func TestNewManagerStartsWithDefaultTab(t *testing.T) {
	m := NewManager()

	require.Len(t, m.Tabs(), 1)
	active := m.ActiveTab()
	require.NotNil(t, active)
	assert.Equal(t, "Untitled", active.Name)
	assert.Equal(t, models.FormatJSON, active.Format)
	assert.Empty(t, active.TemplateID)
	// The default content carries a {{name}} placeholder, so the value map is
	// seeded with it.
	assert.Contains(t, active.VariableValues, "name")
}

func TestOpenTemplateFocusesExistingTab(t *testing.T) {
	m := NewManager()
	tm := tmpl("t1", "Ping", `{"op": "ping"}`)

	first := m.OpenTemplate(tm)
	m.NewTab()
	second := m.OpenTemplate(tm)

	assert.Equal(t, first.ID, second.ID)
	bound := 0
	for _, tab := range m.Tabs() {
		if tab.TemplateID == "t1" {
			bound++
		}
	}
	assert.Equal(t, 1, bound)
	assert.Equal(t, first.ID, m.ActiveTab().ID)
}

func TestOpenTemplateSeedsVariableDefaults(t *testing.T) {
	m := NewManager()
	tm := tmpl("t1", "Echo", `{"name": "{{name}}", "id": "{{id}}"}`)
	tm.Variables = []models.TemplateVariable{{Name: "name", DefaultValue: "User"}}

	tab := m.OpenTemplate(tm)
	assert.Equal(t, "User", tab.VariableValues["name"])
	assert.Equal(t, "", tab.VariableValues["id"])
	assert.Equal(t, tm.Content, tab.OriginalContent)
	assert.Equal(t, tm.Name, tab.OriginalName)
	assert.Equal(t, tm.Format, tab.OriginalFormat)
}

func TestCloseTabNeverLeavesListEmpty(t *testing.T) {
	m := NewManager()
	only := m.ActiveTab()

	m.CloseTab(only.ID)

	require.Len(t, m.Tabs(), 1)
	assert.NotEqual(t, only.ID, m.Tabs()[0].ID)
	assert.Equal(t, m.Tabs()[0].ID, m.ActiveTab().ID)
}

func TestCloseTabActivatesSameIndexNeighbor(t *testing.T) {
	m := NewManager()
	a := m.ActiveTab()
	b := m.NewTab()
	c := m.NewTab()

	// Close the middle tab while it is active: the tab that slid into its
	// index becomes active.
	m.SelectTab(b.ID)
	m.CloseTab(b.ID)
	assert.Equal(t, c.ID, m.ActiveTab().ID)

	// Close the last tab while active: the new last tab becomes active.
	m.CloseTab(c.ID)
	assert.Equal(t, a.ID, m.ActiveTab().ID)
}

func TestCloseInactiveTabKeepsActive(t *testing.T) {
	m := NewManager()
	a := m.ActiveTab()
	b := m.NewTab()

	m.CloseTab(a.ID)
	assert.Equal(t, b.ID, m.ActiveTab().ID)
}

func TestModifiedTracking(t *testing.T) {
	m := NewManager()
	tm := tmpl("t1", "Ping", `{"op": "ping"}`)
	tab := m.OpenTemplate(tm)

	assert.False(t, tab.Modified())

	content := `{"op": "pong"}`
	m.UpdateActiveTab(Update{Content: &content})
	assert.True(t, tab.Modified())

	// Saving re-snapshots the baseline.
	tm.Content = content
	m.MarkSaved(tab.ID, tm)
	assert.False(t, tab.Modified())

	// Any subsequent edit to name or format dirties it again.
	name := "Pong"
	m.UpdateActiveTab(Update{Name: &name})
	assert.True(t, tab.Modified())
}

func TestDraftTabModifiedWhenNonBlank(t *testing.T) {
	m := NewManager()
	tab := m.ActiveTab()

	blank := "   \n"
	m.UpdateActiveTab(Update{Content: &blank})
	assert.False(t, tab.Modified())

	content := "hello"
	m.UpdateActiveTab(Update{Content: &content})
	assert.True(t, tab.Modified())
}

func TestUpdateActiveTabSyncsVariables(t *testing.T) {
	m := NewManager()
	tab := m.ActiveTab()

	content := "{{a}} {{b}}"
	m.UpdateActiveTab(Update{Content: &content})
	m.UpdateActiveTab(Update{VariableValues: map[string]string{"a": "1", "b": "2"}})

	content = "{{a}} {{c}}"
	m.UpdateActiveTab(Update{Content: &content})

	assert.Equal(t, map[string]string{"a": "1", "c": ""}, tab.VariableValues)
}

func TestUpdateOnlyTouchesActiveTab(t *testing.T) {
	m := NewManager()
	first := m.ActiveTab()
	m.NewTab()

	content := "changed"
	m.UpdateActiveTab(Update{Content: &content})

	assert.NotEqual(t, "changed", first.Content)
}

func TestRefreshFromTemplate(t *testing.T) {
	m := NewManager()
	tm := tmpl("t1", "Ping", `{"op": "ping"}`)
	tab := m.OpenTemplate(tm)

	tm.Name = "Renamed"
	m.RefreshFromTemplate(tm)

	assert.Equal(t, "Renamed", tab.OriginalName)
	// The tab's own name is untouched, so the rename shows up as a dirty tab.
	assert.Equal(t, "Ping", tab.Name)
	assert.True(t, tab.Modified())
}

func TestDetachTemplate(t *testing.T) {
	m := NewManager()
	tm := tmpl("t1", "Ping", `{"op": "ping"}`)
	tab := m.OpenTemplate(tm)

	m.DetachTemplate("t1")

	assert.Empty(t, tab.TemplateID)
	// Back to draft semantics: non-blank content means modified.
	assert.True(t, tab.Modified())
}
