package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wsup/internal/format"
	"wsup/internal/library"
	"wsup/internal/storage/models"
	"wsup/internal/tabs"
	"wsup/internal/vars"
)

// Session tab focus zones.
type sessionFocus int

const (
	focusCommand sessionFocus = iota
	focusCompose
	focusVars
	focusVarEdit
	focusRename
)

type sessionModel struct {
	composer textarea.Model
	log      viewport.Model
	input    textinput.Model

	focus     sessionFocus
	varNames  []string
	varCursor int

	width  int
	height int
}

func newSessionModel() sessionModel {
	ta := textarea.New()
	ta.Placeholder = `{"message": "hello"}`
	ta.CharLimit = 0
	ta.ShowLineNumbers = false

	vp := viewport.New(0, 0)

	ti := textinput.New()
	ti.CharLimit = 128
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorPurple)

	return sessionModel{
		composer: ta,
		log:      vp,
		input:    ti,
	}
}

// editorInit returns the initial blink command for the composer cursor.
func (sm *sessionModel) editorInit() tea.Cmd {
	return textarea.Blink
}

func (sm *sessionModel) typing() bool {
	return sm.focus == focusCompose || sm.focus == focusVarEdit || sm.focus == focusRename
}

func (sm *sessionModel) setSize(w, h int) {
	sm.width = w
	sm.height = h

	composerH := h / 3
	if composerH < 3 {
		composerH = 3
	}
	// tab bar + vars line + log header.
	logH := h - composerH - 3
	if logH < 1 {
		logH = 1
	}

	sm.composer.SetWidth(w - 2)
	sm.composer.SetHeight(composerH)
	sm.log.Width = w
	sm.log.Height = logH
	sm.input.Width = w / 2
}

// syncFromTab loads the active editor tab into the composer widget.
func (sm *sessionModel) syncFromTab(t *tabs.Tab) {
	if t == nil {
		return
	}
	if sm.composer.Value() != t.Content {
		sm.composer.SetValue(t.Content)
	}
	sm.varNames = vars.Parse(t.Content)
	if sm.varCursor >= len(sm.varNames) {
		sm.varCursor = 0
	}
}

// refreshLog rebuilds the message log viewport from the selected connection.
func (sm *sessionModel) refreshLog(root *Model) {
	selected := root.manager.Selected()
	if selected == nil {
		sm.log.SetContent(dimStyle.Render("No connection selected."))
		return
	}

	var b strings.Builder
	for _, msg := range selected.Messages {
		ts := msgTimeStyle.Render("[" + format.Time(msg.Timestamp) + "]")
		var dir string
		if msg.Type == models.MessageSent {
			dir = sentMsgStyle.Render("→")
		} else {
			dir = receivedMsgStyle.Render("←")
		}

		content := msg.Content
		if msg.Format == models.FormatJSON {
			content = format.JSON(content)
		}
		size := dimStyle.Render("(" + format.Bytes(msg.Size) + ")")

		b.WriteString(fmt.Sprintf("%s %s %s\n", ts, dir, size))
		for _, line := range strings.Split(content, "\n") {
			b.WriteString("  " + line + "\n")
		}
	}
	if len(selected.Messages) == 0 {
		b.WriteString(dimStyle.Render("No messages yet."))
	}

	sm.log.SetContent(b.String())
	sm.log.GotoBottom()
}

func (sm *sessionModel) Update(msg tea.Msg, root *Model) tea.Cmd {
	keyMsg, isKey := msg.(tea.KeyMsg)
	if !isKey {
		var cmd tea.Cmd
		sm.composer, cmd = sm.composer.Update(msg)
		return cmd
	}

	// Bindings that work regardless of focus; ctrl chords never reach the
	// composer as text.
	switch {
	case key.Matches(keyMsg, keys.Send):
		return sm.sendActive(root)
	case key.Matches(keyMsg, keys.Save):
		return sm.saveActive(root)
	case key.Matches(keyMsg, keys.NewTab):
		root.editor.NewTab()
		sm.syncFromTab(root.editor.ActiveTab())
		return nil
	case key.Matches(keyMsg, keys.CloseTab):
		if t := root.editor.ActiveTab(); t != nil {
			root.editor.CloseTab(t.ID)
		}
		sm.syncFromTab(root.editor.ActiveTab())
		return nil
	}

	switch sm.focus {
	case focusCompose:
		return sm.updateComposing(keyMsg, root)
	case focusVars:
		return sm.updateVarsNav(keyMsg, root)
	case focusVarEdit:
		return sm.updateVarEdit(keyMsg, root)
	case focusRename:
		return sm.updateRename(keyMsg, root)
	}
	return sm.updateCommand(keyMsg, root)
}

func (sm *sessionModel) updateCommand(msg tea.KeyMsg, root *Model) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Enter), msg.String() == "i":
		sm.focus = focusCompose
		sm.syncFromTab(root.editor.ActiveTab())
		return sm.composer.Focus()

	case key.Matches(msg, keys.NextEditor):
		sm.activateNeighbor(root, 1)
		return nil

	case key.Matches(msg, keys.PrevEditor):
		sm.activateNeighbor(root, -1)
		return nil

	case key.Matches(msg, keys.Vars):
		if t := root.editor.ActiveTab(); t != nil && len(vars.Parse(t.Content)) > 0 {
			sm.focus = focusVars
			sm.syncFromTab(t)
		}
		return nil

	case key.Matches(msg, keys.Format):
		if t := root.editor.ActiveTab(); t != nil && t.Format == models.FormatJSON {
			pretty := format.JSON(t.Content)
			if pretty != t.Content {
				root.editor.UpdateActiveTab(tabs.Update{Content: &pretty})
				sm.syncFromTab(root.editor.ActiveTab())
			}
		}
		return nil

	case msg.String() == "m":
		if t := root.editor.ActiveTab(); t != nil {
			next := models.FormatText
			if t.Format == models.FormatText {
				next = models.FormatJSON
			}
			root.editor.UpdateActiveTab(tabs.Update{Format: &next})
		}
		return nil

	case key.Matches(msg, keys.Edit):
		if t := root.editor.ActiveTab(); t != nil {
			sm.focus = focusRename
			sm.input.SetValue(t.Name)
			sm.input.Focus()
			return textinput.Blink
		}
		return nil

	case key.Matches(msg, keys.ClearLog):
		root.manager.ClearMessages("")
		sm.refreshLog(root)
		return nil
	}

	// Remaining keys scroll the message log.
	var cmd tea.Cmd
	sm.log, cmd = sm.log.Update(msg)
	return cmd
}

func (sm *sessionModel) updateComposing(msg tea.KeyMsg, root *Model) tea.Cmd {
	if key.Matches(msg, keys.Back) {
		sm.focus = focusCommand
		sm.composer.Blur()
		return nil
	}

	var cmd tea.Cmd
	sm.composer, cmd = sm.composer.Update(msg)

	if t := root.editor.ActiveTab(); t != nil {
		content := sm.composer.Value()
		if content != t.Content {
			root.editor.UpdateActiveTab(tabs.Update{Content: &content})
			sm.varNames = vars.Parse(content)
			if sm.varCursor >= len(sm.varNames) {
				sm.varCursor = 0
			}
		}
	}
	return cmd
}

func (sm *sessionModel) updateVarsNav(msg tea.KeyMsg, root *Model) tea.Cmd {
	switch msg.String() {
	case "esc":
		sm.focus = focusCommand
	case "left", "h", "up", "k":
		if sm.varCursor > 0 {
			sm.varCursor--
		}
	case "right", "l", "down", "j":
		if sm.varCursor < len(sm.varNames)-1 {
			sm.varCursor++
		}
	case "enter":
		t := root.editor.ActiveTab()
		if t == nil || sm.varCursor >= len(sm.varNames) {
			return nil
		}
		sm.focus = focusVarEdit
		sm.input.SetValue(t.VariableValues[sm.varNames[sm.varCursor]])
		sm.input.Focus()
		return textinput.Blink
	}
	return nil
}

func (sm *sessionModel) updateVarEdit(msg tea.KeyMsg, root *Model) tea.Cmd {
	switch msg.String() {
	case "esc":
		sm.focus = focusVars
		sm.input.Blur()
		return nil
	case "enter":
		sm.focus = focusVars
		sm.input.Blur()
		t := root.editor.ActiveTab()
		if t == nil || sm.varCursor >= len(sm.varNames) {
			return nil
		}
		values := make(map[string]string, len(t.VariableValues))
		for k, v := range t.VariableValues {
			values[k] = v
		}
		values[sm.varNames[sm.varCursor]] = sm.input.Value()
		root.editor.UpdateActiveTab(tabs.Update{VariableValues: values})
		return nil
	}

	var cmd tea.Cmd
	sm.input, cmd = sm.input.Update(msg)
	return cmd
}

func (sm *sessionModel) updateRename(msg tea.KeyMsg, root *Model) tea.Cmd {
	switch msg.String() {
	case "esc":
		sm.focus = focusCommand
		sm.input.Blur()
		return nil
	case "enter":
		sm.focus = focusCommand
		sm.input.Blur()
		name := strings.TrimSpace(sm.input.Value())
		if name != "" {
			root.editor.UpdateActiveTab(tabs.Update{Name: &name})
		}
		return nil
	}

	var cmd tea.Cmd
	sm.input, cmd = sm.input.Update(msg)
	return cmd
}

func (sm *sessionModel) activateNeighbor(root *Model, dir int) {
	open := root.editor.Tabs()
	active := root.editor.ActiveTab()
	if len(open) < 2 || active == nil {
		return
	}
	idx := 0
	for i, t := range open {
		if t.ID == active.ID {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(open)) % len(open)
	root.editor.SelectTab(open[idx].ID)
	sm.syncFromTab(root.editor.ActiveTab())
}

// sendActive resolves the active tab's content and sends it over the selected
// connection. JSON payloads are validated after substitution.
func (sm *sessionModel) sendActive(root *Model) tea.Cmd {
	t := root.editor.ActiveTab()
	if t == nil {
		return nil
	}
	if strings.TrimSpace(t.Content) == "" {
		root.setNotification("Nothing to send", true)
		return nil
	}

	resolved := vars.Resolve(t.Content, t.VariableValues)
	if t.Format == models.FormatJSON && !format.IsValidJSON(resolved) {
		root.setNotification("Invalid JSON after variable substitution", true)
		return nil
	}

	return sendMessage(root.manager, resolved, t.Format)
}

// saveActive writes the active tab back to its bound template, or creates a
// new template in the first collection for unbound drafts.
func (sm *sessionModel) saveActive(root *Model) tea.Cmd {
	t := root.editor.ActiveTab()
	if t == nil {
		return nil
	}

	variables := templateVariables(t)
	ctx := context.Background()

	if t.TemplateID != "" {
		coll, tmpl := root.library.FindTemplate(t.TemplateID)
		if tmpl == nil {
			// Template was deleted elsewhere; fall through to a fresh save.
			root.editor.DetachTemplate(t.TemplateID)
		} else {
			updated := root.library.UpdateTemplate(ctx, coll.ID, tmpl.ID, library.TemplateUpdate{
				Name:      &t.Name,
				Content:   &t.Content,
				Format:    &t.Format,
				Variables: variables,
			})
			if updated != nil {
				root.editor.MarkSaved(t.ID, updated)
				root.editor.RefreshFromTemplate(updated)
				root.libraryTab.refreshRows(root.library)
				root.setNotification(fmt.Sprintf("Updated template %q", updated.Name), false)
			}
			return nil
		}
	}

	colls := root.library.Collections()
	var target *models.Collection
	if len(colls) > 0 {
		target = colls[0]
	} else {
		target = root.library.AddCollection(ctx, "Saved")
	}

	tmpl := root.library.AddTemplate(ctx, target.ID, library.TemplateData{
		Name:      t.Name,
		Content:   t.Content,
		Format:    t.Format,
		Variables: variables,
	})
	if tmpl != nil {
		root.editor.MarkSaved(t.ID, tmpl)
		root.library.ExpandCollection(target.ID)
		root.libraryTab.refreshRows(root.library)
		root.setNotification(fmt.Sprintf("Saved %q to %s", tmpl.Name, target.Name), false)
	}
	return nil
}

// templateVariables snapshots the tab's variable set with current values as
// defaults.
func templateVariables(t *tabs.Tab) []models.TemplateVariable {
	names := vars.Parse(t.Content)
	variables := make([]models.TemplateVariable, 0, len(names))
	for _, name := range names {
		variables = append(variables, models.TemplateVariable{
			Name:         name,
			DefaultValue: t.VariableValues[name],
		})
	}
	return variables
}

func (sm *sessionModel) View(root *Model) string {
	var b strings.Builder

	// Editor tab bar.
	var tabCells []string
	active := root.editor.ActiveTab()
	for _, t := range root.editor.Tabs() {
		label := t.Name
		if t.Modified() {
			label += dirtyMarkStyle.Render(" ●")
		}
		if active != nil && t.ID == active.ID {
			tabCells = append(tabCells, activeEditorTabStyle.Render(label))
		} else {
			tabCells = append(tabCells, inactiveEditorTabStyle.Render(label))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Bottom, tabCells...))
	b.WriteString("\n")

	// Composer.
	b.WriteString(sm.composer.View())
	b.WriteString("\n")

	// Variables line.
	b.WriteString(sm.renderVarsLine(active))
	b.WriteString("\n")

	// Log header.
	b.WriteString(sm.renderLogHeader(root, active))
	b.WriteString("\n")

	// Message log.
	b.WriteString(sm.log.View())

	return forceHeight(b.String(), sm.width, sm.height)
}

func (sm *sessionModel) renderVarsLine(active *tabs.Tab) string {
	if sm.focus == focusRename {
		return dimStyle.Render("rename: ") + sm.input.View()
	}
	if active == nil || len(sm.varNames) == 0 {
		return dimStyle.Render("no variables")
	}

	var parts []string
	for i, name := range sm.varNames {
		value := active.VariableValues[name]
		if sm.focus == focusVarEdit && i == sm.varCursor {
			parts = append(parts, warningStyle.Render(name+"=")+sm.input.View())
			continue
		}
		cell := name + "=" + value
		if value == "" {
			cell = name + "=?"
		}
		if (sm.focus == focusVars || sm.focus == focusVarEdit) && i == sm.varCursor {
			parts = append(parts, warningStyle.Render("["+cell+"]"))
		} else if value == "" {
			parts = append(parts, errorStyle.Render(cell))
		} else {
			parts = append(parts, dimStyle.Render(cell))
		}
	}
	return strings.Join(parts, "  ")
}

func (sm *sessionModel) renderLogHeader(root *Model, active *tabs.Tab) string {
	selected := root.manager.Selected()
	target := "no connection"
	count := 0
	if selected != nil {
		target = format.TruncateURL(selected.URL, 40)
		count = len(selected.Messages)
	}

	valid := ""
	if active != nil {
		valid = dimStyle.Render(" [" + string(active.Format) + "]")
	}
	if active != nil && active.Format == models.FormatJSON {
		resolved := vars.Resolve(active.Content, active.VariableValues)
		if format.IsValidJSON(resolved) {
			valid += successStyle.Render(" ✓")
		} else {
			valid += errorStyle.Render(" ✗")
		}
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(colorPurple).
		Render(fmt.Sprintf("Messages (%d) · %s", count, target))
	return header + valid
}
