package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wsup/internal/library"
	"wsup/internal/storage/models"
)

// libraryItem is one row in the flattened collection tree: either a collection
// header or a template under an expanded collection.
type libraryItem struct {
	coll *models.Collection
	tmpl *models.MessageTemplate
}

func (i libraryItem) isCollection() bool { return i.tmpl == nil }

func (i libraryItem) Title() string {
	if i.isCollection() {
		return i.coll.Name
	}
	return i.tmpl.Name
}

func (i libraryItem) FilterValue() string { return i.Title() }

// libraryItemDelegate renders each row.
type libraryItemDelegate struct{}

func (d libraryItemDelegate) Height() int                             { return 1 }
func (d libraryItemDelegate) Spacing() int                            { return 0 }
func (d libraryItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d libraryItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	li, ok := item.(libraryItem)
	if !ok {
		return
	}

	isSelected := index == m.Index()

	var line string
	if li.isCollection() {
		arrow := "▸"
		if li.coll.IsExpanded {
			arrow = "▾"
		}
		line = fmt.Sprintf("%s %s (%d)", arrow, li.coll.Name, len(li.coll.Templates))
		if isSelected {
			line = lipgloss.NewStyle().Bold(true).Foreground(colorPurple).Render("> " + line)
		} else {
			line = lipgloss.NewStyle().Foreground(colorFg).Render("  " + line)
		}
	} else {
		detail := string(li.tmpl.Format)
		if n := len(li.tmpl.Variables); n > 0 {
			detail += fmt.Sprintf(" · %d vars", n)
		}
		line = fmt.Sprintf("    %s  %s", li.tmpl.Name, dimStyle.Render(detail))
		if isSelected {
			line = lipgloss.NewStyle().Bold(true).Foreground(colorPurple).Render("> " + line)
		} else {
			line = "  " + line
		}
	}

	fmt.Fprint(w, line)
}

// libraryModel manages the template library tab.
type libraryModel struct {
	list   list.Model
	width  int
	height int

	// Name input state. editID is empty while adding a collection.
	editing bool
	editID  string
	input   textinput.Model
}

func newLibraryModel() libraryModel {
	l := list.New(nil, libraryItemDelegate{}, 0, 0)
	l.Title = "Library"
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.FilterPrompt = lipgloss.NewStyle().Foreground(colorPurple)
	l.Styles.FilterCursor = lipgloss.NewStyle().Foreground(colorPurple)

	ti := textinput.New()
	ti.CharLimit = 64
	ti.Prompt = "name> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorPurple)

	return libraryModel{list: l, input: ti}
}

func (lm *libraryModel) setSize(w, h int) {
	lm.width = w
	lm.height = h
	listH := h
	if lm.editing {
		listH = h - 2
	}
	if listH < 1 {
		listH = 1
	}
	lm.list.SetSize(w, listH)
	lm.input.Width = w / 2
}

// refreshRows flattens the collection tree into list items.
func (lm *libraryModel) refreshRows(lib *library.Store) {
	var items []list.Item
	for _, c := range lib.Collections() {
		items = append(items, libraryItem{coll: c})
		if !c.IsExpanded {
			continue
		}
		for _, t := range c.Templates {
			items = append(items, libraryItem{coll: c, tmpl: t})
		}
	}
	lm.list.SetItems(items)
}

func (lm *libraryModel) selectedItem() (libraryItem, bool) {
	item := lm.list.SelectedItem()
	if item == nil {
		return libraryItem{}, false
	}
	li, ok := item.(libraryItem)
	return li, ok
}

func (lm *libraryModel) Update(msg tea.Msg, root *Model) tea.Cmd {
	if lm.editing {
		return lm.updateEditing(msg, root)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// When filtering, pass all keys to list.
		if lm.list.FilterState() == list.Filtering {
			var cmd tea.Cmd
			lm.list, cmd = lm.list.Update(msg)
			return cmd
		}

		ctx := context.Background()

		switch {
		case key.Matches(msg, keys.Enter):
			li, ok := lm.selectedItem()
			if !ok {
				return nil
			}
			if li.isCollection() {
				root.library.ToggleCollection(li.coll.ID)
				lm.refreshRows(root.library)
				return nil
			}
			// Open the template in the session editor.
			root.editor.OpenTemplate(li.tmpl)
			root.sessionTab.syncFromTab(root.editor.ActiveTab())
			root.activeTab = tabSession
			return tea.ClearScreen

		case key.Matches(msg, keys.Add):
			lm.editing = true
			lm.editID = ""
			lm.input.SetValue("")
			lm.input.Focus()
			lm.setSize(lm.width, lm.height)
			return textinput.Blink

		case key.Matches(msg, keys.Edit):
			li, ok := lm.selectedItem()
			if ok && li.isCollection() {
				lm.editing = true
				lm.editID = li.coll.ID
				lm.input.SetValue(li.coll.Name)
				lm.input.CursorEnd()
				lm.input.Focus()
				lm.setSize(lm.width, lm.height)
				return textinput.Blink
			}

		case key.Matches(msg, keys.Remove):
			li, ok := lm.selectedItem()
			if !ok {
				return nil
			}
			if li.isCollection() {
				for _, t := range li.coll.Templates {
					root.editor.DetachTemplate(t.ID)
				}
				root.library.RemoveCollection(ctx, li.coll.ID)
				root.setNotification(fmt.Sprintf("Removed collection %q", li.coll.Name), false)
			} else {
				root.editor.DetachTemplate(li.tmpl.ID)
				root.library.RemoveTemplate(ctx, li.coll.ID, li.tmpl.ID)
				root.setNotification(fmt.Sprintf("Removed template %q", li.tmpl.Name), false)
			}
			lm.refreshRows(root.library)
			return nil

		case key.Matches(msg, keys.Search):
			var cmd tea.Cmd
			lm.list, cmd = lm.list.Update(msg)
			return cmd
		}
	}

	var cmd tea.Cmd
	lm.list, cmd = lm.list.Update(msg)
	return cmd
}

func (lm *libraryModel) updateEditing(msg tea.Msg, root *Model) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		lm.input, cmd = lm.input.Update(msg)
		return cmd
	}

	ctx := context.Background()

	switch keyMsg.String() {
	case "esc":
		lm.editing = false
		lm.input.Blur()
		lm.setSize(lm.width, lm.height)
		return nil

	case "enter":
		name := strings.TrimSpace(lm.input.Value())
		lm.editing = false
		lm.input.Blur()
		lm.setSize(lm.width, lm.height)
		if name == "" {
			return nil
		}
		if lm.editID == "" {
			root.library.AddCollection(ctx, name)
		} else {
			root.library.RenameCollection(ctx, lm.editID, name)
		}
		lm.refreshRows(root.library)
		return nil
	}

	var cmd tea.Cmd
	lm.input, cmd = lm.input.Update(msg)
	return cmd
}

func (lm *libraryModel) View() string {
	var b strings.Builder

	if lm.editing {
		b.WriteString(lm.input.View())
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("enter to confirm, esc to cancel"))
		b.WriteString("\n")
	}

	b.WriteString(lm.list.View())

	return forceHeight(b.String(), lm.width, lm.height)
}
