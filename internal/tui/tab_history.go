package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wsup/internal/format"
	"wsup/internal/library"
	"wsup/internal/storage/models"
)

// historyModel shows recently used endpoint URLs, most recent first.
type historyModel struct {
	items  []models.HistoryItem
	cursor int
	width  int
	height int
}

func newHistoryModel() historyModel {
	return historyModel{}
}

func (hm *historyModel) setSize(w, h int) {
	hm.width = w
	hm.height = h
}

func (hm *historyModel) refreshRows(lib *library.Store) {
	hm.items = lib.History()
	if hm.cursor >= len(hm.items) {
		hm.cursor = 0
	}
}

func (hm *historyModel) selected() *models.HistoryItem {
	if hm.cursor >= 0 && hm.cursor < len(hm.items) {
		return &hm.items[hm.cursor]
	}
	return nil
}

func (hm *historyModel) Update(msg tea.Msg, root *Model) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	ctx := context.Background()

	switch {
	case keyMsg.String() == "up" || keyMsg.String() == "k":
		if hm.cursor > 0 {
			hm.cursor--
		}

	case keyMsg.String() == "down" || keyMsg.String() == "j":
		if hm.cursor < len(hm.items)-1 {
			hm.cursor++
		}

	case key.Matches(keyMsg, keys.Enter):
		if item := hm.selected(); item != nil {
			root.manager.AddConnection(ctx, item.URL)
			root.connectionsTab.refreshRows(root.manager)
			root.activeTab = tabConnections
			return tea.ClearScreen
		}

	case key.Matches(keyMsg, keys.Connect):
		if item := hm.selected(); item != nil {
			id := root.manager.AddConnection(ctx, item.URL)
			root.manager.Connect(id)
			root.library.AddToHistory(ctx, item.URL)
			hm.refreshRows(root.library)
			root.connectionsTab.refreshRows(root.manager)
			root.activeTab = tabConnections
			return tea.ClearScreen
		}

	case key.Matches(keyMsg, keys.Remove):
		root.library.ClearHistory(ctx)
		hm.refreshRows(root.library)
		root.setNotification("History cleared", false)
	}

	return nil
}

func (hm *historyModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("History"))
	b.WriteString("\n\n")

	if len(hm.items) == 0 {
		b.WriteString(dimStyle.Render("No recent URLs."))
		return forceHeight(b.String(), hm.width, hm.height)
	}

	for i, item := range hm.items {
		when := format.RelativeTime(item.LastUsed)
		var line string
		if i == hm.cursor {
			line = lipgloss.NewStyle().Bold(true).Foreground(colorPurple).
				Render(fmt.Sprintf("> %s", item.URL))
		} else {
			line = lipgloss.NewStyle().Foreground(colorFg).
				Render(fmt.Sprintf("  %s", item.URL))
		}
		b.WriteString(line + "  " + dimStyle.Render(when) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter to save connection, c to connect, x to clear"))

	return forceHeight(b.String(), hm.width, hm.height)
}
