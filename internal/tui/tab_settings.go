package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var themeChoices = []string{"system", "dark", "light"}

// settingsModel manages the settings tab: the persisted theme preference plus
// read-only application info.
type settingsModel struct {
	width  int
	height int
}

func newSettingsModel() settingsModel {
	return settingsModel{}
}

func (sm *settingsModel) setSize(w, h int) {
	sm.width = w
	sm.height = h
}

func themeIndex(theme string) int {
	for i, c := range themeChoices {
		if c == theme {
			return i
		}
	}
	return 0
}

func (sm *settingsModel) Update(msg tea.Msg, root *Model) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "enter", "right", "l":
		idx := (themeIndex(root.theme) + 1) % len(themeChoices)
		return saveTheme(root.store, themeChoices[idx])
	case "left", "h":
		idx := (themeIndex(root.theme) - 1 + len(themeChoices)) % len(themeChoices)
		return saveTheme(root.store, themeChoices[idx])
	}
	return nil
}

func (sm *settingsModel) View(root *Model) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	label := lipgloss.NewStyle().Bold(true).Foreground(colorPurple).Width(14).Render("> Theme")
	b.WriteString(label + renderThemeChoices(root.theme) + "\n")
	b.WriteString(dimStyle.Render("    Terminal color scheme  (enter/arrows to change)"))
	b.WriteString("\n\n")

	info := func(k, v string) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%-14s", k)) + v + "\n")
	}
	info("Version", root.version)
	info("Collections", fmt.Sprintf("%d", len(root.library.Collections())))
	info("Connections", fmt.Sprintf("%d", len(root.manager.Connections())))

	return forceHeight(b.String(), sm.width, sm.height)
}

func renderThemeChoices(current string) string {
	var parts []string
	for _, c := range themeChoices {
		if c == current {
			parts = append(parts, lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPurple).
				Render("["+c+"]"))
		} else {
			parts = append(parts, lipgloss.NewStyle().
				Foreground(colorDimFg).
				Render(" "+c+" "))
		}
	}
	return strings.Join(parts, " ")
}
