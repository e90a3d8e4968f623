package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"wsup/internal/conn"
	"wsup/internal/probe"
	"wsup/internal/storage"
	"wsup/internal/storage/models"
)

// sendMessage sends the resolved payload over the selected connection.
func sendMessage(manager *conn.Manager, content string, msgFormat models.MessageFormat) tea.Cmd {
	return func() tea.Msg {
		err := manager.Send(content, msgFormat)
		return sendResultMsg{err: err}
	}
}

// probeBatch probes all saved endpoints with progress reporting via program.Send.
func probeBatch(conns []*models.Connection, p *tea.Program) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		prober := probe.New(probe.Config{Workers: 5, Timeout: 5 * time.Second})

		progress := func(result *probe.Result, current, total int) {
			p.Send(probeProgressMsg{result: result, current: current, total: total})
		}

		batch := prober.Batch(ctx, conns, progress)
		return probeDoneMsg{batch: batch}
	}
}

// probeSingle probes one endpoint without progress reporting.
func probeSingle(c *models.Connection) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		prober := probe.New(probe.Config{Timeout: 5 * time.Second})
		result := prober.Single(ctx, c)
		return probeDoneMsg{batch: &probe.BatchResult{
			Results:   []*probe.Result{result},
			Probed:    1,
			Reachable: boolToInt(result.Reachable),
			Failed:    boolToInt(!result.Reachable),
		}}
	}
}

// loadTheme reads the persisted theme preference.
func loadTheme(store storage.Store) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		value, err := store.GetItem(ctx, storage.KeyTheme)
		if err != nil {
			return themeLoadedMsg{value: "system"}
		}
		return themeLoadedMsg{value: value}
	}
}

// saveTheme persists the theme preference.
func saveTheme(store storage.Store, value string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		err := store.SetItem(ctx, storage.KeyTheme, value)
		return themeSavedMsg{value: value, err: err}
	}
}

// clearNotification returns a command that fires after a delay.
func clearNotification(d time.Duration, version int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearNotificationMsg{version: version}
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
