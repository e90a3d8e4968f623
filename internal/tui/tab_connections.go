package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wsup/internal/conn"
	"wsup/internal/probe"
	"wsup/internal/storage/models"
)

type connectionsModel struct {
	table  table.Model
	conns  []*models.Connection
	width  int
	height int

	// URL input state. editID is empty while adding a new connection.
	editing    bool
	editID     string
	input      textinput.Model
	history    []string
	historyIdx int

	// Probe state.
	probing       bool
	batchProgress progress.Model
	batchCurrent  int
	batchTotal    int
	latencies     map[string]string
}

func newConnectionsModel() connectionsModel {
	cols := []table.Column{
		{Title: "", Width: 2},
		{Title: "URL", Width: 40},
		{Title: "Status", Width: 14},
		{Title: "Msgs", Width: 6},
		{Title: "Probe", Width: 10},
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Bold(true).
		Foreground(colorPurple)
	s.Selected = s.Selected.
		Foreground(colorFg).
		Background(lipgloss.AdaptiveColor{Light: "#E8E0F0", Dark: "#2A1A3E"}).
		Bold(true)
	t.SetStyles(s)

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Prompt = "url> "
	ti.Placeholder = "wss://"
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorPurple)

	p := progress.New(
		progress.WithDefaultGradient(),
		progress.WithoutPercentage(),
	)

	return connectionsModel{
		table:         t,
		input:         ti,
		batchProgress: p,
		latencies:     make(map[string]string),
	}
}

func (cm *connectionsModel) setSize(w, h int) {
	cm.width = w
	cm.height = h
	cm.adjustTableHeight()

	// Adjust column widths proportionally.
	if w > 100 {
		cm.table.SetColumns([]table.Column{
			{Title: "", Width: 2},
			{Title: "URL", Width: w - 42},
			{Title: "Status", Width: 14},
			{Title: "Msgs", Width: 6},
			{Title: "Probe", Width: 10},
		})
	}
	cm.batchProgress.Width = w - 4
	cm.input.Width = w - 10
}

// adjustTableHeight accounts for the input row and probe indicator rendered
// above the table.
func (cm *connectionsModel) adjustTableHeight() {
	overhead := 0
	if cm.editing {
		overhead += 2
	}
	if cm.probing {
		overhead++
	}
	th := cm.height - overhead
	if th < 1 {
		th = 1
	}
	cm.table.SetHeight(th)
}

func (cm *connectionsModel) refreshRows(manager *conn.Manager) {
	cm.conns = manager.Connections()
	selectedID := manager.SelectedID()

	rows := make([]table.Row, len(cm.conns))
	for i, c := range cm.conns {
		marker := ""
		if c.ID == selectedID {
			marker = "●"
		}

		probeStr := "-"
		if lat, ok := cm.latencies[c.ID]; ok {
			probeStr = lat
		}

		rows[i] = table.Row{
			marker,
			c.URL,
			statusLabel(c),
			fmt.Sprintf("%d", len(c.Messages)),
			probeStr,
		}
	}

	cursor := cm.table.Cursor()
	cm.table.SetRows(rows)
	if cursor >= 0 && cursor < len(rows) {
		cm.table.SetCursor(cursor)
	} else {
		cm.table.GotoTop()
	}
}

func statusLabel(c *models.Connection) string {
	switch c.Status {
	case models.StatusConnected:
		return "connected"
	case models.StatusConnecting:
		return "connecting"
	case models.StatusError:
		return "error"
	default:
		return "disconnected"
	}
}

func (cm *connectionsModel) selectedConn() *models.Connection {
	idx := cm.table.Cursor()
	if idx >= 0 && idx < len(cm.conns) {
		return cm.conns[idx]
	}
	return nil
}

func (cm *connectionsModel) updateProgress(msg probeProgressMsg) {
	cm.batchCurrent = msg.current
	cm.batchTotal = msg.total
}

// setProbeResults records per-connection probe outcomes for the table.
func (cm *connectionsModel) setProbeResults(batch *probe.BatchResult) {
	for _, r := range batch.Results {
		if r.Connection.ID == "" {
			continue
		}
		if r.Reachable {
			cm.latencies[r.Connection.ID] = formatLatency(int(r.Latency.Milliseconds()))
		} else {
			cm.latencies[r.Connection.ID] = errorStyle.Render("fail")
		}
	}
}

func (cm *connectionsModel) Update(msg tea.Msg, root *Model) tea.Cmd {
	if cm.editing {
		return cm.updateEditing(msg, root)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		ctx := context.Background()

		switch {
		case key.Matches(msg, keys.Add):
			cm.startEditing(root, "", "")
			return textinput.Blink

		case key.Matches(msg, keys.Edit):
			if c := cm.selectedConn(); c != nil {
				cm.startEditing(root, c.ID, c.URL)
				return textinput.Blink
			}

		case key.Matches(msg, keys.Enter):
			if c := cm.selectedConn(); c != nil {
				root.manager.SelectConnection(ctx, c.ID)
				root.sessionTab.refreshLog(root)
			}

		case key.Matches(msg, keys.Connect):
			if c := cm.selectedConn(); c != nil {
				root.manager.Connect(c.ID)
				root.library.AddToHistory(ctx, c.URL)
				root.historyTab.refreshRows(root.library)
			}

		case key.Matches(msg, keys.Disconnect):
			if c := cm.selectedConn(); c != nil {
				root.manager.Disconnect(c.ID)
			}

		case key.Matches(msg, keys.Remove):
			if c := cm.selectedConn(); c != nil {
				root.manager.RemoveConnection(ctx, c.ID)
				delete(cm.latencies, c.ID)
				cm.refreshRows(root.manager)
			}

		case key.Matches(msg, keys.ClearLog):
			if c := cm.selectedConn(); c != nil {
				root.manager.ClearMessages(c.ID)
				cm.refreshRows(root.manager)
				root.sessionTab.refreshLog(root)
			}

		case key.Matches(msg, keys.Probe):
			if c := cm.selectedConn(); c != nil && !cm.probing {
				cm.probing = true
				cm.batchCurrent = 0
				cm.batchTotal = 1
				cm.adjustTableHeight()
				return probeSingle(c)
			}

		case key.Matches(msg, keys.ProbeAll):
			if len(cm.conns) > 0 && !cm.probing {
				cm.probing = true
				cm.batchCurrent = 0
				cm.batchTotal = len(cm.conns)
				cm.adjustTableHeight()
				return probeBatch(cm.conns, root.program)
			}
		}
	}

	var cmd tea.Cmd
	cm.table, cmd = cm.table.Update(msg)
	return cmd
}

func (cm *connectionsModel) startEditing(root *Model, id, url string) {
	cm.editing = true
	cm.editID = id
	cm.history = nil
	cm.historyIdx = -1
	for _, item := range root.library.History() {
		cm.history = append(cm.history, item.URL)
	}
	cm.input.SetValue(url)
	cm.input.CursorEnd()
	cm.input.Focus()
	cm.adjustTableHeight()
}

func (cm *connectionsModel) updateEditing(msg tea.Msg, root *Model) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		cm.input, cmd = cm.input.Update(msg)
		return cmd
	}

	ctx := context.Background()

	switch keyMsg.String() {
	case "esc":
		cm.editing = false
		cm.input.Blur()
		cm.adjustTableHeight()
		return nil

	case "enter":
		url := strings.TrimSpace(cm.input.Value())
		cm.editing = false
		cm.input.Blur()
		cm.adjustTableHeight()
		if url == "" {
			return nil
		}
		if cm.editID == "" {
			root.manager.AddConnection(ctx, url)
		} else {
			root.manager.UpdateConnectionURL(ctx, cm.editID, url)
		}
		cm.refreshRows(root.manager)
		return nil

	// Cycle recent URLs into the input.
	case "up":
		if len(cm.history) > 0 {
			cm.historyIdx = (cm.historyIdx + 1) % len(cm.history)
			cm.input.SetValue(cm.history[cm.historyIdx])
			cm.input.CursorEnd()
		}
		return nil
	case "down":
		if len(cm.history) > 0 && cm.historyIdx >= 0 {
			cm.historyIdx = (cm.historyIdx - 1 + len(cm.history)) % len(cm.history)
			cm.input.SetValue(cm.history[cm.historyIdx])
			cm.input.CursorEnd()
		}
		return nil
	}

	var cmd tea.Cmd
	cm.input, cmd = cm.input.Update(msg)
	return cmd
}

func (cm *connectionsModel) View(s spinner.Model) string {
	var b strings.Builder

	if cm.editing {
		b.WriteString(cm.input.View())
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("enter to confirm, esc to cancel, up/down for recent URLs"))
		b.WriteString("\n")
	}

	if cm.probing {
		pct := 0.0
		if cm.batchTotal > 0 {
			pct = float64(cm.batchCurrent) / float64(cm.batchTotal)
		}
		b.WriteString(fmt.Sprintf("%s Probing %d/%d ", s.View(), cm.batchCurrent, cm.batchTotal))
		b.WriteString(cm.batchProgress.ViewAs(pct))
		b.WriteString("\n")
	}

	b.WriteString(cm.table.View())

	return forceHeight(b.String(), cm.width, cm.height)
}

// Color the latency cell in the rendered view.
func formatLatency(ms int) string {
	return latencyStyle(ms).Render(fmt.Sprintf("%dms", ms))
}
