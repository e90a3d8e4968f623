package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wsup/internal/conn"
	"wsup/internal/library"
	"wsup/internal/storage"
	"wsup/internal/storage/models"
	"wsup/internal/tabs"
)

// Tab indices.
const (
	tabSession     = 0
	tabConnections = 1
	tabLibrary     = 2
	tabHistory     = 3
	tabSettings    = 4
	tabCount       = 5
)

// Model is the root BubbleTea model.
type Model struct {
	// Dependencies.
	store   storage.Store
	library *library.Store
	manager *conn.Manager
	editor  *tabs.Manager
	program *tea.Program
	version string

	// Dimensions.
	width  int
	height int

	// Navigation.
	activeTab int
	showHelp  bool

	// Theme preference.
	theme string

	// Tab models.
	sessionTab     sessionModel
	connectionsTab connectionsModel
	libraryTab     libraryModel
	historyTab     historyModel
	settingsTab    settingsModel

	// Notification.
	notification    string
	notificationErr bool
	notifVersion    int

	// Spinner for async operations.
	spinner spinner.Model
}

// Deps holds all dependencies injected into the TUI.
type Deps struct {
	Storage     storage.Store
	Library     *library.Store
	Connections *conn.Manager
	Version     string
}

// NewModel creates a new root Model.
func NewModel(deps Deps) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	m := &Model{
		store:          deps.Storage,
		library:        deps.Library,
		manager:        deps.Connections,
		editor:         tabs.NewManager(),
		version:        deps.Version,
		activeTab:      tabSession,
		theme:          "system",
		spinner:        s,
		sessionTab:     newSessionModel(),
		connectionsTab: newConnectionsModel(),
		libraryTab:     newLibraryModel(),
		historyTab:     newHistoryModel(),
		settingsTab:    newSettingsModel(),
	}
	m.connectionsTab.refreshRows(deps.Connections)
	m.libraryTab.refreshRows(deps.Library)
	m.historyTab.refreshRows(deps.Library)
	m.sessionTab.syncFromTab(m.editor.ActiveTab())
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		loadTheme(m.store),
		m.sessionTab.editorInit(),
		m.spinner.Tick,
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	prevNotifVersion := m.notifVersion

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		ch := m.contentHeight()
		m.sessionTab.setSize(msg.Width, ch)
		m.connectionsTab.setSize(msg.Width, ch)
		m.libraryTab.setSize(msg.Width, ch)
		m.historyTab.setSize(msg.Width, ch)
		m.settingsTab.setSize(msg.Width, ch)
		m.sessionTab.refreshLog(m)
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}

	// Connection manager events.
	case connEventMsg:
		switch msg.event.Type {
		case conn.EventStatusChanged:
			if c := m.manager.Get(msg.event.ConnectionID); c != nil {
				switch c.Status {
				case models.StatusError:
					m.setNotification(c.Error, true)
				case models.StatusConnected:
					m.setNotification(fmt.Sprintf("Connected to %s", c.URL), false)
				}
			}
		case conn.EventMessageAdded:
			if msg.event.ConnectionID == m.manager.SelectedID() {
				m.sessionTab.refreshLog(m)
			}
		case conn.EventSelectionChanged:
			m.sessionTab.refreshLog(m)
		}
		m.connectionsTab.refreshRows(m.manager)

	// Message sending.
	case sendResultMsg:
		if msg.err != nil {
			m.setNotification(fmt.Sprintf("Send failed: %v", msg.err), true)
		}

	// Probing.
	case probeProgressMsg:
		m.connectionsTab.updateProgress(msg)
	case probeDoneMsg:
		m.connectionsTab.probing = false
		m.connectionsTab.adjustTableHeight()
		m.setNotification(
			fmt.Sprintf("Probed %d: %d reachable, %d failed",
				msg.batch.Probed, msg.batch.Reachable, msg.batch.Failed), false)
		m.connectionsTab.setProbeResults(msg.batch)

	// Theme.
	case themeLoadedMsg:
		m.theme = msg.value
		applyTheme(msg.value)
	case themeSavedMsg:
		if msg.err != nil {
			m.setNotification(fmt.Sprintf("Save failed: %v", msg.err), true)
		} else {
			m.theme = msg.value
			applyTheme(msg.value)
			m.setNotification(fmt.Sprintf("Theme: %s", msg.value), false)
		}

	// Notification.
	case clearNotificationMsg:
		if msg.version == m.notifVersion {
			m.notification = ""
			m.notificationErr = false
		}
	}

	// Spinner.
	if m.connectionsTab.probing || m.anyConnecting() {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Schedule notification auto-clear when a new notification was set.
	if m.notifVersion > prevNotifVersion && m.notification != "" {
		cmds = append(cmds, clearNotification(4*time.Second, m.notifVersion))
	}

	// Delegate to active tab.
	switch m.activeTab {
	case tabSession:
		cmds = append(cmds, m.sessionTab.Update(msg, m))
	case tabConnections:
		cmds = append(cmds, m.connectionsTab.Update(msg, m))
	case tabLibrary:
		cmds = append(cmds, m.libraryTab.Update(msg, m))
	case tabHistory:
		cmds = append(cmds, m.historyTab.Update(msg, m))
	case tabSettings:
		cmds = append(cmds, m.settingsTab.Update(msg, m))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := renderHeader(m.activeTab, m.manager.Selected(), m.width)

	var content string
	switch m.activeTab {
	case tabSession:
		content = m.sessionTab.View(m)
	case tabConnections:
		content = m.connectionsTab.View(m.spinner)
	case tabLibrary:
		content = m.libraryTab.View()
	case tabHistory:
		content = m.historyTab.View()
	case tabSettings:
		content = m.settingsTab.View(m)
	}

	var notif string
	if m.notification != "" {
		if m.notificationErr {
			notif = notifErrorStyle.Render("! " + m.notification)
		} else {
			notif = notifSuccessStyle.Render("* " + m.notification)
		}
		// The notification takes one line from the content so the
		// footer is not pushed off screen.
		content = forceHeight(content, m.width, max(m.contentHeight()-1, 1))
	}

	helpText := renderHelpBar(m.showHelp)
	footer := renderFooter(helpText, m.width)

	parts := []string{header}
	if notif != "" {
		parts = append(parts, notif)
	}
	parts = append(parts, content, footer)
	output := lipgloss.JoinVertical(lipgloss.Left, parts...)

	// Force exactly m.height lines to prevent BubbleTea rendering drift.
	return forceHeight(output, m.width, m.height)
}

// forceHeight ensures the string has exactly `height` lines, each padded to `width`.
// This prevents BubbleTea from leaving ghost lines when switching tabs.
func forceHeight(s string, width, height int) string {
	lines := strings.Split(s, "\n")
	// Truncate excess lines.
	if len(lines) > height {
		lines = lines[:height]
	}
	// Pad missing lines with blank space.
	blank := strings.Repeat(" ", width)
	for len(lines) < height {
		lines = append(lines, blank)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) contentHeight() int {
	overhead := 5
	if m.showHelp {
		overhead += 4
	}
	h := m.height - overhead
	if h < 1 {
		h = 1
	}
	return h
}

// typing reports whether a text input currently captures keystrokes, in which
// case global single-letter bindings must not fire.
func (m *Model) typing() bool {
	switch m.activeTab {
	case tabSession:
		return m.sessionTab.typing()
	case tabConnections:
		return m.connectionsTab.editing
	case tabLibrary:
		return m.libraryTab.editing
	}
	return false
}

func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.typing() {
		// Only ctrl+c quits while an input is focused.
		if msg.String() == "ctrl+c" {
			return tea.Quit, true
		}
		return nil, false
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit, true

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		ch := m.contentHeight()
		m.sessionTab.setSize(m.width, ch)
		m.connectionsTab.setSize(m.width, ch)
		m.libraryTab.setSize(m.width, ch)
		m.historyTab.setSize(m.width, ch)
		m.settingsTab.setSize(m.width, ch)
		return nil, true

	case key.Matches(msg, keys.TabNext):
		m.activeTab = (m.activeTab + 1) % tabCount
		return nil, true

	case key.Matches(msg, keys.TabPrev):
		m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		return nil, true
	}

	return nil, false
}

func (m *Model) anyConnecting() bool {
	for _, c := range m.manager.Connections() {
		if c.Status == models.StatusConnecting {
			return true
		}
	}
	return false
}

func (m *Model) setNotification(text string, isErr bool) {
	m.notification = text
	m.notificationErr = isErr
	m.notifVersion++
}

// applyTheme forces background detection for explicit themes; "system" keeps
// terminal autodetection.
func applyTheme(theme string) {
	switch theme {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}
}

// NewProgram creates a bubbletea program with alt screen and bridges
// connection manager events into the update loop.
func NewProgram(deps Deps) *tea.Program {
	m := NewModel(deps)
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.program = p
	deps.Connections.Subscribe(func(ev conn.Event) {
		go p.Send(connEventMsg{event: ev})
	})
	return p
}
