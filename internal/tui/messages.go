package tui

import (
	"wsup/internal/conn"
	"wsup/internal/probe"
)

// Connection manager events, bridged into the bubbletea loop.

type connEventMsg struct {
	event conn.Event
}

// Send messages.

type sendResultMsg struct {
	err error
}

// Probe messages.

type probeProgressMsg struct {
	result  *probe.Result
	current int
	total   int
}

type probeDoneMsg struct {
	batch *probe.BatchResult
}

// Settings messages.

type themeLoadedMsg struct {
	value string
}

type themeSavedMsg struct {
	value string
	err   error
}

// Notification message.

type clearNotificationMsg struct {
	version int
}
