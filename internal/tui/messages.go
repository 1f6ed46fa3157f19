package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// SwitchScreenMsg requests a screen change
type SwitchScreenMsg struct {
	Screen Screen
}

// RefreshDataMsg requests data refresh
type RefreshDataMsg struct{}

type notifyKind int

const (
	notifySuccess notifyKind = iota
	notifyError
)

// NotifyMsg shows a toast under the current screen
type NotifyMsg struct {
	Kind notifyKind
	Text string
}

// clearNotifyMsg hides the toast with the same sequence number
type clearNotifyMsg struct {
	seq int
}

func notify(kind notifyKind, text string) tea.Cmd {
	return func() tea.Msg { return NotifyMsg{Kind: kind, Text: text} }
}

// defaults when the config leaves UI timings unset
const (
	defaultDebounce = 300 * time.Millisecond
	defaultToast    = 4 * time.Second
)
