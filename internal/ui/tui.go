// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program and the channels that carry key actions out
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ActionKind identifies a transport action requested from the keyboard
type ActionKind int

const (
	ActionTogglePlay ActionKind = iota
	ActionStop
	ActionSeek
	ActionVolume
	ActionNext
)

// Action is one key-driven request. Delta is seconds for ActionSeek and a
// fraction for ActionVolume.
type Action struct {
	Kind  ActionKind
	Delta float64
}

// QuitMsg signals that the user asked to quit
type QuitMsg struct{}

// Controls holds channels for communication from the TUI to the player
type Controls struct {
	Actions chan Action
	Quit    chan QuitMsg
}

// NewControls creates a new control handler
func NewControls() *Controls {
	return &Controls{
		Actions: make(chan Action, 16),
		Quit:    make(chan QuitMsg, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(ctrl *Controls) Model {
	return Model{
		state:    "stopped",
		volume:   85,
		controls: ctrl,
	}
}

// Run creates the TUI program; the caller starts it
func Run(ctrl *Controls) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(ctrl), tea.WithAltScreen())
	return p, nil
}
