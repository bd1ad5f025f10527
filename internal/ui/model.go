// ABOUTME: Bubbletea model for player TUI
// ABOUTME: Defines playback display state and key handling
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	seekStep   = 5.0
	volumeStep = 0.05
)

// Model represents the TUI state
type Model struct {
	// Track
	title  string
	track  int
	tracks int

	// Playback
	state         string
	position      float64
	duration      float64
	durationKnown bool
	volume        int

	// Output
	device     string
	bufferFill float32
	underruns  uint64

	lastError string

	controls *Controls

	// Dimensions
	width  int
	height int
}

// StatusMsg updates TUI state. Zero fields leave the current value alone,
// except Position which is always applied.
type StatusMsg struct {
	Title         string
	Track         int
	Tracks        int
	State         string
	Position      float64
	Duration      float64
	DurationKnown bool
	Volume        int
	Device        string
	BufferFill    float32
	Underruns     uint64
	Error         string
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderTrack()
	s += m.renderControls()
	s += m.renderHelp()

	return s
}

// renderHeader renders the output device and state
func (m Model) renderHeader() string {
	device := m.device
	if device == "" {
		device = "(no device)"
	}

	return fmt.Sprintf(`┌─ Monad Player ───────────────────────────────────────┐
│ Output: %-44s │
│ State:  %-44s │
├──────────────────────────────────────────────────────┤
`, truncate(device, 44), m.state)
}

// renderTrack renders the current track and progress
func (m Model) renderTrack() string {
	if m.title == "" {
		return "│ No track                                             │\n"
	}

	s := fmt.Sprintf("│ Track %d/%d: %-40s │\n", m.track, m.tracks, truncate(m.title, 40))

	total := "--:--"
	bar := renderBar(0, 1, 30)
	if m.durationKnown {
		total = formatTime(m.duration)
		if m.duration > 0 {
			bar = renderBar(int(m.position*1000), int(m.duration*1000), 30)
		}
	}
	s += fmt.Sprintf("│ [%s] %s / %-8s │\n", bar, formatTime(m.position), total)

	if m.lastError != "" {
		s += fmt.Sprintf("│ Error: %-45s │\n", truncate(m.lastError, 45))
	}
	return s
}

// renderControls renders volume and buffer status
func (m Model) renderControls() string {
	return fmt.Sprintf("│                                                      │\n"+
		"│ Volume: [%s] %3d%%%-23s │\n"+
		"│ Buffer: [%s] %3d%%  underruns: %-9d │\n",
		renderBar(m.volume, 100, 10), m.volume, "",
		renderBar(int(m.bufferFill*100), 100, 10), int(m.bufferFill*100), m.underruns)
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `├──────────────────────────────────────────────────────┤
│ space:Play/Pause s:Stop ←/→:Seek ↑/↓:Volume n:Next q │
└──────────────────────────────────────────────────────┘
`
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.controls != nil {
			select {
			case m.controls.Quit <- QuitMsg{}:
			default:
			}
		}
		return m, tea.Quit
	case " ", "space":
		m.send(Action{Kind: ActionTogglePlay})
	case "s":
		m.send(Action{Kind: ActionStop})
	case "left":
		m.send(Action{Kind: ActionSeek, Delta: -seekStep})
	case "right":
		m.send(Action{Kind: ActionSeek, Delta: seekStep})
	case "up":
		if m.volume < 100 {
			m.volume += 5
			if m.volume > 100 {
				m.volume = 100
			}
		}
		m.send(Action{Kind: ActionVolume, Delta: volumeStep})
	case "down":
		if m.volume > 0 {
			m.volume -= 5
			if m.volume < 0 {
				m.volume = 0
			}
		}
		m.send(Action{Kind: ActionVolume, Delta: -volumeStep})
	case "n":
		m.send(Action{Kind: ActionNext})
	}

	return m, nil
}

// send forwards an action without blocking the UI
func (m Model) send(a Action) {
	if m.controls == nil {
		return
	}
	select {
	case m.controls.Actions <- a:
	default:
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Title != "" {
		m.title = msg.Title
		m.track = msg.Track
		m.tracks = msg.Tracks
		m.lastError = ""
	}
	if msg.State != "" {
		m.state = msg.State
	}
	m.position = msg.Position
	if msg.DurationKnown {
		m.duration = msg.Duration
		m.durationKnown = true
	}
	if msg.Volume != 0 {
		m.volume = msg.Volume
	}
	if msg.Device != "" {
		m.device = msg.Device
	}
	m.bufferFill = msg.BufferFill
	if msg.Underruns != 0 {
		m.underruns = msg.Underruns
	}
	if msg.Error != "" {
		m.lastError = msg.Error
	}
}

// Utility functions
func renderBar(value, max, width int) string {
	if max <= 0 {
		return strings.Repeat("░", width)
	}
	filled := (value * width) / max
	if filled > width {
		filled = width
	}
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

// formatTime renders seconds as m:ss
func formatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
