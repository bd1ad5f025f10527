// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests status updates, key actions and rendering helpers
package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewModel(t *testing.T) {
	model := NewModel(nil) // Controls are optional for testing

	if model.state != "stopped" {
		t.Errorf("expected initial state 'stopped', got '%s'", model.state)
	}

	if model.volume != 85 {
		t.Errorf("expected default volume 85, got %d", model.volume)
	}

	if model.title != "" {
		t.Error("expected no track initially")
	}
}

func TestStatusMsgTrack(t *testing.T) {
	model := NewModel(nil)

	model.applyStatus(StatusMsg{Title: "song.mp3", Track: 2, Tracks: 5})

	if model.title != "song.mp3" {
		t.Errorf("expected title 'song.mp3', got '%s'", model.title)
	}
	if model.track != 2 || model.tracks != 5 {
		t.Errorf("expected track 2/5, got %d/%d", model.track, model.tracks)
	}
}

func TestStatusMsgPlayback(t *testing.T) {
	model := NewModel(nil)

	model.applyStatus(StatusMsg{
		State:         "playing",
		Position:      12.5,
		Duration:      180,
		DurationKnown: true,
	})

	if model.state != "playing" {
		t.Errorf("expected state 'playing', got '%s'", model.state)
	}
	if model.position != 12.5 {
		t.Errorf("expected position 12.5, got %v", model.position)
	}
	if !model.durationKnown || model.duration != 180 {
		t.Errorf("expected duration 180, got %v (known=%v)", model.duration, model.durationKnown)
	}

	// Later updates without a duration keep the known one
	model.applyStatus(StatusMsg{Position: 13})
	if !model.durationKnown || model.duration != 180 {
		t.Error("duration lost on position-only update")
	}
}

func TestStatusMsgErrorClearedByNewTrack(t *testing.T) {
	model := NewModel(nil)

	model.applyStatus(StatusMsg{Error: "Failed to decode"})
	if model.lastError != "Failed to decode" {
		t.Errorf("expected error to be shown, got '%s'", model.lastError)
	}

	model.applyStatus(StatusMsg{Title: "next.flac", Track: 2, Tracks: 2})
	if model.lastError != "" {
		t.Errorf("expected error cleared on new track, got '%s'", model.lastError)
	}
}

func TestKeyActions(t *testing.T) {
	tests := []struct {
		name     string
		key      tea.KeyMsg
		expected Action
	}{
		{"space toggles", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, Action{Kind: ActionTogglePlay}},
		{"s stops", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}}, Action{Kind: ActionStop}},
		{"left seeks back", tea.KeyMsg{Type: tea.KeyLeft}, Action{Kind: ActionSeek, Delta: -5}},
		{"right seeks forward", tea.KeyMsg{Type: tea.KeyRight}, Action{Kind: ActionSeek, Delta: 5}},
		{"up raises volume", tea.KeyMsg{Type: tea.KeyUp}, Action{Kind: ActionVolume, Delta: 0.05}},
		{"down lowers volume", tea.KeyMsg{Type: tea.KeyDown}, Action{Kind: ActionVolume, Delta: -0.05}},
		{"n skips", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}}, Action{Kind: ActionNext}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewControls()
			model := NewModel(ctrl)

			model.handleKey(tt.key)

			select {
			case got := <-ctrl.Actions:
				if got != tt.expected {
					t.Errorf("expected %+v, got %+v", tt.expected, got)
				}
			default:
				t.Fatal("expected an action")
			}
		})
	}
}

func TestVolumeKeysClamp(t *testing.T) {
	model := NewModel(nil)
	model.volume = 98

	updated, _ := model.handleKey(tea.KeyMsg{Type: tea.KeyUp})
	m := updated.(Model)
	if m.volume != 100 {
		t.Errorf("expected volume clamped to 100, got %d", m.volume)
	}

	m.volume = 3
	updated, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(Model)
	if m.volume != 0 {
		t.Errorf("expected volume clamped to 0, got %d", m.volume)
	}
}

func TestQuitKey(t *testing.T) {
	ctrl := NewControls()
	model := NewModel(ctrl)

	_, cmd := model.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}

	select {
	case <-ctrl.Quit:
	default:
		t.Error("expected quit signal on controls")
	}
}

func TestViewRendersTrack(t *testing.T) {
	model := NewModel(nil)
	model.width = 80
	model.applyStatus(StatusMsg{
		Title:         "track.ogg",
		Track:         1,
		Tracks:        3,
		State:         "playing",
		Position:      65,
		Duration:      200,
		DurationKnown: true,
		Device:        "Built-in Output",
	})

	view := model.View()
	for _, want := range []string{"track.ogg", "1:05", "3:20", "Built-in Output", "playing"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestViewBeforeResize(t *testing.T) {
	if got := NewModel(nil).View(); got != "Loading..." {
		t.Errorf("expected loading screen, got %q", got)
	}
}

func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input    string
		length   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a long string", 10, "this is..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.length); got != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, expected %q", tt.input, tt.length, got, tt.expected)
		}
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "0:00"},
		{59.9, "0:59"},
		{60, "1:00"},
		{3725, "62:05"},
		{-3, "0:00"},
	}

	for _, tt := range tests {
		if got := formatTime(tt.seconds); got != tt.expected {
			t.Errorf("formatTime(%v) = %q, expected %q", tt.seconds, got, tt.expected)
		}
	}
}

func TestRenderBar(t *testing.T) {
	if got := renderBar(5, 10, 10); got != "█████░░░░░" {
		t.Errorf("unexpected half bar %q", got)
	}
	if got := renderBar(20, 10, 4); got != "████" {
		t.Errorf("expected overfull bar to clamp, got %q", got)
	}
	if got := renderBar(1, 0, 3); got != "░░░" {
		t.Errorf("expected empty bar for zero max, got %q", got)
	}
}
