// ABOUTME: Tests for the shared state cells
// ABOUTME: Tests state naming, volume clamping and duration tracking
package audio

import (
	"errors"
	"math"
	"testing"
)

func TestPlaybackStateString(t *testing.T) {
	tests := []struct {
		state    PlaybackState
		expected string
	}{
		{StateStopped, "stopped"},
		{StatePlaying, "playing"},
		{StatePaused, "paused"},
		{StateBuffering, "buffering"},
		{PlaybackState(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}

func TestStateCell(t *testing.T) {
	c := NewStateCell()
	if c.Load() != StateStopped {
		t.Fatalf("expected initial state stopped, got %v", c.Load())
	}

	c.Store(StatePlaying)
	if prev := c.Swap(StatePaused); prev != StatePlaying {
		t.Errorf("expected previous state playing, got %v", prev)
	}
	if c.Load() != StatePaused {
		t.Errorf("expected paused, got %v", c.Load())
	}
}

func TestVolumeCellClamps(t *testing.T) {
	tests := []struct {
		name     string
		input    float32
		expected float32
	}{
		{"in range", 0.85, 0.85},
		{"above one", 1.7, 1},
		{"negative", -0.2, 0},
		{"nan", float32(math.NaN()), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewVolumeCell(tt.input)
			if got := c.Load(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestDurationCell(t *testing.T) {
	var c DurationCell
	if _, known := c.Load(); known {
		t.Fatal("expected unknown duration")
	}

	c.Store(12.5)
	dur, known := c.Load()
	if !known || dur != 12.5 {
		t.Errorf("expected 12.5 known, got %v %v", dur, known)
	}

	c.Reset()
	if _, known := c.Load(); known {
		t.Error("expected duration unknown after reset")
	}
}

func TestPositionCell(t *testing.T) {
	var c PositionCell
	c.Store(3.25)
	if got := c.Load(); got != 3.25 {
		t.Errorf("expected 3.25, got %v", got)
	}
}

func TestUnsupportedFormatIsDecodeError(t *testing.T) {
	if !errors.Is(ErrUnsupportedFormat, ErrDecode) {
		t.Error("expected ErrUnsupportedFormat to match ErrDecode")
	}
}
