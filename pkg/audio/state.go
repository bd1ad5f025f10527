// ABOUTME: Shared playback state cells
// ABOUTME: Atomic state and volume for the audio callback, locked position and duration for readers
package audio

import (
	"math"
	"sync"
	"sync/atomic"
)

// PlaybackState is the engine's transport state
type PlaybackState int32

const (
	StateStopped PlaybackState = iota
	StatePlaying
	StatePaused
	StateBuffering
)

// String returns the state name
func (s PlaybackState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateBuffering:
		return "buffering"
	default:
		return "unknown"
	}
}

// StateCell holds the playback state. Safe to read from the audio callback.
type StateCell struct {
	v atomic.Int32
}

// NewStateCell creates a cell holding StateStopped
func NewStateCell() *StateCell {
	return &StateCell{}
}

// Load returns the current state
func (c *StateCell) Load() PlaybackState {
	return PlaybackState(c.v.Load())
}

// Store sets the state
func (c *StateCell) Store(s PlaybackState) {
	c.v.Store(int32(s))
}

// Swap sets the state and returns the previous one
func (c *StateCell) Swap(s PlaybackState) PlaybackState {
	return PlaybackState(c.v.Swap(int32(s)))
}

// VolumeCell holds a linear gain in [0, 1] as float32 bits
type VolumeCell struct {
	bits atomic.Uint32
}

// NewVolumeCell creates a cell holding the clamped gain
func NewVolumeCell(v float32) *VolumeCell {
	c := &VolumeCell{}
	c.Store(v)
	return c
}

// Load returns the gain
func (c *VolumeCell) Load() float32 {
	return math.Float32frombits(c.bits.Load())
}

// Store clamps v to [0, 1] and stores it
func (c *VolumeCell) Store(v float32) {
	c.bits.Store(math.Float32bits(ClampVolume(v)))
}

// ClampVolume limits v to [0, 1]; NaN becomes 0
func ClampVolume(v float32) float32 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// PositionCell holds the playback position in seconds
type PositionCell struct {
	mu  sync.RWMutex
	pos float64
}

// Load returns the position
func (c *PositionCell) Load() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pos
}

// Store sets the position
func (c *PositionCell) Store(pos float64) {
	c.mu.Lock()
	c.pos = pos
	c.mu.Unlock()
}

// DurationCell holds the track duration once it is known
type DurationCell struct {
	mu    sync.RWMutex
	dur   float64
	known bool
}

// Load returns the duration and whether it is known
func (c *DurationCell) Load() (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dur, c.known
}

// Store records a known duration
func (c *DurationCell) Store(dur float64) {
	c.mu.Lock()
	c.dur = dur
	c.known = true
	c.mu.Unlock()
}

// Reset marks the duration unknown
func (c *DurationCell) Reset() {
	c.mu.Lock()
	c.dur = 0
	c.known = false
	c.mu.Unlock()
}
