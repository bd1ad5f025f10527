// ABOUTME: Commands accepted by the engine and events it emits
// ABOUTME: Plain value types carried over the engine's queues
package engine

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/monad-player/monad-go/pkg/audio"
)

// CommandKind identifies a command
type CommandKind int

const (
	CmdPlay CommandKind = iota
	CmdPause
	CmdStop
	CmdSeek
	CmdSetVolume
	CmdLoadURL
	CmdLoadData
	CmdShutdown
)

// String returns the command name
func (k CommandKind) String() string {
	switch k {
	case CmdPlay:
		return "play"
	case CmdPause:
		return "pause"
	case CmdStop:
		return "stop"
	case CmdSeek:
		return "seek"
	case CmdSetVolume:
		return "set_volume"
	case CmdLoadURL:
		return "load_url"
	case CmdLoadData:
		return "load_data"
	case CmdShutdown:
		return "shutdown"
	default:
		return fmt.Sprintf("command(%d)", int(k))
	}
}

// Command is one request to the worker. Only the fields for Kind are used.
type Command struct {
	Kind CommandKind

	// Position in seconds for CmdSeek
	Position float64

	// Volume in [0, 1] for CmdSetVolume
	Volume float32

	// URL and optional request headers for CmdLoadURL
	URL     string
	Headers map[string]string

	// Data and optional MIME hint for CmdLoadData
	Data []byte
	MIME string
}

// EventKind identifies an event
type EventKind int

const (
	EventStateChanged EventKind = iota
	EventPositionUpdate
	EventDurationUpdate
	EventBufferingProgress
	EventTrackLoaded
	EventPlaybackFinished
	EventError
)

// String returns the event name
func (k EventKind) String() string {
	switch k {
	case EventStateChanged:
		return "state_changed"
	case EventPositionUpdate:
		return "position_update"
	case EventDurationUpdate:
		return "duration_update"
	case EventBufferingProgress:
		return "buffering_progress"
	case EventTrackLoaded:
		return "track_loaded"
	case EventPlaybackFinished:
		return "playback_finished"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is one notification from the worker. Only the fields for Kind are set.
type Event struct {
	Kind EventKind

	// State for EventStateChanged
	State audio.PlaybackState

	// Position in seconds for EventPositionUpdate
	Position float64

	// Duration in seconds for EventDurationUpdate
	Duration float64

	// Progress in [0, 1] for EventBufferingProgress
	Progress float32

	// Session identifies the load for EventTrackLoaded
	Session uuid.UUID

	// Message and Err for EventError
	Message string
	Err     error
}

// String formats the event for logs
func (e Event) String() string {
	switch e.Kind {
	case EventStateChanged:
		return fmt.Sprintf("%s(%s)", e.Kind, e.State)
	case EventPositionUpdate:
		return fmt.Sprintf("%s(%.2f)", e.Kind, e.Position)
	case EventDurationUpdate:
		return fmt.Sprintf("%s(%.2f)", e.Kind, e.Duration)
	case EventBufferingProgress:
		return fmt.Sprintf("%s(%.2f)", e.Kind, e.Progress)
	case EventTrackLoaded:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Session)
	case EventError:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Message)
	default:
		return e.Kind.String()
	}
}
