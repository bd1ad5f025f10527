// ABOUTME: Sentinel errors for the playback engine
// ABOUTME: Wrapped with context by producers and matched with errors.Is by callers
package audio

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode reports that a payload could not be turned into PCM
	ErrDecode = errors.New("decode error")

	// ErrUnsupportedFormat reports a payload the chosen decoder does not handle
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported format", ErrDecode)

	// ErrOutput reports an audio device that could not be opened or driven
	ErrOutput = errors.New("output error")

	// ErrNetwork reports a failed fetch
	ErrNetwork = errors.New("network error")

	// ErrCommandChannelClosed reports a command sent after shutdown
	ErrCommandChannelClosed = errors.New("command channel closed")

	// ErrNoTrack reports a transport command issued with nothing loaded
	ErrNoTrack = errors.New("no track loaded")
)
