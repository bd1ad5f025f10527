// ABOUTME: Audio output interface definition
// ABOUTME: Common interface and construction parameters for playback backends
package output

import (
	"fmt"

	"github.com/monad-player/monad-go/pkg/audio"
	"github.com/monad-player/monad-go/pkg/audio/ring"
)

// Backend names an output implementation
type Backend string

const (
	BackendMalgo Backend = "malgo"
	BackendOto   Backend = "oto"
	BackendNull  Backend = "null"
)

// DefaultBufferFrames is the callback period requested from devices
const DefaultBufferFrames = 1024

// SampleFormat is a device's native sample encoding
type SampleFormat int

const (
	FormatF32 SampleFormat = iota
	FormatS16
	FormatS24
	FormatS32
	FormatU8
)

// String returns the format name
func (f SampleFormat) String() string {
	switch f {
	case FormatF32:
		return "F32"
	case FormatS16:
		return "S16"
	case FormatS24:
		return "S24"
	case FormatS32:
		return "S32"
	case FormatU8:
		return "U8"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// BytesPerSample returns the encoded size of one sample
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case FormatS16:
		return 2
	case FormatS24:
		return 3
	case FormatU8:
		return 1
	default:
		return 4
	}
}

// Params wires a sink to the engine's shared state
type Params struct {
	Ring   *ring.Buffer
	State  *audio.StateCell
	Volume *audio.VolumeCell

	// Device selects an output by name; empty means the system default
	Device string

	// BufferFrames is the requested callback period; 0 means DefaultBufferFrames
	BufferFrames int
}

// Sink is an open output device pulling samples from the ring buffer
type Sink interface {
	// SampleRate is the rate the sink consumes, always 48000
	SampleRate() int

	// Channels is always 2
	Channels() int

	// DeviceName names the device in use
	DeviceName() string

	// Format is the device's native sample encoding
	Format() SampleFormat

	// Underruns counts callbacks that ran out of buffered audio mid-period
	Underruns() uint64

	// Pulls counts callback invocations
	Pulls() uint64

	// Close stops the device. Safe to call more than once.
	Close() error
}

// Device describes an available playback device
type Device struct {
	Name    string
	Default bool
}

// Open creates the named backend's sink; an empty name means malgo
func Open(backend Backend, p Params) (Sink, error) {
	switch backend {
	case "", BackendMalgo:
		return NewMalgo(p)
	case BackendOto:
		return NewOto(p)
	case BackendNull:
		return NewNull(p, true)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q (supported: malgo, oto, null)", audio.ErrOutput, backend)
	}
}
