// ABOUTME: Null audio output with no hardware behind it
// ABOUTME: Consumes the ring at real-time rate on a ticker, or on demand for tests
package output

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/monad-player/monad-go/pkg/audio"
	"github.com/rs/zerolog/log"
)

// Null discards rendered audio
type Null struct {
	renderer *Renderer
	frames   int
	buf      []byte

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewNull creates a null sink. A clocked sink pulls one period per period
// length on its own goroutine; an unclocked one only renders through Pull.
func NewNull(p Params, clocked bool) (*Null, error) {
	renderer, err := NewRenderer(p, FormatF32)
	if err != nil {
		return nil, err
	}

	frames := p.BufferFrames
	if frames <= 0 {
		frames = DefaultBufferFrames
	}

	n := &Null{
		renderer: renderer,
		frames:   frames,
		buf:      make([]byte, frames*audio.Channels*4),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	if clocked {
		go n.run()
	} else {
		close(n.done)
	}

	log.Debug().Bool("clocked", clocked).Int("period_frames", frames).Msg("Null output initialized")
	return n, nil
}

func (n *Null) run() {
	defer close(n.done)
	period := time.Duration(n.frames) * time.Second / audio.SampleRate
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-n.stop:
			return
		case <-ticker.C:
			n.renderer.Render(n.buf)
		}
	}
}

// Pull renders frames stereo frames and returns them decoded. Only valid on an unclocked sink.
func (n *Null) Pull(frames int) []float32 {
	out := make([]byte, frames*audio.Channels*4)
	n.renderer.Render(out)

	samples := make([]float32, frames*audio.Channels)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(out[i*4:]))
	}
	return samples
}

// SampleRate returns 48000
func (n *Null) SampleRate() int { return audio.SampleRate }

// Channels returns 2
func (n *Null) Channels() int { return audio.Channels }

// DeviceName returns "null"
func (n *Null) DeviceName() string { return "null" }

// Format returns FormatF32
func (n *Null) Format() SampleFormat { return FormatF32 }

// Underruns counts partly filled periods
func (n *Null) Underruns() uint64 { return n.renderer.Underruns() }

// Pulls counts renders
func (n *Null) Pulls() uint64 { return n.renderer.Pulls() }

// Close stops the clock goroutine
func (n *Null) Close() error {
	n.once.Do(func() { close(n.stop) })
	<-n.done
	return nil
}
