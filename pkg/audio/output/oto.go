// ABOUTME: Oto-based audio output implementation
// ABOUTME: Presents the renderer as the io.Reader an oto player pulls float32 frames from
package output

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/monad-player/monad-go/pkg/audio"
	"github.com/rs/zerolog/log"
)

// otoFrameBytes is one stereo float32 frame
const otoFrameBytes = audio.Channels * 4

// Oto output implementation using oto library. oto allows one context per
// process, so a closed Oto cannot be reopened.
type Oto struct {
	otoCtx   *oto.Context
	player   *oto.Player
	renderer *Renderer

	mu     sync.Mutex
	closed bool
}

// NewOto opens the default device through oto
func NewOto(p Params) (*Oto, error) {
	if p.Device != "" {
		log.Warn().Str("device", p.Device).Msg("oto cannot select devices, using the default")
	}

	renderer, err := NewRenderer(p, FormatF32)
	if err != nil {
		return nil, err
	}

	frames := p.BufferFrames
	if frames <= 0 {
		frames = DefaultBufferFrames
	}

	op := &oto.NewContextOptions{
		SampleRate:   audio.SampleRate,
		ChannelCount: audio.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(frames) * time.Second / audio.SampleRate,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create oto context: %v", audio.ErrOutput, err)
	}
	<-readyChan

	o := &Oto{otoCtx: ctx, renderer: renderer}
	o.player = ctx.NewPlayer(o)
	o.player.Play()

	log.Info().Int("sample_rate", audio.SampleRate).Int("buffer_frames", frames).Msg("Audio output initialized (oto)")
	return o, nil
}

// Read is called by oto's mixer. It always fills whole frames and never blocks.
func (o *Oto) Read(p []byte) (int, error) {
	n := len(p) / otoFrameBytes * otoFrameBytes
	o.renderer.Render(p[:n])
	return n, nil
}

// SampleRate returns 48000
func (o *Oto) SampleRate() int { return audio.SampleRate }

// Channels returns 2
func (o *Oto) Channels() int { return audio.Channels }

// DeviceName returns "default"; oto has no device selection
func (o *Oto) DeviceName() string { return "default" }

// Format returns FormatF32
func (o *Oto) Format() SampleFormat { return FormatF32 }

// Underruns counts partly filled periods
func (o *Oto) Underruns() uint64 { return o.renderer.Underruns() }

// Pulls counts mixer reads
func (o *Oto) Pulls() uint64 { return o.renderer.Pulls() }

// Close stops the player and suspends the context
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true

	var err error
	if o.player != nil {
		err = o.player.Close()
		o.player = nil
	}
	if suspendErr := o.otoCtx.Suspend(); suspendErr != nil {
		log.Warn().Err(suspendErr).Msg("oto suspend error")
	}
	return err
}
