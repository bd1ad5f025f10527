// ABOUTME: Engine handle owned by the caller
// ABOUTME: Sends commands, receives events and reads lock-free state snapshots
package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/monad-player/monad-go/pkg/audio"
	"github.com/monad-player/monad-go/pkg/audio/decode"
	"github.com/monad-player/monad-go/pkg/audio/output"
	"github.com/monad-player/monad-go/pkg/audio/ring"
	"github.com/rs/zerolog/log"
)

// ErrClosed is returned by RecvEvent once the worker has exited and all events are drained
var ErrClosed = errors.New("engine closed")

// Engine controls one playback pipeline
type Engine struct {
	commands *Queue[Command]
	events   *Queue[Event]

	ring     *ring.Buffer
	sink     output.Sink
	state    *audio.StateCell
	volume   *audio.VolumeCell
	position *audio.PositionCell
	duration *audio.DurationCell
	sessions *sessionCell

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// sessionCell holds the id of the current load
type sessionCell struct {
	mu sync.RWMutex
	id uuid.UUID
}

func (c *sessionCell) Load() uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.id
}

func (c *sessionCell) Store(id uuid.UUID) {
	c.mu.Lock()
	c.id = id
	c.mu.Unlock()
}

// New opens the output and starts the worker
func New(cfg Config, opts ...Option) (*Engine, error) {
	cfg = cfg.withDefaults()

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	dec := o.decoder
	if dec == nil {
		var err error
		dec, err = decode.New(cfg.Decoder, cfg.FFmpegPath)
		if err != nil {
			return nil, err
		}
	}

	client := o.httpClient
	if client == nil {
		client = http.DefaultClient
	}

	e := &Engine{
		commands: NewQueue[Command](),
		events:   NewQueue[Event](),
		ring:     ring.New(cfg.RingBufferSize),
		state:    audio.NewStateCell(),
		volume:   audio.NewVolumeCell(cfg.InitialVolume),
		position: &audio.PositionCell{},
		duration: &audio.DurationCell{},
		sessions: &sessionCell{},
		done:     make(chan struct{}),
	}

	params := output.Params{
		Ring:         e.ring,
		State:        e.state,
		Volume:       e.volume,
		Device:       cfg.Device,
		BufferFrames: cfg.BufferFrames,
	}

	var (
		sink output.Sink
		err  error
	)
	if o.sinkFactory != nil {
		sink, err = o.sinkFactory(params)
	} else {
		sink, err = output.Open(cfg.Backend, params)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open audio output: %w", err)
	}
	e.sink = sink

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	w := &worker{
		cfg:      cfg,
		commands: e.commands,
		events:   e.events,
		decoder:  dec,
		client:   client,
		ring:     e.ring,
		sink:     sink,
		state:    e.state,
		volume:   e.volume,
		position: e.position,
		duration: e.duration,
		sessions: e.sessions,
		ctx:      ctx,
		cancel:   cancel,
	}
	go w.run(e.done)

	log.Info().
		Str("device", sink.DeviceName()).
		Stringer("format", sink.Format()).
		Int("ring", e.ring.Capacity()).
		Msg("Audio engine started")
	return e, nil
}

// Send queues a command for the worker
func (e *Engine) Send(cmd Command) error {
	if !e.commands.Push(cmd) {
		return audio.ErrCommandChannelClosed
	}
	return nil
}

// Play starts or resumes playback
func (e *Engine) Play() error { return e.Send(Command{Kind: CmdPlay}) }

// Pause holds the playback position
func (e *Engine) Pause() error { return e.Send(Command{Kind: CmdPause}) }

// Stop halts playback and rewinds to the start
func (e *Engine) Stop() error { return e.Send(Command{Kind: CmdStop}) }

// Seek moves playback to pos seconds
func (e *Engine) Seek(pos float64) error {
	return e.Send(Command{Kind: CmdSeek, Position: pos})
}

// SetVolume sets the gain, clamped to [0, 1]
func (e *Engine) SetVolume(v float32) error {
	return e.Send(Command{Kind: CmdSetVolume, Volume: v})
}

// LoadURL fetches and loads url with the configured default headers
func (e *Engine) LoadURL(url string) error {
	return e.Send(Command{Kind: CmdLoadURL, URL: url})
}

// LoadURLWithHeaders fetches and loads url with the given headers
func (e *Engine) LoadURLWithHeaders(url string, headers map[string]string) error {
	return e.Send(Command{Kind: CmdLoadURL, URL: url, Headers: headers})
}

// LoadData loads an encoded payload. mimeHint may be empty.
func (e *Engine) LoadData(data []byte, mimeHint string) error {
	return e.Send(Command{Kind: CmdLoadData, Data: data, MIME: mimeHint})
}

// Shutdown asks the worker to exit. Later commands fail with ErrCommandChannelClosed.
func (e *Engine) Shutdown() error {
	err := e.Send(Command{Kind: CmdShutdown})
	e.commands.Close()
	return err
}

// Close shuts down, aborts any fetch or decode in flight and waits for the
// worker, which closes the output
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		_ = e.Shutdown()
		e.cancel()
		<-e.done
	})
	return nil
}

// Done is closed once the worker has exited
func (e *Engine) Done() <-chan struct{} { return e.done }

// TryRecvEvent returns the next event without waiting
func (e *Engine) TryRecvEvent() (Event, bool) {
	return e.events.TryPop()
}

// RecvEvent waits for the next event
func (e *Engine) RecvEvent(ctx context.Context) (Event, error) {
	ev, err := e.events.Pop(ctx)
	if errors.Is(err, ErrQueueClosed) {
		return ev, ErrClosed
	}
	return ev, err
}

// State returns the playback state
func (e *Engine) State() audio.PlaybackState { return e.state.Load() }

// Volume returns the current gain
func (e *Engine) Volume() float32 { return e.volume.Load() }

// Position returns the last published position in seconds
func (e *Engine) Position() float64 { return e.position.Load() }

// Duration returns the track length when known
func (e *Engine) Duration() (float64, bool) { return e.duration.Load() }

// BufferFill returns the ring fill level in [0, 1]
func (e *Engine) BufferFill() float32 { return e.ring.Fill() }

// BufferedSamples returns the samples waiting in the ring
func (e *Engine) BufferedSamples() int { return e.ring.Available() }

// Underruns returns the output's short-callback count
func (e *Engine) Underruns() uint64 { return e.sink.Underruns() }

// DeviceName returns the output device name
func (e *Engine) DeviceName() string { return e.sink.DeviceName() }

// Session returns the id of the current load, or uuid.Nil
func (e *Engine) Session() uuid.UUID { return e.sessions.Load() }
