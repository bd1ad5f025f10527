// ABOUTME: Main player application orchestration
// ABOUTME: Drives the engine through a track list and bridges events to the TUI
package app

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/monad-player/monad-go/internal/ui"
	"github.com/monad-player/monad-go/pkg/audio"
	"github.com/monad-player/monad-go/pkg/engine"
	"github.com/rs/zerolog/log"
)

// statusInterval is how often snapshots are pushed to the TUI
const statusInterval = 50 * time.Millisecond

// Engine is the part of *engine.Engine the player drives
type Engine interface {
	Play() error
	Pause() error
	Stop() error
	Seek(pos float64) error
	SetVolume(v float32) error
	LoadURL(url string) error
	LoadData(data []byte, mimeHint string) error
	RecvEvent(ctx context.Context) (engine.Event, error)

	State() audio.PlaybackState
	Volume() float32
	Position() float64
	Duration() (float64, bool)
	BufferFill() float32
	Underruns() uint64
	DeviceName() string
}

// Config holds player configuration
type Config struct {
	// Sources are file paths or http(s) URLs played in order
	Sources []string

	// OnStatus receives display snapshots; nil disables them
	OnStatus func(ui.StatusMsg)

	// Controls carries key actions from the TUI; nil when headless
	Controls *ui.Controls
}

// Player plays a list of sources through one engine. The track list lives
// here, not in the engine: the engine plays one track at a time.
type Player struct {
	config Config
	engine Engine

	mu    sync.Mutex
	index int

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new player
func New(config Config, eng Engine) *Player {
	ctx, cancel := context.WithCancel(context.Background())
	return &Player{
		config: config,
		engine: eng,
		index:  -1,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Run plays every source and returns when the list is exhausted, the user
// quits, or ctx ends
func (p *Player) Run(ctx context.Context) error {
	if len(p.config.Sources) == 0 {
		return errors.New("no sources to play")
	}

	go func() {
		select {
		case <-ctx.Done():
			p.cancel()
		case <-p.ctx.Done():
		}
	}()

	if p.config.Controls != nil {
		go p.handleControls()
	}
	if p.config.OnStatus != nil {
		go p.statusLoop()
	}

	p.next()

	for {
		ev, err := p.engine.RecvEvent(p.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		p.handleEvent(ev)
	}
}

// Done is closed when the player has finished
func (p *Player) Done() <-chan struct{} { return p.ctx.Done() }

// Stop ends Run
func (p *Player) Stop() { p.cancel() }

// handleEvent advances the track list from engine events
func (p *Player) handleEvent(ev engine.Event) {
	log.Debug().Stringer("event", ev).Msg("Engine event")

	switch ev.Kind {
	case engine.EventTrackLoaded:
		if err := p.engine.Play(); err != nil {
			log.Error().Err(err).Msg("Failed to start playback")
		}
	case engine.EventPlaybackFinished:
		log.Info().Str("source", p.current()).Msg("Track finished")
		p.next()
	case engine.EventError:
		log.Warn().Err(ev.Err).Str("source", p.current()).Msg(ev.Message)
		p.status(ui.StatusMsg{Error: ev.Message})
		if isLoadFailure(ev) {
			p.next()
		}
	}
}

// isLoadFailure reports whether an error event means the current track never loaded
func isLoadFailure(ev engine.Event) bool {
	return strings.HasPrefix(ev.Message, "Failed to fetch") || strings.HasPrefix(ev.Message, "Failed to decode")
}

// next loads the following source, or finishes the player after the last one
func (p *Player) next() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		p.index++
		if p.index >= len(p.config.Sources) {
			log.Info().Msg("End of track list")
			p.cancel()
			return
		}

		src := p.config.Sources[p.index]
		p.status(ui.StatusMsg{
			Title:  filepath.Base(src),
			Track:  p.index + 1,
			Tracks: len(p.config.Sources),
		})

		if err := p.load(src); err != nil {
			log.Error().Err(err).Str("source", src).Msg("Skipping source")
			p.status(ui.StatusMsg{Error: err.Error()})
			continue
		}
		return
	}
}

// load hands one source to the engine
func (p *Player) load(src string) error {
	if isURL(src) {
		return p.engine.LoadURL(src)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	return p.engine.LoadData(data, mimeForPath(src))
}

func (p *Player) current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.index < 0 || p.index >= len(p.config.Sources) {
		return ""
	}
	return p.config.Sources[p.index]
}

// handleControls applies TUI key actions to the engine
func (p *Player) handleControls() {
	ctrl := p.config.Controls
	for {
		select {
		case a := <-ctrl.Actions:
			p.apply(a)
		case <-ctrl.Quit:
			log.Info().Msg("Received quit signal from TUI")
			p.cancel()
			return
		case <-p.ctx.Done():
			return
		}
	}
}

// apply turns one key action into engine commands
func (p *Player) apply(a ui.Action) {
	var err error
	switch a.Kind {
	case ui.ActionTogglePlay:
		if p.engine.State() == audio.StatePlaying {
			err = p.engine.Pause()
		} else {
			err = p.engine.Play()
		}
	case ui.ActionStop:
		err = p.engine.Stop()
	case ui.ActionSeek:
		target := p.engine.Position() + a.Delta
		if target < 0 {
			target = 0
		}
		err = p.engine.Seek(target)
	case ui.ActionVolume:
		err = p.engine.SetVolume(audio.ClampVolume(p.engine.Volume() + float32(a.Delta)))
	case ui.ActionNext:
		if err = p.engine.Stop(); err == nil {
			p.next()
		}
	}
	if err != nil {
		log.Warn().Err(err).Msg("Control action failed")
	}
}

// statusLoop pushes engine snapshots to the TUI
func (p *Player) statusLoop() {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.status(p.snapshot())
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Player) snapshot() ui.StatusMsg {
	dur, known := p.engine.Duration()
	return ui.StatusMsg{
		State:         p.engine.State().String(),
		Position:      p.engine.Position(),
		Duration:      dur,
		DurationKnown: known,
		Volume:        int(p.engine.Volume()*100 + 0.5),
		Device:        p.engine.DeviceName(),
		BufferFill:    p.engine.BufferFill(),
		Underruns:     p.engine.Underruns(),
	}
}

func (p *Player) status(msg ui.StatusMsg) {
	if p.config.OnStatus != nil {
		p.config.OnStatus(msg)
	}
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// mimeForPath guesses a MIME hint from the file extension
func mimeForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".opus", ".webm":
		return "audio/webm"
	case ".m4a", ".mp4", ".aac":
		return "audio/mp4"
	case ".mp3":
		return "audio/mpeg"
	case ".ogg", ".oga":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	case ".wav":
		return "audio/wav"
	}
	return mime.TypeByExtension(ext)
}
