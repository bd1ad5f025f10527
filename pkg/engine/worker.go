// ABOUTME: Engine worker that owns the decoder session and feeds the ring buffer
// ABOUTME: Runs the playback state machine, pre-fill and position accounting
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/monad-player/monad-go/pkg/audio"
	"github.com/monad-player/monad-go/pkg/audio/decode"
	"github.com/monad-player/monad-go/pkg/audio/output"
	"github.com/monad-player/monad-go/pkg/audio/ring"
	"github.com/rs/zerolog/log"
)

type decodeStatus int

const (
	decodeWrote decodeStatus = iota
	decodeWaiting
	decodeEnded
)

// prefillWait is the nap between polls of a streaming session with nothing ready
const prefillWait = time.Millisecond

// worker is the ring producer. Only its goroutine touches the fields below
// the shared cells.
type worker struct {
	cfg      Config
	commands *Queue[Command]
	events   *Queue[Event]
	decoder  decode.Decoder
	client   *http.Client

	ring     *ring.Buffer
	sink     output.Sink
	state    *audio.StateCell
	volume   *audio.VolumeCell
	position *audio.PositionCell
	duration *audio.DurationCell
	sessions *sessionCell

	ctx    context.Context
	cancel context.CancelFunc

	session        decode.Session
	pending        []float32
	samplesWritten int64
	durationKnown  bool
	ended          bool
	lastUnderruns  uint64
	lastPosition   time.Time
}

func (w *worker) run(done chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(done)
	defer w.cleanup()

	log.Info().Str("device", w.sink.DeviceName()).Msg("Audio engine worker started")

	for {
		var (
			cmd Command
			ok  bool
		)
		if w.state.Load() == audio.StatePlaying {
			cmd, ok = w.commands.TryPop()
		} else {
			cmd, ok = w.commands.PopTimeout(w.cfg.IdlePoll)
		}

		if ok {
			if cmd.Kind == CmdShutdown {
				log.Info().Msg("Audio engine shutting down")
				return
			}
			w.handle(cmd)
		} else if w.commands.Closed() {
			log.Info().Msg("Command queue closed, audio engine shutting down")
			return
		}

		stalled := false
		if w.state.Load() == audio.StatePlaying {
			stalled = !w.processAudio()
			if time.Since(w.lastPosition) >= w.cfg.PositionInterval {
				w.updatePosition()
			}
		}

		if stalled || w.ring.Free() < fullBufferFree {
			time.Sleep(fullBufferNap)
		}
	}
}

func (w *worker) cleanup() {
	w.cancel()
	w.closeSession()
	if err := w.sink.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close audio output")
	}
	w.state.Store(audio.StateStopped)
	w.events.Close()
	log.Info().Msg("Audio engine worker stopped")
}

func (w *worker) handle(cmd Command) {
	log.Debug().Stringer("command", cmd.Kind).Msg("Engine command")

	switch cmd.Kind {
	case CmdPlay:
		if w.session == nil {
			log.Warn().Msg("Play requested with no track loaded")
			w.emitError("No track loaded", audio.ErrNoTrack)
			return
		}
		w.setState(audio.StatePlaying)
		w.lastPosition = time.Now()

	case CmdPause:
		w.setState(audio.StatePaused)

	case CmdStop:
		w.stop()

	case CmdSeek:
		w.seek(cmd.Position)

	case CmdSetVolume:
		w.volume.Store(cmd.Volume)
		log.Debug().Float32("volume", w.volume.Load()).Msg("Volume set")

	case CmdLoadURL:
		w.loadURL(cmd.URL, cmd.Headers)

	case CmdLoadData:
		w.loadData(cmd.Data, cmd.MIME)

	default:
		log.Warn().Stringer("command", cmd.Kind).Msg("Unknown engine command")
	}
}

// stop clears the buffer and rewinds the session so Play restarts the track
func (w *worker) stop() {
	w.setState(audio.StateStopped)
	w.ring.Clear()
	w.pending = nil
	w.samplesWritten = 0
	if w.session != nil {
		if err := w.session.Seek(0); err != nil {
			log.Warn().Err(err).Msg("Failed to rewind on stop")
		} else {
			w.ended = false
		}
	}
	w.position.Store(0)
	w.emit(Event{Kind: EventPositionUpdate, Position: 0})
}

func (w *worker) seek(pos float64) {
	if w.session == nil {
		log.Warn().Float64("position", pos).Msg("Seek requested with no track loaded")
		w.emitError("Cannot seek: no track loaded", audio.ErrNoTrack)
		return
	}

	if pos < 0 {
		pos = 0
	}
	if dur, ok := w.session.Duration(); ok && pos > dur {
		pos = dur
	}

	w.ring.Clear()
	w.pending = nil

	if err := w.session.Seek(pos); err != nil {
		log.Warn().Err(err).Float64("position", pos).Msg("Seek failed")
		w.emitError(fmt.Sprintf("Seek failed: %v", err), err)
		return
	}

	w.ended = false
	w.samplesWritten = audio.SecondsToFrame(pos) * audio.Channels
	w.position.Store(pos)
	w.emit(Event{Kind: EventPositionUpdate, Position: pos})
	log.Debug().Float64("position", pos).Msg("Seeked")

	if err := w.prefill(); err != nil {
		log.Warn().Err(err).Msg("Pre-fill after seek failed")
	}
}

func (w *worker) loadURL(url string, headers map[string]string) {
	w.setState(audio.StateBuffering)
	if len(headers) == 0 {
		headers = w.cfg.DefaultHeaders
	}
	log.Info().Str("url", url).Msg("Loading URL")

	if w.cfg.StreamURLs {
		if sd, ok := w.decoder.(decode.StreamDecoder); ok {
			w.loadStream(sd, url, headers)
			return
		}
	}

	ctx, cancel := context.WithTimeout(w.ctx, w.cfg.HTTPTimeout)
	defer cancel()

	data, mimeType, err := fetchAll(ctx, w.client, url, headers, w.cfg.MaxFetchBytes)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("Failed to fetch")
		w.emitError(fmt.Sprintf("Failed to fetch: %v", err), err)
		w.setState(audio.StateStopped)
		return
	}
	w.loadData(data, mimeType)
}

func (w *worker) loadStream(sd decode.StreamDecoder, url string, headers map[string]string) {
	w.emit(Event{Kind: EventBufferingProgress, Progress: 0.1})
	w.resetTrack()

	resp, err := openURL(w.ctx, w.client, url, headers)
	if err != nil {
		log.Error().Err(err).Str("url", url).Msg("Failed to fetch")
		w.emitError(fmt.Sprintf("Failed to fetch: %v", err), err)
		w.setState(audio.StateStopped)
		return
	}

	session, err := sd.OpenStream(w.ctx, resp.Body, mediaType(resp))
	if err != nil {
		resp.Body.Close()
		log.Error().Err(err).Str("url", url).Msg("Failed to decode")
		w.emitError(fmt.Sprintf("Failed to decode: %v", err), err)
		w.setState(audio.StateStopped)
		return
	}
	w.install(session)
}

func (w *worker) loadData(data []byte, mimeHint string) {
	w.setState(audio.StateBuffering)
	w.emit(Event{Kind: EventBufferingProgress, Progress: 0.1})
	w.resetTrack()

	log.Info().Int("bytes", len(data)).Str("mime", mimeHint).Msg("Decoding audio")
	session, err := w.decoder.Open(w.ctx, data, mimeHint)
	if err != nil {
		log.Error().Err(err).Msg("Failed to decode")
		w.emitError(fmt.Sprintf("Failed to decode: %v", err), err)
		w.setState(audio.StateStopped)
		return
	}
	w.install(session)
}

// install makes session current, pre-fills and announces the load
func (w *worker) install(session decode.Session) {
	w.session = session
	id := uuid.New()
	w.sessions.Store(id)
	w.checkDuration()

	if err := w.prefill(); err != nil {
		log.Error().Err(err).Str("session", id.String()).Msg("Failed to decode")
		w.emitError(fmt.Sprintf("Failed to decode: %v", err), err)
		w.resetTrack()
		w.setState(audio.StateStopped)
		return
	}

	w.emit(Event{Kind: EventBufferingProgress, Progress: 1.0})
	w.emit(Event{Kind: EventTrackLoaded, Session: id})
	w.setState(audio.StateStopped)

	dur, _ := w.duration.Load()
	log.Info().
		Str("session", id.String()).
		Float64("duration", dur).
		Int("buffered", w.ring.Available()).
		Msg("Track loaded")
}

// resetTrack discards the current session and all buffered audio
func (w *worker) resetTrack() {
	w.closeSession()
	w.ring.Clear()
	w.pending = nil
	w.samplesWritten = 0
	w.durationKnown = false
	w.ended = false
	w.position.Store(0)
	w.duration.Reset()
	w.sessions.Store(uuid.Nil)
}

func (w *worker) closeSession() {
	if w.session == nil {
		return
	}
	if err := w.session.Close(); err != nil {
		log.Debug().Err(err).Msg("Session close")
	}
	w.session = nil
}

// prefill decodes until twice the minimum fill is buffered or the track ends.
// It fails only when the session errors before producing any audio.
func (w *worker) prefill() error {
	target := 2 * w.cfg.MinBufferFill
	deadline := time.Now().Add(w.cfg.PrefillTimeout)

	for w.ring.Available() < target && w.ring.Free() > 0 {
		status, err := w.decodeAndWrite()
		if err != nil {
			if w.ring.Available() == 0 {
				return err
			}
			log.Warn().Err(err).Msg("Decode error during pre-fill")
			break
		}
		w.checkDuration()
		if status == decodeEnded {
			break
		}
		if status == decodeWaiting {
			if time.Now().After(deadline) {
				log.Warn().Int("buffered", w.ring.Available()).Msg("Pre-fill timed out")
				break
			}
			time.Sleep(prefillWait)
		}
	}
	return nil
}

// processAudio tops up the ring and detects the end of the track. It
// reports whether any samples were written.
func (w *worker) processAudio() bool {
	if w.ring.Free() < w.cfg.LowWaterMark {
		return false
	}

	status, err := w.decodeAndWrite()
	if err != nil {
		log.Error().Err(err).Msg("Decode error")
	}
	w.checkDuration()

	if status == decodeEnded && w.ring.Empty() {
		w.updatePosition()
		log.Info().Msg("Playback finished")
		w.setState(audio.StateStopped)
		w.emit(Event{Kind: EventPlaybackFinished})
	}
	return status == decodeWrote
}

// decodeAndWrite moves one chunk, or the rest of a partly written chunk, into the ring.
// A decode error ends the track; the session is not polled again until a seek,
// stop or new load.
func (w *worker) decodeAndWrite() (decodeStatus, error) {
	if w.session == nil {
		return decodeEnded, nil
	}

	if len(w.pending) == 0 {
		if w.ended {
			return decodeEnded, nil
		}
		chunk, err := w.session.DecodeNext()
		if errors.Is(err, io.EOF) {
			w.ended = true
			return decodeEnded, nil
		}
		if err != nil {
			w.ended = true
			return decodeEnded, err
		}
		if len(chunk) == 0 {
			return decodeWaiting, nil
		}
		w.pending = chunk
	}

	n := w.ring.Write(w.pending)
	w.pending = w.pending[n:]
	w.samplesWritten += int64(n)
	log.Trace().Int("samples", n).Msg("Wrote samples to ring buffer")
	return decodeWrote, nil
}

// checkDuration publishes the duration the first time the session knows it
func (w *worker) checkDuration() {
	if w.durationKnown || w.session == nil {
		return
	}
	dur, ok := w.session.Duration()
	if !ok {
		return
	}
	w.durationKnown = true
	w.duration.Store(dur)
	w.emit(Event{Kind: EventDurationUpdate, Duration: dur})
	log.Debug().Float64("duration", dur).Msg("Duration known")
}

// updatePosition derives playback position from samples the sink has consumed
func (w *worker) updatePosition() {
	w.lastPosition = time.Now()

	consumed := w.samplesWritten - int64(w.ring.Available())
	if consumed < 0 {
		consumed = 0
	}
	pos := audio.SamplesToSeconds(consumed)
	w.position.Store(pos)
	w.emit(Event{Kind: EventPositionUpdate, Position: pos})

	if u := w.sink.Underruns(); u > w.lastUnderruns {
		log.Warn().Uint64("underruns", u-w.lastUnderruns).Msg("Output underrun")
		w.lastUnderruns = u
	}
}

func (w *worker) setState(s audio.PlaybackState) {
	if prev := w.state.Swap(s); prev != s {
		log.Debug().Stringer("from", prev).Stringer("to", s).Msg("State changed")
		w.emit(Event{Kind: EventStateChanged, State: s})
	}
}

func (w *worker) emitError(msg string, err error) {
	w.emit(Event{Kind: EventError, Message: msg, Err: err})
}

func (w *worker) emit(e Event) {
	if !w.events.Push(e) {
		log.Debug().Stringer("event", e).Msg("Event dropped after shutdown")
	}
}
