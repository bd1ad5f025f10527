// ABOUTME: Streaming FFmpeg session that decodes while the payload downloads
// ABOUTME: A writer feeds stdin and a reader chunks stdout, coordinated by an errgroup
package decode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/monad-player/monad-go/pkg/audio"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// streamBacklog is how many decoded chunks may wait for the engine
const streamBacklog = 128

// lockedBuffer collects stderr written by exec's copier goroutine
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

// streamSession keeps every decoded sample so it can seek backwards
type streamSession struct {
	chunks chan []float32
	cancel context.CancelFunc
	source io.Reader

	// err is written before chunks is closed
	err error

	history  []float32
	pos      int
	finished bool
}

// OpenStream starts ffmpeg and returns at once; chunks arrive as r is read
func (f *FFmpeg) OpenStream(ctx context.Context, r io.Reader, mimeHint string) (Session, error) {
	bin, err := f.Binary()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, bin, Args()...)
	stderr := &lockedBuffer{}
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: ffmpeg stdin: %v", audio.ErrDecode, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: ffmpeg stdout: %v", audio.ErrDecode, err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: ffmpeg start: %v", audio.ErrDecode, err)
	}

	log.Debug().Str("ffmpeg", bin).Str("mime", mimeHint).Msg("Streaming decode started")

	s := &streamSession{
		chunks: make(chan []float32, streamBacklog),
		cancel: cancel,
		source: r,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, err := io.Copy(stdin, r)
		closeErr := stdin.Close()
		if err != nil {
			return fmt.Errorf("%w: stream read: %v", audio.ErrNetwork, err)
		}
		return closeErr
	})

	g.Go(func() error {
		buf := make([]byte, audio.ChunkSamples*4)
		for {
			n, err := io.ReadFull(stdout, buf)
			if n >= 4 {
				chunk := ParseF32LE(buf[:n])
				select {
				case s.chunks <- chunk:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			if err != nil {
				return err
			}
		}
	})

	go func() {
		groupErr := g.Wait()
		waitErr := cmd.Wait()

		switch {
		case groupErr != nil && ctx.Err() == nil:
			s.err = groupErr
		case waitErr != nil && ctx.Err() == nil:
			s.err = fmt.Errorf("%w: ffmpeg exited with code %d%s", audio.ErrDecode, exitCode(waitErr), formatStderr(stderr.Bytes()))
		}
		close(s.chunks)
	}()

	return s, nil
}

// drain moves every ready chunk into history without blocking
func (s *streamSession) drain() {
	for !s.finished {
		select {
		case chunk, ok := <-s.chunks:
			if !ok {
				s.finished = true
				s.history = s.history[:len(s.history)&^1]
				log.Debug().Int("samples", len(s.history)).Msg("Streaming decode finished")
				return
			}
			s.history = append(s.history, chunk...)
		default:
			return
		}
	}
}

func (s *streamSession) DecodeNext() ([]float32, error) {
	s.drain()

	if s.finished {
		if len(s.history) == 0 {
			if s.err != nil {
				return nil, s.err
			}
			return nil, fmt.Errorf("%w: ffmpeg produced no audio", audio.ErrDecode)
		}
		if s.pos > len(s.history) {
			s.pos = len(s.history)
		}
	}

	if s.pos < len(s.history) {
		end := s.pos + audio.ChunkSamples
		if end > len(s.history) {
			if !s.finished {
				// Keep chunks whole while more is coming
				end = len(s.history) &^ 1
				if end <= s.pos {
					return nil, nil
				}
			} else {
				end = len(s.history)
			}
		}
		chunk := s.history[s.pos:end]
		s.pos = end
		return chunk, nil
	}

	if s.finished {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	return nil, nil
}

// Seek may target audio that has not been decoded yet; delivery resumes once it arrives
func (s *streamSession) Seek(seconds float64) error {
	s.drain()
	idx := int(audio.SecondsToFrame(seconds) * audio.Channels)
	if s.finished && idx > len(s.history) {
		idx = len(s.history)
	}
	s.pos = idx
	return nil
}

func (s *streamSession) SampleRate() int { return audio.SampleRate }

func (s *streamSession) Channels() int { return audio.Channels }

func (s *streamSession) Duration() (float64, bool) {
	s.drain()
	if !s.finished || s.err != nil || len(s.history) == 0 {
		return 0, false
	}
	return audio.SamplesToSeconds(int64(len(s.history))), true
}

// Close stops ffmpeg and closes the source if it is closable
func (s *streamSession) Close() error {
	s.cancel()
	if c, ok := s.source.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
