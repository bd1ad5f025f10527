// ABOUTME: Decoder interfaces for turning compressed payloads into PCM sessions
// ABOUTME: Every session yields interleaved float32 stereo at 48 kHz in fixed chunks
package decode

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/monad-player/monad-go/pkg/audio"
)

// Session is one loaded track. It is driven by a single goroutine.
type Session interface {
	// DecodeNext returns the next chunk of up to audio.ChunkSamples samples.
	// It returns io.EOF when exhausted, and an empty chunk with a nil error
	// when a streaming session has nothing decoded yet. Returned slices must
	// not be modified.
	DecodeNext() ([]float32, error)

	// Seek moves to the frame at seconds, clamped to [0, duration]
	Seek(seconds float64) error

	// SampleRate is always audio.SampleRate
	SampleRate() int

	// Channels is always audio.Channels
	Channels() int

	// Duration returns the track length once it is known
	Duration() (float64, bool)

	// Close releases decoder resources
	Close() error
}

// Decoder opens sessions over a complete in-memory payload
type Decoder interface {
	Open(ctx context.Context, data []byte, mimeHint string) (Session, error)
}

// StreamDecoder opens sessions that decode while the payload is still arriving
type StreamDecoder interface {
	OpenStream(ctx context.Context, r io.Reader, mimeHint string) (Session, error)
}

// DecoderFunc adapts a function to the Decoder interface
type DecoderFunc func(ctx context.Context, data []byte, mimeHint string) (Session, error)

// Open calls f
func (f DecoderFunc) Open(ctx context.Context, data []byte, mimeHint string) (Session, error) {
	return f(ctx, data, mimeHint)
}

// Chain tries each decoder in turn, moving on when one reports an unsupported format
type Chain []Decoder

// Open returns the first session any decoder in the chain produces
func (c Chain) Open(ctx context.Context, data []byte, mimeHint string) (Session, error) {
	if len(c) == 0 {
		return nil, fmt.Errorf("%w: no decoders configured", audio.ErrDecode)
	}

	var lastErr error
	for _, d := range c {
		s, err := d.Open(ctx, data, mimeHint)
		if err == nil {
			return s, nil
		}
		lastErr = err
		if !errors.Is(err, audio.ErrUnsupportedFormat) {
			return nil, err
		}
	}
	return nil, lastErr
}

// OpenStream uses the first streaming-capable decoder in the chain
func (c Chain) OpenStream(ctx context.Context, r io.Reader, mimeHint string) (Session, error) {
	for _, d := range c {
		if sd, ok := d.(StreamDecoder); ok {
			return sd.OpenStream(ctx, r, mimeHint)
		}
	}
	return nil, fmt.Errorf("%w: no streaming decoder in chain", audio.ErrUnsupportedFormat)
}

// New returns the decoder registered under name: "ffmpeg", "native" or "auto"
func New(name, ffmpegPath string) (Decoder, error) {
	switch name {
	case "", "ffmpeg":
		return NewFFmpeg(ffmpegPath), nil
	case "native":
		return NewNative(), nil
	case "auto":
		return Chain{NewNative(), NewFFmpeg(ffmpegPath)}, nil
	default:
		return nil, fmt.Errorf("unknown decoder: %s (supported: ffmpeg, native, auto)", name)
	}
}
