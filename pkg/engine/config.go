// ABOUTME: Engine configuration with defaults applied at construction
// ABOUTME: Buffer sizes, cadences, output and decoder selection, fetch behaviour
package engine

import (
	"net/http"
	"time"

	"github.com/monad-player/monad-go/pkg/audio"
	"github.com/monad-player/monad-go/pkg/audio/decode"
	"github.com/monad-player/monad-go/pkg/audio/output"
)

const (
	// DefaultVolume leaves headroom below unity gain
	DefaultVolume = 0.85

	// DefaultRingBufferSize is four seconds of 48 kHz stereo
	DefaultRingBufferSize = audio.SamplesPerSecond * 4

	// DefaultMinBufferFill is the pre-fill unit; loads and seeks buffer twice this
	DefaultMinBufferFill = 8192

	// DefaultLowWaterMark is the free space needed before another chunk is decoded
	DefaultLowWaterMark = 2048

	// DefaultPositionInterval is the PositionUpdate cadence while playing
	DefaultPositionInterval = 100 * time.Millisecond

	// DefaultIdlePoll is how long the worker waits for a command when not playing
	DefaultIdlePoll = 50 * time.Millisecond

	// DefaultHTTPTimeout bounds one LoadURL fetch
	DefaultHTTPTimeout = 2 * time.Minute

	// DefaultMaxFetchBytes caps an in-memory fetch
	DefaultMaxFetchBytes = 512 << 20

	// DefaultPrefillTimeout bounds how long a streaming load waits for audio
	DefaultPrefillTimeout = 10 * time.Second

	// The worker naps for fullBufferNap whenever the ring has less than fullBufferFree space
	fullBufferFree = 1024
	fullBufferNap  = 500 * time.Microsecond
)

// Config holds engine configuration. Zero fields take the defaults above.
type Config struct {
	// Backend selects the output implementation (default: malgo)
	Backend output.Backend

	// Device selects an output device by name (default: system default)
	Device string

	// BufferFrames is the device callback period (default: 1024)
	BufferFrames int

	// Decoder is "ffmpeg", "native" or "auto" (default: ffmpeg)
	Decoder string

	// FFmpegPath overrides ffmpeg discovery
	FFmpegPath string

	// InitialVolume in (0, 1] (default: 0.85)
	InitialVolume float32

	RingBufferSize   int
	MinBufferFill    int
	LowWaterMark     int
	PositionInterval time.Duration
	IdlePoll         time.Duration

	// HTTPTimeout bounds LoadURL fetches
	HTTPTimeout time.Duration

	// DefaultHeaders are sent on LoadURL when the command carries none
	DefaultHeaders map[string]string

	// MaxFetchBytes caps buffered LoadURL bodies
	MaxFetchBytes int64

	// StreamURLs decodes LoadURL bodies while they download, when the decoder can
	StreamURLs bool

	// PrefillTimeout bounds pre-fill for streaming loads
	PrefillTimeout time.Duration
}

// DefaultFetchHeaders is the browser-like header set used when a load supplies none
func DefaultFetchHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36",
		"Accept":          "*/*",
		"Accept-Language": "en-US,en;q=0.9",
		"Origin":          "https://www.youtube.com",
		"Referer":         "https://www.youtube.com/",
	}
}

// withDefaults returns c with zero fields filled in
func (c Config) withDefaults() Config {
	if c.Backend == "" {
		c.Backend = output.BackendMalgo
	}
	if c.BufferFrames <= 0 {
		c.BufferFrames = output.DefaultBufferFrames
	}
	if c.Decoder == "" {
		c.Decoder = "ffmpeg"
	}
	if c.InitialVolume <= 0 {
		c.InitialVolume = DefaultVolume
	}
	if c.RingBufferSize <= 0 {
		c.RingBufferSize = DefaultRingBufferSize
	}
	if c.MinBufferFill <= 0 {
		c.MinBufferFill = DefaultMinBufferFill
	}
	if c.LowWaterMark <= 0 {
		c.LowWaterMark = DefaultLowWaterMark
	}
	if c.PositionInterval <= 0 {
		c.PositionInterval = DefaultPositionInterval
	}
	if c.IdlePoll <= 0 {
		c.IdlePoll = DefaultIdlePoll
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.DefaultHeaders == nil {
		c.DefaultHeaders = DefaultFetchHeaders()
	}
	if c.MaxFetchBytes <= 0 {
		c.MaxFetchBytes = DefaultMaxFetchBytes
	}
	if c.PrefillTimeout <= 0 {
		c.PrefillTimeout = DefaultPrefillTimeout
	}
	return c
}

// SinkFactory opens the output sink for an engine
type SinkFactory func(p output.Params) (output.Sink, error)

// Option customises engine construction
type Option func(*options)

type options struct {
	sinkFactory SinkFactory
	decoder     decode.Decoder
	httpClient  *http.Client
}

// WithSinkFactory replaces the configured output backend
func WithSinkFactory(f SinkFactory) Option {
	return func(o *options) { o.sinkFactory = f }
}

// WithDecoder replaces the configured decoder
func WithDecoder(d decode.Decoder) Option {
	return func(o *options) { o.decoder = d }
}

// WithHTTPClient replaces the client used by LoadURL
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}
