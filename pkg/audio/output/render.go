// ABOUTME: Real-time render path shared by every output backend
// ABOUTME: Reads the ring, applies volume and the soft limiter, encodes to the device format
package output

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/monad-player/monad-go/pkg/audio"
	"github.com/monad-player/monad-go/pkg/audio/ring"
)

const (
	// limiterThreshold is where the soft knee starts
	limiterThreshold = 0.9

	// scratchSamples bounds one ring read; larger periods loop
	scratchSamples = 4096
)

// SoftLimit passes samples through unchanged up to the threshold and
// compresses anything above it smoothly toward full scale
func SoftLimit(x float32) float32 {
	a := x
	if a < 0 {
		a = -a
	}
	if a <= limiterThreshold {
		return x
	}
	const t = limiterThreshold
	y := float32(t + (1-t)*math.Tanh(float64((a-t)/(1-t))))
	if x < 0 {
		return -y
	}
	return y
}

// sampleEncoder writes one float sample in a device format
type sampleEncoder interface {
	size() int
	put(dst []byte, s float32)
}

type f32LE struct{}

func (f32LE) size() int { return 4 }
func (f32LE) put(dst []byte, s float32) {
	binary.LittleEndian.PutUint32(dst, math.Float32bits(s))
}

type s16LE struct{}

func (s16LE) size() int { return 2 }
func (s16LE) put(dst []byte, s float32) {
	binary.LittleEndian.PutUint16(dst, uint16(audio.FloatToInt16(s)))
}

type s24LE struct{}

func (s24LE) size() int { return 3 }
func (s24LE) put(dst []byte, s float32) {
	b := audio.SampleTo24Bit(audio.FloatToInt24(s))
	dst[0], dst[1], dst[2] = b[0], b[1], b[2]
}

type s32LE struct{}

func (s32LE) size() int { return 4 }
func (s32LE) put(dst []byte, s float32) {
	binary.LittleEndian.PutUint32(dst, uint32(audio.FloatToInt32(s)))
}

type u8 struct{}

func (u8) size() int { return 1 }
func (u8) put(dst []byte, s float32) {
	dst[0] = audio.FloatToUint8(s)
}

// Renderer fills device buffers. Render never blocks, allocates or logs.
type Renderer struct {
	ring    *ring.Buffer
	state   *audio.StateCell
	volume  *audio.VolumeCell
	format  SampleFormat
	scratch []float32
	fill    func(r *Renderer, out []byte)

	underruns atomic.Uint64
	pulls     atomic.Uint64
}

// NewRenderer binds the render path for one device format
func NewRenderer(p Params, format SampleFormat) (*Renderer, error) {
	if p.Ring == nil || p.State == nil || p.Volume == nil {
		return nil, fmt.Errorf("%w: sink needs ring, state and volume", audio.ErrOutput)
	}

	r := &Renderer{
		ring:    p.Ring,
		state:   p.State,
		volume:  p.Volume,
		format:  format,
		scratch: make([]float32, scratchSamples),
	}

	switch format {
	case FormatF32:
		r.fill = renderInto[f32LE]
	case FormatS16:
		r.fill = renderInto[s16LE]
	case FormatS24:
		r.fill = renderInto[s24LE]
	case FormatS32:
		r.fill = renderInto[s32LE]
	case FormatU8:
		r.fill = renderInto[u8]
	default:
		return nil, fmt.Errorf("%w: unsupported sample format %s", audio.ErrOutput, format)
	}
	return r, nil
}

// Render fills out with the next period of audio
func (r *Renderer) Render(out []byte) {
	r.fill(r, out)
}

// Format returns the encoding Render produces
func (r *Renderer) Format() SampleFormat { return r.format }

// Underruns counts periods that were only partly filled from the ring
func (r *Renderer) Underruns() uint64 { return r.underruns.Load() }

// Pulls counts Render calls
func (r *Renderer) Pulls() uint64 { return r.pulls.Load() }

func renderInto[E sampleEncoder](r *Renderer, out []byte) {
	var enc E
	size := enc.size()
	total := len(out) / size
	r.pulls.Add(1)

	written := 0
	if r.state.Load() == audio.StatePlaying {
		vol := r.volume.Load()
		for written < total {
			want := total - written
			if want > len(r.scratch) {
				want = len(r.scratch)
			}
			got := r.ring.Read(r.scratch[:want])
			for i := 0; i < got; i++ {
				enc.put(out[(written+i)*size:], SoftLimit(r.scratch[i]*vol))
			}
			written += got
			if got < want {
				break
			}
		}
		if written > 0 && written < total {
			r.underruns.Add(1)
		}
	}

	for i := written; i < total; i++ {
		enc.put(out[i*size:], 0)
	}
}
