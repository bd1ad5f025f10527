// ABOUTME: In-memory PCM session
// ABOUTME: Serves fully decoded stereo samples in chunks with frame-aligned seeking
package decode

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/monad-player/monad-go/pkg/audio"
)

// PCMSession serves a fully decoded buffer
type PCMSession struct {
	samples []float32
	pos     int
}

// NewPCMSession wraps interleaved 48 kHz stereo samples. A trailing half frame is dropped.
func NewPCMSession(samples []float32) *PCMSession {
	return &PCMSession{samples: samples[:len(samples)&^1]}
}

// DecodeNext returns the next chunk
func (s *PCMSession) DecodeNext() ([]float32, error) {
	if s.pos >= len(s.samples) {
		return nil, io.EOF
	}
	end := s.pos + audio.ChunkSamples
	if end > len(s.samples) {
		end = len(s.samples)
	}
	chunk := s.samples[s.pos:end]
	s.pos = end
	return chunk, nil
}

// Seek positions at the start of the frame containing seconds
func (s *PCMSession) Seek(seconds float64) error {
	idx := audio.SecondsToFrame(seconds) * audio.Channels
	if idx > int64(len(s.samples)) {
		idx = int64(len(s.samples))
	}
	s.pos = int(idx)
	return nil
}

// SampleRate returns 48000
func (s *PCMSession) SampleRate() int { return audio.SampleRate }

// Channels returns 2
func (s *PCMSession) Channels() int { return audio.Channels }

// Duration returns the buffer length in seconds
func (s *PCMSession) Duration() (float64, bool) {
	return audio.SamplesToSeconds(int64(len(s.samples))), true
}

// Close releases nothing
func (s *PCMSession) Close() error { return nil }

// Len returns the total sample count
func (s *PCMSession) Len() int { return len(s.samples) }

// ParseF32LE converts little-endian float32 bytes to samples, dropping a trailing partial sample
func ParseF32LE(data []byte) []float32 {
	n := len(data) / 4
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return samples
}

// EncodeF32LE converts samples to little-endian float32 bytes
func EncodeF32LE(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}
