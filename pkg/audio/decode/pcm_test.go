// ABOUTME: Tests for the in-memory PCM session
// ABOUTME: Tests chunking, frame-aligned seeking and f32le conversion
package decode

import (
	"errors"
	"io"
	"testing"

	"github.com/monad-player/monad-go/pkg/audio"
)

func ramp(n int) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(i)
	}
	return s
}

func TestPCMSessionChunks(t *testing.T) {
	s := NewPCMSession(ramp(5000))

	var sizes []int
	for {
		chunk, err := s.DecodeNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sizes = append(sizes, len(chunk))
	}

	expected := []int{audio.ChunkSamples, audio.ChunkSamples, 5000 - 2*audio.ChunkSamples}
	if len(sizes) != len(expected) {
		t.Fatalf("expected %d chunks, got %d", len(expected), len(sizes))
	}
	for i := range expected {
		if sizes[i] != expected[i] {
			t.Errorf("chunk %d: expected %d samples, got %d", i, expected[i], sizes[i])
		}
	}
}

func TestPCMSessionDropsHalfFrame(t *testing.T) {
	s := NewPCMSession(ramp(7))
	if s.Len() != 6 {
		t.Errorf("expected 6 samples, got %d", s.Len())
	}
}

func TestPCMSessionSeekIsFrameAligned(t *testing.T) {
	s := NewPCMSession(ramp(audio.SamplesPerSecond * 2))

	// 0.50001s lands inside frame 24000
	if err := s.Seek(0.50001); err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	chunk, err := s.DecodeNext()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if chunk[0] != 48000 {
		t.Errorf("expected first sample index 48000, got %v", chunk[0])
	}
}

func TestPCMSessionSeekClamps(t *testing.T) {
	s := NewPCMSession(ramp(1000))

	if err := s.Seek(60); err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	if _, err := s.DecodeNext(); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF after seeking past the end, got %v", err)
	}

	if err := s.Seek(-5); err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	chunk, err := s.DecodeNext()
	if err != nil || chunk[0] != 0 {
		t.Errorf("expected to restart at sample 0, got %v %v", chunk, err)
	}
}

func TestPCMSessionDuration(t *testing.T) {
	s := NewPCMSession(make([]float32, audio.SamplesPerSecond*3))
	dur, known := s.Duration()
	if !known || dur != 3 {
		t.Errorf("expected 3s known, got %v %v", dur, known)
	}
	if s.SampleRate() != 48000 || s.Channels() != 2 {
		t.Errorf("unexpected layout %d/%d", s.SampleRate(), s.Channels())
	}
}

func TestF32LERoundTrip(t *testing.T) {
	in := []float32{0, 0.25, -0.5, 1}
	data := EncodeF32LE(in)
	if len(data) != 16 {
		t.Fatalf("expected 16 bytes, got %d", len(data))
	}

	// A trailing partial sample is dropped
	out := ParseF32LE(append(data, 0x01, 0x02))
	if len(out) != len(in) {
		t.Fatalf("expected %d samples, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("sample %d: expected %v, got %v", i, in[i], out[i])
		}
	}
}
