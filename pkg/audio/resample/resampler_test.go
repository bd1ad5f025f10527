// ABOUTME: Tests for audio resampler
// ABOUTME: Tests linear interpolation resampling between sample rates
package resample

import (
	"math"
	"testing"
)

func ramp(n int) []float32 {
	input := make([]float32, n)
	for i := range input {
		input[i] = float32(i) / float32(n)
	}
	return input
}

func TestConvertSizes(t *testing.T) {
	tests := []struct {
		name     string
		inRate   int
		outRate  int
		samples  int
		expected int
	}{
		{"upsampling", 44100, 48000, 200, 216},
		{"downsampling", 48000, 44100, 200, 182},
		{"doubling", 24000, 48000, 100, 200},
		{"halving", 96000, 48000, 100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Convert(ramp(tt.samples), tt.inRate, tt.outRate, 2)
			if len(out) != tt.expected {
				t.Errorf("expected %d samples, got %d", tt.expected, len(out))
			}
		})
	}
}

func TestConvertEmptyInput(t *testing.T) {
	if out := Convert(nil, 44100, 48000, 2); len(out) != 0 {
		t.Errorf("expected no samples, got %d", len(out))
	}
}

func TestConvertInterpolatesBetweenFrames(t *testing.T) {
	// Doubling the rate of a mono ramp puts midpoints between samples and holds the last frame
	out := Convert([]float32{0, 1, 2}, 24000, 48000, 1)
	expected := []float32{0, 0.5, 1, 1.5, 2, 2}
	if len(out) != len(expected) {
		t.Fatalf("expected %d samples, got %d", len(expected), len(out))
	}
	for i, want := range expected {
		if out[i] != want {
			t.Errorf("sample %d: expected %v, got %v", i, want, out[i])
		}
	}
}

func TestConvertSameRate(t *testing.T) {
	input := []float32{0.1, 0.2}
	out := Convert(input, 48000, 48000, 2)
	if &out[0] != &input[0] {
		t.Error("expected same-rate conversion to return the input unchanged")
	}
}

func TestConvertPreservesDuration(t *testing.T) {
	// One second of 44.1 kHz stereo becomes one second at 48 kHz
	input := make([]float32, 44100*2)
	for i := 0; i < 44100; i++ {
		v := float32(math.Sin(2 * math.Pi * 440 * float64(i) / 44100))
		input[i*2] = v
		input[i*2+1] = v
	}

	out := Convert(input, 44100, 48000, 2)
	if len(out) != 48000*2 {
		t.Fatalf("expected %d samples, got %d", 48000*2, len(out))
	}
	for i, s := range out {
		if s > 1 || s < -1 {
			t.Fatalf("sample %d out of range: %v", i, s)
		}
	}
}
