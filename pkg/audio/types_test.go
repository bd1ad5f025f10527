// ABOUTME: Tests for audio types
// ABOUTME: Tests float sample conversions and time helpers
package audio

import "testing"

func TestFloatToInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    float32
		expected int16
	}{
		{"zero", 0, 0},
		{"full scale", 1, 32767},
		{"negative full scale", -1, -32767},
		{"half", 0.5, 16383},
		{"clipped high", 1.5, 32767},
		{"clipped low", -2, -32767},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FloatToInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestFloatToInt24(t *testing.T) {
	if got := FloatToInt24(1); got != Max24Bit {
		t.Errorf("expected %d, got %d", Max24Bit, got)
	}
	if got := FloatToInt24(-1); got != -Max24Bit {
		t.Errorf("expected %d, got %d", -Max24Bit, got)
	}
	if got := FloatToInt24(0); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestFloatToUint8(t *testing.T) {
	tests := []struct {
		name     string
		input    float32
		expected uint8
	}{
		{"silence", 0, 128},
		{"full scale", 1, 255},
		{"negative full scale", -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FloatToUint8(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestIntToFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		bitDepth int
		expected float32
	}{
		{"16 bit min", -32768, 16, -1},
		{"16 bit half", 16384, 16, 0.5},
		{"24 bit min", -8388608, 24, -1},
		{"8 bit half", 64, 8, 0.5},
		{"20 bit half", 1 << 18, 20, 0.5},
		{"invalid depth defaults to 16", 16384, 0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IntToFloat(tt.input, tt.bitDepth)
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestSampleTo24Bit(t *testing.T) {
	tests := []struct {
		name     string
		input    int32
		expected [3]byte
	}{
		{"zero", 0, [3]byte{0, 0, 0}},
		{"positive", 0x123456, [3]byte{0x56, 0x34, 0x12}},
		{"negative", -256, [3]byte{0x00, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleTo24Bit(tt.input)
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestSamplesToSeconds(t *testing.T) {
	if got := SamplesToSeconds(96000); got != 1 {
		t.Errorf("expected 1s, got %v", got)
	}
	if got := SamplesToSeconds(48000); got != 0.5 {
		t.Errorf("expected 0.5s, got %v", got)
	}
}

func TestSecondsToFrame(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected int64
	}{
		{0, 0},
		{-3, 0},
		{1, 48000},
		{2.5, 120000},
	}

	for _, tt := range tests {
		if got := SecondsToFrame(tt.seconds); got != tt.expected {
			t.Errorf("SecondsToFrame(%v): expected %d, got %d", tt.seconds, tt.expected, got)
		}
	}
}
