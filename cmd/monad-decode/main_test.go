// ABOUTME: Tests for the offline decode tool
// ABOUTME: Tests session draining and WAV output round trips through the native decoder
package main

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/monad-player/monad-go/pkg/audio/decode"
)

func TestDrainCollectsAllChunks(t *testing.T) {
	samples := make([]float32, 5000)
	for i := range samples {
		samples[i] = float32(i%100) / 100
	}

	got, err := drain(context.Background(), decode.NewPCMSession(samples))
	if err != nil {
		t.Fatalf("drain failed: %v", err)
	}
	if len(got) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(got))
	}
	for i := range got {
		if got[i] != samples[i] {
			t.Fatalf("sample %d: expected %v, got %v", i, samples[i], got[i])
		}
	}
}

func TestDrainHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := drain(ctx, decode.NewPCMSession(make([]float32, 10))); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestWriteWAVRoundTrip(t *testing.T) {
	samples := []float32{0, 0, 0.5, -0.5, 0.25, -0.25, 0, 0}

	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := writeWAV(f, samples); err != nil {
		t.Fatalf("writeWAV failed: %v", err)
	}
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	session, err := decode.NewNative().Open(context.Background(), data, "")
	if err != nil {
		t.Fatalf("native decode of written wav failed: %v", err)
	}

	got, err := drain(context.Background(), session)
	if err != nil {
		t.Fatalf("drain failed: %v", err)
	}
	if len(got) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(got))
	}
	for i := range samples {
		if math.Abs(float64(got[i]-samples[i])) > 1e-3 {
			t.Errorf("sample %d: expected %v, got %v", i, samples[i], got[i])
		}
	}
}
