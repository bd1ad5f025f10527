// ABOUTME: FFmpeg decoder running the external binary over an in-memory payload
// ABOUTME: Pipes compressed bytes in and reads 48 kHz stereo f32le back
package decode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/monad-player/monad-go/pkg/audio"
	"github.com/rs/zerolog/log"
)

// stderrTail bounds how much ffmpeg stderr ends up in an error message
const stderrTail = 512

// FFmpeg decodes any container ffmpeg understands
type FFmpeg struct {
	// Path to the binary. Empty means the cached copy, then PATH.
	Path string
}

// NewFFmpeg creates an ffmpeg decoder
func NewFFmpeg(path string) *FFmpeg {
	return &FFmpeg{Path: path}
}

// Args returns the ffmpeg argument list: stdin in, 48 kHz stereo f32le out
func Args() []string {
	return []string{
		"-i", "pipe:0",
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"-ar", fmt.Sprint(audio.SampleRate),
		"-ac", fmt.Sprint(audio.Channels),
		"-loglevel", "error",
		"pipe:1",
	}
}

// CachedBinary returns where a downloaded ffmpeg is kept in the user cache directory
func CachedBinary() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	name := "ffmpeg"
	if runtime.GOOS == "windows" {
		name = "ffmpeg.exe"
	}
	return filepath.Join(dir, "monad", name), nil
}

// Binary resolves the ffmpeg executable
func (f *FFmpeg) Binary() (string, error) {
	if f.Path != "" {
		if _, err := os.Stat(f.Path); err != nil {
			return "", fmt.Errorf("%w: ffmpeg not found at %s: %v", audio.ErrDecode, f.Path, err)
		}
		return f.Path, nil
	}

	if cached, err := CachedBinary(); err == nil {
		if _, err := os.Stat(cached); err == nil {
			return cached, nil
		}
	}

	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", fmt.Errorf("%w: ffmpeg not found: %v", audio.ErrDecode, err)
	}
	return path, nil
}

// Open decodes the whole payload in one ffmpeg run
func (f *FFmpeg) Open(ctx context.Context, data []byte, mimeHint string) (Session, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", audio.ErrDecode)
	}

	bin, err := f.Binary()
	if err != nil {
		return nil, err
	}

	log.Debug().Str("ffmpeg", bin).Int("bytes", len(data)).Str("mime", mimeHint).Msg("Decoding with ffmpeg")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, Args()...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg failed: %v%s", audio.ErrDecode, err, formatStderr(stderr.Bytes()))
	}

	samples := ParseF32LE(stdout.Bytes())
	if len(samples) < audio.Channels {
		return nil, fmt.Errorf("%w: ffmpeg produced no audio%s", audio.ErrDecode, formatStderr(stderr.Bytes()))
	}

	s := NewPCMSession(samples)
	dur, _ := s.Duration()
	log.Info().Int("samples", s.Len()).Float64("duration", dur).Msg("ffmpeg decode complete")
	return s, nil
}

func formatStderr(b []byte) string {
	msg := strings.TrimSpace(string(b))
	if msg == "" {
		return ""
	}
	if len(msg) > stderrTail {
		msg = msg[len(msg)-stderrTail:]
	}
	return ": " + msg
}

// exitCode returns the process exit code carried by err, or -1
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
