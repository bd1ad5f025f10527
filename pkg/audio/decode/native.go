// ABOUTME: In-process decoder for the containers pure-Go codecs handle
// ABOUTME: Sniffs the payload, decodes it and normalises to 48 kHz stereo
package decode

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/monad-player/monad-go/pkg/audio"
	"github.com/monad-player/monad-go/pkg/audio/resample"
	"github.com/rs/zerolog/log"
)

// MIMERawFloat marks a payload that is already 48 kHz stereo f32le
const MIMERawFloat = "audio/x-raw-float"

// Container names a payload format
type Container string

const (
	ContainerUnknown Container = ""
	ContainerMP3     Container = "mp3"
	ContainerFLAC    Container = "flac"
	ContainerWAV     Container = "wav"
	ContainerOgg     Container = "ogg"
	ContainerWebM    Container = "webm"
	ContainerMP4     Container = "m4a"
	ContainerRaw     Container = "f32le"
)

// rawPCM is decoder output before normalisation
type rawPCM struct {
	samples    []float32
	sampleRate int
	channels   int
}

// ContainerFromMIME maps a Content-Type to a container
func ContainerFromMIME(mime string) Container {
	mime = strings.ToLower(mime)
	switch {
	case mime == "":
		return ContainerUnknown
	case strings.Contains(mime, MIMERawFloat):
		return ContainerRaw
	case strings.Contains(mime, "webm"), strings.Contains(mime, "opus"):
		return ContainerWebM
	case strings.Contains(mime, "mp4"), strings.Contains(mime, "m4a"), strings.Contains(mime, "aac"):
		return ContainerMP4
	case strings.Contains(mime, "mp3"), strings.Contains(mime, "mpeg"):
		return ContainerMP3
	case strings.Contains(mime, "ogg"), strings.Contains(mime, "vorbis"):
		return ContainerOgg
	case strings.Contains(mime, "flac"):
		return ContainerFLAC
	case strings.Contains(mime, "wav"), strings.Contains(mime, "wave"):
		return ContainerWAV
	default:
		return ContainerUnknown
	}
}

// Sniff identifies the container from magic bytes, falling back to the MIME hint
func Sniff(data []byte, mimeHint string) Container {
	switch {
	case bytes.HasPrefix(data, []byte("fLaC")):
		return ContainerFLAC
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return ContainerWAV
	case bytes.HasPrefix(data, []byte("OggS")):
		return ContainerOgg
	case bytes.HasPrefix(data, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return ContainerWebM
	case len(data) >= 8 && bytes.Equal(data[4:8], []byte("ftyp")):
		return ContainerMP4
	case bytes.HasPrefix(data, []byte("ID3")):
		return ContainerMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0 && data[1]&0x06 != 0:
		// MPEG frame sync with a layer set; AAC ADTS has layer bits zero
		return ContainerMP3
	}
	return ContainerFromMIME(mimeHint)
}

// Native decodes MP3, FLAC, WAV, Ogg Vorbis and raw f32le without external tools
type Native struct{}

// NewNative creates an in-process decoder
func NewNative() *Native {
	return &Native{}
}

// Open decodes the payload completely and serves it from memory
func (n *Native) Open(ctx context.Context, data []byte, mimeHint string) (Session, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", audio.ErrDecode)
	}

	container := Sniff(data, mimeHint)

	var (
		raw *rawPCM
		err error
	)
	switch container {
	case ContainerMP3:
		raw, err = decodeMP3(data)
	case ContainerFLAC:
		raw, err = decodeFLAC(data)
	case ContainerWAV:
		raw, err = decodeWAV(data)
	case ContainerOgg:
		raw, err = decodeVorbis(data)
	case ContainerRaw:
		raw = &rawPCM{samples: ParseF32LE(data), sampleRate: audio.SampleRate, channels: audio.Channels}
	default:
		return nil, fmt.Errorf("%w: no native codec for %q (mime %q)", audio.ErrUnsupportedFormat, container, mimeHint)
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	samples := Normalize(raw.samples, raw.sampleRate, raw.channels)
	if len(samples) < audio.Channels {
		return nil, fmt.Errorf("%w: %s payload contains no audio", audio.ErrDecode, container)
	}

	log.Info().
		Str("container", string(container)).
		Int("source_rate", raw.sampleRate).
		Int("source_channels", raw.channels).
		Int("samples", len(samples)).
		Msg("Native decode complete")

	return NewPCMSession(samples), nil
}

// Normalize maps interleaved audio to stereo and resamples it to 48 kHz.
// Mono is duplicated; beyond two channels only front left and right are kept.
func Normalize(samples []float32, sampleRate, channels int) []float32 {
	if channels <= 0 {
		return nil
	}

	stereo := samples
	if channels != audio.Channels {
		frames := len(samples) / channels
		stereo = make([]float32, frames*audio.Channels)
		for i := 0; i < frames; i++ {
			left := samples[i*channels]
			right := left
			if channels > 1 {
				right = samples[i*channels+1]
			}
			stereo[i*2] = left
			stereo[i*2+1] = right
		}
	}

	if sampleRate > 0 && sampleRate != audio.SampleRate {
		stereo = resample.Convert(stereo, sampleRate, audio.SampleRate, audio.Channels)
	}
	return stereo
}
