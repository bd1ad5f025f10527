// ABOUTME: WAV audio decoder
// ABOUTME: Decodes integer PCM WAV payloads using go-audio/wav
package decode

import (
	"bytes"
	"fmt"

	"github.com/go-audio/wav"
	"github.com/monad-player/monad-go/pkg/audio"
)

// wavFormatFloat is the WAVE_FORMAT_IEEE_FLOAT tag
const wavFormatFloat = 3

// decodeWAV returns interleaved samples at the file's native rate and channel count
func decodeWAV(data []byte) (*rawPCM, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid WAV file", audio.ErrDecode)
	}

	if decoder.WavAudioFormat == wavFormatFloat {
		return nil, fmt.Errorf("%w: float WAV", audio.ErrUnsupportedFormat)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: WAV decode: %v", audio.ErrDecode, err)
	}

	bitDepth := int(decoder.BitDepth)
	samples := make([]float32, len(buf.Data))
	for i, s := range buf.Data {
		if bitDepth == 8 {
			// 8-bit WAV is unsigned
			s -= 128
		}
		samples[i] = audio.IntToFloat(s, bitDepth)
	}

	return &rawPCM{
		samples:    samples,
		sampleRate: int(decoder.SampleRate),
		channels:   int(decoder.NumChans),
	}, nil
}
