// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 payloads to float32 samples using go-mp3
package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/monad-player/monad-go/pkg/audio"
)

// decodeMP3 returns interleaved stereo samples at the stream's native rate
func decodeMP3(data []byte) (*rawPCM, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		// A frame sync alone is a weak sniff; let another decoder try
		return nil, fmt.Errorf("%w: failed to create mp3 decoder: %v", audio.ErrUnsupportedFormat, err)
	}

	// go-mp3 always yields 16-bit little-endian stereo
	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("%w: mp3 decode error: %v", audio.ErrDecode, err)
	}

	numSamples := len(pcm) / 2
	samples := make([]float32, numSamples)
	for i := 0; i < numSamples; i++ {
		samples[i] = audio.Int16ToFloat(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}

	return &rawPCM{samples: samples, sampleRate: decoder.SampleRate(), channels: 2}, nil
}
