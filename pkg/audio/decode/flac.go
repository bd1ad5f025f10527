// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC payloads frame by frame using mewkiz/flac
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/monad-player/monad-go/pkg/audio"
)

// decodeFLAC returns interleaved samples at the stream's native rate and channel count
func decodeFLAC(data []byte) (*rawPCM, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode FLAC: %v", audio.ErrDecode, err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)
	if channels == 0 {
		return nil, fmt.Errorf("%w: FLAC stream has no channels", audio.ErrDecode)
	}

	var samples []float32
	if info.NSamples > 0 {
		samples = make([]float32, 0, int(info.NSamples)*channels)
	}

	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: FLAC frame: %v", audio.ErrDecode, err)
		}

		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, audio.IntToFloat(int(frame.Subframes[ch].Samples[i]), bitDepth))
			}
		}
	}

	return &rawPCM{samples: samples, sampleRate: int(info.SampleRate), channels: channels}, nil
}
