// ABOUTME: Ogg Vorbis audio decoder
// ABOUTME: Decodes Vorbis payloads to float32 samples using jfreymuth/oggvorbis
package decode

import (
	"bytes"
	"fmt"

	"github.com/jfreymuth/oggvorbis"
	"github.com/monad-player/monad-go/pkg/audio"
)

// opusProbeBytes covers the first Ogg page, where the codec identification packet lives
const opusProbeBytes = 512

// isOggOpus reports whether the first Ogg page carries an Opus identification header
func isOggOpus(data []byte) bool {
	if len(data) > opusProbeBytes {
		data = data[:opusProbeBytes]
	}
	return bytes.Contains(data, []byte("OpusHead"))
}

// decodeVorbis returns interleaved samples at the stream's native rate and channel count.
// Ogg streams that do not carry Vorbis are reported as unsupported so a chain can fall through.
func decodeVorbis(data []byte) (*rawPCM, error) {
	if isOggOpus(data) {
		return nil, fmt.Errorf("%w: ogg opus has no native codec", audio.ErrUnsupportedFormat)
	}
	if _, err := oggvorbis.GetFormat(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: not an ogg vorbis stream: %v", audio.ErrUnsupportedFormat, err)
	}

	samples, format, err := oggvorbis.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: vorbis decode: %v", audio.ErrDecode, err)
	}

	return &rawPCM{samples: samples, sampleRate: format.SampleRate, channels: format.Channels}, nil
}
