// ABOUTME: Audio decoder package turning compressed payloads into PCM sessions
// ABOUTME: Provides the ffmpeg adapter, in-process codecs and the Session interface
// Package decode turns compressed audio into sessions of interleaved float32
// stereo at 48 kHz, delivered in chunks of 2048 samples.
//
// FFmpeg is the default decoder. It runs the external binary once over the
// whole payload, or, through OpenStream, while the payload is still arriving.
// Native decodes MP3, FLAC, WAV and Ogg Vorbis in process and resamples them
// to 48 kHz. Chain combines decoders, moving on when one reports
// audio.ErrUnsupportedFormat.
//
// Example:
//
//	dec, err := decode.New("auto", "")
//	session, err := dec.Open(ctx, payload, "audio/mpeg")
//	for {
//	    chunk, err := session.DecodeNext()
//	    if err == io.EOF {
//	        break
//	    }
//	    buf.Write(chunk)
//	}
package decode
