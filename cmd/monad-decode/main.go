// ABOUTME: Entry point for the offline decode tool
// ABOUTME: Runs the decoder adapter over a file and writes the result as a 16-bit WAV
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/monad-player/monad-go/pkg/audio"
	"github.com/monad-player/monad-go/pkg/audio/decode"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	input       = flag.String("in", "", "Input audio file")
	outputPath  = flag.String("out", "decoded.wav", "Output WAV path")
	decoderName = flag.String("decoder", "ffmpeg", "Decoder: ffmpeg, native or auto")
	ffmpegPath  = flag.String("ffmpeg", "", "Path to the ffmpeg binary")
	mimeHint    = flag.String("mime", "", "MIME hint passed to the decoder")
	start       = flag.Float64("start", 0, "Start offset in seconds")
	stream      = flag.Bool("stream", false, "Decode while reading instead of loading the file first")
	debug       = flag.Bool("debug", false, "Enable debug logging")
)

// waitPoll is the nap while a streaming session has nothing ready
const waitPoll = 2 * time.Millisecond

func main() {
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Decode failed")
	}
}

func run(ctx context.Context) error {
	dec, err := decode.New(*decoderName, *ffmpegPath)
	if err != nil {
		return err
	}

	session, err := open(ctx, dec)
	if err != nil {
		return err
	}
	defer session.Close()

	if *start > 0 {
		if err := session.Seek(*start); err != nil {
			return fmt.Errorf("failed to seek: %w", err)
		}
	}

	began := time.Now()
	samples, err := drain(ctx, session)
	if err != nil {
		return err
	}

	out, err := os.Create(*outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := writeWAV(out, samples); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}

	log.Info().
		Str("out", *outputPath).
		Float64("seconds", audio.SamplesToSeconds(int64(len(samples)))).
		Dur("took", time.Since(began)).
		Msg("Decoded")
	return nil
}

func open(ctx context.Context, dec decode.Decoder) (decode.Session, error) {
	if *stream {
		sd, ok := dec.(decode.StreamDecoder)
		if !ok {
			return nil, fmt.Errorf("decoder %q cannot stream", *decoderName)
		}
		f, err := os.Open(*input)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		return sd.OpenStream(ctx, f, *mimeHint)
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return dec.Open(ctx, data, *mimeHint)
}

// drain collects every chunk of the session
func drain(ctx context.Context, s decode.Session) ([]float32, error) {
	var samples []float32
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunk, err := s.DecodeNext()
		if errors.Is(err, io.EOF) {
			return samples, nil
		}
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			time.Sleep(waitPoll)
			continue
		}
		samples = append(samples, chunk...)
	}
}

// writeWAV encodes 48 kHz stereo samples as 16-bit PCM
func writeWAV(w io.WriteSeeker, samples []float32) error {
	enc := wav.NewEncoder(w, audio.SampleRate, 16, audio.Channels, 1)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(audio.FloatToInt16(s))
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: audio.Channels, SampleRate: audio.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav: %w", err)
	}
	return nil
}
