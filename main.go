// ABOUTME: Entry point for the monad audio player
// ABOUTME: Parses CLI flags, opens the engine and plays the given files or URLs
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/monad-player/monad-go/internal/app"
	"github.com/monad-player/monad-go/internal/ui"
	"github.com/monad-player/monad-go/internal/version"
	"github.com/monad-player/monad-go/pkg/audio/output"
	"github.com/monad-player/monad-go/pkg/engine"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	backend     = flag.String("backend", "malgo", "Audio output backend: malgo, oto or null")
	device      = flag.String("device", "", "Output device name (default: system default)")
	listDevices = flag.Bool("list-devices", false, "List output devices and exit")
	decoderName = flag.String("decoder", "ffmpeg", "Decoder: ffmpeg, native or auto")
	ffmpegPath  = flag.String("ffmpeg", "", "Path to the ffmpeg binary")
	volume      = flag.Int("volume", 85, "Initial volume (0-100)")
	stream      = flag.Bool("stream", false, "Decode URLs while they download")
	logFile     = flag.String("log-file", "monad-player.log", "Log file path")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	debug       = flag.Bool("debug", false, "Enable debug logging")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <file-or-url>...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", version.Product, version.Version)
		return
	}

	if *listDevices {
		if err := printDevices(); err != nil {
			stdlog.Fatalf("Failed to list devices: %v", err)
		}
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		stdlog.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()
	setupLogging(f, useTUI)

	log.Info().Str("version", version.Version).Msgf("Starting %s", version.Product)

	eng, err := engine.New(engine.Config{
		Backend:       output.Backend(*backend),
		Device:        *device,
		Decoder:       *decoderName,
		FFmpegPath:    *ffmpegPath,
		InitialVolume: float32(*volume) / 100,
		StreamURLs:    *stream,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start audio engine")
	}
	defer func() {
		if err := eng.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing engine")
		}
		log.Info().Msg("Player stopped")
	}()

	// TUI setup
	var (
		tuiProg  *tea.Program
		controls *ui.Controls
	)
	if useTUI {
		controls = ui.NewControls()
		tuiProg, err = ui.Run(controls)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to start TUI")
		}
		go func() {
			if _, err := tuiProg.Run(); err != nil {
				log.Error().Err(err).Msg("TUI exited")
			}
		}()
		defer tuiProg.Quit()
	}

	cfg := app.Config{
		Sources:  flag.Args(),
		Controls: controls,
	}
	if tuiProg != nil {
		cfg.OnStatus = func(msg ui.StatusMsg) { tuiProg.Send(msg) }
	}
	player := app.New(cfg, eng)

	// Handle shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := player.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Player failed")
	}
}

// setupLogging routes zerolog to the log file, and also to a console writer when the TUI is off
func setupLogging(f *os.File, useTUI bool) {
	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	var w io.Writer = f
	if !useTUI {
		w = zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: os.Stdout}, f)
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

func printDevices() error {
	devices, err := output.ListDevices()
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Println("No output devices found")
		return nil
	}
	for _, d := range devices {
		marker := " "
		if d.Default {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, d.Name)
	}
	return nil
}
