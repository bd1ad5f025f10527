// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Drives a miniaudio playback device at its native sample format via a pull callback
package output

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/monad-player/monad-go/pkg/audio"
	"github.com/rs/zerolog/log"
)

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	renderer *Renderer
	name     string

	mu     sync.Mutex
	closed bool
}

// NewMalgo opens and starts a playback device
func NewMalgo(p Params) (*Malgo, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize malgo context: %v", audio.ErrOutput, err)
	}

	m := &Malgo{malgoCtx: ctx}
	if err := m.open(p); err != nil {
		m.freeContext()
		return nil, err
	}
	return m, nil
}

func (m *Malgo) open(p Params) error {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	// FormatUnknown asks for the device's native format; rate and channels are converted by miniaudio
	deviceConfig.Playback.Format = malgo.FormatUnknown
	deviceConfig.Playback.Channels = audio.Channels
	deviceConfig.SampleRate = audio.SampleRate
	deviceConfig.Alsa.NoMMap = 1

	frames := p.BufferFrames
	if frames <= 0 {
		frames = DefaultBufferFrames
	}
	deviceConfig.PeriodSizeInFrames = uint32(frames)

	infos, err := m.malgoCtx.Devices(malgo.Playback)
	if err != nil {
		log.Warn().Err(err).Msg("Could not enumerate playback devices")
	}

	m.name = "default"
	if p.Device != "" {
		info, ok := findDevice(infos, p.Device)
		if !ok {
			return fmt.Errorf("%w: output device %q not found", audio.ErrOutput, p.Device)
		}
		deviceConfig.Playback.DeviceID = info.ID.Pointer()
		m.name = info.Name()
	} else if info, ok := defaultDevice(infos); ok {
		m.name = info.Name()
	}

	// The callback only starts after Start, by which point renderer is set
	var renderer *Renderer
	deviceCallbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSamples []byte, frameCount uint32) {
			renderer.Render(pOutputSample)
		},
	}

	device, err := malgo.InitDevice(m.malgoCtx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		return fmt.Errorf("%w: failed to initialize playback device: %v", audio.ErrOutput, err)
	}

	format, err := fromMalgoFormat(device.PlaybackFormat())
	if err != nil {
		device.Uninit()
		return err
	}

	renderer, err = NewRenderer(p, format)
	if err != nil {
		device.Uninit()
		return err
	}
	m.renderer = renderer

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("%w: failed to start device: %v", audio.ErrOutput, err)
	}
	m.device = device

	log.Info().
		Str("device", m.name).
		Str("format", format.String()).
		Int("sample_rate", audio.SampleRate).
		Int("period_frames", frames).
		Msg("Audio output initialized (malgo)")

	return nil
}

// SampleRate returns 48000
func (m *Malgo) SampleRate() int { return audio.SampleRate }

// Channels returns 2
func (m *Malgo) Channels() int { return audio.Channels }

// DeviceName names the open device
func (m *Malgo) DeviceName() string { return m.name }

// Format returns the device's native sample format
func (m *Malgo) Format() SampleFormat { return m.renderer.Format() }

// Underruns counts partly filled periods
func (m *Malgo) Underruns() uint64 { return m.renderer.Underruns() }

// Pulls counts callback invocations
func (m *Malgo) Pulls() uint64 { return m.renderer.Pulls() }

// Close stops the device and releases the context
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true

	if m.device != nil {
		if err := m.device.Stop(); err != nil {
			log.Warn().Err(err).Msg("Device stop error")
		}
		m.device.Uninit()
		m.device = nil
	}
	m.freeContext()
	return nil
}

func (m *Malgo) freeContext() {
	if m.malgoCtx == nil {
		return
	}
	if err := m.malgoCtx.Uninit(); err != nil {
		log.Warn().Err(err).Msg("Malgo context uninit error")
	}
	m.malgoCtx.Free()
	m.malgoCtx = nil
}

// ListDevices enumerates playback devices
func ListDevices() ([]Device, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize malgo context: %v", audio.ErrOutput, err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to enumerate devices: %v", audio.ErrOutput, err)
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		devices = append(devices, Device{Name: info.Name(), Default: info.IsDefault != 0})
	}
	return devices, nil
}

// DefaultDeviceName returns the system default playback device, if one is reported
func DefaultDeviceName() (string, bool) {
	devices, err := ListDevices()
	if err != nil {
		return "", false
	}
	for _, d := range devices {
		if d.Default {
			return d.Name, true
		}
	}
	return "", false
}

func findDevice(infos []malgo.DeviceInfo, name string) (malgo.DeviceInfo, bool) {
	for _, info := range infos {
		if info.Name() == name {
			return info, true
		}
	}
	return malgo.DeviceInfo{}, false
}

func defaultDevice(infos []malgo.DeviceInfo) (malgo.DeviceInfo, bool) {
	for _, info := range infos {
		if info.IsDefault != 0 {
			return info, true
		}
	}
	return malgo.DeviceInfo{}, false
}

// fromMalgoFormat maps a miniaudio format to the render path for it
func fromMalgoFormat(format malgo.FormatType) (SampleFormat, error) {
	switch format {
	case malgo.FormatF32:
		return FormatF32, nil
	case malgo.FormatS16:
		return FormatS16, nil
	case malgo.FormatS24:
		return FormatS24, nil
	case malgo.FormatS32:
		return FormatS32, nil
	case malgo.FormatU8:
		return FormatU8, nil
	default:
		return 0, fmt.Errorf("%w: unsupported device format %d", audio.ErrOutput, format)
	}
}
