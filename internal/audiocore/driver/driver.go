// Package driver provides the malgo-based audio backend implementing
// audiocore.Driver for cross-platform capture.
package driver

import (
	"encoding/hex"
	"log/slog"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/magicat777/omega6/internal/audiocore"
	"github.com/magicat777/omega6/internal/conf"
	"github.com/magicat777/omega6/internal/errors"
	"github.com/magicat777/omega6/internal/logging"
)

const component = "audiodriver"

type malgoDriver struct {
	logger *slog.Logger
}

// New returns the production audio driver.
func New(logger *slog.Logger) audiocore.Driver {
	if logger == nil {
		logger = logging.ForService(component)
	}
	return &malgoDriver{logger: logger}
}

// backendForPlatform returns the malgo backend for the current platform.
func backendForPlatform() (malgo.Backend, error) {
	switch runtime.GOOS {
	case "linux":
		return malgo.BackendAlsa, nil
	case "windows":
		return malgo.BackendWasapi, nil
	case "darwin":
		return malgo.BackendCoreaudio, nil
	default:
		return malgo.BackendNull, errors.New(nil).
			Component(component).
			Category(errors.CategoryDevice).
			Context("error", "unsupported operating system").
			Context("os", runtime.GOOS).
			Build()
	}
}

// Devices enumerates capture and playback devices. Channel counts and
// sample rate are reported as the nominal stream parameters; miniaudio
// converts on open when the hardware differs.
func (d *malgoDriver) Devices() ([]audiocore.Device, error) {
	backend, err := backendForPlatform()
	if err != nil {
		return nil, err
	}

	ctx, err := malgo.InitContext([]malgo.Backend{backend}, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, errors.New(err).
			Component(component).
			Category(errors.CategoryDevice).
			Context("operation", "init_context").
			Build()
	}
	defer func() { _ = ctx.Uninit() }()

	blockSeconds := float64(conf.DefaultBlockSize) / float64(conf.DefaultSampleRate)
	latency := time.Duration(blockSeconds * float64(time.Second))

	var devices []audiocore.Device
	appendDevices := func(infos []malgo.DeviceInfo, input bool) {
		for i := range infos {
			// Skip the backend's discard/null device.
			if strings.Contains(infos[i].Name(), "Discard all samples") {
				continue
			}
			decodedID, err := hexToASCII(infos[i].ID.String())
			if err != nil {
				decodedID = infos[i].ID.String()
			}
			dev := audiocore.Device{
				Index:      len(devices),
				Name:       infos[i].Name(),
				ID:         decodedID,
				SampleRate: conf.DefaultSampleRate,
				IsDefault:  infos[i].IsDefault == 1,
				Latency:    latency,
			}
			if input {
				dev.InputChannels = conf.DefaultChannels
			} else {
				dev.OutputChannels = conf.DefaultChannels
			}
			devices = append(devices, dev)
		}
	}

	captureInfos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, errors.New(err).
			Component(component).
			Category(errors.CategoryDevice).
			Context("operation", "enumerate_capture_devices").
			Build()
	}
	appendDevices(captureInfos, true)

	playbackInfos, err := ctx.Devices(malgo.Playback)
	if err != nil {
		// Playback devices are informational only; capture still works.
		d.logger.Warn("playback device enumeration failed", "error", err)
	} else {
		appendDevices(playbackInfos, false)
	}

	return devices, nil
}

// Open prepares a capture stream against the device identified by
// cfg.DeviceID (decoded backend ID or name; empty selects the system
// default). The stream is returned stopped.
func (d *malgoDriver) Open(cfg audiocore.StreamConfig, onData audiocore.DataFunc) (audiocore.Stream, error) {
	backend, err := backendForPlatform()
	if err != nil {
		return nil, err
	}

	ctx, err := malgo.InitContext([]malgo.Backend{backend}, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, errors.New(err).
			Component(component).
			Category(errors.CategoryDevice).
			Context("operation", "init_context").
			Build()
	}

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		_ = ctx.Uninit()
		return nil, errors.New(err).
			Component(component).
			Category(errors.CategoryDevice).
			Context("operation", "enumerate_devices").
			Build()
	}

	info, err := selectDevice(infos, cfg.DeviceID)
	if err != nil {
		_ = ctx.Uninit()
		return nil, err
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = uint32(cfg.Channels)
	deviceConfig.Capture.DeviceID = info.ID.Pointer()
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(cfg.BlockSize)
	deviceConfig.Alsa.NoMMap = 1

	stream := &malgoStream{
		ctx:    ctx,
		logger: d.logger,
	}

	// Scratch buffer reused across callbacks so the hot path only pays
	// for the conversion, not an allocation.
	scratch := make([]float64, cfg.BlockSize*cfg.Channels)

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, pInput []byte, framecount uint32) {
			n := samplesToFloat64(pInput, scratch)
			onData(scratch[:n], cfg.Channels, cfg.SampleRate)
		},
		Stop: stream.onDeviceStop,
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = ctx.Uninit()
		return nil, errors.New(err).
			Component(component).
			Category(errors.CategoryDevice).
			Context("operation", "init_device").
			Context("device_name", info.Name()).
			Build()
	}
	stream.device = device

	d.logger.Info("capture stream prepared",
		"device", info.Name(),
		"sample_rate", cfg.SampleRate,
		"block_size", cfg.BlockSize,
		"channels", cfg.Channels)
	return stream, nil
}

// malgoStream wraps an initialized malgo device and its context.
type malgoStream struct {
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	logger  *slog.Logger
	stopped atomic.Bool
}

func (s *malgoStream) Start() error {
	s.stopped.Store(false)
	if err := s.device.Start(); err != nil {
		return errors.New(err).
			Component(component).
			Category(errors.CategoryAudio).
			Context("operation", "start_device").
			Build()
	}
	return nil
}

func (s *malgoStream) Stop() error {
	s.stopped.Store(true)
	if err := s.device.Stop(); err != nil {
		return errors.New(err).
			Component(component).
			Category(errors.CategoryAudio).
			Context("operation", "stop_device").
			Build()
	}
	return nil
}

func (s *malgoStream) Close() error {
	s.stopped.Store(true)
	if s.device != nil {
		s.device.Uninit()
		s.device = nil
	}
	if s.ctx != nil {
		_ = s.ctx.Uninit()
		s.ctx = nil
	}
	return nil
}

// onDeviceStop fires when the device stops. After an unexpected stop the
// stream tries a single restart; a deliberate Stop/Close suppresses it.
func (s *malgoStream) onDeviceStop() {
	if s.stopped.Load() {
		return
	}
	go func() {
		time.Sleep(100 * time.Millisecond)
		if s.stopped.Load() || s.device == nil {
			return
		}
		if err := s.device.Start(); err != nil {
			s.logger.Error("failed to restart audio device", "error", err)
		} else {
			s.logger.Info("audio device restarted after unexpected stop")
		}
	}()
}

// selectDevice finds a capture device by decoded ID, exact name, or
// partial name. Empty or "default" picks the system default device.
func selectDevice(infos []malgo.DeviceInfo, deviceID string) (*malgo.DeviceInfo, error) {
	if deviceID == "" || deviceID == "default" {
		for i := range infos {
			if infos[i].IsDefault == 1 {
				return &infos[i], nil
			}
		}
		if len(infos) > 0 {
			return &infos[0], nil
		}
	}

	for i := range infos {
		decodedID, err := hexToASCII(infos[i].ID.String())
		if err == nil && decodedID == deviceID {
			return &infos[i], nil
		}
	}
	for i := range infos {
		if infos[i].Name() == deviceID {
			return &infos[i], nil
		}
	}
	for i := range infos {
		if strings.Contains(infos[i].Name(), deviceID) {
			return &infos[i], nil
		}
	}

	return nil, errors.New(nil).
		Component(component).
		Category(errors.CategoryNotFound).
		Context("device_id", deviceID).
		Context("available_devices", len(infos)).
		Context("error", "no matching audio device found").
		Build()
}

// hexToASCII converts a hexadecimal string to an ASCII string.
func hexToASCII(hexStr string) (string, error) {
	bytes, err := hex.DecodeString(hexStr)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
