// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Nominal capture parameters. The stream is opened at a fixed rate and
// block size; devices that cannot provide them are resampled by the
// audio backend.
const (
	DefaultSampleRate = 48000
	DefaultBlockSize  = 512
	DefaultChannels   = 2
	DefaultQueueSize  = 100
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("capture.device", "")
	viper.SetDefault("capture.samplerate", DefaultSampleRate)
	viper.SetDefault("capture.blocksize", DefaultBlockSize)
	viper.SetDefault("capture.channels", DefaultChannels)
	viper.SetDefault("capture.queuesize", DefaultQueueSize)
	viper.SetDefault("capture.poptimeout", 100*time.Millisecond)

	viper.SetDefault("spectrum.bars", 256)
	viper.SetDefault("spectrum.minfreq", 20.0)
	viper.SetDefault("spectrum.maxfreq", 20000.0)
	viper.SetDefault("spectrum.dbrange", 80.0)
	viper.SetDefault("spectrum.averaging", 0.8)
	viper.SetDefault("spectrum.peakhold", true)
	viper.SetDefault("spectrum.peakholdtime", 3*time.Second)
	viper.SetDefault("spectrum.peakdecay", 0.95)

	viper.SetDefault("meters.weighting", "K")
	viper.SetDefault("meters.gated", true)
	viper.SetDefault("meters.historyseconds", 3.0)

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.listen", "0.0.0.0:8090")
}

// Default returns settings populated with the built-in defaults only,
// bypassing config file and environment. Used by tests and by commands
// that need a baseline before flags are applied.
func Default() *Settings {
	return &Settings{
		Capture: CaptureSettings{
			SampleRate: DefaultSampleRate,
			BlockSize:  DefaultBlockSize,
			Channels:   DefaultChannels,
			QueueSize:  DefaultQueueSize,
			PopTimeout: 100 * time.Millisecond,
		},
		Spectrum: SpectrumSettings{
			Bars:         256,
			MinFreq:      20.0,
			MaxFreq:      20000.0,
			DBRange:      80.0,
			Averaging:    0.8,
			PeakHold:     true,
			PeakHoldTime: 3 * time.Second,
			PeakDecay:    0.95,
		},
		Meters: MeterSettings{
			Weighting:      "K",
			Gated:          true,
			HistorySeconds: 3.0,
		},
		Metrics: MetricsSettings{
			Enabled: false,
			Listen:  "0.0.0.0:8090",
		},
	}
}
