// Package conf defines the application settings, their defaults, and the
// viper-based loading from config file and environment.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// CaptureSettings holds parameters for the audio input stream.
type CaptureSettings struct {
	Device     string        `yaml:"device"`                             // preferred device name or keyword, empty for auto selection
	SampleRate int           `yaml:"samplerate" validate:"gt=0"`         // capture sample rate in Hz
	BlockSize  int           `yaml:"blocksize" validate:"gt=0"`          // samples per block per channel
	Channels   int           `yaml:"channels" validate:"min=1,max=8"`    // channel count, 2 for stereo
	QueueSize  int           `yaml:"queuesize" validate:"gt=0"`          // capture queue capacity in blocks
	PopTimeout time.Duration `yaml:"poptimeout" validate:"gt=0"`         // queue wait per processing loop iteration
}

// SpectrumSettings holds the spectrum analyzer configuration.
type SpectrumSettings struct {
	Bars         int           `yaml:"bars" validate:"oneof=64 128 256 512 1024"`
	MinFreq      float64       `yaml:"minfreq" validate:"gt=0"`
	MaxFreq      float64       `yaml:"maxfreq" validate:"gtfield=MinFreq"`
	DBRange      float64       `yaml:"dbrange" validate:"oneof=60 80 100 120"`
	Averaging    float64       `yaml:"averaging" validate:"gte=0,lt=1"` // EMA factor, higher is smoother
	PeakHold     bool          `yaml:"peakhold"`
	PeakHoldTime time.Duration `yaml:"peakholdtime" validate:"gt=0"`
	PeakDecay    float64       `yaml:"peakdecay" validate:"gt=0,lt=1"`
}

// MeterSettings holds the loudness/peak meter configuration.
type MeterSettings struct {
	Weighting      string  `yaml:"weighting" validate:"oneof=K A C Z"`
	Gated          bool    `yaml:"gated"`
	HistorySeconds float64 `yaml:"historyseconds" validate:"gt=0"`
}

// MetricsSettings holds the optional Prometheus endpoint configuration.
type MetricsSettings struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Settings is the root configuration object.
type Settings struct {
	Debug    bool             `yaml:"debug"`
	Capture  CaptureSettings  `yaml:"capture"`
	Spectrum SpectrumSettings `yaml:"spectrum"`
	Meters   MeterSettings    `yaml:"meters"`
	Metrics  MetricsSettings  `yaml:"metrics"`
}

// Load reads settings from the config file (if present), environment
// variables prefixed with OMEGA6_, and built-in defaults, then validates
// the result. A missing config file is not an error.
func Load() (*Settings, error) {
	setDefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(dir, "omega6"))
	}
	viper.SetEnvPrefix("omega6")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("unmarshaling settings: %w", err)
	}

	if err := Validate(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Validate checks settings against their struct constraints.
func Validate(s *Settings) error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// DumpYAML renders the settings as YAML, used by the config subcommand to
// write a starter config file.
func DumpYAML(s *Settings) ([]byte, error) {
	return yaml.Marshal(s)
}
