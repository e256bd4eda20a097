// Package analysis implements the block consumers that turn captured
// audio into display-ready numbers: the log-frequency spectrum binner
// and the loudness/peak meters. Both are independently stateful and
// pulled on demand by whatever renders them.
package analysis

import (
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/magicat777/omega6/internal/audiocore"
	"github.com/magicat777/omega6/internal/conf"
	"github.com/magicat777/omega6/internal/dsp"
	"github.com/magicat777/omega6/internal/errors"
	"github.com/magicat777/omega6/internal/logging"
)

const componentAnalysis = "analysis"

// validBarCounts enumerates the supported spectrum resolutions.
var validBarCounts = map[int]bool{64: true, 128: true, 256: true, 512: true, 1024: true}

// Bar is one display bin of the spectrum: center frequency, smoothed
// level, and held peak, both in dB and clamped at the floor.
type Bar struct {
	Freq  float64
	Level float64
	Peak  float64
}

// Spectrum maps frequency-domain magnitude onto logarithmically spaced
// display bins with temporal averaging and peak-hold decay. It consumes
// raw blocks by running them through the spectral transform first.
type Spectrum struct {
	logger *slog.Logger

	mu        sync.Mutex
	cfg       conf.SpectrumSettings
	floor     float64
	edges     []float64 // len = Bars+1, strictly increasing, [MinFreq, MaxFreq]
	centers   []float64 // len = Bars
	levels    []float64
	peaks     []float64
	peakTimes []time.Time

	now func() time.Time
}

// NewSpectrum creates a spectrum binner from the given settings.
func NewSpectrum(cfg conf.SpectrumSettings, logger *slog.Logger) (*Spectrum, error) {
	if logger == nil {
		logger = logging.ForService(componentAnalysis)
	}
	if err := validateSpectrumConfig(cfg); err != nil {
		return nil, err
	}

	s := &Spectrum{
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
	s.rebuild()
	return s, nil
}

func validateSpectrumConfig(cfg conf.SpectrumSettings) error {
	if !validBarCounts[cfg.Bars] {
		return errors.Newf("unsupported bar count %d", cfg.Bars).
			Component(componentAnalysis).
			Category(errors.CategoryValidation).
			Context("bars", cfg.Bars).
			Build()
	}
	if cfg.MinFreq <= 0 || cfg.MaxFreq <= cfg.MinFreq {
		return errors.Newf("invalid frequency range [%g, %g]", cfg.MinFreq, cfg.MaxFreq).
			Component(componentAnalysis).
			Category(errors.CategoryValidation).
			Build()
	}
	if cfg.Averaging < 0 || cfg.Averaging >= 1 {
		return errors.Newf("averaging factor %g outside [0, 1)", cfg.Averaging).
			Component(componentAnalysis).
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

// rebuild recomputes bin edges and discards all history. Callers hold mu
// or have exclusive access.
func (s *Spectrum) rebuild() {
	bars := s.cfg.Bars
	s.floor = -s.cfg.DBRange

	logMin := math.Log10(s.cfg.MinFreq)
	logMax := math.Log10(s.cfg.MaxFreq)
	s.edges = make([]float64, bars+1)
	for i := range s.edges {
		s.edges[i] = math.Pow(10, logMin+(logMax-logMin)*float64(i)/float64(bars))
	}
	// Pin the endpoints so the covered range is exact.
	s.edges[0] = s.cfg.MinFreq
	s.edges[bars] = s.cfg.MaxFreq

	s.centers = make([]float64, bars)
	for i := range s.centers {
		s.centers[i] = (s.edges[i] + s.edges[i+1]) / 2
	}

	s.levels = make([]float64, bars)
	s.peaks = make([]float64, bars)
	s.peakTimes = make([]time.Time, bars)
	for i := range s.levels {
		s.levels[i] = s.floor
		s.peaks[i] = s.floor
	}
}

// Name implements audiocore.Consumer.
func (s *Spectrum) Name() string { return "enhanced-spectrum" }

// OnBlock implements audiocore.Consumer: transform channel 0 and feed
// the result into the binner.
func (s *Spectrum) OnBlock(block *audiocore.Block) error {
	mags, freqs := dsp.Transform(block.Channel(0), block.SampleRate)
	s.Update(mags, freqs)
	return nil
}

// Update folds one frequency-domain block into the display state.
// Each display bin takes the maximum dB value among the source samples
// whose frequency falls inside it (max-hold, not an average: one loud
// source bin among quiet ones shows loud), then the displayed level is
// smoothed with an exponential moving average. Empty input is a no-op.
func (s *Spectrum) Update(mags, freqs []float64) {
	if len(mags) == 0 {
		return
	}

	db := make([]float64, len(mags))
	for i, m := range mags {
		db[i] = 20 * math.Log10(math.Max(m, dsp.Epsilon))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	alpha := s.cfg.Averaging
	for i := 0; i < s.cfg.Bars; i++ {
		lo := sort.SearchFloat64s(freqs, s.edges[i])
		hi := sort.SearchFloat64s(freqs, s.edges[i+1])

		raw := s.floor
		for j := lo; j < hi; j++ {
			if db[j] > raw {
				raw = db[j]
			}
		}

		s.levels[i] = alpha*s.levels[i] + (1-alpha)*raw
	}

	if s.cfg.PeakHold {
		s.updatePeaks()
	}
}

// updatePeaks raises and restamps exceeded peaks, decays expired ones
// exponentially, then clamps every peak back up to its bin's level.
// The decay-then-clamp order is deliberate; swapping it changes the
// visual fall behavior.
func (s *Spectrum) updatePeaks() {
	now := s.now()
	for i := range s.peaks {
		if s.levels[i] > s.peaks[i] {
			s.peaks[i] = s.levels[i]
			s.peakTimes[i] = now
		}
	}
	for i := range s.peaks {
		if now.Sub(s.peakTimes[i]) > s.cfg.PeakHoldTime {
			s.peaks[i] *= s.cfg.PeakDecay
		}
	}
	for i := range s.peaks {
		if s.peaks[i] < s.levels[i] {
			s.peaks[i] = s.levels[i]
		}
	}
}

// SetBars changes the spectrum resolution. The count must be one of the
// supported values; any change discards history and recomputes edges.
func (s *Spectrum) SetBars(bars int) error {
	if !validBarCounts[bars] {
		return errors.Newf("unsupported bar count %d", bars).
			Component(componentAnalysis).
			Category(errors.CategoryValidation).
			Context("bars", bars).
			Build()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if bars == s.cfg.Bars {
		return nil
	}
	s.cfg.Bars = bars
	s.rebuild()
	s.logger.Info("spectrum bar count changed", "bars", bars)
	return nil
}

// SetDBRange changes the display range; the floor is its negation.
func (s *Spectrum) SetDBRange(dbRange float64) error {
	if dbRange <= 0 {
		return errors.Newf("invalid dB range %g", dbRange).
			Component(componentAnalysis).
			Category(errors.CategoryValidation).
			Build()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.DBRange = dbRange
	s.rebuild()
	return nil
}

// SetPeakHold toggles peak-hold; disabling it clears held peaks.
func (s *Spectrum) SetPeakHold(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.PeakHold = enabled
	if !enabled {
		s.resetPeaksLocked()
	}
}

// ResetPeaks drops all held peaks to the floor.
func (s *Spectrum) ResetPeaks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetPeaksLocked()
}

func (s *Spectrum) resetPeaksLocked() {
	for i := range s.peaks {
		s.peaks[i] = s.floor
		s.peakTimes[i] = time.Time{}
	}
}

// Edges returns a copy of the bin edges, mostly for tests and debug
// output.
func (s *Spectrum) Edges() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]float64, len(s.edges))
	copy(out, s.edges)
	return out
}

// Bars returns the current display state, clamped at the floor. Pulled
// on demand by the renderer; the binner pushes nothing.
func (s *Spectrum) Bars() []Bar {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Bar, s.cfg.Bars)
	for i := range out {
		out[i] = Bar{
			Freq:  s.centers[i],
			Level: math.Max(s.levels[i], s.floor),
			Peak:  math.Max(s.peaks[i], s.floor),
		}
	}
	return out
}

// Floor returns the configured dB floor.
func (s *Spectrum) Floor() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.floor
}
