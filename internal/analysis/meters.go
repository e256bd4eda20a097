package analysis

import (
	"log/slog"
	"math"
	"sync"

	"github.com/magicat777/omega6/internal/audiocore"
	"github.com/magicat777/omega6/internal/conf"
	"github.com/magicat777/omega6/internal/dsp"
	"github.com/magicat777/omega6/internal/errors"
	"github.com/magicat777/omega6/internal/logging"
)

// Weighting selects the per-sample scaling mode for loudness.
type Weighting string

const (
	WeightingK Weighting = "K"
	WeightingA Weighting = "A"
	WeightingC Weighting = "C"
	WeightingZ Weighting = "Z"
)

// weightingGains holds the per-mode sample scale. These are flat unity
// placeholders rather than real filter curves; the loudness figures are
// comparative, not BS.1770-compliant, and the formula is kept as-is for
// parity with established readings.
var weightingGains = map[Weighting]float64{
	WeightingK: 1.0,
	WeightingA: 1.0,
	WeightingC: 1.0,
	WeightingZ: 1.0,
}

const (
	// loudnessOffset is the fixed term of the loudness formula.
	loudnessOffset = -0.691

	// loudnessGate is the relative threshold for gated integration, in
	// loudness units.
	loudnessGate = -70.0

	// gatingMinHistory is the minimum history length before gating
	// applies.
	gatingMinHistory = 10
)

// MeterSnapshot is the pull-on-demand output of the meters: per-channel
// RMS and true peak, plus momentary/short-term/integrated loudness.
type MeterSnapshot struct {
	RMSL       float64
	RMSR       float64
	TruePeakL  float64
	TruePeakR  float64
	Momentary  float64
	ShortTerm  float64
	Integrated float64
}

// Meters computes RMS, oversampled true peak, and a simplified loudness
// estimate per captured block. Loudness history is a bounded sliding
// window of roughly three seconds of blocks at the current rate.
type Meters struct {
	logger *slog.Logger

	mu             sync.Mutex
	weighting      Weighting
	gated          bool
	historySeconds float64
	history        []float64
	snapshot       MeterSnapshot
}

// NewMeters creates a level meter from the given settings.
func NewMeters(cfg conf.MeterSettings, logger *slog.Logger) (*Meters, error) {
	if logger == nil {
		logger = logging.ForService(componentAnalysis)
	}
	w := Weighting(cfg.Weighting)
	if _, ok := weightingGains[w]; !ok {
		return nil, errors.Newf("unsupported weighting mode %q", cfg.Weighting).
			Component(componentAnalysis).
			Category(errors.CategoryValidation).
			Build()
	}
	historySeconds := cfg.HistorySeconds
	if historySeconds <= 0 {
		historySeconds = 3.0
	}

	return &Meters{
		logger:         logger,
		weighting:      w,
		gated:          cfg.Gated,
		historySeconds: historySeconds,
		snapshot:       emptySnapshot(),
	}, nil
}

func emptySnapshot() MeterSnapshot {
	return MeterSnapshot{
		RMSL:       dsp.DBFloor,
		RMSR:       dsp.DBFloor,
		TruePeakL:  dsp.DBFloor,
		TruePeakR:  dsp.DBFloor,
		Momentary:  dsp.DBFloor,
		ShortTerm:  dsp.DBFloor,
		Integrated: dsp.DBFloor,
	}
}

// Name implements audiocore.Consumer.
func (m *Meters) Name() string { return "studio-meters" }

// OnBlock implements audiocore.Consumer.
func (m *Meters) OnBlock(block *audiocore.Block) error {
	if block.Frames() == 0 {
		return nil
	}

	left := block.Channel(0)
	right := left
	if block.Channels > 1 {
		right = block.Channel(1)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshot.RMSL = dsp.RMSDB(left)
	m.snapshot.RMSR = dsp.RMSDB(right)
	m.snapshot.TruePeakL = dsp.TruePeakDB(left)
	m.snapshot.TruePeakR = dsp.TruePeakDB(right)

	m.updateLoudness([][]float64{left, right}, block.SampleRate, block.Frames())
	return nil
}

// updateLoudness computes momentary loudness for the block, folds it
// into the bounded history, and refreshes the short-term and integrated
// figures. Callers hold mu.
func (m *Meters) updateLoudness(channels [][]float64, sampleRate, frames int) {
	gain := weightingGains[m.weighting]

	var meanPower float64
	for _, ch := range channels {
		var sum float64
		for _, s := range ch {
			w := s * gain
			sum += w * w
		}
		meanPower += sum / float64(len(ch))
	}
	meanPower /= float64(len(channels))

	momentary := loudnessOffset + 10*math.Log10(meanPower+dsp.Epsilon)
	m.snapshot.Momentary = momentary

	m.history = append(m.history, momentary)
	maxBlocks := int(m.historySeconds * float64(sampleRate) / float64(frames))
	if maxBlocks < 1 {
		maxBlocks = 1
	}
	if excess := len(m.history) - maxBlocks; excess > 0 {
		m.history = m.history[excess:]
	}

	m.snapshot.ShortTerm = mean(m.history)
	m.snapshot.Integrated = m.integratedLocked()
}

// integratedLocked applies the relative gate when enabled and the
// history is long enough; a gated pass that matches nothing keeps the
// previous integrated value.
func (m *Meters) integratedLocked() float64 {
	if len(m.history) == 0 {
		return dsp.DBFloor
	}
	if m.gated && len(m.history) >= gatingMinHistory {
		var sum float64
		var n int
		for _, v := range m.history {
			if v > loudnessGate {
				sum += v
				n++
			}
		}
		if n > 0 {
			return sum / float64(n)
		}
		return m.snapshot.Integrated
	}
	return mean(m.history)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return dsp.DBFloor
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SetWeighting changes the weighting mode. Any change resets history.
func (m *Meters) SetWeighting(w Weighting) error {
	if _, ok := weightingGains[w]; !ok {
		return errors.Newf("unsupported weighting mode %q", w).
			Component(componentAnalysis).
			Category(errors.CategoryValidation).
			Build()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if w == m.weighting {
		return nil
	}
	m.weighting = w
	m.resetLocked()
	m.logger.Info("weighting mode changed", "weighting", string(w))
	return nil
}

// SetGated toggles loudness gating. Any change resets history.
func (m *Meters) SetGated(gated bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gated == m.gated {
		return
	}
	m.gated = gated
	m.resetLocked()
}

// Reset clears the loudness history and returns integrated loudness to
// its floor.
func (m *Meters) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

func (m *Meters) resetLocked() {
	m.history = m.history[:0]
	m.snapshot.Integrated = dsp.DBFloor
	m.snapshot.ShortTerm = dsp.DBFloor
}

// Snapshot returns the current meter values. Pulled on demand by the
// renderer at whatever cadence it wants.
func (m *Meters) Snapshot() MeterSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}
