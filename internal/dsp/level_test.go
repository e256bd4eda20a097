package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRMSDB(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, DBFloor, RMSDB(nil))
	})

	t.Run("Silence", func(t *testing.T) {
		assert.Equal(t, DBFloor, RMSDB(make([]float64, 512)))
	})

	t.Run("FullScaleSquare", func(t *testing.T) {
		samples := make([]float64, 512)
		for i := range samples {
			samples[i] = 1
			if i%2 == 1 {
				samples[i] = -1
			}
		}
		assert.InDelta(t, 0, RMSDB(samples), 1e-9)
	})

	t.Run("FullScaleSine", func(t *testing.T) {
		samples := make([]float64, 4800)
		for i := range samples {
			samples[i] = math.Sin(2 * math.Pi * 100 * float64(i) / 48000)
		}
		// RMS of a full-scale sine is 1/sqrt(2), about -3.01 dB.
		assert.InDelta(t, -3.01, RMSDB(samples), 0.05)
	})

	t.Run("HalfScale", func(t *testing.T) {
		samples := []float64{0.5, -0.5, 0.5, -0.5}
		assert.InDelta(t, 20*math.Log10(0.5), RMSDB(samples), 1e-9)
	})
}

func TestTruePeakDB(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, DBFloor, TruePeakDB(nil))
	})

	t.Run("Silence", func(t *testing.T) {
		assert.Equal(t, DBFloor, TruePeakDB(make([]float64, 64)))
	})

	t.Run("FullScale", func(t *testing.T) {
		// Two full-scale samples in a row so interpolation between them
		// reads exactly 1.0 regardless of where the grid falls.
		samples := []float64{0, 1, 1, 0, -1, -1, 0, 0}
		assert.InDelta(t, 0, TruePeakDB(samples), 1e-9)
	})

	t.Run("TracksSineAmplitude", func(t *testing.T) {
		samples := make([]float64, 480)
		for i := range samples {
			samples[i] = 0.9 * math.Sin(2*math.Pi*997*float64(i)/48000)
		}
		// The true analog peak is 0.9, about -0.915 dB. The 4x grid
		// evaluates between samples, so allow a small shortfall.
		assert.InDelta(t, 20*math.Log10(0.9), TruePeakDB(samples), 0.05)
	})
}
