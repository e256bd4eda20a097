package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHannWindow(t *testing.T) {
	w := Hann(512)
	require.Len(t, w, 512)

	assert.InDelta(t, 0, w[0], 1e-12)
	assert.InDelta(t, 0, w[511], 1e-12)

	// Symmetric, with the maximum at the center.
	for i := range w {
		assert.InDelta(t, w[i], w[len(w)-1-i], 1e-12)
	}
	assert.InDelta(t, 1, w[255], 1e-4)

	// Degenerate single-point window is unity, not NaN.
	one := Hann(1)
	require.Len(t, one, 1)
	assert.Equal(t, 1.0, one[0])
}

func TestTransformEmptyInput(t *testing.T) {
	mags, freqs := Transform(nil, 48000)
	assert.Empty(t, mags)
	assert.Empty(t, freqs)
}

func TestTransformShape(t *testing.T) {
	samples := make([]float64, 512)
	mags, freqs := Transform(samples, 48000)

	require.Len(t, mags, 257)
	require.Len(t, freqs, 257)

	// Frequency axis runs from DC to Nyquist at sampleRate/n resolution.
	assert.Equal(t, 0.0, freqs[0])
	assert.InDelta(t, 48000.0/512, freqs[1], 1e-9)
	assert.InDelta(t, 24000, freqs[256], 1e-9)
}

func TestTransformLocatesSineFrequency(t *testing.T) {
	const (
		n    = 4096
		rate = 48000
	)
	// 1 kHz tone. Bin resolution is rate/n ≈ 11.7 Hz, so the magnitude
	// peak must land within one bin of 1000 Hz.
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 1000 * float64(i) / rate)
	}

	mags, freqs := Transform(samples, rate)

	best := 0
	for i, m := range mags {
		if m > mags[best] {
			best = i
		}
	}
	assert.InDelta(t, 1000, freqs[best], float64(rate)/n+1e-9)

	// Energy far from the tone is negligible next to the peak.
	farBin := len(mags) - 10
	assert.Less(t, mags[farBin], mags[best]/1000)
}
