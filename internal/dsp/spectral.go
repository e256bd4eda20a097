// Package dsp holds the pure signal-processing primitives: the windowed
// spectral transform and the level math shared by the capture manager and
// the analysis consumers. Everything here is stateless.
package dsp

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Hann returns the Hann window of length n: zero at both ends, unity at
// center.
func Hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// Transform converts one raw audio channel into frequency-domain
// magnitude plus the matching frequency axis. The input is Hann-windowed
// to reduce spectral leakage; the output covers bins 0..n/2 at a
// resolution of sampleRate/n Hz. Empty input yields empty output.
func Transform(samples []float64, sampleRate int) (mags, freqs []float64) {
	n := len(samples)
	if n == 0 {
		return nil, nil
	}

	windowed := make([]float64, n)
	window := Hann(n)
	for i, s := range samples {
		windowed[i] = s * window[i]
	}

	spectrum := fft.FFTReal(windowed)

	bins := n/2 + 1
	mags = make([]float64, bins)
	freqs = make([]float64, bins)
	resolution := float64(sampleRate) / float64(n)
	for i := 0; i < bins; i++ {
		mags[i] = cmplx.Abs(spectrum[i])
		freqs[i] = float64(i) * resolution
	}
	return mags, freqs
}
