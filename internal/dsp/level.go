package dsp

import "math"

const (
	// Epsilon keeps log arguments away from zero.
	Epsilon = 1e-10

	// DBFloor is the level reported for silence or empty input; nothing
	// is ever reported as -Inf or NaN.
	DBFloor = -100.0

	// TruePeakOversampling is the fixed oversampling factor for
	// inter-sample peak estimation.
	TruePeakOversampling = 4
)

// RMSDB returns the root-mean-square level of the samples in dB,
// clamped at the floor. Empty input reports the floor.
func RMSDB(samples []float64) float64 {
	if len(samples) == 0 {
		return DBFloor
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	return math.Max(20*math.Log10(math.Max(rms, Epsilon)), DBFloor)
}

// TruePeakDB estimates the inter-sample peak of one channel in dB by
// linearly interpolating the signal at 4x the original rate before
// taking the maximum absolute amplitude. Plain sampling misses peaks
// that fall between samples; the oversampled estimate approximates the
// analog waveform's real maximum.
func TruePeakDB(samples []float64) float64 {
	n := len(samples)
	if n == 0 {
		return DBFloor
	}

	total := n * TruePeakOversampling
	var peak float64
	for i := 0; i < total; i++ {
		// Evaluation points span [0, n] evenly, clamping to the last
		// sample beyond the final interval.
		pos := float64(i) * float64(n) / float64(total-1)
		var v float64
		switch {
		case pos <= 0:
			v = samples[0]
		case pos >= float64(n-1):
			v = samples[n-1]
		default:
			j := int(pos)
			frac := pos - float64(j)
			v = samples[j] + (samples[j+1]-samples[j])*frac
		}
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return math.Max(20*math.Log10(math.Max(peak, Epsilon)), DBFloor)
}
