package driver

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeF32LE(values ...float32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func TestSamplesToFloat64(t *testing.T) {
	src := encodeF32LE(0, 0.5, -0.5, 1, -1)
	dst := make([]float64, 8)

	n := samplesToFloat64(src, dst)
	require.Equal(t, 5, n)
	assert.Equal(t, []float64{0, 0.5, -0.5, 1, -1}, dst[:n])
}

func TestSamplesToFloat64TruncatesToDst(t *testing.T) {
	src := encodeF32LE(0.1, 0.2, 0.3, 0.4)
	dst := make([]float64, 2)

	n := samplesToFloat64(src, dst)
	require.Equal(t, 2, n)
	assert.InDelta(t, 0.1, dst[0], 1e-7)
	assert.InDelta(t, 0.2, dst[1], 1e-7)
}

func TestSamplesToFloat64DropsPartialSample(t *testing.T) {
	src := append(encodeF32LE(0.25), 0xAB, 0xCD) // trailing garbage
	dst := make([]float64, 4)

	n := samplesToFloat64(src, dst)
	require.Equal(t, 1, n)
	assert.Equal(t, 0.25, dst[0])

	assert.Equal(t, 0, samplesToFloat64(nil, dst))
}
