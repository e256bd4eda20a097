package driver

import (
	"encoding/binary"
	"math"
)

// samplesToFloat64 converts little-endian 32-bit float PCM into dst and
// returns the number of samples written. Trailing partial samples are
// dropped. dst bounds the conversion so a surprise oversized callback
// cannot overrun the scratch buffer.
func samplesToFloat64(src []byte, dst []float64) int {
	n := len(src) / 4
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(src[i*4:])
		dst[i] = float64(math.Float32frombits(bits))
	}
	return n
}
