package audiocore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBlock(seq int) *Block {
	return &Block{
		Samples:    []float64{float64(seq), float64(seq)},
		Channels:   2,
		SampleRate: 48000,
		Timestamp:  time.Now(),
	}
}

func TestCaptureQueuePushPop(t *testing.T) {
	q := NewCaptureQueue(10)

	q.Push(makeBlock(1))
	q.Push(makeBlock(2))
	assert.Equal(t, 2, q.Len())

	b, ok := q.Pop(time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, 1.0, b.Samples[0])

	b, ok = q.Pop(time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, 2.0, b.Samples[0])

	assert.Equal(t, 0, q.Len())
}

func TestCaptureQueuePopTimeout(t *testing.T) {
	q := NewCaptureQueue(10)

	start := time.Now()
	b, ok := q.Pop(20 * time.Millisecond)
	assert.False(t, ok)
	assert.Nil(t, b)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestCaptureQueueDropOldest(t *testing.T) {
	// Push 150 blocks into a 100-capacity queue: exactly 100 remain
	// and they are blocks 51..150 in arrival order.
	q := NewCaptureQueue(100)

	for i := 1; i <= 150; i++ {
		q.Push(makeBlock(i))
	}
	assert.Equal(t, 100, q.Len())
	assert.Equal(t, int64(50), q.Dropped())

	for i := 51; i <= 150; i++ {
		b, ok := q.Pop(time.Millisecond)
		require.True(t, ok, "expected block %d", i)
		assert.Equal(t, float64(i), b.Samples[0])
	}
	assert.Equal(t, 0, q.Len())
}

func TestCaptureQueueNeverExceedsCapacity(t *testing.T) {
	for _, capacity := range []int{1, 3, 10} {
		q := NewCaptureQueue(capacity)
		for i := 0; i < capacity*4; i++ {
			q.Push(makeBlock(i))
			assert.LessOrEqual(t, q.Len(), capacity)
		}
		assert.Equal(t, capacity, q.Len())
	}
}

func TestCaptureQueueLatest(t *testing.T) {
	q := NewCaptureQueue(5)
	assert.Nil(t, q.Latest())

	q.Push(makeBlock(1))
	q.Push(makeBlock(2))

	// Latest peeks without removing.
	latest := q.Latest()
	require.NotNil(t, latest)
	assert.Equal(t, 2.0, latest.Samples[0])
	assert.Equal(t, 2, q.Len())
}

func TestCaptureQueueDrain(t *testing.T) {
	q := NewCaptureQueue(5)
	for i := 0; i < 4; i++ {
		q.Push(makeBlock(i))
	}

	assert.Equal(t, 4, q.Drain())
	assert.Equal(t, 0, q.Len())
	assert.Nil(t, q.Latest())
}
