package audiocore

import (
	"fmt"
	"strings"
	"time"
)

// Block is one fixed-size chunk of audio delivered by the capture stream.
// Samples are interleaved floating point in nominal range [-1, 1].
// A block is created by the driver callback and never mutated after it
// has been enqueued.
type Block struct {
	Samples    []float64 // interleaved, len = Frames()*Channels
	Channels   int
	SampleRate int
	Timestamp  time.Time
}

// Frames returns the number of sample frames in the block.
func (b *Block) Frames() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Channel returns a deinterleaved copy of the given channel. Requesting a
// channel beyond the block's channel count returns channel 0, so mono
// blocks behave as identical left/right.
func (b *Block) Channel(ch int) []float64 {
	if ch < 0 || ch >= b.Channels {
		ch = 0
	}
	frames := b.Frames()
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		out[i] = b.Samples[i*b.Channels+ch]
	}
	return out
}

// Device describes one enumerated audio device. The descriptor set is an
// immutable snapshot, replaced wholesale on each refresh.
type Device struct {
	Index          int
	Name           string
	ID             string
	InputChannels  int
	OutputChannels int
	SampleRate     int
	IsDefault      bool
	Latency        time.Duration
}

// IsInput reports whether the device can capture audio.
func (d Device) IsInput() bool { return d.InputChannels > 0 }

// IsOutput reports whether the device can play audio.
func (d Device) IsOutput() bool { return d.OutputChannels > 0 }

func (d Device) String() string {
	var kinds []string
	if d.IsInput() {
		kinds = append(kinds, "Input")
	}
	if d.IsOutput() {
		kinds = append(kinds, "Output")
	}
	channels := max(d.InputChannels, d.OutputChannels)
	s := fmt.Sprintf("%s (%s, %dch, %dHz)", d.Name, strings.Join(kinds, "/"), channels, d.SampleRate)
	if d.IsDefault {
		s += " [DEFAULT]"
	}
	return s
}

// Consumer receives captured audio blocks on the processing goroutine.
// OnBlock may return an error or panic; the Manager logs either and
// keeps dispatching to the remaining consumers.
type Consumer interface {
	Name() string
	OnBlock(block *Block) error
}

// ConsumerFunc adapts a plain function to the Consumer interface.
type ConsumerFunc struct {
	ConsumerName string
	Fn           func(block *Block) error
}

func (c ConsumerFunc) Name() string { return c.ConsumerName }

func (c ConsumerFunc) OnBlock(block *Block) error { return c.Fn(block) }

// StreamConfig holds the parameters for opening a capture stream.
type StreamConfig struct {
	DeviceID   string // backend device identifier, empty for system default
	SampleRate int
	BlockSize  int // frames per delivered block
	Channels   int
}

// DataFunc is invoked by the driver with one interleaved block of samples.
// The slice is only valid for the duration of the call; implementations
// must copy what they keep.
type DataFunc func(samples []float64, channels, sampleRate int)

// Stream is an open capture stream.
type Stream interface {
	Start() error
	Stop() error
	Close() error
}

// Driver abstracts the audio backend so the Manager can be exercised
// without hardware. The production implementation lives in the driver
// subpackage on top of malgo.
type Driver interface {
	// Devices enumerates currently available audio devices.
	Devices() ([]Device, error)

	// Open prepares a capture stream against the given device. The
	// returned stream is not started.
	Open(cfg StreamConfig, onData DataFunc) (Stream, error)
}
