package audiocore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasRoutingKeyword(t *testing.T) {
	assert.True(t, hasRoutingKeyword("pipewire"))
	assert.True(t, hasRoutingKeyword("PipeWire Sound Server"))
	assert.True(t, hasRoutingKeyword("JACK Audio Connection Kit"))
	assert.False(t, hasRoutingKeyword("HDA Intel PCH"))
	assert.False(t, hasRoutingKeyword(""))
}

func TestPreferredInput(t *testing.T) {
	logger := discardLogger()

	t.Run("RoutableBeatsDefault", func(t *testing.T) {
		devices := map[int]Device{
			0: {Index: 0, Name: "HDA Intel PCH", InputChannels: 2, IsDefault: true},
			1: {Index: 1, Name: "pipewire", InputChannels: 2},
		}
		assert.Equal(t, 1, preferredInput(devices, logger))
	})

	t.Run("RoutableOutputIgnored", func(t *testing.T) {
		devices := map[int]Device{
			0: {Index: 0, Name: "HDA Intel PCH", InputChannels: 2, IsDefault: true},
			1: {Index: 1, Name: "jack", OutputChannels: 2},
		}
		assert.Equal(t, 0, preferredInput(devices, logger))
	})

	t.Run("LowestRoutableIndexWins", func(t *testing.T) {
		devices := map[int]Device{
			2: {Index: 2, Name: "jack", InputChannels: 2},
			5: {Index: 5, Name: "pipewire", InputChannels: 2},
		}
		assert.Equal(t, 2, preferredInput(devices, logger))
	})

	t.Run("NoCandidate", func(t *testing.T) {
		devices := map[int]Device{
			0: {Index: 0, Name: "HDMI Output", OutputChannels: 2, IsDefault: true},
		}
		assert.Equal(t, -1, preferredInput(devices, logger))
		assert.Equal(t, -1, preferredInput(nil, logger))
	})
}

func TestDeviceString(t *testing.T) {
	d := Device{Name: "pipewire", InputChannels: 2, OutputChannels: 2, SampleRate: 48000}
	assert.Equal(t, "pipewire (Input/Output, 2ch, 48000Hz)", d.String())

	d = Device{Name: "HDA Intel PCH", InputChannels: 2, SampleRate: 44100, IsDefault: true}
	assert.Equal(t, "HDA Intel PCH (Input, 2ch, 44100Hz) [DEFAULT]", d.String())
}

func TestManagerDeviceListings(t *testing.T) {
	m := newTestManager(t, &fakeDriver{devices: testDevices()})

	inputs := m.InputDevices()
	require.Len(t, inputs, 2)
	assert.Equal(t, 0, inputs[0].Index)
	assert.Equal(t, 1, inputs[1].Index)

	outputs := m.OutputDevices()
	require.Len(t, outputs, 1)
	assert.Equal(t, 2, outputs[0].Index)

	info := m.DeviceListInfo()
	assert.Contains(t, info, "INPUT DEVICES:")
	assert.Contains(t, info, " -> [1] pipewire")
	assert.Contains(t, info, "OUTPUT DEVICES:")
	assert.Contains(t, info, "[2] HDMI Output")
	assert.Contains(t, info, "Sample Rate: 48000 Hz")
}

func TestBlockChannelDeinterleave(t *testing.T) {
	b := &Block{
		Samples:    []float64{1, 10, 2, 20, 3, 30},
		Channels:   2,
		SampleRate: 48000,
	}

	assert.Equal(t, 3, b.Frames())
	assert.Equal(t, []float64{1, 2, 3}, b.Channel(0))
	assert.Equal(t, []float64{10, 20, 30}, b.Channel(1))

	// Out-of-range channel requests fall back to channel 0.
	assert.Equal(t, []float64{1, 2, 3}, b.Channel(5))
	assert.Equal(t, []float64{1, 2, 3}, b.Channel(-1))
}
