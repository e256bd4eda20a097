package audiocore

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// routingKeywords name software-routable servers preferred during
// auto-selection, matching the behavior users expect on desktop Linux.
var routingKeywords = []string{"pipewire", "jack"}

func hasRoutingKeyword(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range routingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// preferredInput picks an input device when none is selected: first a
// software-routable device, then the system default input, else -1.
// Indices are scanned in order so the choice is deterministic.
func preferredInput(devices map[int]Device, logger *slog.Logger) int {
	indices := sortedIndices(devices)

	for _, idx := range indices {
		d := devices[idx]
		if d.IsInput() && hasRoutingKeyword(d.Name) {
			logger.Info("auto-selected software-routable device", "device", d.Name)
			return idx
		}
	}
	for _, idx := range indices {
		d := devices[idx]
		if d.IsInput() && d.IsDefault {
			return idx
		}
	}
	return -1
}

func sortedIndices(devices map[int]Device) []int {
	indices := make([]int, 0, len(devices))
	for idx := range devices {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices
}

// Devices returns the current device snapshot ordered by index.
func (m *Manager) Devices() []Device {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Device, 0, len(m.devices))
	for _, idx := range sortedIndices(m.devices) {
		out = append(out, m.devices[idx])
	}
	return out
}

// InputDevices returns all input-capable devices ordered by index.
func (m *Manager) InputDevices() []Device {
	var out []Device
	for _, d := range m.Devices() {
		if d.IsInput() {
			out = append(out, d)
		}
	}
	return out
}

// OutputDevices returns all output-capable devices ordered by index.
func (m *Manager) OutputDevices() []Device {
	var out []Device
	for _, d := range m.Devices() {
		if d.IsOutput() {
			out = append(out, d)
		}
	}
	return out
}

// CurrentInputDevice returns the selected input device, if any.
func (m *Manager) CurrentInputDevice() (Device, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.devices[m.currentInput]
	return d, ok && m.currentInput >= 0
}

// DeviceListInfo renders a formatted device table for the CLI.
func (m *Manager) DeviceListInfo() string {
	current := -1
	if d, ok := m.CurrentInputDevice(); ok {
		current = d.Index
	}

	var b strings.Builder
	b.WriteString("Audio Devices:\n")
	b.WriteString(strings.Repeat("-", 80) + "\n")

	b.WriteString("\nINPUT DEVICES:\n")
	for _, d := range m.InputDevices() {
		marker := "    "
		if d.Index == current {
			marker = " -> "
		}
		fmt.Fprintf(&b, "%s[%d] %s\n", marker, d.Index, d)
	}

	b.WriteString("\nOUTPUT DEVICES:\n")
	for _, d := range m.OutputDevices() {
		fmt.Fprintf(&b, "    [%d] %s\n", d.Index, d)
	}

	b.WriteString("\nCURRENT SETTINGS:\n")
	fmt.Fprintf(&b, "Sample Rate: %d Hz\n", m.cfg.SampleRate)
	fmt.Fprintf(&b, "Block Size: %d samples\n", m.cfg.BlockSize)
	fmt.Fprintf(&b, "Channels: %d\n", m.cfg.Channels)
	fmt.Fprintf(&b, "Latency: %.1f ms\n", float64(m.cfg.BlockSize)/float64(m.cfg.SampleRate)*1000)
	return b.String()
}
