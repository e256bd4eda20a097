package audiocore

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magicat777/omega6/internal/conf"
	"github.com/magicat777/omega6/internal/dsp"
	"github.com/magicat777/omega6/internal/errors"
	"github.com/magicat777/omega6/internal/logging"
	"github.com/magicat777/omega6/internal/observability"
)

// Manager owns the input stream, the capture queue, and the dispatch of
// buffered blocks to registered consumers. External callers start/stop
// capture, switch devices, and register consumers; those are the only
// mutation points into device state.
type Manager struct {
	logger  *slog.Logger
	metrics *observability.Metrics
	driver  Driver
	cfg     conf.CaptureSettings

	mu           sync.RWMutex
	devices      map[int]Device
	currentInput int
	consumers    map[string]Consumer
	queue        *CaptureQueue
	stream       Stream
	running      bool
	quit         chan struct{}
	wg           sync.WaitGroup
}

// NewManager creates a manager bound to the given driver and enumerates
// devices once. Enumeration failure at construction is logged, not fatal;
// the caller can retry with RefreshDevices.
func NewManager(driver Driver, cfg conf.CaptureSettings, metrics *observability.Metrics, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.ForService(ComponentAudioCore)
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = conf.DefaultSampleRate
	}
	if cfg.BlockSize == 0 {
		cfg.BlockSize = conf.DefaultBlockSize
	}
	if cfg.Channels == 0 {
		cfg.Channels = conf.DefaultChannels
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = conf.DefaultQueueSize
	}
	if cfg.PopTimeout == 0 {
		cfg.PopTimeout = 100 * time.Millisecond
	}

	m := &Manager{
		logger:       logger,
		metrics:      metrics,
		driver:       driver,
		cfg:          cfg,
		devices:      make(map[int]Device),
		currentInput: -1,
		consumers:    make(map[string]Consumer),
	}
	_ = m.RefreshDevices()
	return m
}

// RefreshDevices re-enumerates hardware devices. On enumeration failure
// the previous device list and selection are kept intact and
// ErrDeviceEnumeration is returned. The selected input survives a
// refresh when still present; otherwise selection falls back to a
// software-routable device, then the system default input.
func (m *Manager) RefreshDevices() error {
	list, err := m.driver.Devices()
	if err != nil {
		m.logger.Error("device enumeration failed, keeping previous device list", "error", err)
		return errors.Join(ErrDeviceEnumeration, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.devices = make(map[int]Device, len(list))
	for _, d := range list {
		m.devices[d.Index] = d
		if hasRoutingKeyword(d.Name) {
			m.logger.Info("found software-routable device", "device", d.String())
		}
	}
	m.logger.Info("enumerated audio devices", "count", len(list))

	if cur, ok := m.devices[m.currentInput]; m.currentInput >= 0 && ok && cur.IsInput() {
		return nil
	}
	m.currentInput = preferredInput(m.devices, m.logger)
	return nil
}

// SetInputDevice selects the input device for capture. The index must
// refer to a known input-capable device. If capture is active the stream
// is stopped and restarted against the new device; registered consumers
// are preserved.
func (m *Manager) SetInputDevice(index int) error {
	m.mu.Lock()
	d, ok := m.devices[index]
	if !ok || !d.IsInput() {
		m.mu.Unlock()
		m.logger.Error("invalid input device index", "index", index)
		return ErrInvalidDevice
	}
	m.currentInput = index
	restart := m.running
	m.mu.Unlock()

	m.logger.Info("input device set", "device", d.Name, "index", index)

	if restart {
		m.StopCapture()
		return m.StartCapture()
	}
	return nil
}

// StartCapture opens the input stream and starts the processing
// goroutine draining the capture queue. A failed open is reported, not
// fatal: capture remains stopped and the caller may retry after a
// device refresh.
func (m *Manager) StartCapture() error {
	m.mu.Lock()

	if m.running {
		m.mu.Unlock()
		m.logger.Warn("capture already running")
		return ErrAlreadyRunning
	}
	if m.currentInput < 0 {
		m.mu.Unlock()
		m.logger.Error("no input device selected")
		return ErrNoDeviceSelected
	}
	device := m.devices[m.currentInput]

	queue := NewCaptureQueue(m.cfg.QueueSize)

	// Real-time boundary: the driver callback copies the block and
	// enqueues it, nothing else. No logging, no consumer invocation.
	onData := func(samples []float64, channels, sampleRate int) {
		buf := make([]float64, len(samples))
		copy(buf, samples)
		queue.Push(&Block{
			Samples:    buf,
			Channels:   channels,
			SampleRate: sampleRate,
			Timestamp:  time.Now(),
		})
	}

	stream, err := m.driver.Open(StreamConfig{
		DeviceID:   device.ID,
		SampleRate: m.cfg.SampleRate,
		BlockSize:  m.cfg.BlockSize,
		Channels:   m.cfg.Channels,
	}, onData)
	if err != nil {
		m.mu.Unlock()
		m.logger.Error("failed to open capture stream", "device", device.Name, "error", err)
		return errors.New(err).
			Component(ComponentAudioCore).
			Category(errors.CategoryAudio).
			Context("operation", "open_stream").
			Context("device", device.Name).
			Build()
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		m.mu.Unlock()
		m.logger.Error("failed to start capture stream", "device", device.Name, "error", err)
		return errors.New(err).
			Component(ComponentAudioCore).
			Category(errors.CategoryAudio).
			Context("operation", "start_stream").
			Context("device", device.Name).
			Build()
	}

	m.queue = queue
	m.stream = stream
	m.quit = make(chan struct{})
	m.running = true
	m.wg.Add(1)
	go m.processLoop(queue, m.quit)
	m.mu.Unlock()

	m.logger.Info("audio capture started",
		"device", device.Name,
		"sample_rate", m.cfg.SampleRate,
		"block_size", m.cfg.BlockSize,
		"channels", m.cfg.Channels)
	return nil
}

// StopCapture closes the stream, joins the processing goroutine, and
// discards queued blocks. Idempotent: stopping a stopped manager is a
// no-op. Stopping is bounded by one queue-timeout interval.
func (m *Manager) StopCapture() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	quit := m.quit
	stream := m.stream
	queue := m.queue
	m.stream = nil
	m.mu.Unlock()

	close(quit)
	if stream != nil {
		_ = stream.Stop()
		_ = stream.Close()
	}
	m.wg.Wait()

	if n := queue.Drain(); n > 0 {
		m.logger.Debug("discarded queued blocks", "count", n)
	}
	m.logger.Info("audio capture stopped")
}

// IsCapturing reports whether capture is active.
func (m *Manager) IsCapturing() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// RegisterConsumer adds a consumer and returns an opaque token for later
// unregistration. Safe to call while capture is active.
func (m *Manager) RegisterConsumer(c Consumer) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	token := uuid.NewString()
	m.consumers[token] = c
	m.logger.Debug("consumer registered", "consumer", c.Name(), "total", len(m.consumers))
	return token
}

// UnregisterConsumer removes the consumer registered under token and
// reports whether one was present.
func (m *Manager) UnregisterConsumer(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.consumers[token]
	if ok {
		delete(m.consumers, token)
		m.logger.Debug("consumer unregistered", "consumer", c.Name(), "total", len(m.consumers))
	}
	return ok
}

// CurrentLevel returns the most recent per-channel RMS in dB without
// removing anything from the queue. Reports the floor when not capturing
// or when the queue is empty.
func (m *Manager) CurrentLevel() (left, right float64) {
	m.mu.RLock()
	running := m.running
	queue := m.queue
	m.mu.RUnlock()

	if !running || queue == nil || queue.Len() == 0 {
		return dsp.DBFloor, dsp.DBFloor
	}
	block := queue.Latest()
	if block == nil {
		return dsp.DBFloor, dsp.DBFloor
	}

	left = dsp.RMSDB(block.Channel(0))
	right = left
	if block.Channels > 1 {
		right = dsp.RMSDB(block.Channel(1))
	}
	return left, right
}

// consumerSnapshot copies the consumer set so dispatch iterates without
// holding the lock, keeping registration safe during an active capture.
func (m *Manager) consumerSnapshot() []Consumer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Consumer, 0, len(m.consumers))
	for _, c := range m.consumers {
		out = append(out, c)
	}
	return out
}

// processLoop is the single background goroutine draining the capture
// queue. A pop timeout is expected steady state, not an error. One
// consumer's failure never halts the loop or the other consumers.
func (m *Manager) processLoop(queue *CaptureQueue, quit chan struct{}) {
	defer m.wg.Done()

	var reportedDrops int64
	for {
		select {
		case <-quit:
			return
		default:
		}

		block, ok := queue.Pop(m.cfg.PopTimeout)

		m.metrics.QueueDepth.Set(float64(queue.Len()))
		if d := queue.Dropped(); d > reportedDrops {
			m.metrics.BlocksDropped.Add(float64(d - reportedDrops))
			m.logger.Warn("capture queue overflow, oldest blocks dropped", "dropped", d-reportedDrops)
			reportedDrops = d
		}

		if !ok {
			continue
		}

		m.metrics.BlocksProcessed.Inc()
		for _, c := range m.consumerSnapshot() {
			m.dispatch(c, block)
		}
	}
}

func (m *Manager) dispatch(c Consumer, block *Block) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("consumer panicked", "consumer", c.Name(), "panic", r)
			m.metrics.ConsumerErrors.WithLabelValues(c.Name()).Inc()
		}
	}()

	if err := c.OnBlock(block); err != nil {
		m.logger.Error("consumer failed", "consumer", c.Name(), "error", err)
		m.metrics.ConsumerErrors.WithLabelValues(c.Name()).Inc()
	}
}
