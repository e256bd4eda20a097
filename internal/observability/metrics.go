// Package observability exposes Prometheus metrics for the capture
// pipeline. Renderers and dashboards are external; this package only
// counts what the core itself can observe.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	BlocksProcessed prometheus.Counter
	BlocksDropped   prometheus.Counter
	ConsumerErrors  *prometheus.CounterVec
	QueueDepth      prometheus.Gauge
	registry        *prometheus.Registry
}

// NewMetrics creates and registers the pipeline collectors on a fresh
// registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		BlocksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "omega6_blocks_processed_total",
			Help: "Number of audio blocks dispatched to consumers",
		}),
		BlocksDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "omega6_blocks_dropped_total",
			Help: "Number of audio blocks evicted from the capture queue",
		}),
		ConsumerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "omega6_consumer_errors_total",
			Help: "Number of consumer callback failures, by consumer",
		}, []string{"consumer"}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "omega6_capture_queue_depth",
			Help: "Current number of blocks waiting in the capture queue",
		}),
		registry: registry,
	}

	registry.MustRegister(m.BlocksProcessed, m.BlocksDropped, m.ConsumerErrors, m.QueueDepth)
	return m
}

// Handler returns an HTTP handler serving the metrics registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts a metrics HTTP server on addr. It blocks, so callers run
// it on its own goroutine.
func (m *Metrics) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}
