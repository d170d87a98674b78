package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry *prometheus.Registry

type Histogram interface {
	Observe(float64)
}

type Counter interface {
	Inc()
	Add(float64)
}

type NoopStat struct{}

func (n NoopStat) Observe(float64) {}
func (n NoopStat) Inc()            {}
func (n NoopStat) Add(float64)     {}

// InitializeTelemetry sets up the process-wide metric registry. When
// disabled, every metric constructor returns a noop implementation and
// Handler serves 404.
func InitializeTelemetry(namespace string, enabled bool) {
	if !enabled {
		registry = nil
		return
	}

	registry = prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{
		Namespace: namespace,
	}))
}

// Handler returns the scrape endpoint for the registry.
func Handler() http.Handler {
	if registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func NewCounter(name, help string) Counter {
	if registry == nil {
		return NoopStat{}
	}
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
	registry.MustRegister(c)
	return c
}

func NewHistogram(name, help string) Histogram {
	if registry == nil {
		return NoopStat{}
	}
	h := prometheus.NewHistogram(prometheus.HistogramOpts{Name: name, Help: help})
	registry.MustRegister(h)
	return h
}
