package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Inference Metrics
	InferenceRunsTotal *prometheus.CounterVec
	InferenceSweeps    prometheus.Histogram
	InferenceDuration  prometheus.Histogram
	InferenceMaxDelta  prometheus.Gauge
	SystemEntropy      prometheus.Gauge

	// Network Metrics
	NetworkNodes        prometheus.Gauge
	NetworkEdges        prometheus.Gauge
	NetworkLinksIgnored prometheus.Gauge
	NetworkOverwrites   prometheus.Gauge
	NetworkCycles       prometheus.Gauge
	ObservationsActive  *prometheus.GaugeVec

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initInferenceMetrics()
	r.initNetworkMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
