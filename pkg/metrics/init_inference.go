package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initInferenceMetrics() {
	r.InferenceRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "aether_inference_runs_total",
			Help: "Total number of inference runs by outcome (converged or capped)",
		},
		[]string{"status"},
	)

	r.InferenceSweeps = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aether_inference_sweeps",
			Help:    "Number of sweeps executed per inference run",
			Buckets: []float64{1, 2, 3, 4, 5, 10, 25},
		},
	)

	r.InferenceDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aether_inference_duration_seconds",
			Help:    "Inference run duration in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1.0},
		},
	)

	r.InferenceMaxDelta = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "aether_inference_last_max_delta",
			Help: "Largest belief change in the final sweep of the last run",
		},
	)

	r.SystemEntropy = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "aether_system_entropy_bits",
			Help: "Mean binary entropy of node beliefs after the last run",
		},
	)
}
