package metrics

import (
	"io"
	"time"

	"github.com/prometheus/common/expfmt"
)

// Inference run outcomes used as the status label.
const (
	StatusConverged = "converged"
	StatusCapped    = "capped"
)

// RecordInference records one completed inference run.
func (r *Registry) RecordInference(converged bool, sweeps int, maxDelta, entropy float64, duration time.Duration) {
	status := StatusCapped
	if converged {
		status = StatusConverged
	}
	r.InferenceRunsTotal.WithLabelValues(status).Inc()
	r.InferenceSweeps.Observe(float64(sweeps))
	r.InferenceDuration.Observe(duration.Seconds())
	r.InferenceMaxDelta.Set(maxDelta)
	r.SystemEntropy.Set(entropy)
}

// UpdateNetworkMetrics mirrors the graph store counters.
func (r *Registry) UpdateNetworkMetrics(nodes, edges, ignoredLinks, overwrites, cycles int) {
	r.NetworkNodes.Set(float64(nodes))
	r.NetworkEdges.Set(float64(edges))
	r.NetworkLinksIgnored.Set(float64(ignoredLinks))
	r.NetworkOverwrites.Set(float64(overwrites))
	r.NetworkCycles.Set(float64(cycles))
}

// SetObservations sets the number of nodes pinned failed and normal.
func (r *Registry) SetObservations(failed, normal int) {
	r.ObservationsActive.WithLabelValues("failed").Set(float64(failed))
	r.ObservationsActive.WithLabelValues("normal").Set(float64(normal))
}

// WriteText writes the registry in the Prometheus text exposition format.
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
