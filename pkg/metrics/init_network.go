package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initNetworkMetrics() {
	r.NetworkNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "aether_network_nodes",
			Help: "Number of nodes in the causal network",
		},
	)

	r.NetworkEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "aether_network_edges",
			Help: "Number of parent->child links in the causal network",
		},
	)

	r.NetworkLinksIgnored = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "aether_network_links_ignored",
			Help: "Link requests dropped because an endpoint id was unknown",
		},
	)

	r.NetworkOverwrites = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "aether_network_node_overwrites",
			Help: "Nodes replaced by a later node with the same id",
		},
	)

	r.NetworkCycles = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "aether_network_cycles",
			Help: "Cycles found in the causal network before the last run",
		},
	)

	r.ObservationsActive = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "aether_observations_active",
			Help: "Nodes currently pinned by a hard observation",
		},
		[]string{"state"},
	)
}
