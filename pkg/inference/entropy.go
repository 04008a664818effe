package inference

import (
	"math"

	"github.com/dd0wney/cluso-aether/pkg/causal"
)

// entropyEpsilon keeps log2 away from zero.
const entropyEpsilon = 1e-9

// BinaryEntropy returns the Shannon entropy in bits of a Bernoulli(p) variable,
// with p clamped to [1e-9, 1-1e-9].
func BinaryEntropy(p float64) float64 {
	p = math.Max(entropyEpsilon, math.Min(1.0-entropyEpsilon, p))
	return -(p*math.Log2(p) + (1-p)*math.Log2(1-p))
}

// SystemEntropy is the mean binary entropy of all node beliefs, in [0,1].
// An empty network has entropy 0.
func SystemEntropy(net *causal.Network) float64 {
	nodes := net.Nodes()
	if len(nodes) == 0 {
		return 0.0
	}

	total := 0.0
	for _, node := range nodes {
		total += BinaryEntropy(node.CurrentBelief)
	}
	return total / float64(len(nodes))
}
