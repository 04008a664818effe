package inference

import (
	"github.com/dd0wney/cluso-aether/pkg/causal"
)

// ComputeNodeBelief applies the update rule to one node using the beliefs
// currently stored in net:
//
//  1. confirmed failed -> 1.0
//  2. confirmed normal -> 0.0
//  3. no parents       -> the node's prior
//  4. otherwise Leaky-Noisy-OR:
//     1 - (1 - prior) * Π(1 - parent belief)
//
// Each parent is treated as an independent cause that transmits failure with
// certainty; the node's own prior is the leak. The result never leaves
// [prior, 1] for an unobserved child and is non-decreasing in every input.
func ComputeNodeBelief(net *causal.Network, node *causal.Node) float64 {
	return computeBelief(node, func(id string) (float64, bool) {
		parent, ok := net.Node(id)
		if !ok {
			return 0, false
		}
		return parent.CurrentBelief, true
	})
}

// beliefLookup resolves a parent id to the belief the rule should read.
type beliefLookup func(id string) (float64, bool)

func computeBelief(node *causal.Node, beliefOf beliefLookup) float64 {
	if node.Observed.IsHardFact() {
		if node.Observed == causal.ConfirmedFailed {
			return 1.0
		}
		return 0.0
	}

	parents := node.Parents()
	if len(parents) == 0 {
		return node.Prior()
	}

	probNoFailure := 1.0 - node.Prior()
	for _, id := range parents {
		// The store only links known ids; an unresolved id contributes nothing.
		if p, ok := beliefOf(id); ok {
			probNoFailure *= 1.0 - p
		}
	}
	return 1.0 - probNoFailure
}
