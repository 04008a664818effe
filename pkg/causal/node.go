package causal

import (
	"errors"
	"fmt"
	"slices"
)

// DefaultPrior is the intrinsic failure probability used when a component has
// no better estimate.
const DefaultPrior = 0.01

// InitialBelief is every node's belief before its first inference run,
// whatever its prior. Sweeps start from it, so it shapes the values left
// behind when the sweep cap is reached.
const InitialBelief = DefaultPrior

// Node is one causally relevant component or observation in the BOM graph.
//
// Parent and child links are non-owning id references; the Network that holds
// the node owns its lifetime and keeps both sides of every link consistent.
type Node struct {
	ID    string
	Name  string
	Layer Layer

	// CurrentBelief is the latest computed or observed failure probability.
	CurrentBelief float64

	// Observed overrides CurrentBelief during inference while it is a hard fact.
	Observed Observation

	prior    float64
	parents  []string
	children []string
}

// NewNode creates a node whose belief starts at InitialBelief.
func NewNode(id, name string, layer Layer, prior float64) *Node {
	return &Node{
		ID:            id,
		Name:          name,
		Layer:         layer,
		CurrentBelief: InitialBelief,
		prior:         prior,
	}
}

// Prior returns the immutable intrinsic failure probability.
func (n *Node) Prior() float64 {
	return n.prior
}

// Parents returns parent ids in link-creation order.
func (n *Node) Parents() []string {
	return slices.Clone(n.parents)
}

// Children returns child ids in link-creation order.
func (n *Node) Children() []string {
	return slices.Clone(n.children)
}

// HasParents reports whether any upstream cause is linked to the node.
func (n *Node) HasParents() bool {
	return len(n.parents) > 0
}

// Observe sets a hard fact (or Unobserved to clear it).
func (n *Node) Observe(o Observation) {
	n.Observed = o
}

// ClearObservation returns the node to Unobserved. Its belief is left as is
// until the next inference run recomputes it.
func (n *Node) ClearObservation() {
	n.Observed = Unobserved
}

func (n *Node) addParent(id string) bool {
	if slices.Contains(n.parents, id) {
		return false
	}
	n.parents = append(n.parents, id)
	return true
}

func (n *Node) addChild(id string) bool {
	if slices.Contains(n.children, id) {
		return false
	}
	n.children = append(n.children, id)
	return true
}

func (n *Node) String() string {
	return fmt.Sprintf("[%s] %s (Belief: %.4f)", n.Layer, n.Name, n.CurrentBelief)
}

// ValidateNode checks the numeric ranges of a node. Construction does not
// enforce them, so callers that accept external input should validate.
func ValidateNode(n *Node) error {
	if n == nil {
		return &NodeError{Op: "validate", Cause: ErrUnknownNode}
	}

	var errs []error
	if n.ID == "" {
		errs = append(errs, &NodeError{Op: "validate", Field: "id", Cause: ErrEmptyID})
	}
	if !(n.prior > 0 && n.prior < 1) {
		errs = append(errs, &NodeError{Op: "validate", ID: n.ID, Field: "prior", Cause: ErrInvalidPrior})
	}
	if n.CurrentBelief < 0 || n.CurrentBelief > 1 {
		errs = append(errs, &NodeError{Op: "validate", ID: n.ID, Field: "belief", Cause: ErrInvalidBelief})
	}
	if n.Layer > LayerService {
		errs = append(errs, &NodeError{Op: "validate", ID: n.ID, Field: "layer", Cause: ErrUnknownLayer})
	}
	return errors.Join(errs...)
}
