package causal

import (
	"github.com/dd0wney/cluso-aether/pkg/logging"
)

// Network is the graph store: nodes keyed by id plus directed parent->child
// links. Iteration follows insertion order so inference is reproducible.
//
// A Network has no internal locking. One caller owns it at a time; services
// that share an instance must serialize inference runs themselves.
type Network struct {
	nodes  map[string]*Node
	order  []string
	logger logging.Logger
	stats  Statistics
}

// Statistics counts what the store has seen since it was created.
type Statistics struct {
	NodeCount    int
	EdgeCount    int
	Overwrites   int // AddNode calls that replaced an existing id
	IgnoredLinks int // CreateLink calls with an unknown endpoint
}

// Edge is a single parent->child relation.
type Edge struct {
	ParentID string
	ChildID  string
}

// NetworkOption configures a Network.
type NetworkOption func(*Network)

// WithLogger attaches a logger for overwrite and ignored-link diagnostics.
func WithLogger(logger logging.Logger) NetworkOption {
	return func(n *Network) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNetwork creates an empty graph store.
func NewNetwork(opts ...NetworkOption) *Network {
	n := &Network{
		nodes:  make(map[string]*Node),
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = n.logger.With(logging.Component("causal"))
	return n
}

// AddNode inserts node keyed by its id. An existing id is overwritten without
// error (last write wins); the replacement keeps the original position in
// iteration order and takes over the id's existing links, since links are
// stored by id. Stores that linked node objects instead dropped those links on
// overwrite; data ported from them may carry more edges here.
func (n *Network) AddNode(node *Node) {
	if node == nil {
		return
	}

	if old, exists := n.nodes[node.ID]; exists {
		n.stats.Overwrites++
		n.logger.Warn("node id overwritten", logging.NodeID(node.ID),
			logging.String("previous_name", old.Name), logging.String("name", node.Name))
		if old != node {
			for _, p := range old.parents {
				node.addParent(p)
			}
			for _, c := range old.children {
				node.addChild(c)
			}
		}
		n.nodes[node.ID] = node
		return
	}

	n.nodes[node.ID] = node
	n.order = append(n.order, node.ID)
	n.stats.NodeCount++
}

// CreateLink makes parentID a cause of childID. If either id is absent the
// call is a silent no-op; use Link to learn why.
func (n *Network) CreateLink(parentID, childID string) {
	if err := n.Link(parentID, childID); err != nil {
		n.stats.IgnoredLinks++
		n.logger.Debug("link ignored", logging.String("parent_id", parentID),
			logging.String("child_id", childID), logging.Error(err))
	}
}

// Link is the strict form of CreateLink. It returns a *LinkError wrapping
// ErrUnknownNode when an endpoint is missing and leaves the graph untouched.
// Linking an existing pair again is a no-op.
func (n *Network) Link(parentID, childID string) error {
	parent, okParent := n.nodes[parentID]
	child, okChild := n.nodes[childID]
	if !okParent || !okChild {
		var missing []string
		if !okParent {
			missing = append(missing, parentID)
		}
		if !okChild && childID != parentID {
			missing = append(missing, childID)
		}
		return &LinkError{ParentID: parentID, ChildID: childID, Missing: missing, Cause: ErrUnknownNode}
	}

	// The pair is kept consistent: both sides change or neither does.
	if child.addParent(parentID) {
		parent.addChild(childID)
		n.stats.EdgeCount++
	}
	return nil
}

// Node looks up a node by id.
func (n *Network) Node(id string) (*Node, bool) {
	node, ok := n.nodes[id]
	return node, ok
}

// Nodes returns every node in insertion order.
func (n *Network) Nodes() []*Node {
	out := make([]*Node, 0, len(n.order))
	for _, id := range n.order {
		out = append(out, n.nodes[id])
	}
	return out
}

// Len returns the number of nodes.
func (n *Network) Len() int {
	return len(n.order)
}

// NodesInLayer returns the nodes of one layer in insertion order.
func (n *Network) NodesInLayer(layer Layer) []*Node {
	var out []*Node
	for _, id := range n.order {
		if node := n.nodes[id]; node.Layer == layer {
			out = append(out, node)
		}
	}
	return out
}

// Edges returns every parent->child pair, grouped by parent in insertion order.
func (n *Network) Edges() []Edge {
	var out []Edge
	for _, id := range n.order {
		for _, child := range n.nodes[id].children {
			out = append(out, Edge{ParentID: id, ChildID: child})
		}
	}
	return out
}

// Observe sets a hard fact on the node with the given id.
func (n *Network) Observe(id string, o Observation) error {
	node, ok := n.nodes[id]
	if !ok {
		return &NodeError{Op: "observe", ID: id, Cause: ErrUnknownNode}
	}
	node.Observe(o)
	n.logger.Debug("observation set", logging.NodeID(id), logging.String("state", o.String()))
	return nil
}

// Observations returns the hard facts currently set, keyed by node id.
func (n *Network) Observations() map[string]Observation {
	out := make(map[string]Observation)
	for _, id := range n.order {
		if o := n.nodes[id].Observed; o != Unobserved {
			out[id] = o
		}
	}
	return out
}

// ClearObservations returns every node to Unobserved.
func (n *Network) ClearObservations() {
	for _, node := range n.nodes {
		node.ClearObservation()
	}
}

// ResetBeliefs sets every node's belief back to InitialBelief, so the next
// run starts where a freshly built network would.
func (n *Network) ResetBeliefs() {
	for _, node := range n.nodes {
		node.CurrentBelief = InitialBelief
	}
}

// Statistics returns a snapshot of the store counters.
func (n *Network) Statistics() Statistics {
	return n.stats
}
