package inference

import (
	"container/heap"

	"github.com/dd0wney/cluso-aether/pkg/causal"
)

// Suspect is a root-cause candidate with its current belief.
type Suspect struct {
	ID    string
	Score float64
	Node  *causal.Node
	order int // position in the store, breaks score ties
}

// suspectHeap is a min-heap on (score, -order): the root is the weakest
// candidate kept so far.
type suspectHeap []Suspect

func (h suspectHeap) Len() int { return len(h) }
func (h suspectHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].order > h[j].order
}
func (h suspectHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *suspectHeap) Push(x any) {
	*h = append(*h, x.(Suspect))
}

func (h *suspectHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// RankSuspects returns the n most likely root causes: design and
// manufacturing nodes ordered by descending belief, ties in store order.
// Service nodes are symptoms and never appear. n <= 0 returns every
// candidate. The network is only read.
func RankSuspects(net *causal.Network, n int) []Suspect {
	var candidates []*causal.Node
	for _, node := range net.Nodes() {
		if node.Layer != causal.LayerService {
			candidates = append(candidates, node)
		}
	}
	if n <= 0 || n > len(candidates) {
		n = len(candidates)
	}
	if n == 0 {
		return nil
	}

	h := make(suspectHeap, 0, n)
	for i, node := range candidates {
		s := Suspect{ID: node.ID, Score: node.CurrentBelief, Node: node, order: i}
		if h.Len() < n {
			heap.Push(&h, s)
		} else if s.Score > h[0].Score {
			heap.Pop(&h)
			heap.Push(&h, s)
		}
	}

	out := make([]Suspect, h.Len())
	for i := h.Len() - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(Suspect)
	}
	return out
}
