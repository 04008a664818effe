package inference

import (
	"slices"

	"github.com/dd0wney/cluso-aether/pkg/causal"
)

// Cycle is a sequence of node ids that leads back to its first element.
type Cycle []string

// DetectCycles finds cycles along parent->child links using DFS with
// three-colour marking. Roots are taken in store order and children in link
// order, so the result is deterministic.
//
// The BOM graph is meant to flow design -> manufacturing -> service, but the
// store does not enforce it. Inference tolerates cycles; this exists so the
// engine can report them.
func DetectCycles(net *causal.Network) []Cycle {
	const (
		white = iota // unvisited
		gray         // on the recursion stack
		black        // finished
	)

	color := make(map[string]int, net.Len())
	parent := make(map[string]string)
	var cycles []Cycle

	var visit func(id string)
	visit = func(id string) {
		color[id] = gray

		node, ok := net.Node(id)
		if ok {
			for _, child := range node.Children() {
				if child == id {
					cycles = append(cycles, Cycle{id})
					continue
				}
				switch color[child] {
				case white:
					parent[child] = id
					visit(child)
				case gray:
					cycles = append(cycles, extractCycle(child, id, parent))
				}
			}
		}

		color[id] = black
	}

	for _, node := range net.Nodes() {
		if color[node.ID] == white {
			visit(node.ID)
		}
	}
	return cycles
}

// extractCycle walks parent pointers back from end to start, where end->start
// is the back edge that closed the cycle, and returns the ids in link order.
func extractCycle(start, end string, parent map[string]string) Cycle {
	cycle := Cycle{start}
	for current := end; current != start; {
		cycle = append(cycle, current)
		p, ok := parent[current]
		if !ok {
			break
		}
		current = p
	}
	slices.Reverse(cycle[1:])
	return cycle
}

// CycleStats summarises detected cycles.
type CycleStats struct {
	TotalCycles   int
	ShortestCycle int
	LongestCycle  int
	AverageLength float64
	SelfLoops     int
}

// AnalyzeCycles computes statistics about detected cycles.
func AnalyzeCycles(cycles []Cycle) CycleStats {
	if len(cycles) == 0 {
		return CycleStats{}
	}

	stats := CycleStats{
		TotalCycles:   len(cycles),
		ShortestCycle: len(cycles[0]),
		LongestCycle:  len(cycles[0]),
	}

	total := 0
	for _, c := range cycles {
		total += len(c)
		if len(c) == 1 {
			stats.SelfLoops++
		}
		stats.ShortestCycle = min(stats.ShortestCycle, len(c))
		stats.LongestCycle = max(stats.LongestCycle, len(c))
	}
	stats.AverageLength = float64(total) / float64(len(cycles))
	return stats
}
