package inference

import "fmt"

// UpdateMode selects how beliefs computed within one sweep become visible.
type UpdateMode int

const (
	// GaussSeidel updates in place in store order; a node visited later in a
	// sweep sees the values already written earlier in the same sweep.
	GaussSeidel UpdateMode = iota
	// Jacobi computes every node from the previous sweep's snapshot and
	// writes all results at the end of the sweep.
	Jacobi
)

func (m UpdateMode) String() string {
	switch m {
	case GaussSeidel:
		return "gauss-seidel"
	case Jacobi:
		return "jacobi"
	default:
		return fmt.Sprintf("UpdateMode(%d)", int(m))
	}
}

// ParseUpdateMode accepts "gauss-seidel" (or "") and "jacobi".
func ParseUpdateMode(s string) (UpdateMode, error) {
	switch s {
	case "", "gauss-seidel", "gauss_seidel", "in-place":
		return GaussSeidel, nil
	case "jacobi", "double-buffered":
		return Jacobi, nil
	}
	return GaussSeidel, fmt.Errorf("unknown update mode %q", s)
}

// Options configures the convergence loop.
type Options struct {
	MaxSweeps int        // Upper bound on sweeps, 5 by default
	Tolerance float64    // Stop once a sweep's largest belief change is below this
	Mode      UpdateMode // GaussSeidel unless deliberately changed
}

// DefaultOptions returns the canonical configuration: at most 5 in-place
// sweeps, stopping early below a 0.001 change.
func DefaultOptions() Options {
	return Options{
		MaxSweeps: 5,
		Tolerance: 0.001,
		Mode:      GaussSeidel,
	}
}

// normalize replaces out-of-range values with defaults. A zero tolerance is
// kept and means "always run MaxSweeps".
func (o Options) normalize() Options {
	def := DefaultOptions()
	if o.MaxSweeps < 1 {
		o.MaxSweeps = def.MaxSweeps
	}
	if o.Tolerance < 0 {
		o.Tolerance = def.Tolerance
	}
	if o.Mode != GaussSeidel && o.Mode != Jacobi {
		o.Mode = def.Mode
	}
	return o
}
