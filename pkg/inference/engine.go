package inference

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-aether/pkg/causal"
	"github.com/dd0wney/cluso-aether/pkg/logging"
	"github.com/dd0wney/cluso-aether/pkg/metrics"
)

// Result describes one inference run. Beliefs themselves are written to the
// network's nodes.
type Result struct {
	RunID     string
	Sweeps    int           // Sweeps actually executed
	Converged bool          // Stopped early because MaxDelta fell below tolerance
	MaxDelta  float64       // Largest belief change in the final sweep
	Entropy   float64       // SystemEntropy after the run
	Cycles    int           // Cycles found before the run; they never abort it
	Duration  time.Duration
}

// Engine runs the bounded fixed-point iteration. An Engine holds no per-run
// state and may be reused, but a Network must not be inferred from two
// goroutines at once.
type Engine struct {
	opts    Options
	logger  logging.Logger
	metrics *metrics.Registry
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger logging.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records every run into the given registry.
func WithMetrics(r *metrics.Registry) EngineOption {
	return func(e *Engine) {
		e.metrics = r
	}
}

// NewEngine creates an engine. Out-of-range options fall back to defaults.
func NewEngine(opts Options, engineOpts ...EngineOption) *Engine {
	e := &Engine{
		opts:   opts.normalize(),
		logger: logging.NewNopLogger(),
	}
	for _, opt := range engineOpts {
		opt(e)
	}
	e.logger = e.logger.With(logging.Component("inference"))
	return e
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// Infer runs inference over net with the default options.
func Infer(net *causal.Network) *Result {
	return NewEngine(DefaultOptions()).Infer(net)
}

// Infer updates every node's belief in place. It runs at most MaxSweeps
// sweeps in store order and stops after the first sweep whose largest change
// is below Tolerance. Running out of sweeps is not an error; the last values
// stand.
func (e *Engine) Infer(net *causal.Network) *Result {
	runID := uuid.NewString()
	log := e.logger.With(logging.RunID(runID))
	timer := logging.StartTimer(log, "inference complete")

	cycles := DetectCycles(net)
	if len(cycles) > 0 {
		stats := AnalyzeCycles(cycles)
		log.Warn("network contains cycles; results depend on sweep order",
			logging.Count(stats.TotalCycles), logging.Int("self_loops", stats.SelfLoops),
			logging.Strings("first_cycle", cycles[0]))
	}

	nodes := net.Nodes()
	result := &Result{RunID: runID, Cycles: len(cycles)}

	for result.Sweeps < e.opts.MaxSweeps {
		result.Sweeps++

		if e.opts.Mode == Jacobi {
			result.MaxDelta = sweepJacobi(net, nodes)
		} else {
			result.MaxDelta = sweepInPlace(net, nodes)
		}

		log.Debug("sweep finished", logging.Int("sweep", result.Sweeps),
			logging.Float64("max_delta", result.MaxDelta))

		if result.MaxDelta < e.opts.Tolerance {
			result.Converged = true
			break
		}
	}

	result.Entropy = SystemEntropy(net)

	if log.GetLevel() <= logging.DebugLevel {
		for _, node := range nodes {
			log.Debug("node belief", logging.NodeID(node.ID), logging.Layer(node.Layer.String()),
				logging.Belief(node.CurrentBelief), logging.String("observed", node.Observed.String()))
		}
	}

	fields := []logging.Field{
		logging.Int("sweeps", result.Sweeps),
		logging.Bool("converged", result.Converged),
		logging.Float64("max_delta", result.MaxDelta),
		logging.Float64("entropy", result.Entropy),
		logging.Count(len(nodes)),
		logging.String("mode", e.opts.Mode.String()),
	}
	if result.Converged {
		result.Duration = timer.End(fields...)
	} else {
		result.Duration = timer.EndWithLevel(logging.WarnLevel, fields...)
	}

	e.record(net, result)
	return result
}

// sweepInPlace visits nodes in store order and writes each new belief
// immediately, so later nodes in the sweep read it.
func sweepInPlace(net *causal.Network, nodes []*causal.Node) float64 {
	maxDelta := 0.0
	for _, node := range nodes {
		old := node.CurrentBelief
		node.CurrentBelief = ComputeNodeBelief(net, node)
		maxDelta = math.Max(maxDelta, math.Abs(node.CurrentBelief-old))
	}
	return maxDelta
}

// sweepJacobi computes every node from the beliefs held at the start of the
// sweep, then writes them all.
func sweepJacobi(net *causal.Network, nodes []*causal.Node) float64 {
	snapshot := make(map[string]float64, len(nodes))
	for _, node := range nodes {
		snapshot[node.ID] = node.CurrentBelief
	}
	lookup := func(id string) (float64, bool) {
		p, ok := snapshot[id]
		return p, ok
	}

	next := make([]float64, len(nodes))
	for i, node := range nodes {
		next[i] = computeBelief(node, lookup)
	}

	maxDelta := 0.0
	for i, node := range nodes {
		maxDelta = math.Max(maxDelta, math.Abs(next[i]-node.CurrentBelief))
		node.CurrentBelief = next[i]
	}
	return maxDelta
}

func (e *Engine) record(net *causal.Network, result *Result) {
	if e.metrics == nil {
		return
	}

	stats := net.Statistics()
	e.metrics.UpdateNetworkMetrics(net.Len(), stats.EdgeCount, stats.IgnoredLinks, stats.Overwrites, result.Cycles)

	failed, normal := 0, 0
	for _, o := range net.Observations() {
		switch o {
		case causal.ConfirmedFailed:
			failed++
		case causal.ConfirmedNormal:
			normal++
		}
	}
	e.metrics.SetObservations(failed, normal)
	e.metrics.RecordInference(result.Converged, result.Sweeps, result.MaxDelta, result.Entropy, result.Duration)
}
