package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dd0wney/cluso-aether/pkg/causal"
	"github.com/dd0wney/cluso-aether/pkg/inference"
	"github.com/dd0wney/cluso-aether/pkg/logging"
	"github.com/dd0wney/cluso-aether/pkg/metrics"
	"github.com/dd0wney/cluso-aether/pkg/report"
	"github.com/dd0wney/cluso-aether/pkg/scenario"
)

type config struct {
	ScenarioFile string
	Builtin      string
	List         bool
	LogLevel     string
	Metrics      bool
	Jacobi       bool
	TopN         int
}

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if err := run(cfg, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, output io.Writer) (config, error) {
	var cfg config

	fs := flag.NewFlagSet("aether", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.ScenarioFile, "scenario", "", "Scenario YAML file (overrides -builtin)")
	fs.StringVar(&cfg.Builtin, "builtin", scenario.DefaultName, "Bundled scenario to run")
	fs.BoolVar(&cfg.List, "list", false, "List bundled scenarios and exit")
	fs.StringVar(&cfg.LogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.Metrics, "metrics", false, "Print a Prometheus text snapshot after the run")
	fs.BoolVar(&cfg.Jacobi, "jacobi", false, "Use Jacobi sweeps instead of in-place updates")
	fs.IntVar(&cfg.TopN, "top", report.DefaultTopN, "Number of suspects to list per phase")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		err := fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
		fmt.Fprintln(output, err)
		return cfg, err
	}
	return cfg, nil
}

func loadScenario(cfg config) (*scenario.Scenario, error) {
	if cfg.ScenarioFile == "" {
		return scenario.Builtin(cfg.Builtin)
	}

	f, err := os.Open(cfg.ScenarioFile)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	return scenario.Load(f)
}

func run(cfg config, stdout, stderr io.Writer) error {
	if cfg.List {
		for _, name := range scenario.BuiltinNames() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}

	logger := logging.NewJSONLogger(stderr, logging.ParseLevel(cfg.LogLevel))

	sc, err := loadScenario(cfg)
	if err != nil {
		return err
	}

	opts, err := sc.Options()
	if err != nil {
		return err
	}
	if cfg.Jacobi {
		opts.Mode = inference.Jacobi
	}

	net, err := sc.Build(causal.WithLogger(logger))
	if err != nil {
		return err
	}

	registry := metrics.NewRegistry()
	engine := inference.NewEngine(opts, inference.WithLogger(logger), inference.WithMetrics(registry))

	logger.Info("scenario loaded",
		logging.String("scenario", sc.Name),
		logging.Count(net.Len()),
		logging.Int("phases", len(sc.Phases)),
		logging.String("mode", engine.Options().Mode.String()))

	fmt.Fprintf(stdout, "=== %s ===\n", sc.Name)
	if sc.Description != "" {
		fmt.Fprintln(stdout, strings.TrimSpace(sc.Description))
	}
	fmt.Fprintln(stdout)

	phases := sc.Phases
	if len(phases) == 0 {
		phases = []scenario.Phase{{Name: "baseline"}}
	}

	for i, phase := range phases {
		if err := phase.Apply(net); err != nil {
			return fmt.Errorf("phase %q: %w", phase.Name, err)
		}

		result := engine.Infer(net)

		err := report.Write(stdout, report.Phase{
			Index:       i + 1,
			Name:        phase.Name,
			Description: phase.Description,
			Network:     net,
			Result:      result,
			TopN:        cfg.TopN,
		})
		if err != nil {
			return err
		}
	}

	if cfg.Metrics {
		fmt.Fprintln(stdout, "--- metrics ---")
		if err := registry.WriteText(stdout); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
