// Package scenario loads YAML descriptions of a causal network, the engine
// options to run it with, and the observation phases to replay.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-aether/pkg/causal"
	"github.com/dd0wney/cluso-aether/pkg/inference"
	"github.com/dd0wney/cluso-aether/pkg/validation"
)

// Scenario is a complete diagnostic setup.
type Scenario struct {
	Name        string       `yaml:"name" validate:"required,max=100"`
	Description string       `yaml:"description"`
	Engine      EngineConfig `yaml:"engine"`
	Nodes       []NodeSpec   `yaml:"nodes" validate:"required,min=1,dive"`
	Links       []LinkSpec   `yaml:"links" validate:"dive"`
	Phases      []Phase      `yaml:"phases" validate:"dive"`
}

// EngineConfig overrides inference defaults. Zero values keep the default.
type EngineConfig struct {
	MaxSweeps int      `yaml:"max_sweeps"`
	Tolerance *float64 `yaml:"tolerance" validate:"omitempty,gte=0,lt=1"`
	Mode      string   `yaml:"mode"`
}

// NodeSpec declares one node. Prior defaults to causal.DefaultPrior.
type NodeSpec struct {
	ID    string   `yaml:"id" validate:"required,nodeid"`
	Name  string   `yaml:"name" validate:"max=200"`
	Layer string   `yaml:"layer" validate:"required"`
	Prior *float64 `yaml:"prior"`
}

// LinkSpec declares a parent->child relation.
type LinkSpec struct {
	Parent string `yaml:"parent" validate:"required"`
	Child  string `yaml:"child" validate:"required"`
}

// Phase is one step of a diagnostic session: optionally clear earlier
// observations, apply new ones, then run inference.
type Phase struct {
	Name        string            `yaml:"name" validate:"required"`
	Description string            `yaml:"description"`
	Clear       bool              `yaml:"clear"`
	Observe     map[string]string `yaml:"observe" validate:"dive,keys,required,endkeys,oneof=failed normal unobserved"`
}

// Parse decodes and validates a YAML scenario.
func Parse(data []byte) (*Scenario, error) {
	return Load(bytes.NewReader(data))
}

// Load decodes and validates a YAML scenario from r. Unknown keys are rejected.
func Load(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("scenario: empty document")
		}
		return nil, fmt.Errorf("scenario: decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// maxSweepsLimit bounds engine.max_sweeps in scenario files.
const maxSweepsLimit = 1000

// Validate checks field ranges and cross references: unique node ids,
// known layers, and links and observations that name declared nodes.
func (s *Scenario) Validate() error {
	if err := validation.Struct(s); err != nil {
		return fmt.Errorf("scenario: %w", err)
	}

	cv := validation.NewConfigValidator("scenario")
	cv.When(s.Engine.MaxSweeps != 0, func(cv *validation.ConfigValidator) {
		cv.RangeInt("engine.max_sweeps", s.Engine.MaxSweeps, 1, maxSweepsLimit)
	})
	cv.When(s.Engine.Mode != "", func(cv *validation.ConfigValidator) {
		cv.OneOf("engine.mode", s.Engine.Mode, []string{inference.GaussSeidel.String(), inference.Jacobi.String()})
	})
	ids := make(map[string]bool, len(s.Nodes))
	for i, n := range s.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		if ids[n.ID] {
			cv.Add(fmt.Errorf("scenario.%s.id: duplicate node id %q", field, n.ID))
		}
		ids[n.ID] = true
		cv.Custom(field+".layer", func() error {
			_, err := causal.ParseLayer(n.Layer)
			return err
		})
		if n.Prior != nil {
			cv.OpenUnitInterval(field+".prior", *n.Prior)
		}
	}
	for i, l := range s.Links {
		cv.Known(fmt.Sprintf("links[%d].parent", i), l.Parent, ids)
		cv.Known(fmt.Sprintf("links[%d].child", i), l.Child, ids)
	}
	for i, p := range s.Phases {
		for _, id := range slices.Sorted(maps.Keys(p.Observe)) {
			cv.Known(fmt.Sprintf("phases[%d].observe", i), id, ids)
		}
	}
	return cv.Validate()
}

// Options returns the inference options the scenario asks for.
func (s *Scenario) Options() (inference.Options, error) {
	opts := inference.DefaultOptions()
	opts.MaxSweeps = validation.DefaultOr(s.Engine.MaxSweeps, opts.MaxSweeps)
	if s.Engine.Tolerance != nil {
		opts.Tolerance = *s.Engine.Tolerance
	}
	mode, err := inference.ParseUpdateMode(s.Engine.Mode)
	if err != nil {
		return opts, fmt.Errorf("scenario: engine.mode: %w", err)
	}
	opts.Mode = mode
	return opts, nil
}

// Build creates the network the scenario declares. Phases are not applied.
func (s *Scenario) Build(opts ...causal.NetworkOption) (*causal.Network, error) {
	net := causal.NewNetwork(opts...)
	for _, spec := range s.Nodes {
		layer, err := causal.ParseLayer(spec.Layer)
		if err != nil {
			return nil, &causal.NodeError{Op: "build", ID: spec.ID, Field: "layer", Cause: err}
		}
		prior := causal.DefaultPrior
		if spec.Prior != nil {
			prior = *spec.Prior
		}
		name := validation.DefaultOr(spec.Name, spec.ID)
		net.AddNode(causal.NewNode(spec.ID, name, layer, prior))
	}
	for _, l := range s.Links {
		if err := net.Link(l.Parent, l.Child); err != nil {
			return nil, err
		}
	}
	return net, nil
}

// Apply puts a phase's observations onto net, clearing earlier ones first when
// the phase asks for it. Observations are applied in node id order.
func (p Phase) Apply(net *causal.Network) error {
	if p.Clear {
		net.ClearObservations()
	}
	var errs []error
	for _, id := range slices.Sorted(maps.Keys(p.Observe)) {
		state := p.Observe[id]
		o, err := causal.ParseObservation(state)
		if err != nil {
			errs = append(errs, fmt.Errorf("phase %q: %s: %w", p.Name, id, err))
			continue
		}
		if err := net.Observe(id, o); err != nil {
			errs = append(errs, fmt.Errorf("phase %q: %w", p.Name, err))
		}
	}
	return errors.Join(errs...)
}
