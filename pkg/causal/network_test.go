package causal

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/dd0wney/cluso-aether/pkg/logging"
)

// setupEngineNetwork builds the design -> manufacturing -> service chain used
// throughout the package tests.
func setupEngineNetwork(t *testing.T) *Network {
	t.Helper()

	net := NewNetwork()
	net.AddNode(NewNode("D001", "Engine Spec V1", LayerDesign, 0.05))
	net.AddNode(NewNode("M001", "Piston Casting", LayerManufacturing, 0.02))
	net.AddNode(NewNode("M002", "Valve Forging", LayerManufacturing, 0.01))
	net.AddNode(NewNode("S001", "High Vibration", LayerService, 0.001))
	net.AddNode(NewNode("S002", "Overheating", LayerService, 0.001))

	net.CreateLink("D001", "M001")
	net.CreateLink("D001", "M002")
	net.CreateLink("M001", "S001")
	net.CreateLink("M002", "S002")
	net.CreateLink("M001", "S002")
	return net
}

func TestNewNode_Defaults(t *testing.T) {
	n := NewNode("X", "Widget", LayerDesign, DefaultPrior)

	if n.Prior() != 0.01 {
		t.Errorf("Prior() = %v, want 0.01", n.Prior())
	}
	if n.CurrentBelief != InitialBelief {
		t.Errorf("CurrentBelief = %v, want %v", n.CurrentBelief, InitialBelief)
	}
	if n.Observed != Unobserved {
		t.Errorf("Observed = %v, want unobserved", n.Observed)
	}
	if n.HasParents() {
		t.Error("new node should have no parents")
	}
}

func TestNewNode_BeliefIgnoresPrior(t *testing.T) {
	n := NewNode("X", "Widget", LayerDesign, 0.3)

	if n.CurrentBelief != InitialBelief {
		t.Errorf("CurrentBelief = %v, want %v before any inference", n.CurrentBelief, InitialBelief)
	}
	if n.Prior() != 0.3 {
		t.Errorf("Prior() = %v, want 0.3", n.Prior())
	}
}

func TestNode_String(t *testing.T) {
	n := NewNode("D001", "Engine Spec V1", LayerDesign, 0.05)
	n.CurrentBelief = n.Prior()
	if got, want := n.String(), "[EBOM] Engine Spec V1 (Belief: 0.0500)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestNetwork_AddNodePreservesOrder(t *testing.T) {
	net := setupEngineNetwork(t)

	var ids []string
	for _, n := range net.Nodes() {
		ids = append(ids, n.ID)
	}
	want := []string{"D001", "M001", "M002", "S001", "S002"}
	if !slices.Equal(ids, want) {
		t.Errorf("Nodes() order = %v, want %v", ids, want)
	}
	if net.Len() != 5 {
		t.Errorf("Len() = %d, want 5", net.Len())
	}
}

func TestNetwork_AddNodeOverwrites(t *testing.T) {
	var buf bytes.Buffer
	net := NewNetwork(WithLogger(logging.NewJSONLogger(&buf, logging.WarnLevel)))
	net.AddNode(NewNode("A", "first", LayerDesign, 0.1))
	net.AddNode(NewNode("B", "child", LayerService, 0.1))
	net.CreateLink("A", "B")

	replacement := NewNode("A", "second", LayerManufacturing, 0.2)
	net.AddNode(replacement)

	got, ok := net.Node("A")
	if !ok || got != replacement {
		t.Fatalf("Node(A) = %v, want replacement", got)
	}
	if net.Len() != 2 {
		t.Errorf("Len() = %d, want 2 after overwrite", net.Len())
	}
	if net.Nodes()[0].ID != "A" {
		t.Errorf("overwritten id moved in iteration order")
	}
	if !slices.Equal(replacement.Children(), []string{"B"}) {
		t.Errorf("replacement children = %v, want [B]", replacement.Children())
	}
	if net.Statistics().Overwrites != 1 {
		t.Errorf("Overwrites = %d, want 1", net.Statistics().Overwrites)
	}
	if !strings.Contains(buf.String(), "node id overwritten") {
		t.Errorf("expected overwrite warning, got %q", buf.String())
	}
}

func TestNetwork_CreateLinkIsBidirectional(t *testing.T) {
	net := setupEngineNetwork(t)

	m001, _ := net.Node("M001")
	s002, _ := net.Node("S002")

	if !slices.Equal(m001.Parents(), []string{"D001"}) {
		t.Errorf("M001 parents = %v, want [D001]", m001.Parents())
	}
	if !slices.Equal(m001.Children(), []string{"S001", "S002"}) {
		t.Errorf("M001 children = %v, want [S001 S002]", m001.Children())
	}
	if !slices.Equal(s002.Parents(), []string{"M002", "M001"}) {
		t.Errorf("S002 parents = %v, want [M002 M001]", s002.Parents())
	}

	// Every edge must be mirrored on both endpoints.
	for _, e := range net.Edges() {
		parent, _ := net.Node(e.ParentID)
		child, ok := net.Node(e.ChildID)
		if !ok {
			t.Fatalf("edge %v points at missing child", e)
		}
		if !slices.Contains(parent.Children(), e.ChildID) || !slices.Contains(child.Parents(), e.ParentID) {
			t.Errorf("edge %v is not mirrored", e)
		}
	}
	if got := net.Statistics().EdgeCount; got != 5 {
		t.Errorf("EdgeCount = %d, want 5", got)
	}
}

func TestNetwork_CreateLinkUnknownIsNoop(t *testing.T) {
	net := setupEngineNetwork(t)
	before := net.Edges()

	net.CreateLink("D001", "NOPE")
	net.CreateLink("NOPE", "S001")
	net.CreateLink("X", "Y")

	if !slices.Equal(net.Edges(), before) {
		t.Errorf("edges changed after linking unknown ids")
	}
	if got := net.Statistics().IgnoredLinks; got != 3 {
		t.Errorf("IgnoredLinks = %d, want 3", got)
	}
}

func TestNetwork_LinkReportsMissing(t *testing.T) {
	net := setupEngineNetwork(t)

	err := net.Link("GHOST", "PHANTOM")
	if !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("Link() error = %v, want ErrUnknownNode", err)
	}

	var linkErr *LinkError
	if !errors.As(err, &linkErr) {
		t.Fatalf("Link() error type = %T, want *LinkError", err)
	}
	if !slices.Equal(linkErr.Missing, []string{"GHOST", "PHANTOM"}) {
		t.Errorf("Missing = %v, want [GHOST PHANTOM]", linkErr.Missing)
	}
	if !strings.Contains(err.Error(), "GHOST -> PHANTOM") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestNetwork_LinkDuplicateIgnored(t *testing.T) {
	net := setupEngineNetwork(t)

	if err := net.Link("D001", "M001"); err != nil {
		t.Fatalf("Link() error = %v", err)
	}
	m001, _ := net.Node("M001")
	if len(m001.Parents()) != 1 {
		t.Errorf("duplicate link added a second parent: %v", m001.Parents())
	}
	if got := net.Statistics().EdgeCount; got != 5 {
		t.Errorf("EdgeCount = %d, want 5", got)
	}
}

func TestNetwork_SelfLinkAllowed(t *testing.T) {
	net := NewNetwork()
	net.AddNode(NewNode("L", "loop", LayerManufacturing, 0.1))

	if err := net.Link("L", "L"); err != nil {
		t.Fatalf("Link() error = %v", err)
	}
	l, _ := net.Node("L")
	if !slices.Equal(l.Parents(), []string{"L"}) || !slices.Equal(l.Children(), []string{"L"}) {
		t.Errorf("self link not recorded: parents=%v children=%v", l.Parents(), l.Children())
	}
}

func TestNetwork_NodesInLayer(t *testing.T) {
	net := setupEngineNetwork(t)

	tests := []struct {
		layer Layer
		want  []string
	}{
		{LayerDesign, []string{"D001"}},
		{LayerManufacturing, []string{"M001", "M002"}},
		{LayerService, []string{"S001", "S002"}},
	}

	for _, tt := range tests {
		t.Run(tt.layer.Name(), func(t *testing.T) {
			var ids []string
			for _, n := range net.NodesInLayer(tt.layer) {
				ids = append(ids, n.ID)
			}
			if !slices.Equal(ids, tt.want) {
				t.Errorf("NodesInLayer(%v) = %v, want %v", tt.layer, ids, tt.want)
			}

			// Stable across repeated calls.
			var again []string
			for _, n := range net.NodesInLayer(tt.layer) {
				again = append(again, n.ID)
			}
			if !slices.Equal(ids, again) {
				t.Errorf("NodesInLayer not stable: %v then %v", ids, again)
			}
		})
	}
}

func TestNetwork_ObserveAndClear(t *testing.T) {
	net := setupEngineNetwork(t)

	if err := net.Observe("S001", ConfirmedFailed); err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	if err := net.Observe("S002", ConfirmedNormal); err != nil {
		t.Fatalf("Observe() error = %v", err)
	}
	if err := net.Observe("NOPE", ConfirmedFailed); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Observe(NOPE) error = %v, want ErrUnknownNode", err)
	}

	obs := net.Observations()
	if len(obs) != 2 || obs["S001"] != ConfirmedFailed || obs["S002"] != ConfirmedNormal {
		t.Errorf("Observations() = %v", obs)
	}

	net.ClearObservations()
	if len(net.Observations()) != 0 {
		t.Errorf("observations remain after clear: %v", net.Observations())
	}
}

func TestNetwork_ResetBeliefs(t *testing.T) {
	net := setupEngineNetwork(t)
	for _, n := range net.Nodes() {
		n.CurrentBelief = 0.9
	}

	net.ResetBeliefs()

	for _, n := range net.Nodes() {
		if n.CurrentBelief != InitialBelief {
			t.Errorf("%s belief = %v, want %v", n.ID, n.CurrentBelief, InitialBelief)
		}
	}
}

func TestValidateNode(t *testing.T) {
	tests := []struct {
		name    string
		node    *Node
		wantErr error
	}{
		{"valid", NewNode("A", "a", LayerDesign, 0.3), nil},
		{"zero prior", NewNode("A", "a", LayerDesign, 0), ErrInvalidPrior},
		{"prior one", NewNode("A", "a", LayerDesign, 1), ErrInvalidPrior},
		{"empty id", NewNode("", "a", LayerDesign, 0.3), ErrEmptyID},
		{"bad layer", NewNode("A", "a", Layer(9), 0.3), ErrUnknownLayer},
		{"nil", nil, ErrUnknownNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNode(tt.node)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateNode() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateNode() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseLayer(t *testing.T) {
	tests := []struct {
		in      string
		want    Layer
		wantErr bool
	}{
		{"EBOM", LayerDesign, false},
		{"design", LayerDesign, false},
		{"MBOM", LayerManufacturing, false},
		{"Manufacturing", LayerManufacturing, false},
		{"sbom", LayerService, false},
		{" service ", LayerService, false},
		{"firmware", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLayer(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLayer(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseLayer(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLayers_RoundTrip(t *testing.T) {
	for _, l := range Layers {
		for _, s := range []string{l.String(), l.Name()} {
			got, err := ParseLayer(s)
			if err != nil || got != l {
				t.Errorf("ParseLayer(%q) = %v, %v; want %v", s, got, err, l)
			}
		}
	}
}

func TestObservation_IsHardFact(t *testing.T) {
	if Unobserved.IsHardFact() {
		t.Error("unobserved should not be a hard fact")
	}
	if !ConfirmedFailed.IsHardFact() || !ConfirmedNormal.IsHardFact() {
		t.Error("confirmed observations should be hard facts")
	}
}

func TestParseObservation(t *testing.T) {
	tests := []struct {
		in      string
		want    Observation
		wantErr bool
	}{
		{"failed", ConfirmedFailed, false},
		{"TRUE", ConfirmedFailed, false},
		{"normal", ConfirmedNormal, false},
		{"false", ConfirmedNormal, false},
		{"", Unobserved, false},
		{"unobserved", Unobserved, false},
		{"maybe", Unobserved, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseObservation(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseObservation(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseObservation(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
