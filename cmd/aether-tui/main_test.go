package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/cluso-aether/pkg/causal"
	"github.com/dd0wney/cluso-aether/pkg/inference"
	"github.com/dd0wney/cluso-aether/pkg/scenario"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	sc, err := scenario.Builtin(scenario.DefaultName)
	if err != nil {
		t.Fatalf("Builtin() error = %v", err)
	}
	m, err := initialModel(sc)
	if err != nil {
		t.Fatalf("initialModel() error = %v", err)
	}
	return m
}

func press(t *testing.T, m model, keys ...string) model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(model)
	}
	return m
}

func TestInitialModel(t *testing.T) {
	m := newTestModel(t)

	if m.result == nil || !m.result.Converged {
		t.Fatalf("expected an initial converged run, got %+v", m.result)
	}
	if got := len(m.nodeTable.Rows()); got != 5 {
		t.Errorf("table rows = %d, want 5", got)
	}
	if row := m.nodeTable.SelectedRow(); len(row) == 0 || row[0] != "D001" {
		t.Errorf("selected row = %v, want D001 first", row)
	}
}

func TestUpdate_MarkFailed(t *testing.T) {
	m := newTestModel(t)
	before := m.result.Entropy

	// D001, M001, M002, S001
	m = press(t, m, "down", "down", "down", "x")

	s001, _ := m.net.Node("S001")
	if s001.Observed != causal.ConfirmedFailed {
		t.Fatalf("S001 observed = %v, want failed", s001.Observed)
	}
	if s001.CurrentBelief != 1.0 {
		t.Errorf("S001 belief = %v, want 1.0 after re-inference", s001.CurrentBelief)
	}
	if m.result.Entropy >= before {
		t.Errorf("entropy = %v, want below %v", m.result.Entropy, before)
	}
	if m.messageErr || !strings.Contains(m.message, "S001 marked failed") {
		t.Errorf("message = %q", m.message)
	}
	if row := m.nodeTable.SelectedRow(); row[5] != "failed" {
		t.Errorf("table not refreshed: %v", row)
	}
}

func TestUpdate_NormalClearAndReset(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, "o")
	d001, _ := m.net.Node("D001")
	if d001.Observed != causal.ConfirmedNormal || d001.CurrentBelief != 0 {
		t.Fatalf("D001 = %v/%v, want normal/0", d001.Observed, d001.CurrentBelief)
	}

	m = press(t, m, "c")
	if d001.Observed != causal.Unobserved || d001.CurrentBelief != 0.05 {
		t.Errorf("D001 = %v/%v, want unobserved/0.05", d001.Observed, d001.CurrentBelief)
	}

	m = press(t, m, "down", "x", "r")
	if len(m.net.Observations()) != 0 {
		t.Errorf("observations after reset = %v", m.net.Observations())
	}
}

func TestUpdate_ToggleMode(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, "m")
	if m.opts.Mode != inference.Jacobi || m.engine.Options().Mode != inference.Jacobi {
		t.Errorf("mode = %v, want jacobi", m.opts.Mode)
	}
	m = press(t, m, "m")
	if m.opts.Mode != inference.GaussSeidel {
		t.Errorf("mode = %v, want gauss-seidel", m.opts.Mode)
	}
}

func TestUpdate_Quit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestView(t *testing.T) {
	m := newTestModel(t)
	out := m.View()

	for _, want := range []string{"engine-vibration", "System entropy", "Suspects", "Piston Casting"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
