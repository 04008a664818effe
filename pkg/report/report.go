// Package report renders inference results for terminals: a belief table,
// the run summary with system entropy, ranked suspects and a plain-language
// attribution of confirmed failures to their most likely root cause.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dd0wney/cluso-aether/pkg/causal"
	"github.com/dd0wney/cluso-aether/pkg/inference"
)

// DefaultTopN is how many suspects a phase report lists.
const DefaultTopN = 3

// Phase is one step of a scenario after inference has run.
type Phase struct {
	Index       int // 1-based; 0 omits the number from the title
	Name        string
	Description string
	Network     *causal.Network
	Result      *inference.Result
	TopN        int
}

// Write renders p to w.
func Write(w io.Writer, p Phase) error {
	topN := p.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	suspects := inference.RankSuspects(p.Network, topN)

	var b strings.Builder

	b.WriteString(titleStyle.Render(phaseTitle(p)))
	b.WriteString("\n")
	if p.Description != "" {
		b.WriteString(descriptionStyle.Render(p.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if p.Result != nil {
		b.WriteString(Summary(p.Result))
		b.WriteString("\n")
	}
	b.WriteString(BeliefTable(p.Network))
	b.WriteString("\n")
	b.WriteString(SuspectList(suspects))
	b.WriteString("\n")
	b.WriteString(explainStyle.Render(Attribution(p.Network, suspects)))
	b.WriteString("\n\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func phaseTitle(p Phase) string {
	name := p.Name
	if name == "" {
		name = "inference"
	}
	if p.Index > 0 {
		return fmt.Sprintf("[Phase %d] %s", p.Index, name)
	}
	return name
}

// BeliefTable renders every node in store order. Observed nodes are
// highlighted.
func BeliefTable(net *causal.Network) string {
	nodes := net.Nodes()

	rows := make([][]string, 0, len(nodes))
	for _, node := range nodes {
		rows = append(rows, []string{
			node.ID,
			node.Layer.String(),
			node.Name,
			FormatProbability(node.Prior()),
			FormatProbability(node.CurrentBelief),
			node.Observed.String(),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(tableBorderColor)).
		Headers("ID", "Layer", "Name", "Prior", "Belief", "Observed").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(nodes) {
				return cellStyle
			}
			switch nodes[row].Observed {
			case causal.ConfirmedFailed:
				return failedStyle
			case causal.ConfirmedNormal:
				return normalStyle
			}
			return cellStyle
		})

	return t.String()
}

// Summary renders the run statistics and system entropy.
func Summary(r *inference.Result) string {
	status := fmt.Sprintf("converged after %d sweep(s)", r.Sweeps)
	if !r.Converged {
		status = warnStyle.Render(fmt.Sprintf("sweep cap reached after %d sweep(s), max delta %.6f", r.Sweeps, r.MaxDelta))
	}

	lines := []string{
		fmt.Sprintf("System entropy: %.4f bits", r.Entropy),
		status,
	}
	if r.Cycles > 0 {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("%d cycle(s) detected; beliefs depend on sweep order", r.Cycles)))
	}
	return summaryStyle.Render(strings.Join(lines, "\n"))
}

// SuspectList renders ranked root-cause candidates.
func SuspectList(suspects []inference.Suspect) string {
	if len(suspects) == 0 {
		return "Suspects: none"
	}

	var b strings.Builder
	b.WriteString(headerStyle.UnsetPadding().Render("Suspects"))
	for i, s := range suspects {
		fmt.Fprintf(&b, "\n  %d. %s %s (Belief: %s)", i+1, s.ID, s.Node.Name, FormatProbability(s.Score))
	}
	return b.String()
}

// Attribution explains confirmed failures in terms of the highest ranked
// suspect. suspects must be ordered as RankSuspects returns them.
func Attribution(net *causal.Network, suspects []inference.Suspect) string {
	var failed []string
	for _, node := range net.Nodes() {
		if node.Observed == causal.ConfirmedFailed {
			failed = append(failed, fmt.Sprintf("'%s' (P=%s)", node.Name, FormatProbability(node.CurrentBelief)))
		}
	}

	if len(failed) == 0 {
		return "No confirmed failures; nothing to attribute."
	}
	if len(suspects) == 0 {
		return fmt.Sprintf("Detected %s, but no design or manufacturing node is linked as a candidate.", strings.Join(failed, ", "))
	}

	top := suspects[0]
	return strings.Join([]string{
		fmt.Sprintf("Detected %s.", strings.Join(failed, ", ")),
		fmt.Sprintf("Most likely root cause is '%s' (Belief=%s).", top.Node.Name, FormatProbability(top.Score)),
		fmt.Sprintf("Inspect %s record %s first.", top.Node.Layer.Name(), top.ID),
		"Derived from the causal graph priors and observations only.",
	}, "\n")
}

// FormatProbability renders p with four decimals.
func FormatProbability(p float64) string {
	return fmt.Sprintf("%.4f", p)
}
