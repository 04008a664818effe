package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-aether/pkg/causal"
	"github.com/dd0wney/cluso-aether/pkg/inference"
	"github.com/dd0wney/cluso-aether/pkg/report"
	"github.com/dd0wney/cluso-aether/pkg/scenario"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 2).
			MarginRight(2)

	suspectBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#FFFF00")).
			Padding(0, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Failed key.Binding
	Normal key.Binding
	Clear  key.Binding
	Reset  key.Binding
	Mode   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Failed: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "mark failed"),
	),
	Normal: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "mark normal"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear mark"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset all"),
	),
	Mode: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "toggle sweep mode"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Failed, k.Normal, k.Clear, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Failed, k.Normal, k.Clear},
		{k.Reset, k.Mode},
		{k.Help, k.Quit},
	}
}

type model struct {
	name       string
	net        *causal.Network
	opts       inference.Options
	engine     *inference.Engine
	result     *inference.Result
	nodeTable  table.Model
	help       help.Model
	keys       keyMap
	width      int
	message    string
	messageErr bool
}

func initialModel(sc *scenario.Scenario) (model, error) {
	net, err := sc.Build()
	if err != nil {
		return model{}, err
	}
	opts, err := sc.Options()
	if err != nil {
		return model{}, err
	}

	columns := []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Layer", Width: 6},
		{Title: "Name", Width: 24},
		{Title: "Prior", Width: 8},
		{Title: "Belief", Width: 8},
		{Title: "Observed", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(min(net.Len()+1, 15)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)

	m := model{
		name:      sc.Name,
		net:       net,
		opts:      opts,
		engine:    inference.NewEngine(opts),
		nodeTable: t,
		help:      help.New(),
		keys:      keys,
	}
	m.infer()
	return m, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil

		case key.Matches(msg, m.keys.Failed):
			m.observeSelected(causal.ConfirmedFailed)
			return m, nil

		case key.Matches(msg, m.keys.Normal):
			m.observeSelected(causal.ConfirmedNormal)
			return m, nil

		case key.Matches(msg, m.keys.Clear):
			m.observeSelected(causal.Unobserved)
			return m, nil

		case key.Matches(msg, m.keys.Reset):
			m.net.ClearObservations()
			m.net.ResetBeliefs()
			m.infer()
			m.setMessage("observations cleared", false)
			return m, nil

		case key.Matches(msg, m.keys.Mode):
			if m.opts.Mode == inference.Jacobi {
				m.opts.Mode = inference.GaussSeidel
			} else {
				m.opts.Mode = inference.Jacobi
			}
			m.engine = inference.NewEngine(m.opts)
			m.infer()
			m.setMessage("sweep mode: "+m.opts.Mode.String(), false)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.nodeTable, cmd = m.nodeTable.Update(msg)
	return m, cmd
}

func (m *model) selectedNode() (*causal.Node, bool) {
	row := m.nodeTable.SelectedRow()
	if len(row) == 0 {
		return nil, false
	}
	return m.net.Node(row[0])
}

func (m *model) observeSelected(o causal.Observation) {
	node, ok := m.selectedNode()
	if !ok {
		m.setMessage("no node selected", true)
		return
	}
	if err := m.net.Observe(node.ID, o); err != nil {
		m.setMessage(err.Error(), true)
		return
	}
	m.infer()
	m.setMessage(fmt.Sprintf("%s marked %s", node.ID, o), false)
}

func (m *model) infer() {
	m.result = m.engine.Infer(m.net)
	m.updateNodeTable()
}

func (m *model) setMessage(msg string, isErr bool) {
	m.message = msg
	m.messageErr = isErr
}

func (m *model) updateNodeTable() {
	nodes := m.net.Nodes()
	rows := make([]table.Row, 0, len(nodes))
	for _, node := range nodes {
		rows = append(rows, table.Row{
			node.ID,
			node.Layer.String(),
			node.Name,
			report.FormatProbability(node.Prior()),
			report.FormatProbability(node.CurrentBelief),
			node.Observed.String(),
		})
	}
	m.nodeTable.SetRows(rows)
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Aether Belief Explorer: " + m.name))
	s.WriteString("\n\n")

	stats := statsBoxStyle.Render(report.Summary(m.result) +
		fmt.Sprintf("\nmode: %s", m.opts.Mode))
	suspects := inference.RankSuspects(m.net, report.DefaultTopN)
	explain := suspectBoxStyle.Render(report.SuspectList(suspects) + "\n\n" + report.Attribution(m.net, suspects))
	s.WriteString(contentStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, stats, explain)))
	s.WriteString("\n\n")

	s.WriteString(contentStyle.Render(m.nodeTable.View()))

	if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(contentStyle.Render(errorStyle.Render("✗ " + m.message)))
		} else {
			s.WriteString(contentStyle.Render(successStyle.Render("✓ " + m.message)))
		}
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return s.String()
}

func main() {
	scenarioFile := flag.String("scenario", "", "Scenario YAML file (overrides -builtin)")
	builtin := flag.String("builtin", scenario.DefaultName, "Bundled scenario to explore")
	flag.Parse()

	var (
		sc  *scenario.Scenario
		err error
	)
	if *scenarioFile != "" {
		f, openErr := os.Open(*scenarioFile)
		if openErr != nil {
			log.Fatalf("Failed to open scenario: %v", openErr)
		}
		sc, err = scenario.Load(f)
		f.Close()
	} else {
		sc, err = scenario.Builtin(*builtin)
	}
	if err != nil {
		log.Fatalf("Failed to load scenario: %v", err)
	}

	m, err := initialModel(sc)
	if err != nil {
		log.Fatalf("Failed to build network: %v", err)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running TUI: %v", err)
	}
}
