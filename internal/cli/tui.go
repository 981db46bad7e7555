package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cookgraph/internal/scenario"
	"github.com/matzehuels/cookgraph/pkg/edit"
	errs "github.com/matzehuels/cookgraph/pkg/errors"
	"github.com/matzehuels/cookgraph/pkg/network"
	"github.com/matzehuels/cookgraph/pkg/session"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	statusErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// historyWindow bounds how many history entries the view shows.
const historyWindow = 8

// tuiCommand creates the tui command for stepping through a scenario.
func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui [scenario.toml]",
		Short: "Step through a scenario interactively",
		Long: `Step through a scenario interactively.

  n, enter   play the next scenario step
  u / r      undo / redo
  c          cook the visible node
  l          lock or unlock the selected node
  v          make the selected node visible
  ↑/↓        select a node
  q          quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Log lines would tear the alt screen; errors show in the status line.
			ctx := withLogger(cmd.Context(), log.New(io.Discard))
			s, sc, err := c.openScenario(ctx, args[0], nil)
			if err != nil {
				return err
			}
			p := tea.NewProgram(newSessionModel(ctx, s, sc), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}
}

// =============================================================================
// SessionModel - Interactive session stepping
// =============================================================================

// SessionModel is the bubbletea model for stepping through a scenario.
// All engine access happens inside Update, on the program's goroutine,
// which therefore acts as the session loop.
type SessionModel struct {
	ctx    context.Context
	sess   *session.Session
	player *scenario.Player
	name   string

	Cursor int
	Status string
	Failed bool
}

// newSessionModel creates a model over a built session.
func newSessionModel(ctx context.Context, s *session.Session, sc *scenario.Scenario) SessionModel {
	name := sc.Name
	if name == "" {
		name = "scenario"
	}
	return SessionModel{
		ctx:    ctx,
		sess:   s,
		player: scenario.NewPlayer(ctx, s, sc),
		name:   name,
		Status: fmt.Sprintf("%d steps to play", len(sc.Steps)),
	}
}

func (m SessionModel) Init() tea.Cmd {
	return nil
}

func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.sess.Network().Nodes())-1 {
			m.Cursor++
		}
	case "n", "enter":
		m.step()
	case "u":
		m.report("undo", m.sess.Undo())
	case "r":
		m.report("redo", m.sess.Redo())
	case "c":
		res, err := m.sess.Cook(m.ctx)
		if err == nil {
			m.Status = "cook: " + describeCook(res)
			m.Failed = false
			return m, nil
		}
		m.report("cook", err)
	case "l":
		if n := m.selected(); n != nil {
			m.report(lockVerb(n), m.sess.Apply(edit.SetLocked(m.sess.Network(), n.ID(), !n.Locked())))
		}
	case "v":
		if n := m.selected(); n != nil {
			m.report("show "+n.ID(), m.sess.Apply(edit.SetVisible(m.sess.Network(), n.ID())))
		}
	}
	m.sess.Settle()
	return m, nil
}

func (m *SessionModel) step() {
	st, ok := m.player.Peek()
	if !ok {
		m.Status, m.Failed = "no steps left", false
		return
	}
	_, err := m.player.Step()
	m.report(st.String(), err)
}

func (m *SessionModel) report(what string, err error) {
	if err != nil {
		m.Status, m.Failed = fmt.Sprintf("%s: %s", what, errs.UserMessage(err)), true
		return
	}
	m.Status, m.Failed = what, false
}

func (m SessionModel) selected() *network.Node {
	nodes := m.sess.Network().Nodes()
	if m.Cursor < 0 || m.Cursor >= len(nodes) {
		return nil
	}
	return nodes[m.Cursor]
}

func lockVerb(n *network.Node) string {
	if n.Locked() {
		return "unlock " + n.ID()
	}
	return "lock " + n.ID()
}

func (m SessionModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.name))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  step %d", m.player.Position())))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("n step  u undo  r redo  c cook  l lock  v show  q quit"))
	b.WriteString("\n\n")

	b.WriteString(m.nodeTable())
	b.WriteString("\n\n")
	b.WriteString(m.history())
	b.WriteString("\n")

	if m.Failed {
		b.WriteString(statusErrorStyle.Render(iconError + " " + m.Status))
	} else {
		b.WriteString(listDimStyle.Render(iconInfo + " " + m.Status))
	}
	return b.String()
}

func (m SessionModel) nodeTable() string {
	nodes := m.sess.Network().Nodes()
	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows[i] = []string{cursor, n.ID(), n.Kind(), outputsOf(n), flagsOf(n)}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Kind", "Outputs", "State").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 { // header
				return headerStyle
			}
			if row < 0 || row >= len(nodes) {
				return lipgloss.NewStyle()
			}
			n := nodes[row]
			switch {
			case row == m.Cursor:
				return listSelectedStyle
			case n.Locked():
				return listDimStyle
			case n.Dirty():
				return StyleWarning
			}
			return listNormalStyle
		})
	return t.Render()
}

func (m SessionModel) history() string {
	var b strings.Builder
	stack := m.sess.Stack()
	entries := stack.Entries()
	b.WriteString(StyleHighlight.Render(fmt.Sprintf("History %d/%d", stack.Index()+1, len(entries))))
	b.WriteString("\n")

	start := 0
	if len(entries) > historyWindow {
		start = len(entries) - historyWindow
	}
	for i := start; i < len(entries); i++ {
		line := fmt.Sprintf("  %s", entries[i].Name())
		switch {
		case i == stack.Index():
			b.WriteString(listSelectedStyle.Render("▸" + line[1:]))
		case i > stack.Index():
			b.WriteString(listDimStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func outputsOf(n *network.Node) string {
	outs := n.Outputs()
	parts := make([]string, len(outs))
	for i, o := range outs {
		parts[i] = fmt.Sprintf("%s=%v", o.Name(), o.Value())
	}
	return strings.Join(parts, " ")
}

func flagsOf(n *network.Node) string {
	var flags []string
	if n.Visible() {
		flags = append(flags, "visible")
	}
	if n.Locked() {
		flags = append(flags, "locked")
	}
	if n.Dirty() {
		flags = append(flags, "dirty")
	}
	return strings.Join(flags, " ")
}
