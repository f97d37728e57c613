// Package tui renders pipeline progress as a terminal UI: one row per
// stage with its cache outcome, a scrolling log, and a progress bar.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/enn-tee/agentic-job-search/internal/model"
)

// TUI forwards pipeline events into a running bubbletea program.
type TUI struct {
	program *tea.Program
}

func NewTUI(p *tea.Program) *TUI {
	return &TUI{program: p}
}

func (t *TUI) UpdateStatus(status string) {
	t.program.Send(StatusMsg(status))
}

func (t *TUI) UpdateStage(stage model.StageKind, outcome string) {
	t.program.Send(StageMsg{Stage: stage, Outcome: outcome})
}

func (t *TUI) Log(msg string) {
	t.program.Send(LogMsg(msg))
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	hitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	computedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB454"))
)

type Model struct {
	Title    string
	Status   string
	Outcomes map[model.StageKind]string
	Log      []string
	Progress progress.Model
	Viewport viewport.Model
	Quitting bool
	Ready    bool
	Width    int
	Height   int
}

type LogMsg string
type StatusMsg string

// StageMsg reports one stage's cache outcome.
type StageMsg struct {
	Stage   model.StageKind
	Outcome string
}

func NewModel(title string) Model {
	p := progress.New(progress.WithDefaultGradient())
	return Model{
		Title:    title,
		Status:   "Starting...",
		Outcomes: make(map[model.StageKind]string, len(model.Stages)),
		Progress: p,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			m.Quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		if !m.Ready {
			m.Viewport = viewport.New(msg.Width, msg.Height-12)
			m.Ready = true
		} else {
			m.Viewport.Width = msg.Width
			m.Viewport.Height = msg.Height - 12
		}

	case LogMsg:
		m.Log = append(m.Log, string(msg))
		m.Viewport.SetContent(strings.Join(m.Log, "\n"))
		m.Viewport.GotoBottom()

	case StatusMsg:
		m.Status = string(msg)

	case StageMsg:
		m.Outcomes[msg.Stage] = msg.Outcome
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if !m.Ready {
		return "\n  Starting..."
	}

	header := titleStyle.Render(" " + m.Title + " ")
	status := infoStyle.Render(fmt.Sprintf(" Status: %s ", m.Status))

	var stages []string
	done := 0
	for _, stage := range model.Stages {
		outcome, ok := m.Outcomes[stage]
		if !ok {
			stages = append(stages, fmt.Sprintf("  %-18s pending", stage))
			continue
		}
		done++
		style := computedStyle
		if outcome == "hit" {
			style = hitStyle
		}
		stages = append(stages, fmt.Sprintf("  %-18s %s", stage, style.Render(outcome)))
	}

	prog := m.Progress.ViewAs(float64(done) / float64(len(model.Stages)))

	view := fmt.Sprintf("%s%s\n\n%s\n\n%s\n\n%s",
		header, status,
		strings.Join(stages, "\n"),
		m.Viewport.View(),
		prog)

	if m.Quitting {
		return view + "\n  Quitting...\n"
	}

	return view
}
