package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	coordinator "github.com/koscakluka/ema-perspective/core"
	"github.com/koscakluka/ema-perspective/core/proposals"
	"github.com/koscakluka/ema-perspective/internal/utils"
)

// controller is the part of the coordinator the terminal drives.
type controller interface {
	HoldStart()
	HoldRelease()
	Confirm()
	SendText(text string)
	AcceptProposal(id string)
	EditProposal(id string, edit proposals.Edit)
	DiscardProposal(id string)
	SelectAnchor(id string, anchor proposals.Anchor)
	AcceptDefinition()
	SkipDefinition()
}

type viewMsg coordinator.View

type runDoneMsg struct{ err error }

const weightStep = 10

type theme struct {
	header   lipgloss.Style
	panel    lipgloss.Style
	title    lipgloss.Style
	selected lipgloss.Style
	muted    lipgloss.Style
	notice   lipgloss.Style
	status   lipgloss.Style
}

func newTheme() theme {
	accent := lipgloss.Color("#7dd3fc")
	muted := lipgloss.Color("#94a3b8")
	warn := lipgloss.Color("#fbbf24")
	return theme{
		header: lipgloss.NewStyle().Bold(true).Padding(0, 1),
		panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
		title:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		selected: lipgloss.NewStyle().Foreground(accent).Bold(true),
		muted:    lipgloss.NewStyle().Foreground(muted),
		notice:   lipgloss.NewStyle().Foreground(warn),
		status:   lipgloss.NewStyle().Foreground(accent).Bold(true),
	}
}

type model struct {
	ctrl     controller
	audio    bool
	view     coordinator.View
	input    textinput.Model
	selected int
	holding  bool
	width    int
	theme    theme
}

func newModel(ctrl controller, audio bool) model {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 2000
	input.Placeholder = "press i to type"
	return model{
		ctrl:  ctrl,
		audio: audio,
		input: input,
		width: 80,
		theme: newTheme(),
		view:  coordinator.View{Status: coordinator.StatusConnecting},
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-6, 10)
		return m, nil
	case viewMsg:
		m.view = coordinator.View(msg)
		m.holding = m.view.Holding
		m.selected = utils.Clamp(m.selected, 0, max(len(m.view.Proposals)-1, 0))
		return m, nil
	case runDoneMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		return m.handleKey(msg.String()), nil
	}
	return m, nil
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if text := strings.TrimSpace(m.input.Value()); text != "" {
			m.ctrl.SendText(text)
		}
		m.input.Reset()
		m.input.Blur()
		return m, nil
	case "esc":
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey applies a single key command while the text input is not
// focused.
func (m model) handleKey(key string) model {
	switch key {
	case "i", "/":
		m.input.Focus()
	case " ", "space":
		if !m.audio {
			m.view.Notice = "Audio is disabled, press i to type"
			return m
		}
		if m.holding {
			m.ctrl.HoldRelease()
		} else {
			m.ctrl.HoldStart()
		}
		m.holding = !m.holding
	case "ctrl+g":
		m.ctrl.Confirm()
	case "ctrl+a":
		m.ctrl.AcceptDefinition()
	case "ctrl+s":
		m.ctrl.SkipDefinition()
	case "tab", "down", "j":
		m.selected = m.move(1)
	case "shift+tab", "up", "k":
		m.selected = m.move(-1)
	case "a":
		if p, ok := m.current(); ok {
			m.ctrl.AcceptProposal(p.ID)
		}
	case "d":
		if p, ok := m.current(); ok {
			m.ctrl.DiscardProposal(p.ID)
		}
	case "+", "=":
		m.nudgeWeight(weightStep)
	case "-":
		m.nudgeWeight(-weightStep)
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(proposals.Anchors) {
			if p, ok := m.current(); ok && p.Kind == proposals.KindSetCell {
				m.ctrl.SelectAnchor(p.ID, proposals.Anchors[n-1])
			}
		}
	}
	return m
}

func (m model) move(delta int) int {
	n := len(m.view.Proposals)
	if n == 0 {
		return 0
	}
	return (m.selected + delta + n) % n
}

func (m model) current() (coordinator.ProposalView, bool) {
	if m.selected < 0 || m.selected >= len(m.view.Proposals) {
		return coordinator.ProposalView{}, false
	}
	return m.view.Proposals[m.selected], true
}

func (m model) nudgeWeight(delta int) {
	p, ok := m.current()
	if !ok || p.Kind != proposals.KindSetCell {
		return
	}
	weight := proposals.ParseWeight(strconv.Itoa(p.Weight+delta), p.Weight)
	m.ctrl.EditProposal(p.ID, proposals.Edit{Weight: utils.Ptr(weight)})
}

func (m model) View() string {
	width := max(m.width-4, 20)
	var sections []string

	header := m.theme.status.Render(m.view.Status)
	if m.view.AwaitingYou {
		header += m.theme.muted.Render("  ctrl+g to let me answer")
	}
	sections = append(sections, m.theme.header.Render(header))

	if m.view.GateOpen {
		sections = append(sections, m.panel("Problem definition", m.definitionLines(), width))
	}
	if m.view.Summary != "" {
		sections = append(sections, m.panel("Summary", []string{wordwrap.String(m.view.Summary, width-4)}, width))
	}
	if lines := m.stateLines(width); len(lines) > 0 {
		sections = append(sections, m.panel("Perspective", lines, width))
	}
	if len(m.view.Proposals) > 0 {
		sections = append(sections, m.panel("Proposals", m.proposalLines(width), width))
	}
	if lines := m.gridLines(); len(lines) > 0 {
		sections = append(sections, m.panel("Decision grid", lines, width))
	}
	if len(m.view.Transcript) > 0 {
		sections = append(sections, m.panel("Transcript", m.transcriptLines(width), width))
	}
	if m.view.Notice != "" {
		sections = append(sections, m.theme.notice.Render(m.view.Notice))
	}
	sections = append(sections, m.input.View(), m.theme.muted.Render(m.help()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m model) panel(title string, lines []string, width int) string {
	body := strings.Join(append([]string{m.theme.title.Render(title)}, lines...), "\n")
	return m.theme.panel.Width(width).Render(body)
}

func (m model) definitionLines() []string {
	d := m.view.Definition
	if d.IsEmpty() {
		return []string{m.theme.muted.Render("nothing captured yet")}
	}
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", label, value))
		}
	}
	add("Title", d.Title)
	add("Scope", d.Scope)
	add("Time window", d.TimeWindow)
	add("Participants", strings.Join(d.Participants, ", "))
	add("Compare on", strings.Join(d.Axes, ", "))
	return lines
}

func (m model) stateLines(width int) []string {
	var lines []string
	for _, bucket := range m.view.State {
		if len(bucket.Entries) == 0 {
			continue
		}
		lines = append(lines, m.theme.title.Render(bucket.Label))
		for _, entry := range bucket.Entries {
			lines = append(lines, wordwrap.String("• "+entry.Text, width-4))
		}
	}
	for _, conflict := range m.view.Conflicts {
		lines = append(lines, m.theme.notice.Render(fmt.Sprintf("conflict: %q vs %q", conflict.A, conflict.B)))
	}
	return lines
}

func (m model) proposalLines(width int) []string {
	lines := make([]string, 0, len(m.view.Proposals))
	for i, p := range m.view.Proposals {
		line := describeProposal(p)
		if i == m.selected {
			lines = append(lines, m.theme.selected.Render(wordwrap.String("▶ "+line, width-4)))
			continue
		}
		lines = append(lines, wordwrap.String("  "+line, width-4))
	}
	return lines
}

func describeProposal(p coordinator.ProposalView) string {
	var line string
	switch p.Kind {
	case proposals.KindAddOption:
		line = fmt.Sprintf("add option %q", p.Option)
	case proposals.KindAddCriterion:
		line = fmt.Sprintf("add criterion %q", p.Criterion)
	case proposals.KindSetCell:
		line = fmt.Sprintf("%s / %s: %+d (%.0f%%)", p.Option, p.Criterion, p.Weight, p.Confidence*100)
		if len(p.Anchors) > 0 {
			anchors := make([]string, len(p.Anchors))
			for i, a := range p.Anchors {
				anchors[i] = string(a)
			}
			line += " [" + strings.Join(anchors, ", ") + "]"
		}
		if p.Rationale != "" {
			line += ", " + p.Rationale
		}
	default:
		line = string(p.Kind)
	}
	return fmt.Sprintf("%s (%s)", line, p.Source)
}

func (m model) gridLines() []string {
	g := m.view.Grid
	if len(g.Options) == 0 && len(g.Criteria) == 0 {
		return nil
	}
	lines := []string{
		"Options: " + strings.Join(g.Options, ", "),
		"Criteria: " + strings.Join(g.Criteria, ", "),
	}
	for _, cell := range g.Cells {
		lines = append(lines, fmt.Sprintf("%s × %s: %+d", cell.Option, cell.Criterion, cell.Weight))
	}
	return lines
}

func (m model) transcriptLines(width int) []string {
	lines := make([]string, 0, len(m.view.Transcript))
	for _, turn := range m.view.Transcript {
		lines = append(lines, wordwrap.String(fmt.Sprintf("%s: %s", turn.Role, turn.Text), width-4))
	}
	return lines
}

func (m model) help() string {
	keys := []string{"i type", "ctrl+g confirm", "tab select", "a/d accept/discard", "+/- weight", "1-8 anchors"}
	if m.audio {
		keys = append([]string{"space talk"}, keys...)
	}
	if m.view.GateOpen {
		keys = append(keys, "ctrl+a accept definition", "ctrl+s skip")
	}
	keys = append(keys, "ctrl+c quit")
	return strings.Join(keys, " · ")
}
