// Package tui renders the game in the terminal with Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/roshambo/internal/controller"
	"github.com/lox/roshambo/internal/game"
)

// EmptyHistoryText is shown before the first round
const EmptyHistoryText = "No games played yet. Start playing to see your history!"

var choiceKeys = map[string]game.Choice{
	"r": game.Rock,
	"1": game.Rock,
	"p": game.Paper,
	"2": game.Paper,
	"s": game.Scissors,
	"3": game.Scissors,
}

type reveal struct {
	player   game.Choice
	opponent game.Choice // zero while masked
	banner   controller.Banner
}

type notice struct {
	id int
	n  controller.Notification
}

// Model is the Bubble Tea model for the game screen. Key presses are
// published to the input bus; everything it shows arrives as messages from
// a Surface.
type Model struct {
	ctx    context.Context
	bus    *controller.Bus
	logger *log.Logger

	// UI components
	spinner spinner.Model
	history viewport.Model

	// Display state
	inputsEnabled bool
	loading       bool
	reveal        *reveal
	scores        game.ScoreState
	rows          []game.HistoryEntry
	notice        *notice
	noticeSeq     int

	// Dimensions
	width    int
	height   int
	quitting bool
}

// NewModel creates a model publishing inputs to bus. ctx is passed to the
// handlers of every published input.
func NewModel(ctx context.Context, bus *controller.Bus, logger *log.Logger) *Model {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))),
	)

	vp := viewport.New(60, 10)
	vp.SetContent(InfoStyle.Render(EmptyHistoryText))

	return &Model{
		ctx:           ctx,
		bus:           bus,
		logger:        logger.WithPrefix("tui"),
		spinner:       sp,
		history:       vp,
		inputsEnabled: true,
	}
}

// Init starts the spinner
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case inputsMsg:
		m.inputsEnabled = msg.enabled
	case loadingMsg:
		m.loading = msg.loading
	case revealMsg:
		m.reveal = &reveal{player: msg.player}
	case opponentMsg:
		if m.reveal != nil {
			m.reveal.opponent = msg.opponent
		}
	case outcomeMsg:
		if m.reveal != nil {
			m.reveal.banner = msg.banner
		}
	case hideRevealMsg:
		m.reveal = nil
	case scoresMsg:
		m.scores = msg.scores
	case historyMsg:
		m.rows = msg.rows
		m.history.SetContent(m.renderHistory())
		m.history.GotoTop()

	case notifyMsg:
		m.noticeSeq++
		id := m.noticeSeq
		m.notice = &notice{id: id, n: msg.n}
		return m, tea.Tick(msg.n.Duration, func(time.Time) tea.Msg {
			return dismissMsg{id: id}
		})

	case dismissMsg:
		// A newer notification replaces an older one's timer
		if m.notice != nil && m.notice.id == msg.id {
			m.notice = nil
		}
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "ctrl+c", "esc", "q":
		m.quitting = true
		return m, tea.Quit
	case "x":
		return m, m.publish(controller.Input{Kind: controller.InputReset})
	}

	if choice, ok := choiceKeys[key]; ok {
		if !m.inputsEnabled {
			m.logger.Debug("Ignoring choice while inputs are disabled", "choice", choice)
			return m, nil
		}
		return m, m.publish(controller.Input{Kind: controller.InputChoice, Choice: choice})
	}

	var cmd tea.Cmd
	m.history, cmd = m.history.Update(msg)
	return m, cmd
}

// publish runs the input handlers off the event loop, since they render
// back through the program
func (m *Model) publish(in controller.Input) tea.Cmd {
	return func() tea.Msg {
		if n := m.bus.Publish(m.ctx, in); n == 0 {
			m.logger.Warn("No handler for input", "kind", in.Kind)
		}
		return nil
	}
}

func (m *Model) resize() {
	w := m.width - 4 // border and padding
	if w < 20 {
		w = 20
	}
	h := m.height - 16 // header, controls, reveal, scores and footer
	if h < 3 {
		h = 3
	}
	m.history.Width = w
	m.history.Height = h
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		HeaderStyle.Render("Rock Paper Scissors"),
		m.renderControls(),
		m.renderReveal(),
		m.renderScores(),
		PaneStyle.Render(WarningStyle.Render("History") + "\n" + m.history.View()),
	}
	if m.notice != nil {
		sections = append(sections, m.renderNotice())
	}
	sections = append(sections, InfoStyle.Render("r/p/s choose • x reset • ↑↓ scroll history • q quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderControls() string {
	buttons := make([]string, 0, len(game.Choices))
	for _, c := range game.Choices {
		label := fmt.Sprintf("[%s] %s %s", c.String()[:1], c.Icon(), c.Title())
		if m.inputsEnabled {
			buttons = append(buttons, ChoiceStyle.Render(label))
		} else {
			buttons = append(buttons, InfoStyle.Render(label))
		}
	}
	return strings.Join(buttons, "  ")
}

func (m *Model) renderReveal() string {
	if m.reveal == nil {
		return ""
	}

	opponent := game.MaskedIcon
	if m.reveal.opponent.Valid() {
		opponent = m.reveal.opponent.Icon() + " " + m.reveal.opponent.Title()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You: %s %s   vs   Computer: %s\n",
		m.reveal.player.Icon(), m.reveal.player.Title(), opponent)

	headline := OutcomeStyle(m.reveal.banner.Outcome).Render(m.reveal.banner.Headline)
	if m.loading {
		headline = m.spinner.View() + " " + headline
	}
	b.WriteString(headline)
	if m.reveal.banner.Detail != "" {
		b.WriteString("\n")
		b.WriteString(m.reveal.banner.Detail)
	}

	return PaneStyle.Render(b.String())
}

func (m *Model) renderScores() string {
	return ScoreStyle.Render(fmt.Sprintf("You %d   Computer %d   Draws %d",
		m.scores.PlayerWins, m.scores.ComputerWins, m.scores.Draws))
}

func (m *Model) renderHistory() string {
	if len(m.rows) == 0 {
		return InfoStyle.Render(EmptyHistoryText)
	}

	lines := make([]string, 0, len(m.rows))
	for _, e := range m.rows {
		lines = append(lines, fmt.Sprintf("Round %d  %s %s vs %s %s  %s",
			e.Round,
			e.PlayerChoice.Icon(), e.PlayerChoice,
			e.ComputerChoice.Icon(), e.ComputerChoice,
			OutcomeStyle(e.Outcome).Render(e.Outcome.Label())))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderNotice() string {
	if m.notice.n.Kind == controller.NotifyError {
		return ErrorStyle.Render("✗ " + m.notice.n.Message)
	}
	return SuccessStyle.Render("✓ " + m.notice.n.Message)
}
