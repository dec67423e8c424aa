// Package display renders rounds as plain lines of text for non-interactive use.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/roshambo/internal/controller"
	"github.com/lox/roshambo/internal/game"
	"github.com/muesli/termenv"
)

// Text is a controller.Surface that writes one line per change
type Text struct {
	mu          sync.Mutex
	w           io.Writer
	showHistory bool

	header  lipgloss.Style
	win     lipgloss.Style
	lose    lipgloss.Style
	draw    lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	dim     lipgloss.Style

	player game.Choice
}

var _ controller.Surface = (*Text)(nil)

// Options control text output
type Options struct {
	// Profile is the colour profile; Ascii disables styling
	Profile termenv.Profile
	// ShowHistory prints the history after every round
	ShowHistory bool
}

// NewText creates a text surface writing to w
func NewText(w io.Writer, opts Options) *Text {
	r := lipgloss.NewRenderer(w, termenv.WithProfile(opts.Profile))

	return &Text{
		w:           w,
		showHistory: opts.ShowHistory,
		header:      r.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true),
		win:         r.NewStyle().Foreground(lipgloss.Color("#96CEB4")).Bold(true),
		lose:        r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		draw:        r.NewStyle().Foreground(lipgloss.Color("#FFEAA7")).Bold(true),
		success:     r.NewStyle().Foreground(lipgloss.Color("#04B575")),
		failure:     r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		dim:         r.NewStyle().Foreground(lipgloss.Color("#626262")),
	}
}

func (t *Text) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, format+"\n", args...)
}

func (t *Text) outcomeStyle(o game.Outcome) lipgloss.Style {
	switch o {
	case game.Win:
		return t.win
	case game.Lose:
		return t.lose
	case game.Draw:
		return t.draw
	}
	return t.dim
}

// SetInputsEnabled is a no-op; there are no controls to lock
func (t *Text) SetInputsEnabled(bool) {}

// SetLoading is a no-op; the pending banner covers it
func (t *Text) SetLoading(bool) {}

func (t *Text) ShowReveal(player game.Choice) {
	t.mu.Lock()
	t.player = player
	t.mu.Unlock()
	t.printf("You chose %s %s", player.Icon(), player.Title())
}

func (t *Text) RevealOpponent(opponent game.Choice) {
	t.printf("Computer chose %s %s", opponent.Icon(), opponent.Title())
}

func (t *Text) HideReveal() {
	t.mu.Lock()
	t.player = 0
	t.mu.Unlock()
}

func (t *Text) ShowOutcome(b controller.Banner) {
	if b.Outcome == 0 {
		t.printf("%s", t.dim.Render(game.MaskedIcon+" "+b.Headline))
		return
	}
	t.printf("%s %s", t.outcomeStyle(b.Outcome).Render(b.Headline), b.Detail)
}

func (t *Text) SetScores(s game.ScoreState) {
	t.printf("Score: you %d, computer %d, draws %d", s.PlayerWins, s.ComputerWins, s.Draws)
}

func (t *Text) SetHistory(rows []game.HistoryEntry) {
	if !t.showHistory || len(rows) == 0 {
		return
	}

	var b strings.Builder
	b.WriteString(t.header.Render("History"))
	for _, e := range rows {
		fmt.Fprintf(&b, "\n  #%d %s %s vs %s %s  %s",
			e.Round,
			e.PlayerChoice.Icon(), e.PlayerChoice,
			e.ComputerChoice.Icon(), e.ComputerChoice,
			t.outcomeStyle(e.Outcome).Render(e.Outcome.Label()))
	}
	t.printf("%s", b.String())
}

func (t *Text) Notify(n controller.Notification) {
	if n.Kind == controller.NotifyError {
		t.printf("%s", t.failure.Render(n.Message))
		return
	}
	t.printf("%s", t.success.Render(n.Message))
}
