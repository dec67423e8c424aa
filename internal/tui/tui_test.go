package tui

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/roshambo/internal/controller"
	"github.com/lox/roshambo/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

type inputLog struct {
	mu     sync.Mutex
	inputs []controller.Input
}

func (l *inputLog) handle(_ context.Context, in controller.Input) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inputs = append(l.inputs, in)
}

func (l *inputLog) all() []controller.Input {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]controller.Input(nil), l.inputs...)
}

func newTestModel(t *testing.T) (*Model, *inputLog) {
	t.Helper()
	bus := controller.NewBus()
	inputs := &inputLog{}
	bus.Subscribe(controller.InputChoice, inputs.handle)
	bus.Subscribe(controller.InputReset, inputs.handle)
	return NewModel(context.Background(), bus, quietLogger()), inputs
}

func TestModelKeys(t *testing.T) {
	t.Run("choice keys publish inputs", func(t *testing.T) {
		m, inputs := newTestModel(t)

		for _, k := range []string{"r", "2", "s"} {
			_, cmd := m.Update(key(k))
			require.NotNil(t, cmd)
			assert.Nil(t, cmd())
		}

		assert.Equal(t, []controller.Input{
			{Kind: controller.InputChoice, Choice: game.Rock},
			{Kind: controller.InputChoice, Choice: game.Paper},
			{Kind: controller.InputChoice, Choice: game.Scissors},
		}, inputs.all())
	})

	t.Run("choices are ignored while inputs are disabled", func(t *testing.T) {
		m, inputs := newTestModel(t)
		m.Update(inputsMsg{enabled: false})

		_, cmd := m.Update(key("p"))
		assert.Nil(t, cmd)
		assert.Empty(t, inputs.all())
	})

	t.Run("reset is always available", func(t *testing.T) {
		m, inputs := newTestModel(t)
		m.Update(inputsMsg{enabled: false})

		_, cmd := m.Update(key("x"))
		require.NotNil(t, cmd)
		cmd()
		assert.Equal(t, []controller.Input{{Kind: controller.InputReset}}, inputs.all())
	})

	t.Run("quit", func(t *testing.T) {
		m, _ := newTestModel(t)
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.Empty(t, m.View())
	})
}

func TestModelView(t *testing.T) {
	m, _ := newTestModel(t)

	view := m.View()
	assert.Contains(t, view, "Rock Paper Scissors")
	assert.Contains(t, view, "You 0   Computer 0   Draws 0")
	assert.Contains(t, view, EmptyHistoryText)
	assert.NotContains(t, view, "vs   Computer")

	m.Update(revealMsg{player: game.Paper})
	m.Update(outcomeMsg{banner: controller.PendingBanner})
	view = m.View()
	assert.Contains(t, view, "You: 📄 Paper   vs   Computer: "+game.MaskedIcon)
	assert.Contains(t, view, "Computer is thinking...")

	result := game.RoundResult{
		PlayerChoice:   game.Paper,
		ComputerChoice: game.Rock,
		Outcome:        game.Win,
	}
	m.Update(opponentMsg{opponent: game.Rock})
	m.Update(outcomeMsg{banner: controller.NewBanner(result)})
	m.Update(scoresMsg{scores: game.ScoreState{PlayerWins: 1}})
	m.Update(historyMsg{rows: []game.HistoryEntry{
		{Round: 1, PlayerChoice: game.Paper, ComputerChoice: game.Rock, Outcome: game.Win},
	}})

	view = m.View()
	assert.Contains(t, view, "Computer: 🗿 Rock")
	assert.Contains(t, view, "You win!")
	assert.Contains(t, view, "Paper covers Rock")
	assert.Contains(t, view, "You 1   Computer 0   Draws 0")
	assert.Contains(t, view, "Round 1")
	assert.Contains(t, view, "You Won!")
	assert.NotContains(t, view, EmptyHistoryText)

	m.Update(hideRevealMsg{})
	m.Update(historyMsg{})
	view = m.View()
	assert.NotContains(t, view, "vs   Computer")
	assert.Contains(t, view, EmptyHistoryText)
}

func TestHistoryOrder(t *testing.T) {
	m, _ := newTestModel(t)
	m.Update(historyMsg{rows: []game.HistoryEntry{
		{Round: 2, PlayerChoice: game.Rock, ComputerChoice: game.Rock, Outcome: game.Draw},
		{Round: 1, PlayerChoice: game.Scissors, ComputerChoice: game.Rock, Outcome: game.Lose},
	}})

	history := m.renderHistory()
	assert.Less(t, strings.Index(history, "Round 2"), strings.Index(history, "Round 1"))
	assert.Contains(t, history, "Draw")
	assert.Contains(t, history, "You Lost")
}

func TestNotifications(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(notifyMsg{n: controller.Notification{
		Kind:     controller.NotifyError,
		Message:  controller.MsgRoundFailed,
		Duration: time.Millisecond,
	}})
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), controller.MsgRoundFailed)

	// The tick fires the dismissal for this notification
	assert.Equal(t, dismissMsg{id: 1}, cmd())

	m.Update(notifyMsg{n: controller.Notification{
		Kind:     controller.NotifySuccess,
		Message:  controller.MsgResetSuccess,
		Duration: time.Second,
	}})

	// A stale timer leaves the newer notification alone
	m.Update(dismissMsg{id: 1})
	view := m.View()
	assert.Contains(t, view, controller.MsgResetSuccess)
	assert.NotContains(t, view, controller.MsgRoundFailed)

	m.Update(dismissMsg{id: 2})
	assert.NotContains(t, m.View(), controller.MsgResetSuccess)
}

type recordingSender struct {
	msgs []tea.Msg
}

func (s *recordingSender) Send(msg tea.Msg) { s.msgs = append(s.msgs, msg) }

func TestSurface(t *testing.T) {
	sender := &recordingSender{}
	surface := NewSurface(sender)

	rows := []game.HistoryEntry{{Round: 1, PlayerChoice: game.Rock, ComputerChoice: game.Rock, Outcome: game.Draw}}

	surface.SetInputsEnabled(false)
	surface.SetLoading(true)
	surface.ShowReveal(game.Rock)
	surface.ShowOutcome(controller.PendingBanner)
	surface.RevealOpponent(game.Rock)
	surface.SetLoading(false)
	surface.SetScores(game.ScoreState{Draws: 1})
	surface.SetHistory(rows)
	surface.SetInputsEnabled(true)

	// Mutating the caller's slice must not leak into the message
	rows[0].Round = 99

	m, _ := newTestModel(t)
	for _, msg := range sender.msgs {
		m.Update(msg)
	}

	assert.True(t, m.inputsEnabled)
	assert.False(t, m.loading)
	require.NotNil(t, m.reveal)
	assert.Equal(t, game.Rock, m.reveal.opponent)
	assert.Equal(t, game.ScoreState{Draws: 1}, m.scores)
	require.Len(t, m.rows, 1)
	assert.Equal(t, uint(1), m.rows[0].Round)
}
