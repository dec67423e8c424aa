package controller

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/roshambo/internal/game"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// surfaceState is the last rendered value of every surface element
type surfaceState struct {
	inputsEnabled bool
	loading       bool
	revealShown   bool
	player        game.Choice
	opponent      game.Choice
	banner        Banner
	scores        game.ScoreState
	history       []game.HistoryEntry
	notifications []Notification

	shownAt    time.Time
	revealedAt time.Time
	enabledAt  time.Time
}

// recordingSurface keeps the rendered state plus an ordered log of calls
type recordingSurface struct {
	mu     sync.Mutex
	now    func() time.Time
	events []string
	st     surfaceState
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{now: time.Now}
}

func (s *recordingSurface) record(format string, args ...interface{}) {
	s.events = append(s.events, fmt.Sprintf(format, args...))
}

func (s *recordingSurface) SetInputsEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.inputsEnabled = enabled
	if enabled {
		s.st.enabledAt = s.now()
	}
	s.record("inputs:%t", enabled)
}

func (s *recordingSurface) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.loading = loading
	s.record("loading:%t", loading)
}

func (s *recordingSurface) ShowReveal(player game.Choice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.revealShown = true
	s.st.player = player
	s.st.opponent = 0
	s.st.shownAt = s.now()
	s.record("reveal:%s", player)
}

func (s *recordingSurface) RevealOpponent(opponent game.Choice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.opponent = opponent
	s.st.revealedAt = s.now()
	s.record("opponent:%s", opponent)
}

func (s *recordingSurface) HideReveal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.revealShown = false
	s.record("hide-reveal")
}

func (s *recordingSurface) ShowOutcome(b Banner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.banner = b
	s.record("banner:%s", b.Headline)
}

func (s *recordingSurface) SetScores(scores game.ScoreState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.scores = scores
	s.record("scores:%d/%d/%d", scores.PlayerWins, scores.ComputerWins, scores.Draws)
}

func (s *recordingSurface) SetHistory(rows []game.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.history = append([]game.HistoryEntry(nil), rows...)
	s.record("history:%d", len(rows))
}

func (s *recordingSurface) Notify(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.notifications = append(s.st.notifications, n)
	s.record("notify:%s", n.Kind)
}

func (s *recordingSurface) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func (s *recordingSurface) ResetEvents() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func (s *recordingSurface) Snapshot() surfaceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.st
	st.history = append([]game.HistoryEntry(nil), s.st.history...)
	st.notifications = append([]Notification(nil), s.st.notifications...)
	return st
}

// scriptedService resolves moves against a fixed computer choice and keeps
// the tally itself. Set gate to hold replies until released; set failWith
// to fail the next calls.
type scriptedService struct {
	mu       sync.Mutex
	computer game.Choice
	scores   game.ScoreState
	history  []game.HistoryEntry
	failWith error
	gate     chan struct{}
	calls    int
	resets   int
}

func newScriptedService(computer game.Choice) *scriptedService {
	return &scriptedService{computer: computer}
}

func (s *scriptedService) SubmitMove(ctx context.Context, choice game.Choice) (game.RoundResult, error) {
	s.mu.Lock()
	s.calls++
	gate := s.gate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return game.RoundResult{}, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return game.RoundResult{}, s.failWith
	}

	outcome := game.Resolve(choice, s.computer)
	switch outcome {
	case game.Win:
		s.scores.PlayerWins++
	case game.Lose:
		s.scores.ComputerWins++
	case game.Draw:
		s.scores.Draws++
	}
	s.history = append(s.history, game.HistoryEntry{
		Round:          uint(len(s.history) + 1),
		PlayerChoice:   choice,
		ComputerChoice: s.computer,
		Outcome:        outcome,
	})

	return game.RoundResult{
		PlayerChoice:   choice,
		ComputerChoice: s.computer,
		Outcome:        outcome,
		Scores:         s.scores,
		History:        append([]game.HistoryEntry(nil), s.history...),
	}, nil
}

func (s *scriptedService) ResetState(ctx context.Context) (game.ScoreState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
	if s.failWith != nil {
		return game.ScoreState{}, s.failWith
	}
	s.scores = game.ScoreState{}
	s.history = nil
	return s.scores, nil
}

func (s *scriptedService) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *scriptedService) SetComputer(c game.Choice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.computer = c
}

func (s *scriptedService) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

type countingRecorder struct {
	mu          sync.Mutex
	outcomes    []game.Outcome
	roundErrors []string
	resets      int
	resetErrors []string
}

func (r *countingRecorder) RoundCompleted(o game.Outcome, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *countingRecorder) RoundFailed(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roundErrors = append(r.roundErrors, kind)
}

func (r *countingRecorder) ResetCompleted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets++
}

func (r *countingRecorder) ResetFailed(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetErrors = append(r.resetErrors, kind)
}
