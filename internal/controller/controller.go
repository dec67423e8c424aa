// Package controller sequences a Rock-Paper-Scissors round on the client:
// lock the inputs, ask the server, pace the reveal, render the result and
// unlock again. The server stays the authority for scores and history; the
// controller only caches what it last received.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/roshambo/internal/game"
	"github.com/lox/roshambo/internal/service"
)

var (
	ErrNoService       = errors.New("controller requires a game service")
	ErrNoSurface       = errors.New("controller requires a render surface")
	ErrRoundInProgress = errors.New("round already in progress")
)

// State is the controller's round state
type State int

const (
	Idle State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "idle"
}

// GameService is the remote authority that resolves rounds
type GameService interface {
	SubmitMove(ctx context.Context, choice game.Choice) (game.RoundResult, error)
	ResetState(ctx context.Context) (game.ScoreState, error)
}

// Recorder receives round and reset outcomes, e.g. for metrics
type Recorder interface {
	RoundCompleted(outcome game.Outcome, elapsed time.Duration)
	RoundFailed(kind string)
	ResetCompleted()
	ResetFailed(kind string)
}

// Pacing holds the presentation delays of a successful round
type Pacing struct {
	Reveal time.Duration // before the opponent's choice is shown
	Settle time.Duration // after the result is shown, before inputs unlock
}

// DefaultPacing returns the standard one second reveal and two second settle
func DefaultPacing() Pacing {
	return Pacing{Reveal: time.Second, Settle: 2 * time.Second}
}

// DefaultNotifyDuration is how long notifications stay visible
const DefaultNotifyDuration = 3 * time.Second

// Option configures a RoundController
type Option func(*RoundController)

// WithClock sets the clock used for pacing
func WithClock(clock quartz.Clock) Option {
	return func(c *RoundController) { c.clock = clock }
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(c *RoundController) { c.logger = logger.WithPrefix("controller") }
}

// WithPacing sets the reveal and settle delays. Zero delays are skipped.
func WithPacing(p Pacing) Option {
	return func(c *RoundController) { c.pacing = p }
}

// WithNotifyDuration sets how long notifications stay visible
func WithNotifyDuration(d time.Duration) Option {
	return func(c *RoundController) { c.notifyFor = d }
}

// WithRecorder sets the outcome recorder
func WithRecorder(r Recorder) Option {
	return func(c *RoundController) { c.recorder = r }
}

// RoundController owns the client's round state and drives a Surface
type RoundController struct {
	svc       GameService
	surface   Surface
	clock     quartz.Clock
	logger    *log.Logger
	pacing    Pacing
	notifyFor time.Duration
	recorder  Recorder

	// render orders surface updates that must not interleave between a
	// round and a reset. Held while calling the surface; never while
	// waiting on the service or the clock.
	render sync.Mutex

	mu      sync.Mutex
	state   State
	resets  uint64 // successful resets, used to spot superseded round replies
	scores  game.ScoreState
	history []game.HistoryEntry
	subs    []*Subscription
}

// New creates a controller and renders its initial state: zero scores, no
// history and enabled inputs.
func New(svc GameService, surface Surface, opts ...Option) (*RoundController, error) {
	if svc == nil {
		return nil, ErrNoService
	}
	if surface == nil {
		return nil, ErrNoSurface
	}

	c := &RoundController{
		svc:       svc,
		surface:   surface,
		clock:     quartz.NewReal(),
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
		pacing:    DefaultPacing(),
		notifyFor: DefaultNotifyDuration,
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}

	surface.SetScores(game.ScoreState{})
	surface.SetHistory(nil)
	surface.HideReveal()
	surface.SetLoading(false)
	surface.SetInputsEnabled(true)

	return c, nil
}

// State returns the current round state
func (c *RoundController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Scores returns the cached score tally
func (c *RoundController) Scores() game.ScoreState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scores
}

// History returns a copy of the cached history in play order
func (c *RoundController) History() []game.HistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]game.HistoryEntry(nil), c.history...)
}

// RequestRound plays one round with choice. It returns ErrRoundInProgress,
// without touching the surface, when a round is already being played.
// Service failures are shown as a notification and returned; the cached
// state is left as it was. A reset that completes after the round's reply
// arrived wins: the reply is discarded and nil is returned.
func (c *RoundController) RequestRound(ctx context.Context, choice game.Choice) error {
	if !choice.Valid() {
		return fmt.Errorf("%w: %s", game.ErrInvalidChoice, choice)
	}

	c.render.Lock()
	if !c.begin() {
		c.render.Unlock()
		c.logger.Debug("Ignoring round request while playing", "choice", choice)
		return ErrRoundInProgress
	}
	c.surface.SetInputsEnabled(false)
	c.surface.SetLoading(true)
	c.surface.ShowReveal(choice)
	c.surface.ShowOutcome(PendingBanner)
	c.render.Unlock()

	start := c.clock.Now()
	c.logger.Info("Playing round", "choice", choice)

	result, err := c.svc.SubmitMove(ctx, choice)
	if err != nil {
		kind := service.Kind(err)
		c.logger.Error("Round failed", "choice", choice, "kind", kind, "error", err)
		c.recorder.RoundFailed(kind)

		c.render.Lock()
		c.surface.SetLoading(false)
		c.surface.HideReveal()
		c.notify(NotifyError, MsgRoundFailed)
		c.end()
		c.render.Unlock()
		return err
	}
	epoch := c.resetEpoch()

	if err := result.Check(); err != nil {
		c.logger.Warn("Server reply breaks the rules of the game", "error", err)
	}

	c.wait(ctx, c.pacing.Reveal, "reveal")
	c.recorder.RoundCompleted(result.Outcome, c.clock.Since(start))

	c.render.Lock()
	if !c.showRound(epoch, result) {
		c.surface.SetLoading(false)
		c.end()
		c.render.Unlock()
		c.logger.Info("Discarding round reply superseded by a reset",
			"player", result.PlayerChoice, "computer", result.ComputerChoice)
		return nil
	}
	c.render.Unlock()

	c.logger.Info("Round complete",
		"player", result.PlayerChoice,
		"computer", result.ComputerChoice,
		"outcome", result.Outcome,
		"rounds", len(result.History))

	c.wait(ctx, c.pacing.Settle, "settle")

	c.render.Lock()
	c.end()
	c.render.Unlock()
	return nil
}

// ResetState asks the server to clear the scores and history. It may be
// called in any state.
func (c *RoundController) ResetState(ctx context.Context) error {
	c.render.Lock()
	// A round in flight owns the loading indicator
	if c.State() == Idle {
		c.surface.SetLoading(true)
	}
	c.render.Unlock()
	defer c.settleLoading()

	c.logger.Info("Resetting game")

	scores, err := c.svc.ResetState(ctx)
	if err != nil {
		kind := service.Kind(err)
		c.logger.Error("Reset failed", "kind", kind, "error", err)
		c.recorder.ResetFailed(kind)
		c.notify(NotifyError, MsgResetFailed)
		return err
	}

	if !scores.IsZero() {
		c.logger.Warn("Reset reply has a non-zero tally", "scores", scores)
	}

	c.render.Lock()
	c.mu.Lock()
	c.resets++
	c.mu.Unlock()
	c.apply(game.ScoreState{}, nil)
	c.surface.HideReveal()
	c.render.Unlock()

	c.recorder.ResetCompleted()
	c.notify(NotifySuccess, MsgResetSuccess)
	return nil
}

// Bind subscribes the controller to inputs on bus until Close
func (c *RoundController) Bind(bus *Bus) {
	choice := bus.Subscribe(InputChoice, func(ctx context.Context, in Input) {
		_ = c.RequestRound(ctx, in.Choice)
	})
	reset := bus.Subscribe(InputReset, func(ctx context.Context, in Input) {
		_ = c.ResetState(ctx)
	})

	c.mu.Lock()
	c.subs = append(c.subs, choice, reset)
	c.mu.Unlock()
}

// Close removes every input subscription made by Bind
func (c *RoundController) Close() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
}

func (c *RoundController) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Playing {
		return false
	}
	c.state = Playing
	return true
}

// end returns to Idle and unlocks the inputs. Callers hold render.
func (c *RoundController) end() {
	c.mu.Lock()
	c.state = Idle
	c.mu.Unlock()

	c.surface.SetInputsEnabled(true)
}

func (c *RoundController) resetEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resets
}

// showRound reveals and applies a round result unless a reset has completed
// since epoch was taken. Callers hold render.
func (c *RoundController) showRound(epoch uint64, result game.RoundResult) bool {
	if c.resetEpoch() != epoch {
		return false
	}

	c.surface.RevealOpponent(result.ComputerChoice)
	c.surface.SetLoading(false)
	c.surface.ShowOutcome(NewBanner(result))
	c.apply(result.Scores, result.History)
	return true
}

// settleLoading hides the loading indicator unless a round has taken it over
func (c *RoundController) settleLoading() {
	c.render.Lock()
	defer c.render.Unlock()
	if c.State() == Idle {
		c.surface.SetLoading(false)
	}
}

// apply replaces the cached copy with the server's and renders it. Callers
// hold render.
func (c *RoundController) apply(scores game.ScoreState, history []game.HistoryEntry) {
	c.mu.Lock()
	c.scores = scores
	c.history = append([]game.HistoryEntry(nil), history...)
	c.mu.Unlock()

	c.surface.SetScores(scores)
	c.surface.SetHistory(game.MostRecentFirst(history))
}

// wait blocks for d on the controller clock. Cancelling ctx cuts it short.
func (c *RoundController) wait(ctx context.Context, d time.Duration, tag string) {
	if d <= 0 {
		return
	}

	timer := c.clock.NewTimer(d, "controller", tag)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (c *RoundController) notify(kind NotificationKind, msg string) {
	c.surface.Notify(Notification{Kind: kind, Message: msg, Duration: c.notifyFor})
}

type nopRecorder struct{}

func (nopRecorder) RoundCompleted(game.Outcome, time.Duration) {}
func (nopRecorder) RoundFailed(string)                         {}
func (nopRecorder) ResetCompleted()                            {}
func (nopRecorder) ResetFailed(string)                         {}
