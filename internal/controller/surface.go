package controller

import (
	"time"

	"github.com/lox/roshambo/internal/game"
)

// Surface is the display the controller renders to. Every method must be
// safe to call from any goroutine.
type Surface interface {
	// SetInputsEnabled enables or disables the choice controls
	SetInputsEnabled(enabled bool)
	// SetLoading shows or hides the loading indicator
	SetLoading(loading bool)
	// ShowReveal shows the reveal area with the player's choice and a masked opponent
	ShowReveal(player game.Choice)
	// RevealOpponent replaces the masked opponent with the real choice
	RevealOpponent(opponent game.Choice)
	// HideReveal hides the reveal area
	HideReveal()
	// ShowOutcome renders the outcome banner inside the reveal area
	ShowOutcome(banner Banner)
	// SetScores replaces the score display
	SetScores(scores game.ScoreState)
	// SetHistory replaces the history list. Rows arrive most recent first.
	SetHistory(rows []game.HistoryEntry)
	// Notify shows a transient notification that dismisses itself after n.Duration
	Notify(n Notification)
}

// Banner is the outcome text shown after a reveal. A zero Outcome marks the
// placeholder shown while the opponent is hidden.
type Banner struct {
	Outcome  game.Outcome
	Headline string
	Detail   string
}

// PendingBanner is shown while waiting for the server
var PendingBanner = Banner{Headline: "Computer is thinking..."}

// NewBanner builds the banner for a round result
func NewBanner(r game.RoundResult) Banner {
	return Banner{
		Outcome:  r.Outcome,
		Headline: r.Outcome.Headline(),
		Detail:   r.Description(),
	}
}

// NotificationKind distinguishes success and error notifications
type NotificationKind int

const (
	NotifySuccess NotificationKind = iota
	NotifyError
)

func (k NotificationKind) String() string {
	if k == NotifyError {
		return "error"
	}
	return "success"
}

// Notification is a transient message for the user
type Notification struct {
	Kind     NotificationKind
	Message  string
	Duration time.Duration
}

// Notification messages
const (
	MsgRoundFailed  = "Failed to play round. Please try again."
	MsgResetFailed  = "Failed to reset game. Please try again."
	MsgResetSuccess = "Game reset successfully!"
)
