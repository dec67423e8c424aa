package game

import (
	"errors"
	"fmt"
)

// ScoreState is the running tally kept by the server
type ScoreState struct {
	PlayerWins   uint
	ComputerWins uint
	Draws        uint
}

// Total returns the number of rounds counted by the tally
func (s ScoreState) Total() uint {
	return s.PlayerWins + s.ComputerWins + s.Draws
}

// IsZero reports whether no rounds have been counted
func (s ScoreState) IsZero() bool {
	return s == ScoreState{}
}

// HistoryEntry is one played round as recorded by the server
type HistoryEntry struct {
	Round          uint // 1-based
	PlayerChoice   Choice
	ComputerChoice Choice
	Outcome        Outcome
}

// RoundResult is the server's answer to a submitted move
type RoundResult struct {
	PlayerChoice   Choice
	ComputerChoice Choice
	Outcome        Outcome
	Scores         ScoreState
	History        []HistoryEntry
}

// Description returns the comparison phrase for the round
func (r RoundResult) Description() string {
	return Describe(r.PlayerChoice, r.ComputerChoice, r.Outcome)
}

// Check reports every way the result disagrees with the rules of the game.
// A nil return means the tally matches the history, the history is in play
// order and the outcome agrees with the beats table.
func (r RoundResult) Check() error {
	var errs []error

	if !r.PlayerChoice.Valid() || !r.ComputerChoice.Valid() {
		errs = append(errs, fmt.Errorf("invalid choices %s vs %s", r.PlayerChoice, r.ComputerChoice))
	} else if want := Resolve(r.PlayerChoice, r.ComputerChoice); want != r.Outcome {
		errs = append(errs, fmt.Errorf("outcome %s for %s vs %s, expected %s",
			r.Outcome, r.PlayerChoice, r.ComputerChoice, want))
	}

	if err := CheckTally(r.Scores, r.History); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// CheckTally verifies that scores and history describe the same rounds:
// the tally sums to the history length, the per-outcome counts agree and
// round numbers increase strictly.
func CheckTally(scores ScoreState, history []HistoryEntry) error {
	if scores.Total() != uint(len(history)) {
		return fmt.Errorf("tally counts %d rounds but history has %d", scores.Total(), len(history))
	}

	var counted ScoreState
	var last uint
	for i, h := range history {
		if h.Round <= last {
			return fmt.Errorf("history entry %d has round %d after round %d", i, h.Round, last)
		}
		last = h.Round

		switch h.Outcome {
		case Win:
			counted.PlayerWins++
		case Lose:
			counted.ComputerWins++
		case Draw:
			counted.Draws++
		}
	}

	if counted != scores {
		return fmt.Errorf("history outcomes %+v do not match tally %+v", counted, scores)
	}
	return nil
}

// MostRecentFirst returns a reversed copy of history for display
func MostRecentFirst(history []HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, len(history))
	for i, h := range history {
		out[len(history)-1-i] = h
	}
	return out
}
