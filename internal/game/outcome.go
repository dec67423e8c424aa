package game

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOutcome is returned when an outcome name is not win, lose or draw
var ErrInvalidOutcome = errors.New("invalid outcome")

// Outcome is the result of a round from the player's point of view
type Outcome int

const (
	Win Outcome = iota + 1
	Lose
	Draw
)

var outcomeNames = [...]string{"", "win", "lose", "draw"}

// Valid reports whether o is one of Win, Lose or Draw
func (o Outcome) Valid() bool {
	return o >= Win && o <= Draw
}

func (o Outcome) String() string {
	if !o.Valid() {
		return fmt.Sprintf("outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// ParseOutcome parses an outcome name, ignoring case and surrounding space
func ParseOutcome(s string) (Outcome, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for o := Win; o <= Draw; o++ {
		if outcomeNames[o] == name {
			return o, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
}

// MarshalText implements encoding.TextMarshaler
func (o Outcome) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOutcome, int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *Outcome) UnmarshalText(text []byte) error {
	parsed, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Headline is the banner text shown for an outcome
func (o Outcome) Headline() string {
	switch o {
	case Win:
		return "You win!"
	case Lose:
		return "You lose!"
	case Draw:
		return "It's a draw!"
	}
	return ""
}

// Label is the short result text shown in a history row
func (o Outcome) Label() string {
	switch o {
	case Win:
		return "You Won!"
	case Lose:
		return "You Lost"
	}
	return "Draw"
}
