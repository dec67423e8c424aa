package game

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidChoice is returned when a choice name is not rock, paper or scissors
var ErrInvalidChoice = errors.New("invalid choice")

// Choice is a hand shape thrown in a round. The zero value is not a valid choice.
type Choice int

const (
	Rock Choice = iota + 1
	Paper
	Scissors
)

// Choices lists the valid choices in display order
var Choices = []Choice{Rock, Paper, Scissors}

var (
	choiceNames  = [...]string{"", "rock", "paper", "scissors"}
	choiceTitles = [...]string{"", "Rock", "Paper", "Scissors"}
	choiceIcons  = [...]string{"", "🗿", "📄", "✂️"}
)

// MaskedIcon stands in for a choice that has not been revealed yet
const MaskedIcon = "❓"

// Valid reports whether c is one of Rock, Paper or Scissors
func (c Choice) Valid() bool {
	return c >= Rock && c <= Scissors
}

// String returns the lowercase wire name ("rock")
func (c Choice) String() string {
	if !c.Valid() {
		return fmt.Sprintf("choice(%d)", int(c))
	}
	return choiceNames[c]
}

// Title returns the capitalised name used in outcome phrases ("Rock")
func (c Choice) Title() string {
	if !c.Valid() {
		return c.String()
	}
	return choiceTitles[c]
}

// Icon returns the emoji shown for the choice
func (c Choice) Icon() string {
	if !c.Valid() {
		return MaskedIcon
	}
	return choiceIcons[c]
}

// Beats reports whether c defeats other
func (c Choice) Beats(other Choice) bool {
	v, ok := beats[c]
	return ok && v.loser == other
}

// ParseChoice parses a choice name, ignoring case and surrounding space
func ParseChoice(s string) (Choice, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Choices {
		if choiceNames[c] == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, s)
}

// MarshalText implements encoding.TextMarshaler
func (c Choice) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChoice, int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Choice) UnmarshalText(text []byte) error {
	parsed, err := ParseChoice(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
