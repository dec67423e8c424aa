package game

import "fmt"

type rule struct {
	loser Choice
	verb  string
}

// beats maps each winning choice to the choice it defeats
var beats = map[Choice]rule{
	Rock:     {loser: Scissors, verb: "crushes"},
	Paper:    {loser: Rock, verb: "covers"},
	Scissors: {loser: Paper, verb: "cuts"},
}

// Resolve applies the beats table to a pair of choices
func Resolve(player, opponent Choice) Outcome {
	switch {
	case player == opponent:
		return Draw
	case player.Beats(opponent):
		return Win
	default:
		return Lose
	}
}

// Describe returns the comparison phrase for a resolved round, e.g.
// "Rock crushes Scissors" or "Both chose paper".
func Describe(player, opponent Choice, outcome Outcome) string {
	switch outcome {
	case Draw:
		return "Both chose " + player.String()
	case Win:
		return beatPhrase(player, opponent)
	case Lose:
		return beatPhrase(opponent, player)
	}
	return ""
}

func beatPhrase(winner, loser Choice) string {
	if r, ok := beats[winner]; ok && r.loser == loser {
		return fmt.Sprintf("%s %s %s", winner.Title(), r.verb, loser.Title())
	}
	// Not a pair from the table; the server broke its contract.
	return fmt.Sprintf("%s beats %s", winner.Title(), loser.Title())
}
