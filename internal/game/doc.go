// Package game defines the Rock-Paper-Scissors domain types shared by the
// client: choices, outcomes, the score tally and the round history.
//
// The server is the authority for every round. Nothing in this package
// decides what the client displays; Resolve exists so replies can be
// cross-checked against the beats table.
//
// # Basic Usage
//
//	choice, err := game.ParseChoice("rock")
//	if err != nil {
//	    return err
//	}
//	phrase := game.Describe(choice, game.Scissors, game.Win) // "Rock crushes Scissors"
//
// History is stored in play order. Use MostRecentFirst to get a display copy:
//
//	rows := game.MostRecentFirst(result.History)
package game
