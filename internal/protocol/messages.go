// Package protocol defines the JSON messages exchanged with the game server.
//
// Field names follow the server's HTTP API (player_choice, game_history, ...).
// The WebSocket transport wraps the same payloads in an Envelope.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/roshambo/internal/game"
)

// Envelope types
const (
	// Client -> Server
	TypePlay  = "play"
	TypeReset = "reset"

	// Server -> Client
	TypeRoundResult = "round_result"
	TypeResetResult = "reset_result"
	TypeError       = "error"
)

// Move is the body of a play request
type Move struct {
	Choice string `json:"choice"`
}

// HistoryRecord is one entry of game_history
type HistoryRecord struct {
	PlayerChoice   string `json:"player_choice"`
	ComputerChoice string `json:"computer_choice"`
	Result         string `json:"result"`
	RoundNumber    uint   `json:"round_number"`
}

// Tally carries the three score counters present on every reply
type Tally struct {
	PlayerScore   uint `json:"player_score"`
	ComputerScore uint `json:"computer_score"`
	DrawScore     uint `json:"draw_score"`
}

// RoundReply is the server's answer to a Move
type RoundReply struct {
	PlayerChoice   string `json:"player_choice"`
	ComputerChoice string `json:"computer_choice"`
	Result         string `json:"result"`
	Tally
	GameHistory []HistoryRecord `json:"game_history"`
	Error       string          `json:"error,omitempty"`
}

// ResetReply is the server's answer to a reset request
type ResetReply struct {
	Message string `json:"message,omitempty"`
	Tally
	GameHistory []HistoryRecord `json:"game_history"`
	Error       string          `json:"error,omitempty"`
}

// ErrorReply is the body of a failed request
type ErrorReply struct {
	Error string `json:"error"`
}

// Envelope wraps payloads sent over the WebSocket transport
type Envelope struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEnvelope creates an envelope with the current timestamp
func NewEnvelope(msgType, id string, data interface{}) (*Envelope, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Type:      msgType,
		ID:        id,
		Data:      dataBytes,
		Timestamp: time.Now().UTC(),
	}, nil
}

// NewMove builds the request body for a choice
func NewMove(choice game.Choice) Move {
	return Move{Choice: choice.String()}
}

// Scores converts the tally to the domain type
func (t Tally) Scores() game.ScoreState {
	return game.ScoreState{
		PlayerWins:   t.PlayerScore,
		ComputerWins: t.ComputerScore,
		Draws:        t.DrawScore,
	}
}

// Result converts the reply to a RoundResult. Unknown choice or outcome
// names are reported as errors.
func (r *RoundReply) Result() (game.RoundResult, error) {
	player, err := game.ParseChoice(r.PlayerChoice)
	if err != nil {
		return game.RoundResult{}, fmt.Errorf("player_choice: %w", err)
	}
	computer, err := game.ParseChoice(r.ComputerChoice)
	if err != nil {
		return game.RoundResult{}, fmt.Errorf("computer_choice: %w", err)
	}
	outcome, err := game.ParseOutcome(r.Result)
	if err != nil {
		return game.RoundResult{}, fmt.Errorf("result: %w", err)
	}
	history, err := History(r.GameHistory)
	if err != nil {
		return game.RoundResult{}, err
	}

	return game.RoundResult{
		PlayerChoice:   player,
		ComputerChoice: computer,
		Outcome:        outcome,
		Scores:         r.Scores(),
		History:        history,
	}, nil
}

// History converts game_history records to domain entries, keeping their order
func History(records []HistoryRecord) ([]game.HistoryEntry, error) {
	history := make([]game.HistoryEntry, 0, len(records))
	for i, rec := range records {
		player, err := game.ParseChoice(rec.PlayerChoice)
		if err != nil {
			return nil, fmt.Errorf("game_history[%d].player_choice: %w", i, err)
		}
		computer, err := game.ParseChoice(rec.ComputerChoice)
		if err != nil {
			return nil, fmt.Errorf("game_history[%d].computer_choice: %w", i, err)
		}
		outcome, err := game.ParseOutcome(rec.Result)
		if err != nil {
			return nil, fmt.Errorf("game_history[%d].result: %w", i, err)
		}
		history = append(history, game.HistoryEntry{
			Round:          rec.RoundNumber,
			PlayerChoice:   player,
			ComputerChoice: computer,
			Outcome:        outcome,
		})
	}
	return history, nil
}
