package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/roshambo/internal/controller"
	"github.com/lox/roshambo/internal/game"
)

// Messages carrying controller render calls into the Bubble Tea loop
type (
	inputsMsg     struct{ enabled bool }
	loadingMsg    struct{ loading bool }
	revealMsg     struct{ player game.Choice }
	opponentMsg   struct{ opponent game.Choice }
	hideRevealMsg struct{}
	outcomeMsg    struct{ banner controller.Banner }
	scoresMsg     struct{ scores game.ScoreState }
	historyMsg    struct{ rows []game.HistoryEntry }
	notifyMsg     struct{ n controller.Notification }
	dismissMsg    struct{ id int }
)

// Sender delivers messages to a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Surface implements controller.Surface by forwarding every call to the
// model as a message. Sends block until the program's event loop is running.
type Surface struct {
	sender Sender
}

var _ controller.Surface = (*Surface)(nil)

// NewSurface creates a surface that renders through sender
func NewSurface(sender Sender) *Surface {
	return &Surface{sender: sender}
}

func (s *Surface) SetInputsEnabled(enabled bool) { s.sender.Send(inputsMsg{enabled}) }
func (s *Surface) SetLoading(loading bool)       { s.sender.Send(loadingMsg{loading}) }
func (s *Surface) ShowReveal(player game.Choice) { s.sender.Send(revealMsg{player}) }
func (s *Surface) HideReveal()                   { s.sender.Send(hideRevealMsg{}) }

func (s *Surface) RevealOpponent(opponent game.Choice) {
	s.sender.Send(opponentMsg{opponent})
}

func (s *Surface) ShowOutcome(banner controller.Banner) {
	s.sender.Send(outcomeMsg{banner})
}

func (s *Surface) SetScores(scores game.ScoreState) {
	s.sender.Send(scoresMsg{scores})
}

func (s *Surface) SetHistory(rows []game.HistoryEntry) {
	s.sender.Send(historyMsg{append([]game.HistoryEntry(nil), rows...)})
}

func (s *Surface) Notify(n controller.Notification) {
	s.sender.Send(notifyMsg{n})
}
