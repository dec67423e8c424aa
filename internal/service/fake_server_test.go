package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/roshambo/internal/game"
	"github.com/lox/roshambo/internal/protocol"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// fakeGame plays like the real server: per-session tally and history, with
// the computer always answering rock so outcomes are predictable.
type fakeGame struct {
	mu       sync.Mutex
	sessions map[string]*protocol.RoundReply
	nextID   int
}

func newFakeGame() *fakeGame {
	return &fakeGame{sessions: make(map[string]*protocol.RoundReply)}
}

func (f *fakeGame) session(id string) *protocol.RoundReply {
	s, ok := f.sessions[id]
	if !ok {
		s = &protocol.RoundReply{GameHistory: []protocol.HistoryRecord{}}
		f.sessions[id] = s
	}
	return s
}

func (f *fakeGame) play(sessionID, choiceName string) (protocol.RoundReply, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	choice, err := game.ParseChoice(choiceName)
	if err != nil {
		return protocol.RoundReply{}, false
	}

	s := f.session(sessionID)
	outcome := game.Resolve(choice, game.Rock)
	switch outcome {
	case game.Win:
		s.PlayerScore++
	case game.Lose:
		s.ComputerScore++
	case game.Draw:
		s.DrawScore++
	}
	s.PlayerChoice = choice.String()
	s.ComputerChoice = game.Rock.String()
	s.Result = outcome.String()
	s.GameHistory = append(s.GameHistory, protocol.HistoryRecord{
		PlayerChoice:   s.PlayerChoice,
		ComputerChoice: s.ComputerChoice,
		Result:         s.Result,
		RoundNumber:    uint(len(s.GameHistory) + 1),
	})

	reply := *s
	reply.GameHistory = append([]protocol.HistoryRecord(nil), s.GameHistory...)
	return reply, true
}

func (f *fakeGame) reset(sessionID string) protocol.ResetReply {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
	return protocol.ResetReply{Message: "Game reset successfully", GameHistory: []protocol.HistoryRecord{}}
}

// httpHandler serves play/ and reset/ with a session cookie
func (f *fakeGame) httpHandler() http.Handler {
	mux := http.NewServeMux()

	sessionOf := func(w http.ResponseWriter, r *http.Request) string {
		if c, err := r.Cookie("sessionid"); err == nil {
			return c.Value
		}
		f.mu.Lock()
		f.nextID++
		id := "s" + strconv.Itoa(f.nextID)
		f.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: id, Path: "/"})
		return id
	}

	writeJSON := func(w http.ResponseWriter, status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("/play/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		id := sessionOf(w, r)
		var move protocol.Move
		if err := json.NewDecoder(r.Body).Decode(&move); err != nil {
			writeJSON(w, http.StatusBadRequest, protocol.ErrorReply{Error: "Invalid JSON data"})
			return
		}
		reply, ok := f.play(id, move.Choice)
		if !ok {
			writeJSON(w, http.StatusBadRequest, protocol.ErrorReply{Error: "Invalid choice. Must be rock, paper, or scissors."})
			return
		}
		writeJSON(w, http.StatusOK, reply)
	})

	mux.HandleFunc("/reset/", func(w http.ResponseWriter, r *http.Request) {
		id := sessionOf(w, r)
		writeJSON(w, http.StatusOK, f.reset(id))
	})

	return mux
}

// wsHandler answers envelopes on a single connection; the connection is the session
func (f *fakeGame) wsHandler(t *testing.T) http.Handler {
	upgrader := websocket.Upgrader{}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer func() { _ = conn.Close() }()

		f.mu.Lock()
		f.nextID++
		sessionID := "ws" + strconv.Itoa(f.nextID)
		f.mu.Unlock()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			req, err := protocol.Unmarshal(data)
			if err != nil {
				t.Errorf("bad envelope: %v", err)
				return
			}

			var reply *protocol.Envelope
			switch req.Type {
			case protocol.TypePlay:
				var move protocol.Move
				_ = req.DecodeData(&move)
				if result, ok := f.play(sessionID, move.Choice); ok {
					reply, _ = protocol.NewEnvelope(protocol.TypeRoundResult, req.ID, result)
				} else {
					reply, _ = protocol.NewEnvelope(protocol.TypeError, req.ID, protocol.ErrorReply{Error: "Invalid choice"})
				}
			case protocol.TypeReset:
				reply, _ = protocol.NewEnvelope(protocol.TypeResetResult, req.ID, f.reset(sessionID))
			}

			// A stray reply first, which the client must ignore
			stray, _ := protocol.NewEnvelope(protocol.TypeRoundResult, "unknown", protocol.RoundReply{})
			_ = conn.WriteJSON(stray)

			if err := conn.WriteJSON(reply); err != nil {
				return
			}
		}
	})
}

func startHTTP(t *testing.T, h http.Handler) *httptest.Server {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}
