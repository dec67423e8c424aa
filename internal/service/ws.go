package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lox/roshambo/internal/game"
	"github.com/lox/roshambo/internal/protocol"
)

// ErrConnectionClosed is reported when the socket drops while a reply is pending
var ErrConnectionClosed = errors.New("connection closed")

const writeWait = 10 * time.Second

// WSClient talks to the game server over a WebSocket. Each request carries
// a fresh id and the server echoes it on the reply. The connection is
// dialled on first use and redialled after it drops.
type WSClient struct {
	serverURL string
	dialer    *websocket.Dialer
	timeout   time.Duration
	logger    *log.Logger

	mu      sync.Mutex
	conn    *wsConn
	pending map[string]chan *protocol.Envelope
	closed  bool
}

type wsConn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
	done    chan struct{}
}

// WSOptions tunes a WSClient
type WSOptions struct {
	// Timeout bounds each request/reply exchange. Zero leaves it to ctx.
	Timeout     time.Duration
	DialTimeout time.Duration
}

// NewWSClient creates a client for the WebSocket endpoint at serverURL
func NewWSClient(serverURL string, logger *log.Logger, opts WSOptions) (*WSClient, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	// Ensure WebSocket scheme
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
		// Already correct
	default:
		return nil, fmt.Errorf("invalid server URL %q: unsupported scheme", serverURL)
	}

	dialer := *websocket.DefaultDialer
	if opts.DialTimeout > 0 {
		dialer.HandshakeTimeout = opts.DialTimeout
	}

	return &WSClient{
		serverURL: u.String(),
		dialer:    &dialer,
		timeout:   opts.Timeout,
		logger:    logger.WithPrefix("ws"),
		pending:   make(map[string]chan *protocol.Envelope),
	}, nil
}

// SubmitMove plays one round
func (c *WSClient) SubmitMove(ctx context.Context, choice game.Choice) (game.RoundResult, error) {
	env, err := c.roundTrip(ctx, OpPlay, protocol.TypePlay, protocol.NewMove(choice))
	if err != nil {
		return game.RoundResult{}, err
	}
	if env.Type != protocol.TypeRoundResult {
		return game.RoundResult{}, malformed(OpPlay, 0, fmt.Errorf("unexpected reply type %q", env.Type))
	}

	var reply protocol.RoundReply
	if err := env.DecodeData(&reply); err != nil {
		return game.RoundResult{}, malformed(OpPlay, 0, err)
	}
	if reply.Error != "" {
		return game.RoundResult{}, &ServiceError{Op: OpPlay, Message: reply.Error}
	}
	result, err := reply.Result()
	if err != nil {
		return game.RoundResult{}, malformed(OpPlay, 0, err)
	}
	return result, nil
}

// ResetState clears the server's scores and history
func (c *WSClient) ResetState(ctx context.Context) (game.ScoreState, error) {
	env, err := c.roundTrip(ctx, OpReset, protocol.TypeReset, struct{}{})
	if err != nil {
		return game.ScoreState{}, err
	}
	if env.Type != protocol.TypeResetResult {
		return game.ScoreState{}, malformed(OpReset, 0, fmt.Errorf("unexpected reply type %q", env.Type))
	}

	var reply protocol.ResetReply
	if err := env.DecodeData(&reply); err != nil {
		return game.ScoreState{}, malformed(OpReset, 0, err)
	}
	if reply.Error != "" {
		return game.ScoreState{}, &ServiceError{Op: OpReset, Message: reply.Error}
	}
	return reply.Scores(), nil
}

// Close shuts the connection. Pending requests fail with a TransportError.
func (c *WSClient) Close() error {
	c.mu.Lock()
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	conn.writeMu.Lock()
	_ = conn.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	conn.writeMu.Unlock()

	return conn.ws.Close()
}

// roundTrip sends one envelope and waits for the reply carrying the same id
func (c *WSClient) roundTrip(ctx context.Context, op, msgType string, data interface{}) (*protocol.Envelope, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	conn, err := c.connection(ctx)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	id := uuid.NewString()
	env, err := protocol.NewEnvelope(msgType, id, data)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("encoding request: %w", err)}
	}
	payload, err := protocol.Marshal(env)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("encoding request: %w", err)}
	}

	replies := make(chan *protocol.Envelope, 1)
	c.mu.Lock()
	c.pending[id] = replies
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	conn.writeMu.Lock()
	_ = conn.ws.SetWriteDeadline(time.Now().Add(writeWait))
	err = conn.ws.WriteMessage(websocket.TextMessage, payload)
	conn.writeMu.Unlock()
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	c.logger.Debug("Sent request", "type", msgType, "id", id)

	select {
	case reply := <-replies:
		return replyOrError(op, reply)
	case <-conn.done:
		// The reply may have landed just before the socket dropped
		select {
		case reply := <-replies:
			return replyOrError(op, reply)
		default:
		}
		return nil, &TransportError{Op: op, Err: ErrConnectionClosed}
	case <-ctx.Done():
		return nil, &TransportError{Op: op, Err: ctx.Err()}
	}
}

// replyOrError turns an error envelope into a ServiceError
func replyOrError(op string, reply *protocol.Envelope) (*protocol.Envelope, error) {
	if reply.Type != protocol.TypeError {
		return reply, nil
	}
	var er protocol.ErrorReply
	if err := reply.DecodeData(&er); err != nil {
		return nil, malformed(op, 0, err)
	}
	return nil, &ServiceError{Op: op, Message: er.Error}
}

// connection returns the live connection, dialling when there is none
func (c *WSClient) connection(ctx context.Context) (*wsConn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrConnectionClosed
	}
	redial := false
	if c.conn != nil {
		select {
		case <-c.conn.done:
			c.conn = nil
			redial = true
		default:
			return c.conn, nil
		}
	}

	if redial {
		// The server keys game state by connection
		c.logger.Warn("Connection lost; reconnecting starts a new server session", "url", c.serverURL)
	} else {
		c.logger.Info("Connecting to server", "url", c.serverURL)
	}

	ws, _, err := c.dialer.DialContext(ctx, c.serverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	conn := &wsConn{ws: ws, done: make(chan struct{})}
	c.conn = conn
	go c.readPump(conn)

	c.logger.Info("Connected to server")
	return conn, nil
}

// readPump routes replies to the waiting requests until the socket fails
func (c *WSClient) readPump(conn *wsConn) {
	defer close(conn.done)

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		env, err := protocol.Unmarshal(data)
		if err != nil {
			c.logger.Warn("Dropping undecodable message", "error", err)
			continue
		}

		c.mu.Lock()
		replies, ok := c.pending[env.ID]
		c.mu.Unlock()

		if !ok {
			c.logger.Debug("Dropping reply with unknown id", "type", env.Type, "id", env.ID)
			continue
		}

		select {
		case replies <- env:
		default:
			// Duplicate reply for the same id
		}
	}
}
