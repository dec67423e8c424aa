package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/roshambo/internal/game"
	"github.com/lox/roshambo/internal/protocol"
)

// maxReplyBytes bounds how much of a reply body is read
const maxReplyBytes = 1 << 20

// HTTPClient talks to the game server's JSON endpoints (POST play/ and
// POST reset/). Game state lives in the server session, so the client keeps
// a cookie jar for its whole lifetime.
type HTTPClient struct {
	baseURL   *url.URL
	http      *http.Client
	csrfToken string
	session   *sessionStore
	logger    *log.Logger
}

// HTTPOptions tunes an HTTPClient
type HTTPOptions struct {
	Timeout   time.Duration
	CSRFToken string
	// Client replaces the default http.Client. Its Jar is kept if set.
	Client *http.Client
	// SessionFile, when set, keeps the session cookies across processes
	SessionFile string
}

// NewHTTPClient creates a client for the server at baseURL
func NewHTTPClient(baseURL string, logger *log.Logger, opts HTTPOptions) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	if client.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		client.Jar = jar
	}

	c := &HTTPClient{
		baseURL:   u,
		http:      client,
		csrfToken: opts.CSRFToken,
		logger:    logger.WithPrefix("http"),
	}

	if opts.SessionFile != "" {
		c.session = newSessionStore(opts.SessionFile, u, client.Jar, c.logger)
		if err := c.session.load(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// SubmitMove plays one round
func (c *HTTPClient) SubmitMove(ctx context.Context, choice game.Choice) (game.RoundResult, error) {
	var reply protocol.RoundReply
	if err := c.post(ctx, OpPlay, "play/", protocol.NewMove(choice), &reply); err != nil {
		return game.RoundResult{}, err
	}
	if reply.Error != "" {
		return game.RoundResult{}, &ServiceError{Op: OpPlay, Status: http.StatusOK, Message: reply.Error}
	}

	result, err := reply.Result()
	if err != nil {
		return game.RoundResult{}, malformed(OpPlay, http.StatusOK, err)
	}
	return result, nil
}

// ResetState clears the session's scores and history
func (c *HTTPClient) ResetState(ctx context.Context) (game.ScoreState, error) {
	var reply protocol.ResetReply
	if err := c.post(ctx, OpReset, "reset/", nil, &reply); err != nil {
		return game.ScoreState{}, err
	}
	if reply.Error != "" {
		return game.ScoreState{}, &ServiceError{Op: OpReset, Status: http.StatusOK, Message: reply.Error}
	}
	if len(reply.GameHistory) != 0 {
		c.logger.Warn("Reset reply still carries history", "entries", len(reply.GameHistory))
	}
	return reply.Scores(), nil
}

// Close releases idle connections
func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) post(ctx context.Context, op, path string, body, out interface{}) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("encoding request: %w", err)}
		}
		payload = bytes.NewReader(data)
	}

	endpoint := c.baseURL.ResolveReference(&url.URL{Path: path})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), payload)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.csrfToken != "" {
		req.Header.Set("X-CSRFToken", c.csrfToken)
	}

	c.logger.Debug("Sending request", "op", op, "url", endpoint.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("reading reply: %w", err)}
	}

	c.logger.Debug("Received reply", "op", op, "status", resp.StatusCode, "bytes", len(data))

	if c.session != nil {
		if err := c.session.save(); err != nil {
			c.logger.Warn("Session not saved", "error", err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var reply protocol.ErrorReply
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(data, &reply) == nil && reply.Error != "" {
			msg = reply.Error
		}
		return &ServiceError{Op: op, Status: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return malformed(op, resp.StatusCode, err)
	}
	return nil
}
