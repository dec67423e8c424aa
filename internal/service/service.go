// Package service provides the transports that carry moves to the game
// server and bring back its authoritative results.
package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/roshambo/internal/game"
)

// Transport names accepted by Config
const (
	TransportAuto = "auto"
	TransportHTTP = "http"
	TransportWS   = "ws"
)

// Client is a game server connection
type Client interface {
	SubmitMove(ctx context.Context, choice game.Choice) (game.RoundResult, error)
	ResetState(ctx context.Context) (game.ScoreState, error)
	Close() error
}

// Config selects and tunes a transport
type Config struct {
	URL            string
	Transport      string
	RequestTimeout time.Duration
	CSRFToken      string
	// SessionFile keeps the HTTP session cookie across processes. A
	// WebSocket session is its connection and cannot be resumed.
	SessionFile    string
}

// New creates a client for cfg. With TransportAuto the URL scheme picks
// the transport: ws/wss use WebSocket, anything else HTTP.
func New(cfg Config, logger *log.Logger) (Client, error) {
	transport, err := ResolveTransport(cfg)
	if err != nil {
		return nil, err
	}

	switch transport {
	case TransportHTTP:
		return NewHTTPClient(cfg.URL, logger, HTTPOptions{
			Timeout:     cfg.RequestTimeout,
			CSRFToken:   cfg.CSRFToken,
			SessionFile: cfg.SessionFile,
		})
	case TransportWS:
		return NewWSClient(cfg.URL, logger, WSOptions{
			Timeout:     cfg.RequestTimeout,
			DialTimeout: cfg.RequestTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

// ResolveTransport returns the transport New would use for cfg
func ResolveTransport(cfg Config) (string, error) {
	if cfg.Transport != "" && cfg.Transport != TransportAuto {
		return cfg.Transport, nil
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme == "ws" || u.Scheme == "wss" {
		return TransportWS, nil
	}
	return TransportHTTP, nil
}
