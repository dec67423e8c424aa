package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/roshambo/cmd/roshambo/shared"
	"github.com/lox/roshambo/internal/config"
	"github.com/lox/roshambo/internal/controller"
	"github.com/lox/roshambo/internal/metrics"
	"github.com/lox/roshambo/internal/service"
)

// session holds everything a command needs to talk to the game server
type session struct {
	cfg     *config.Config
	logger  *log.Logger
	svc     service.Client
	metrics *metrics.Metrics
	logs    io.Closer
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(g *Globals) (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if g.Server != "" {
		cfg.Server.URL = g.Server
	}
	if g.Transport != "" {
		cfg.Server.Transport = g.Transport
	}
	if g.LogLevel != "" {
		cfg.UI.LogLevel = g.LogLevel
	}
	if g.LogFile != "" {
		cfg.UI.LogFile = g.LogFile
	}
	if g.MetricsAddr != "" {
		cfg.Metrics.Listen = g.MetricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newSession builds the logger and the service client. With resume the HTTP
// session cookie is kept in the configured session file.
func newSession(g *Globals, resume bool) (*session, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}

	logger, logs, err := shared.SetupLogger(cfg.UI.LogLevel, cfg.UI.LogFile)
	if err != nil {
		return nil, err
	}

	logger.Info("Starting roshambo",
		"version", version,
		"server", cfg.Server.URL,
		"transport", cfg.Server.Transport,
		"config", g.Config)

	svc, err := service.New(cfg.ServiceConfig(resume), logger)
	if err != nil {
		_ = logs.Close()
		return nil, err
	}

	return &session{
		cfg:     cfg,
		logger:  logger,
		svc:     svc,
		metrics: metrics.New(),
		logs:    logs,
	}, nil
}

// controller builds a round controller rendering to surface
func (s *session) controller(surface controller.Surface, pacing controller.Pacing) (*controller.RoundController, error) {
	return controller.New(s.svc, surface,
		controller.WithLogger(s.logger),
		controller.WithPacing(pacing),
		controller.WithNotifyDuration(s.cfg.NotifyDuration()),
		controller.WithRecorder(s.metrics),
	)
}

func (s *session) pacing() controller.Pacing {
	return controller.Pacing{
		Reveal: s.cfg.RevealDelay(),
		Settle: s.cfg.SettleDelay(),
	}
}

// serveMetrics serves the Prometheus endpoint until ctx is done
func (s *session) serveMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.Handler())

	srv := &http.Server{
		Addr:              s.cfg.Metrics.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("Serving metrics", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

func (s *session) Close() error {
	err := s.svc.Close()
	if cerr := s.logs.Close(); err == nil {
		err = cerr
	}
	return err
}
