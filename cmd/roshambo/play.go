package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/lox/roshambo/cmd/roshambo/shared"
	"github.com/lox/roshambo/internal/controller"
	"github.com/lox/roshambo/internal/display"
	"github.com/lox/roshambo/internal/game"
	"github.com/lox/roshambo/internal/service"
	"github.com/muesli/termenv"
)

type PlayCmd struct {
	Choices []string `arg:"" name:"choice" help:"rock, paper or scissors; several play several rounds"`
	History bool     `help:"Print the history after each round"`
	Fast    bool     `help:"Skip the reveal pauses"`
}

func (c *PlayCmd) Run(g *Globals) error {
	choices := make([]game.Choice, 0, len(c.Choices))
	for _, arg := range c.Choices {
		choice, err := game.ParseChoice(arg)
		if err != nil {
			return err
		}
		choices = append(choices, choice)
	}

	s, err := newSession(g, true)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	ctx, stop := shared.SetupSignalHandler(s.logger)
	defer stop()

	pacing := s.pacing()
	if c.Fast {
		pacing = controller.Pacing{}
	}

	surface := display.NewText(os.Stdout, display.Options{
		Profile:     termenv.NewOutput(os.Stdout).EnvColorProfile(),
		ShowHistory: c.History,
	})
	ctrl, err := s.controller(surface, pacing)
	if err != nil {
		return err
	}

	for _, choice := range choices {
		if err := ctrl.RequestRound(ctx, choice); err != nil {
			return fmt.Errorf("round failed: %w", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

type ResetCmd struct{}

func (c *ResetCmd) Run(g *Globals) error {
	if err := checkResettable(g); err != nil {
		return err
	}

	s, err := newSession(g, true)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	ctx, stop := shared.SetupSignalHandler(s.logger)
	defer stop()

	surface := display.NewText(os.Stdout, display.Options{
		Profile: termenv.NewOutput(os.Stdout).EnvColorProfile(),
	})
	ctrl, err := s.controller(surface, s.pacing())
	if err != nil {
		return err
	}
	return ctrl.ResetState(ctx)
}

// checkResettable refuses transports whose session cannot outlive the
// process. A WebSocket session is its connection, so a reset from a new
// process would only clear a session nobody has played in.
func checkResettable(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	transport, err := service.ResolveTransport(cfg.ServiceConfig(true))
	if err != nil {
		return err
	}
	if transport == service.TransportWS {
		return errors.New("reset needs the http transport: a websocket session ends with its connection")
	}
	return nil
}
