package main

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/roshambo/cmd/roshambo/shared"
	"github.com/lox/roshambo/internal/controller"
	"github.com/lox/roshambo/internal/tui"
	"golang.org/x/sync/errgroup"
)

type TUICmd struct{}

func (c *TUICmd) Run(g *Globals) error {
	// The screen belongs to the TUI, so logs always go to a file
	if g.LogFile == "" {
		cfg, err := loadConfig(g)
		if err != nil {
			return err
		}
		g.LogFile = cfg.UI.LogFile
	}

	// Every TUI launch starts a fresh server session
	s, err := newSession(g, false)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	ctx, stop := shared.SetupSignalHandler(s.logger)
	defer stop()

	bus := controller.NewBus()
	model := tui.NewModel(ctx, bus, s.logger)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	return s.runTUI(ctx, program, bus)
}

// program is the part of a tea.Program the TUI command drives
type program interface {
	tui.Sender
	Run() (tea.Model, error)
	Quit()
}

// runTUI runs the program, the controller and the optional metrics server
// until the program exits or any of them fails.
func (s *session) runTUI(ctx context.Context, p program, bus *controller.Bus) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	group.Go(func() error {
		<-gctx.Done()
		p.Quit()
		return nil
	})

	group.Go(func() error {
		// Renders block until the program loop is running
		ctrl, err := s.controller(tui.NewSurface(p), s.pacing())
		if err != nil {
			return err
		}
		ctrl.Bind(bus)
		defer ctrl.Close()

		<-gctx.Done()
		return nil
	})

	if s.cfg.Metrics.Listen != "" {
		group.Go(func() error {
			return s.serveMetrics(gctx)
		})
	}

	return group.Wait()
}
