package main

import (
	"fmt"

	"github.com/lox/roshambo/internal/config"
)

type InitConfigCmd struct {
	Force bool `help:"Overwrite an existing file"`
}

func (c *InitConfigCmd) Run(g *Globals) error {
	cfg := config.Default()
	if g.Server != "" {
		cfg.Server.URL = g.Server
	}
	if g.Transport != "" {
		cfg.Server.Transport = g.Transport
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := cfg.WriteFile(g.Config, c.Force); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", g.Config)
	return nil
}
