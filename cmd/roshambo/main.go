package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command. They override the config file.
type Globals struct {
	Config      string `short:"c" default:"roshambo.hcl" env:"ROSHAMBO_CONFIG" help:"Path to HCL configuration file"`
	Server      string `short:"s" env:"ROSHAMBO_SERVER" help:"Game server URL (overrides config)"`
	Transport   string `env:"ROSHAMBO_TRANSPORT" help:"Transport: auto, http or ws (overrides config)"`
	LogLevel    string `short:"l" env:"ROSHAMBO_LOG_LEVEL" help:"Log level (overrides config)"`
	LogFile     string `env:"ROSHAMBO_LOG_FILE" help:"Log file path (overrides config)"`
	MetricsAddr string `env:"ROSHAMBO_METRICS_ADDR" help:"Serve Prometheus metrics on this address (overrides config)"`
}

type CLI struct {
	Globals

	Version    kong.VersionFlag `short:"v" help:"Show version"`
	TUI        TUICmd           `cmd:"" default:"1" help:"Play interactively in the terminal"`
	Play       PlayCmd          `cmd:"" help:"Play one or more rounds and print the results"`
	Reset      ResetCmd         `cmd:"" help:"Reset the scores and history"`
	InitConfig InitConfigCmd    `cmd:"init-config" help:"Write a default configuration file"`
}

func main() {
	// A missing .env file is fine
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("roshambo"),
		kong.Description("Rock Paper Scissors against a game server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
