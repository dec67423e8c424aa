// Package config loads the client's HCL configuration file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/lox/roshambo/internal/fileutil"
	"github.com/lox/roshambo/internal/service"
)

// DefaultFile is the config file read when none is given
const DefaultFile = "roshambo.hcl"

// Config represents the complete client configuration
type Config struct {
	Server  ServerSettings
	Pacing  PacingSettings
	UI      UISettings
	Metrics MetricsSettings
}

// ServerSettings contains server connection settings
type ServerSettings struct {
	URL            string `hcl:"url"`
	Transport      string `hcl:"transport,optional"`
	RequestTimeout int    `hcl:"request_timeout,optional"` // seconds
	CSRFToken      string `hcl:"csrf_token,optional"`
	// SessionFile keeps the HTTP session cookie between play and reset runs
	SessionFile    string `hcl:"session_file,optional"`
}

// PacingSettings holds the reveal delays in milliseconds. Zero disables a delay.
type PacingSettings struct {
	RevealDelayMS *int `hcl:"reveal_delay_ms,optional"`
	SettleDelayMS *int `hcl:"settle_delay_ms,optional"`
}

// UISettings contains user interface settings
type UISettings struct {
	LogLevel      string `hcl:"log_level,optional"`
	LogFile       string `hcl:"log_file,optional"`
	NotifySeconds int    `hcl:"notify_seconds,optional"`
}

// MetricsSettings configures the optional Prometheus endpoint
type MetricsSettings struct {
	Listen string `hcl:"listen,optional"`
}

// file is the on-disk shape; every block but server may be omitted
type file struct {
	Server  ServerSettings   `hcl:"server,block"`
	Pacing  *PacingSettings  `hcl:"pacing,block"`
	UI      *UISettings      `hcl:"ui,block"`
	Metrics *MetricsSettings `hcl:"metrics,block"`
}

func intPtr(v int) *int { return &v }

// Default returns the default client configuration
func Default() *Config {
	return &Config{
		Server: ServerSettings{
			URL:            "http://localhost:8000",
			Transport:      service.TransportAuto,
			RequestTimeout: 10,
			SessionFile:    "roshambo.session",
		},
		Pacing: PacingSettings{
			RevealDelayMS: intPtr(1000),
			SettleDelayMS: intPtr(2000),
		},
		UI: UISettings{
			LogLevel:      "warn",
			LogFile:       "roshambo.log",
			NotifySeconds: 3,
		},
	}
}

// Load loads configuration from an HCL file. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw file
	diags = gohcl.DecodeBody(f.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	cfg := Default()

	if raw.Server.URL != "" {
		cfg.Server.URL = raw.Server.URL
	}
	if raw.Server.Transport != "" {
		cfg.Server.Transport = raw.Server.Transport
	}
	if raw.Server.RequestTimeout != 0 {
		cfg.Server.RequestTimeout = raw.Server.RequestTimeout
	}
	cfg.Server.CSRFToken = raw.Server.CSRFToken
	if raw.Server.SessionFile != "" {
		cfg.Server.SessionFile = raw.Server.SessionFile
	}

	if raw.Pacing != nil {
		if raw.Pacing.RevealDelayMS != nil {
			cfg.Pacing.RevealDelayMS = raw.Pacing.RevealDelayMS
		}
		if raw.Pacing.SettleDelayMS != nil {
			cfg.Pacing.SettleDelayMS = raw.Pacing.SettleDelayMS
		}
	}

	if raw.UI != nil {
		if raw.UI.LogLevel != "" {
			cfg.UI.LogLevel = raw.UI.LogLevel
		}
		if raw.UI.LogFile != "" {
			cfg.UI.LogFile = raw.UI.LogFile
		}
		if raw.UI.NotifySeconds != 0 {
			cfg.UI.NotifySeconds = raw.UI.NotifySeconds
		}
	}

	if raw.Metrics != nil {
		cfg.Metrics.Listen = raw.Metrics.Listen
	}

	return cfg, nil
}

// Validate validates the client configuration
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server URL is required")
	}
	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("server URL must use http, https, ws or wss: %s", c.Server.URL)
	}

	switch c.Server.Transport {
	case service.TransportAuto, service.TransportHTTP, service.TransportWS:
	default:
		return fmt.Errorf("invalid transport: %s", c.Server.Transport)
	}

	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}

	if c.Pacing.RevealDelayMS == nil || *c.Pacing.RevealDelayMS < 0 {
		return fmt.Errorf("reveal delay cannot be negative")
	}
	if c.Pacing.SettleDelayMS == nil || *c.Pacing.SettleDelayMS < 0 {
		return fmt.Errorf("settle delay cannot be negative")
	}

	if c.UI.NotifySeconds <= 0 {
		return fmt.Errorf("notification duration must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.UI.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.UI.LogLevel)
	}

	return nil
}

// ServiceConfig returns the transport settings. With resume set, an HTTP
// client continues the session saved in the session file.
func (c *Config) ServiceConfig(resume bool) service.Config {
	sc := service.Config{
		URL:            c.Server.URL,
		Transport:      c.Server.Transport,
		RequestTimeout: time.Duration(c.Server.RequestTimeout) * time.Second,
		CSRFToken:      c.Server.CSRFToken,
	}
	if resume {
		sc.SessionFile = c.Server.SessionFile
	}
	return sc
}

// RevealDelay returns the pause before the opponent's choice is shown
func (c *Config) RevealDelay() time.Duration {
	return millis(c.Pacing.RevealDelayMS)
}

// SettleDelay returns the pause before inputs unlock after a result
func (c *Config) SettleDelay() time.Duration {
	return millis(c.Pacing.SettleDelayMS)
}

// NotifyDuration returns how long notifications stay visible
func (c *Config) NotifyDuration() time.Duration {
	return time.Duration(c.UI.NotifySeconds) * time.Second
}

func millis(v *int) time.Duration {
	if v == nil {
		return 0
	}
	return time.Duration(*v) * time.Millisecond
}

// Encode renders the configuration as HCL
func (c *Config) Encode() []byte {
	out := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(&file{
		Server:  c.Server,
		Pacing:  &c.Pacing,
		UI:      &c.UI,
		Metrics: &c.Metrics,
	}, out.Body())
	return out.Bytes()
}

// WriteFile writes the configuration to filename atomically. An existing
// file is only replaced when overwrite is set.
func (c *Config) WriteFile(filename string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(filename); err == nil {
			return fmt.Errorf("%s already exists", filename)
		}
	}
	return fileutil.WriteFileAtomic(filename, c.Encode(), 0o644)
}
