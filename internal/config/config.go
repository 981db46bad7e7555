// Package config loads cookgraph engine settings from TOML.
//
//	history_limit = 200
//	log_level     = "debug"
//	listen        = ":9090"
//	metrics       = true
//
// Every field is optional; [Config.WithDefaults] fills in the rest.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/cookgraph/pkg/command"
	"github.com/matzehuels/cookgraph/pkg/session"
)

// Defaults applied by WithDefaults.
const (
	DefaultListen   = "127.0.0.1:8080"
	DefaultLogLevel = "info"
)

// Config holds engine and server settings.
type Config struct {
	HistoryLimit int    `toml:"history_limit"`
	LogLevel     string `toml:"log_level"`
	Listen       string `toml:"listen"`
	Metrics      *bool  `toml:"metrics"`
}

// WithDefaults returns a copy with zero fields set to their defaults.
func (c Config) WithDefaults() Config {
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = command.DefaultLimit
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Metrics == nil {
		on := true
		c.Metrics = &on
	}
	return c
}

// MetricsEnabled reports whether /metrics should be served.
func (c Config) MetricsEnabled() bool {
	return c.Metrics == nil || *c.Metrics
}

// Level parses LogLevel.
func (c Config) Level() (log.Level, error) {
	if c.LogLevel == "" {
		return log.InfoLevel, nil
	}
	return log.ParseLevel(strings.ToLower(c.LogLevel))
}

// Session returns the session settings.
func (c Config) Session() session.Config {
	return session.Config{HistoryLimit: c.HistoryLimit}
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must not be negative, got %d", c.HistoryLimit)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Parse decodes TOML data. Unknown keys are an error.
func Parse(data string) (Config, error) {
	var c Config
	md, err := toml.Decode(data, &c)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("parse config: unknown key %q", undecoded[0].String())
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c.WithDefaults(), nil
}

// Load reads the file at path. An empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}.WithDefaults(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(string(data))
}
