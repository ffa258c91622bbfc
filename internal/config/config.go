// Package config provides functionality for managing configuration options
// for the client using command-line flags, environment variables and an
// optional YAML config file.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Options holds the configuration values for the client.
type Options struct {
	// BaseURLs are the candidate API roots probed in order at startup;
	// the first that answers the health check is pinned for the session.
	BaseURLs []string `yaml:"base_urls"`

	// SessionFile is the path the auth token is persisted under.
	SessionFile string `yaml:"session_file"`

	// RequestTimeout bounds each API call end to end. Set via flag or
	// environment; the YAML form is a duration string.
	RequestTimeout time.Duration `yaml:"-"`

	// RequestTimeoutRaw is the config-file spelling of RequestTimeout,
	// e.g. "30s".
	RequestTimeoutRaw string `yaml:"request_timeout"`

	// PageSize is the product listing page size.
	PageSize int `yaml:"page_size"`

	// FeaturedSize is how many products the home page shows.
	FeaturedSize int `yaml:"featured_size"`

	// LogLevel selects the zap level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// Config is the path to the config file.
	Config string `yaml:"-"`
}

func defaults() *Options {
	return &Options{
		BaseURLs: []string{
			"http://localhost:5000/api",
			"http://127.0.0.1:5000/api",
		},
		SessionFile:    "session.json",
		RequestTimeout: 30 * time.Second,
		PageSize:       12,
		FeaturedSize:   6,
		LogLevel:       "info",
	}
}

// Parse resolves configuration in ascending precedence: defaults, config
// file, environment variables, command-line flags. It returns an Options
// struct containing the resolved values.
func Parse(args []string) (*Options, error) {
	opts := defaults()

	fs := flag.NewFlagSet("marketclient", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	baseURL := fs.String("url", "", "API base URL (skips discovery of other candidates)")
	sessionFile := fs.String("session", "", "path to the session token file")
	timeout := fs.Duration("timeout", 0, "per-request timeout, e.g. 30s")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if v := os.Getenv("MARKET_CONFIG"); v != "" {
		opts.Config = v
	}
	if *configPath != "" {
		opts.Config = *configPath
	}
	if opts.Config != "" {
		if err := loadFile(opts.Config, opts); err != nil {
			return nil, err
		}
	}
	if opts.RequestTimeoutRaw != "" {
		d, err := time.ParseDuration(opts.RequestTimeoutRaw)
		if err != nil {
			return nil, fmt.Errorf("parse request_timeout: %w", err)
		}
		opts.RequestTimeout = d
	}

	if v := os.Getenv("MARKET_BASE_URL"); v != "" {
		opts.BaseURLs = []string{v}
	}
	if v := os.Getenv("MARKET_SESSION_FILE"); v != "" {
		opts.SessionFile = v
	}
	if *baseURL != "" {
		opts.BaseURLs = []string{*baseURL}
	}
	if *sessionFile != "" {
		opts.SessionFile = *sessionFile
	}
	if *timeout > 0 {
		opts.RequestTimeout = *timeout
	}
	if *logLevel != "" {
		opts.LogLevel = *logLevel
	}

	if len(opts.BaseURLs) == 0 {
		return nil, fmt.Errorf("no API base URLs configured")
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 12
	}
	if opts.FeaturedSize <= 0 {
		opts.FeaturedSize = 6
	}
	return opts, nil
}

func loadFile(path string, opts *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
