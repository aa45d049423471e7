// Package config provides configuration types and defaults for flowdraft.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBackendBaseURL is the backend used when nothing else is configured.
const DefaultBackendBaseURL = "http://localhost:8000"

// Config holds all configuration options for flowdraft.
type Config struct {
	// BackendBaseURL is the scheme+host of the workflow generation service.
	// Recognized as "backendBaseUrl" in files, flags and env.
	BackendBaseURL string `mapstructure:"backendBaseUrl" yaml:"backendBaseUrl"`

	// RequestTimeout bounds every backend request. Zero leaves timing to the transport.
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`

	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Health    HealthConfig    `mapstructure:"health" yaml:"health"`
	UI        UIConfig        `mapstructure:"ui" yaml:"ui"`
}

// LogConfig holds file logging options.
type LogConfig struct {
	Path  string `mapstructure:"path" yaml:"path"`
	Level string `mapstructure:"level" yaml:"level"` // debug, info, warn, error
}

// TelemetryConfig holds tracing options.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// TracesPath receives pretty-printed spans when no OTLP endpoint is set.
	TracesPath string `mapstructure:"traces_path" yaml:"traces_path"`
	// OTLPEndpoint is a host:port for an OTLP/gRPC collector (optional).
	OTLPEndpoint string `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"`
}

// MetricsConfig holds Prometheus exporter options.
type MetricsConfig struct {
	// Addr enables the /metrics endpoint when non-empty (e.g. ":9464").
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// HealthConfig holds backend health probe options.
type HealthConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ChatOpen       bool `mapstructure:"chat_open" yaml:"chat_open"`
	RenderMarkdown bool `mapstructure:"render_markdown" yaml:"render_markdown"`
	ShowStatusBar  bool `mapstructure:"show_status_bar" yaml:"show_status_bar"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		BackendBaseURL: DefaultBackendBaseURL,
		RequestTimeout: 60 * time.Second,
		Log: LogConfig{
			Path:  filepath.Join(DefaultStateDir(), "flowdraft.log"),
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Enabled:    false,
			TracesPath: filepath.Join(DefaultStateDir(), "traces.log"),
		},
		Health: HealthConfig{
			Interval: 15 * time.Second,
			CacheTTL: 10 * time.Second,
		},
		UI: UIConfig{
			ChatOpen:       false,
			RenderMarkdown: true,
			ShowStatusBar:  true,
		},
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.BackendBaseURL == "" {
		return errors.New("backendBaseUrl is required")
	}
	u, err := url.Parse(c.BackendBaseURL)
	if err != nil {
		return fmt.Errorf("backendBaseUrl: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backendBaseUrl: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("backendBaseUrl: host is required")
	}
	if c.RequestTimeout < 0 {
		return errors.New("request_timeout must not be negative")
	}
	if c.Health.Interval < 0 || c.Health.CacheTTL < 0 {
		return errors.New("health durations must not be negative")
	}
	return nil
}

// BaseURL returns the backend base URL without a trailing slash.
func (c Config) BaseURL() string {
	return strings.TrimRight(c.BackendBaseURL, "/")
}

// DefaultConfigDir returns ~/.config/flowdraft, or a relative fallback when
// the home directory cannot be resolved.
func DefaultConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "flowdraft")
	}
	return ".flowdraft"
}

// DefaultConfigPath returns the config file looked up when --config is not given.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultStateDir returns the directory holding logs and trace files.
func DefaultStateDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "flowdraft")
	}
	return ".flowdraft"
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# flowdraft configuration

# Workflow generation service. Requests go to <backendBaseUrl>/api/generate-workflow.
backendBaseUrl: http://localhost:8000

# Upper bound for a single backend request (0 = rely on the transport)
request_timeout: 60s

log:
  # path: ~/.cache/flowdraft/flowdraft.log
  level: info            # debug, info, warn, error

telemetry:
  enabled: false
  # traces_path: ~/.cache/flowdraft/traces.log
  # otlp_endpoint: localhost:4317

metrics:
  # Serve Prometheus metrics, e.g. ":9464" (disabled when empty)
  addr: ""

health:
  interval: 15s          # how often the status bar probes /api/health
  cache_ttl: 10s         # how long a probe result is reused

ui:
  chat_open: false       # open the chat panel on start
  render_markdown: true  # render bot replies as markdown
  show_status_bar: true
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
