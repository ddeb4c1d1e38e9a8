package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	Journal   JournalConfig   `yaml:"journal"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Session   SessionConfig   `yaml:"session"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// AuthConfig protects the API with an X-API-Key header. An empty key leaves
// the API open, which is the usual setup behind tsnet.
type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// JournalConfig locates the SQLite history of completed sessions. An empty
// path disables history.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// CatalogConfig points at a catalog override. Empty uses the built-in seed.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

type SessionConfig struct {
	TickInterval  Duration `yaml:"tick_interval"`
	AlertInterval Duration `yaml:"alert_interval"`
	MaxAlerts     int      `yaml:"max_alerts"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// MetricsConfig serves Prometheus metrics on a separate listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// Duration is a time.Duration written as "1s" or "2500ms" in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// SlogLevel maps log.level to a slog level.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaults() *Config {
	return &Config{
		Server:  ServerConfig{Host: "0.0.0.0", Port: 8080},
		Log:     LogConfig{Level: "info"},
		Journal: JournalConfig{Path: "data/journal.db"},
		Session: SessionConfig{
			TickInterval:  Duration(time.Second),
			AlertInterval: Duration(2500 * time.Millisecond),
		},
		Tailscale: TailscaleConfig{Hostname: "gymflow", StateDir: "tsnet"},
		Metrics:   MetricsConfig{Host: "127.0.0.1", Port: 9090},
	}
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix GYMFLOW_ and underscore-separated paths:
//
//	GYMFLOW_SERVER_HOST, GYMFLOW_SERVER_PORT, GYMFLOW_AUTH_API_KEY,
//	GYMFLOW_LOG_LEVEL, GYMFLOW_JOURNAL_PATH, GYMFLOW_CATALOG_PATH,
//	GYMFLOW_TAILSCALE_ENABLED, GYMFLOW_METRICS_ENABLED
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GYMFLOW_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("GYMFLOW_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GYMFLOW_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("GYMFLOW_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("GYMFLOW_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}
	if v := os.Getenv("GYMFLOW_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("GYMFLOW_TAILSCALE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("GYMFLOW_METRICS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = enabled
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	if c.Session.TickInterval <= 0 {
		return fmt.Errorf("session.tick_interval must be positive")
	}
	if c.Session.AlertInterval <= 0 {
		return fmt.Errorf("session.alert_interval must be positive")
	}
	if c.Session.MaxAlerts < 0 {
		return fmt.Errorf("session.max_alerts must not be negative")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.Metrics.Enabled && c.Metrics.Port == 0 {
		return fmt.Errorf("metrics.port is required when metrics are enabled")
	}
	return nil
}
