// Package config handles YAML configuration loading, environment variable
// expansion, command-line overrides and structural validation for modesync.
package config

import (
	"path/filepath"
	"time"

	"github.com/flemzord/modesync/internal/ordering"
)

// EnvModesDir overrides the modes directory when set.
const EnvModesDir = "MODESYNC_MODES_DIR"

// DefaultModesDir is used when neither the file nor the environment sets
// a modes directory.
const DefaultModesDir = "modes"

// Config is the top-level configuration structure. The ordering keys live
// at the top level of the file.
type Config struct {
	ordering.Config `yaml:",inline"`

	// ModesDir is the directory holding one YAML file per mode.
	ModesDir string `yaml:"modes_dir,omitempty"`

	// Target selects where synchronized modes are written.
	Target TargetConfig `yaml:"target,omitempty"`

	// History configures the sync-run store.
	History HistoryConfig `yaml:"history,omitempty"`

	// Daemon configures the long-running service.
	Daemon DaemonConfig `yaml:"daemon,omitempty"`

	// Telemetry configures trace export.
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`
}

// Target scopes.
const (
	ScopeGlobal = "global"
	ScopeLocal  = "local"
)

// TargetConfig selects the output file.
type TargetConfig struct {
	// Scope is "global" (default) or "local".
	Scope string `yaml:"scope,omitempty"`

	// GlobalPath overrides the editor settings file used by the global scope.
	GlobalPath string `yaml:"global_path,omitempty"`

	// ProjectDir is required by the local scope.
	ProjectDir string `yaml:"project_dir,omitempty"`
}

// HistoryConfig configures the sync-run store.
type HistoryConfig struct {
	// Path to the SQLite database. Defaults to <data dir>/history.db.
	Path string `yaml:"path,omitempty"`

	// Retention is how long runs are kept. Zero keeps them forever.
	Retention time.Duration `yaml:"retention,omitempty"`
}

// DaemonConfig holds the daemon's HTTP and scheduling settings.
type DaemonConfig struct {
	Bind            string                   `yaml:"bind,omitempty"`
	Auth            AuthConfig               `yaml:"auth,omitempty"`
	Webhooks        map[string]WebhookConfig `yaml:"webhooks,omitempty"`
	SyncsPerMinute  int                      `yaml:"syncs_per_minute,omitempty"`
	Schedule        string                   `yaml:"schedule,omitempty"`
	PruneSchedule   string                   `yaml:"prune_schedule,omitempty"`
	Watch           bool                     `yaml:"watch,omitempty"`
	PollInterval    time.Duration            `yaml:"poll_interval,omitempty"`
	ReadTimeout     time.Duration            `yaml:"read_timeout,omitempty"`
	WriteTimeout    time.Duration            `yaml:"write_timeout,omitempty"`
	ShutdownTimeout time.Duration            `yaml:"shutdown_timeout,omitempty"`
}

// WebhookConfig configures one webhook source. A push to the modes
// repository can trigger a resync through it.
type WebhookConfig struct {
	// Secret signs payloads with HMAC-SHA256 (X-Signature-256 header).
	Secret string `yaml:"secret"`
}

// AuthConfig configures authentication for mutating endpoints.
type AuthConfig struct {
	BearerToken string `yaml:"bearer_token,omitempty"`
}

// IsConfigured returns true if a bearer token is set.
func (a AuthConfig) IsConfigured() bool {
	return a.BearerToken != ""
}

// TelemetryConfig configures OTLP trace export.
type TelemetryConfig struct {
	// Endpoint is an OTLP/HTTP host:port. Empty disables export.
	Endpoint string `yaml:"endpoint,omitempty"`
	Insecure bool   `yaml:"insecure,omitempty"`
}

// Defaults fills zero values with sensible defaults. dataDir is used for
// the history database location.
func (c *Config) Defaults(dataDir string) {
	if c.Strategy == "" {
		c.Strategy = ordering.StrategyStrategic
	}
	if c.WithinCategorySort == "" {
		c.WithinCategorySort = ordering.SortAlphabetical
	}
	if c.ModesDir == "" {
		c.ModesDir = DefaultModesDir
	}
	if c.Target.Scope == "" {
		c.Target.Scope = ScopeGlobal
	}
	if c.History.Path == "" && dataDir != "" {
		c.History.Path = filepath.Join(dataDir, "history.db")
	}
	d := &c.Daemon
	if d.Bind == "" {
		d.Bind = "127.0.0.1:8787"
	}
	if d.PruneSchedule == "" {
		d.PruneSchedule = "@daily"
	}
	if d.PollInterval <= 0 {
		d.PollInterval = 2 * time.Second
	}
	if d.ReadTimeout <= 0 {
		d.ReadTimeout = 10 * time.Second
	}
	if d.WriteTimeout <= 0 {
		d.WriteTimeout = 30 * time.Second
	}
	if d.ShutdownTimeout <= 0 {
		d.ShutdownTimeout = 5 * time.Second
	}
}
