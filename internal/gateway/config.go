package gateway

import (
	"time"

	"github.com/flemzord/modesync/internal/config"
)

const defaultSyncsPerMinute = 30

// Config holds HTTP gateway configuration.
type Config struct {
	Bind     string
	Auth     config.AuthConfig
	Webhooks map[string]config.WebhookConfig

	// SyncsPerMinute caps syncs triggered over HTTP (API and webhooks).
	// Zero selects the default; a negative value disables the limit.
	SyncsPerMinute int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// FromDaemon extracts the gateway settings of the daemon configuration.
func FromDaemon(d config.DaemonConfig) Config {
	return Config{
		Bind:            d.Bind,
		Auth:            d.Auth,
		Webhooks:        d.Webhooks,
		SyncsPerMinute:  d.SyncsPerMinute,
		ReadTimeout:     d.ReadTimeout,
		WriteTimeout:    d.WriteTimeout,
		ShutdownTimeout: d.ShutdownTimeout,
	}
}

// defaults fills zero values with sensible defaults.
func (c *Config) defaults() {
	if c.Bind == "" {
		c.Bind = "127.0.0.1:8787"
	}
	if c.SyncsPerMinute == 0 {
		c.SyncsPerMinute = defaultSyncsPerMinute
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
}
