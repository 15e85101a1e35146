package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/flemzord/modesync/internal/backup"
	"github.com/flemzord/modesync/internal/config"
	"github.com/flemzord/modesync/internal/events"
	"github.com/flemzord/modesync/internal/history"
	"github.com/flemzord/modesync/internal/metrics"
	"github.com/flemzord/modesync/internal/redact"
	"github.com/flemzord/modesync/internal/syncer"
	"github.com/flemzord/modesync/internal/telemetry"
	"go.opentelemetry.io/otel/trace"
)

// Params configures Open.
type Params struct {
	// ConfigPath is an explicit configuration file. If empty,
	// config.ResolvePath is tried and a missing file means defaults.
	ConfigPath string

	// DataDir overrides DefaultDataDir.
	DataDir string

	// OTLPEndpoint overrides telemetry.endpoint.
	OTLPEndpoint string

	// Version is reported by telemetry and the MCP server.
	Version string

	// NoHistory skips opening the run store.
	NoHistory bool

	// Logger defaults to a text logger on stderr at info level.
	Logger   *slog.Logger
	Redactor *redact.Redactor
}

// Env is a loaded configuration with the collaborators built from it.
// Commands open one, use its Service and close it.
type Env struct {
	Config     *config.Config
	ConfigPath string
	DataDir    string
	Logger     *slog.Logger
	Redactor   *redact.Redactor
	Metrics    *metrics.Recorder
	Hub        *events.Hub
	Backups    *backup.Manager

	// History is nil when opened with NoHistory.
	History *history.Store

	Syncer  *syncer.Syncer
	Service *syncer.Service

	closers []func(context.Context) error
}

// Open loads and validates the configuration and builds the sync service.
func Open(ctx context.Context, p Params) (*Env, error) {
	dataDir := p.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	cfg, cfgPath, err := config.LoadOrDefault(p.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := config.Finalize(cfg, dataDir); err != nil {
		return nil, err
	}

	r := p.Redactor
	if r == nil {
		r = redact.NewRedactor()
	}
	r.SyncConfig(cfg)

	logger := p.Logger
	if logger == nil {
		if logger, err = NewLogger(LogOptions{}, r); err != nil {
			return nil, err
		}
	}

	e := &Env{
		Config:     cfg,
		ConfigPath: cfgPath,
		DataDir:    dataDir,
		Logger:     logger,
		Redactor:   r,
		Metrics:    metrics.New(),
		Hub:        events.NewHub(logger, 0),
		Backups:    backup.NewManager(filepath.Join(dataDir, "backups")),
	}

	tracer, err := e.setupTelemetry(ctx, cfg.Telemetry, p)
	if err != nil {
		return nil, err
	}

	opts := syncer.Options{
		Logger:  logger,
		Tracer:  tracer,
		Metrics: e.Metrics,
		Events:  e.Hub,
		Backups: e.Backups,
	}
	var reader syncer.HistoryReader
	if !p.NoHistory {
		store, err := history.Open(ctx, cfg.History.Path)
		if err != nil {
			_ = e.Close(ctx)
			return nil, err
		}
		e.History = store
		e.closers = append(e.closers, func(context.Context) error { return store.Close() })
		opts.History = store
		reader = store
	}

	e.Syncer = syncer.New(cfg.ModesDir, opts)
	e.Service = syncer.NewService(e.Syncer, cfg, reader)

	logger.Debug("environment ready",
		"config", cfgPath, "modes_dir", cfg.ModesDir, "data_dir", dataDir, "history", e.History != nil)
	return e, nil
}

func (e *Env) setupTelemetry(ctx context.Context, tc config.TelemetryConfig, p Params) (trace.Tracer, error) {
	tcfg := telemetry.Config{
		ServiceVersion: p.Version,
		Endpoint:       tc.Endpoint,
		Insecure:       tc.Insecure,
	}
	if p.OTLPEndpoint != "" {
		tcfg.Endpoint = p.OTLPEndpoint
	}
	if !tcfg.Exporting() {
		return nil, nil
	}

	tp, shutdown, err := telemetry.Setup(ctx, tcfg)
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, shutdown)
	e.Logger.Info("trace export enabled", "endpoint", tcfg.Endpoint)
	return telemetry.Tracer(tp), nil
}

// Close releases everything Open acquired, in reverse order.
func (e *Env) Close(ctx context.Context) error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	e.Hub.Close()
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("app: closing: %w", err)
	}
	return nil
}
