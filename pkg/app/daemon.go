package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/flemzord/modesync/internal/core"
	"github.com/flemzord/modesync/internal/cron"
	"github.com/flemzord/modesync/internal/gateway"
	"github.com/flemzord/modesync/internal/mcpserver"
	"github.com/flemzord/modesync/internal/reload"
	"github.com/flemzord/modesync/internal/syncer"
)

// DaemonOptions configures NewDaemon.
type DaemonOptions struct {
	// Version is reported by the MCP server.
	Version string

	// SyncOnStart runs one sync once every component is up.
	SyncOnStart bool
}

// Daemon is the long-running service: the HTTP gateway with its MCP
// endpoint, the scheduler and the change watcher, all driving one
// syncer.Service.
type Daemon struct {
	env       *Env
	opts      DaemonOptions
	app       *core.App
	gateway   *gateway.Gateway
	scheduler *cron.Scheduler
	watcher   *reload.Watcher
	reloader  *reload.Handler
}

// watcherComponent adapts a reload.Watcher to the core lifecycle.
type watcherComponent struct {
	watcher *reload.Watcher
	ctx     context.Context
}

func (c *watcherComponent) Start() error {
	c.watcher.Start(c.ctx)
	return nil
}

func (c *watcherComponent) Stop(_ context.Context) error {
	c.watcher.Stop()
	return nil
}

// NewDaemon wires the daemon's components. Nothing runs until Run.
func NewDaemon(env *Env, opts DaemonOptions) (*Daemon, error) {
	cfg := env.Config
	d := &Daemon{env: env, opts: opts}

	mcp := mcpserver.New(env.Service, opts.Version, env.Logger)
	gw, err := gateway.New(gateway.FromDaemon(cfg.Daemon), gateway.Deps{
		Service:  env.Service,
		Metrics:  env.Metrics,
		Events:   env.Hub,
		MCP:      mcpserver.HTTPHandler(mcp),
		Redactor: env.Redactor,
		Logger:   env.Logger,
	})
	if err != nil {
		return nil, err
	}
	d.gateway = gw

	d.scheduler = cron.NewScheduler(env.Logger)
	if cfg.Daemon.Schedule != "" {
		if err := d.scheduler.RegisterJob(&cron.ResyncJob{
			Service:      env.Service,
			Logger:       env.Logger,
			ScheduleExpr: cfg.Daemon.Schedule,
		}); err != nil {
			return nil, err
		}
	}
	if env.History != nil && cfg.History.Retention > 0 {
		if err := d.scheduler.RegisterJob(&cron.PruneJob{
			Store:        env.History,
			Retention:    cfg.History.Retention,
			Logger:       env.Logger,
			ScheduleExpr: cfg.Daemon.PruneSchedule,
		}); err != nil {
			return nil, err
		}
	}

	d.reloader = reload.NewHandler(env.Service, d.resync, env.Logger, env.DataDir)
	d.reloader.Notify(env.Redactor.SyncConfig)

	if cfg.Daemon.Watch {
		d.watcher = reload.NewWatcher(reload.WatcherConfig{
			ConfigPath:   env.ConfigPath,
			ModesDir:     cfg.ModesDir,
			PollInterval: cfg.Daemon.PollInterval,
		})
	}

	return d, nil
}

// Addr returns the gateway's listen address once running.
func (d *Daemon) Addr() string { return d.gateway.Addr() }

// Run starts every component and blocks until ctx is done, then stops them
// in reverse order. SIGHUP reloads the configuration file.
func (d *Daemon) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.app = core.NewApp(d.env.Logger)
	d.app.ShutdownTimeout = d.env.Config.Daemon.ShutdownTimeout
	if err := d.app.Register("scheduler", d.scheduler); err != nil {
		return err
	}
	if err := d.app.Register("gateway", d.gateway); err != nil {
		return err
	}
	if d.watcher != nil {
		if err := d.app.Register("watcher", &watcherComponent{watcher: d.watcher, ctx: runCtx}); err != nil {
			return err
		}
	}

	if err := d.app.Start(); err != nil {
		return err
	}
	d.env.Logger.Info("daemon started", "addr", d.gateway.Addr(), "modes_dir", d.env.Config.ModesDir,
		"jobs", d.scheduler.Jobs(), "watch", d.watcher != nil)

	if d.watcher != nil {
		go d.reloader.Run(runCtx, d.watcher.Events())
	}
	if d.opts.SyncOnStart {
		if err := d.resync(runCtx); err != nil {
			d.env.Logger.Error("initial sync failed", "error", err)
		}
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			d.env.Logger.Info("daemon stopping")
			cancel()
			return d.app.Stop()
		case <-hup:
			d.Reload(runCtx)
		}
	}
}

// Reload re-reads the configuration file and resyncs. Failures are logged
// and the running configuration is kept.
func (d *Daemon) Reload(ctx context.Context) {
	if d.env.ConfigPath == "" {
		d.env.Logger.Warn("reload requested but no configuration file is in use")
		return
	}
	d.env.Logger.Info("reloading configuration", "path", d.env.ConfigPath)
	if err := d.reloader.HandleReload(ctx, d.env.ConfigPath); err != nil {
		d.env.Logger.Error("reload failed", "error", err)
	}
}

func (d *Daemon) resync(ctx context.Context) error {
	report, err := d.env.Service.Sync(ctx, syncer.SyncOptions{})
	if err != nil {
		return fmt.Errorf("resync: %w", err)
	}
	d.env.Logger.Info("resync complete", "target", report.Target, "modes", len(report.Modes))
	return nil
}
