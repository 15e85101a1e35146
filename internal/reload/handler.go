package reload

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flemzord/modesync/internal/config"
	"github.com/flemzord/modesync/internal/syncer"
)

// ResyncFunc runs one sync after a change.
type ResyncFunc func(ctx context.Context) error

// Handler applies configuration reloads to a live syncer.Service and
// triggers resyncs when mode files change.
type Handler struct {
	service *syncer.Service
	resync  ResyncFunc
	logger  *slog.Logger
	dataDir string
	notify  []func(*config.Config)
}

// NewHandler creates a reload handler. resync may be nil, in which case
// changes are applied without syncing.
func NewHandler(service *syncer.Service, resync ResyncFunc, logger *slog.Logger, dataDir string) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		service: service,
		resync:  resync,
		logger:  logger.With("component", "reload"),
		dataDir: dataDir,
	}
}

// Notify registers fn to be called with every applied configuration.
// Not safe to call concurrently with a reload.
func (h *Handler) Notify(fn func(*config.Config)) {
	h.notify = append(h.notify, fn)
}

// HandleReload loads a fresh config from disk, validates it, swaps it into
// the service and resyncs. On error the running configuration is kept.
func (h *Handler) HandleReload(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := config.Finalize(cfg, h.dataDir); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return h.HandleReloadFromConfig(ctx, cfg)
}

// HandleReloadFromConfig applies a pre-loaded config. The caller is
// responsible for calling config.Finalize first.
func (h *Handler) HandleReloadFromConfig(ctx context.Context, cfg *config.Config) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before reload: %w", err)
	}

	prev := h.service.Config()
	// The syncer reads its modes directory once at startup.
	if prev.ModesDir != "" && prev.ModesDir != cfg.ModesDir {
		h.logger.Warn("modes_dir change requires a restart",
			"current", prev.ModesDir, "configured", cfg.ModesDir)
	}
	if prev.Daemon.Bind != "" && prev.Daemon.Bind != cfg.Daemon.Bind {
		h.logger.Warn("daemon.bind change requires a restart",
			"current", prev.Daemon.Bind, "configured", cfg.Daemon.Bind)
	}

	h.service.SetConfig(cfg)
	for _, fn := range h.notify {
		fn(cfg)
	}
	h.logger.Info("configuration reloaded", "strategy", cfg.Strategy)

	return h.runResync(ctx, "config reloaded")
}

// HandleModesChanged resyncs after mode files changed.
func (h *Handler) HandleModesChanged(ctx context.Context) error {
	return h.runResync(ctx, "modes changed")
}

// Handle dispatches one watcher event.
func (h *Handler) Handle(ctx context.Context, e Event) error {
	switch e.Type {
	case EventConfigModified:
		return h.HandleReload(ctx, e.Path)
	case EventModesChanged:
		return h.HandleModesChanged(ctx)
	default:
		return fmt.Errorf("reload: unknown event type %q", e.Type)
	}
}

// Run handles events until ctx is done or events is closed. Failures are
// logged and do not stop the loop.
func (h *Handler) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := h.Handle(ctx, e); err != nil {
				h.logger.Error("reload failed", "event", e.Type, "path", e.Path, "error", err)
			}
		}
	}
}

func (h *Handler) runResync(ctx context.Context, reason string) error {
	if h.resync == nil {
		return nil
	}
	h.logger.Info("resyncing", "reason", reason)
	if err := h.resync(ctx); err != nil {
		return fmt.Errorf("resync: %w", err)
	}
	return nil
}
