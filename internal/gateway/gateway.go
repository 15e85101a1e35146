// Package gateway serves the daemon's HTTP API: health and metrics, mode
// listing and order previews, authenticated syncs and history, the live
// event stream and the MCP endpoint. It binds to loopback by default.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/flemzord/modesync/internal/metrics"
	"github.com/flemzord/modesync/internal/redact"
	"github.com/flemzord/modesync/internal/syncer"
)

// Deps are the collaborators the gateway serves. Service is required.
type Deps struct {
	Service *syncer.Service
	Metrics *metrics.Recorder

	// Events streams sync events over WebSocket (see events.Hub).
	Events http.Handler

	// MCP serves the Model Context Protocol over streamable HTTP.
	MCP http.Handler

	// Redactor masks secrets in GET /api/config. Without it the endpoint
	// is not mounted.
	Redactor *redact.Redactor

	Logger *slog.Logger
}

// Gateway is the daemon's HTTP server.
type Gateway struct {
	config    Config
	deps      Deps
	logger    *slog.Logger
	http      *httpMetrics
	syncLimit *rateLimiter
	startedAt time.Time

	mu     sync.Mutex
	server *http.Server
	addr   string
}

// New creates a Gateway. It does not listen until Start.
func New(cfg Config, deps Deps) (*Gateway, error) {
	cfg.defaults()
	if _, _, err := net.SplitHostPort(cfg.Bind); err != nil {
		return nil, fmt.Errorf("gateway: invalid bind address %q: %w", cfg.Bind, err)
	}
	if deps.Service == nil {
		return nil, errors.New("gateway: a sync service is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}

	g := &Gateway{
		config:    cfg,
		deps:      deps,
		logger:    deps.Logger.With("component", "gateway"),
		syncLimit: newRateLimiter(cfg.SyncsPerMinute, time.Minute),
		startedAt: time.Now(),
	}
	if deps.Metrics != nil {
		g.http = newHTTPMetrics(deps.Metrics.Registry())
	}
	return g, nil
}

// Handler returns the routed handler without starting a server.
func (g *Gateway) Handler() http.Handler {
	return g.buildRouter()
}

// Start listens on the configured address and serves in the background.
func (g *Gateway) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.server != nil {
		return errors.New("gateway: already started")
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen failed: %w", err)
	}

	g.startedAt = time.Now()
	g.addr = ln.Addr().String()
	g.server = &http.Server{
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	srv := g.server
	go func() {
		g.logger.Info("gateway listening", "addr", g.addr)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Addr returns the address the gateway listens on once started.
func (g *Gateway) Addr() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addr
}

// Stop shuts the server down gracefully within the configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	g.mu.Lock()
	srv := g.server
	g.server = nil
	g.mu.Unlock()
	if srv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return srv.Shutdown(shutdownCtx)
}
