package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if g.http != nil {
		r.Use(g.http.middleware)
	}

	// Public, read-only.
	r.Get("/health", g.handleHealth())
	if g.deps.Metrics != nil {
		r.Handle("/metrics", g.deps.Metrics.Handler())
	}
	r.Route("/api", func(r chi.Router) {
		r.Get("/modes", g.handleListModes())
		r.Get("/order", g.handlePreviewOrder())
		r.Get("/validate", g.handleValidate())
	})

	// Webhooks carry their own HMAC signature per source.
	if len(g.config.Webhooks) > 0 {
		r.Post("/webhooks/{source}", g.limitSyncs(g.handleWebhook()))
	}

	// Mutating and streaming endpoints. Not mounted without auth.
	if g.config.Auth.IsConfigured() {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(g.config.Auth))
			r.Get("/status", g.handleStatus())
			r.Post("/api/sync", g.limitSyncs(g.handleSync()))
			r.Get("/api/history", g.handleHistory())
			if g.deps.Redactor != nil {
				r.Get("/api/config", g.handleConfig())
			}
			if g.deps.Events != nil {
				r.Handle("/ws/events", g.deps.Events)
			}
			if g.deps.MCP != nil {
				r.Handle("/mcp", g.deps.MCP)
			}
		})
	}

	return r
}
