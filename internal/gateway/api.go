package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/flemzord/modesync/internal/config"
	"github.com/flemzord/modesync/internal/mode"
	"github.com/flemzord/modesync/internal/ordering"
	"github.com/flemzord/modesync/internal/syncer"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
	maxBodyBytes        = 1 << 20
)

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

// orderResponse is the JSON response for GET /api/order.
type orderResponse struct {
	Strategy ordering.Strategy           `json:"strategy"`
	Order    []string                    `json:"order"`
	Skipped  []syncer.SkippedMode        `json:"skipped,omitempty"`
	Warnings []ordering.ReferenceWarning `json:"warnings,omitempty"`
}

// syncRequest is the JSON body of POST /api/sync. Every field is optional.
type syncRequest struct {
	Strategy           ordering.Strategy `json:"strategy"`
	CategoryOrder      []mode.Category   `json:"category_order"`
	WithinCategorySort ordering.SortMode `json:"within_category_sort"`
	CustomOrder        []string          `json:"custom_order"`
	PriorityModes      []string          `json:"priority_modes"`
	ExcludeModes       []string          `json:"exclude_modes"`
	ProjectDir         string            `json:"project_dir"`
	DryRun             bool              `json:"dry_run"`
}

func (s syncRequest) options() syncer.SyncOptions {
	return syncer.SyncOptions{
		Overrides: config.Overrides{
			Strategy:           s.Strategy,
			CategoryOrder:      s.CategoryOrder,
			WithinCategorySort: s.WithinCategorySort,
			CustomOrder:        s.CustomOrder,
			PriorityModes:      s.PriorityModes,
			ExcludeModes:       s.ExcludeModes,
		}.Normalized(),
		DryRun:     s.DryRun,
		ProjectDir: s.ProjectDir,
	}
}

// handleListModes returns the discovered modes grouped by category.
func (g *Gateway) handleListModes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := g.deps.Service.Status(r.Context())
		if err != nil {
			g.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// handlePreviewOrder resolves the order the query selects without writing.
func (g *Gateway) handlePreviewOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plan, err := g.deps.Service.Preview(r.Context(), overridesFromQuery(r.URL.Query()))
		if err != nil {
			g.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, orderResponse{
			Strategy: plan.Strategy,
			Order:    plan.Order,
			Skipped:  plan.Skipped,
			Warnings: plan.Warnings,
		})
	}
}

// handleValidate validates every mode file.
func (g *Gateway) handleValidate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := g.deps.Service.Validate(r.Context())
		if err != nil {
			g.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// handleSync runs a sync with the overrides of the request body.
func (g *Gateway) handleSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body syncRequest
		if r.ContentLength != 0 {
			dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
				return
			}
		}

		report, err := g.deps.Service.Sync(r.Context(), body.options())
		if err != nil {
			g.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// handleHistory returns the most recent sync runs, newest first.
func (g *Gateway) handleHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
				return
			}
			limit = min(n, maxHistoryLimit)
		}

		runs, err := g.deps.Service.History(r.Context(), limit)
		if err != nil {
			g.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, runs)
	}
}

// overridesFromQuery reads ordering overrides from comma-separated query
// parameters.
func overridesFromQuery(q url.Values) config.Overrides {
	return config.Overrides{
		Strategy:           ordering.Strategy(q.Get("strategy")),
		CategoryOrder:      config.ParseCategories(q.Get("category_order")),
		WithinCategorySort: ordering.SortMode(q.Get("within_category_sort")),
		CustomOrder:        config.ParseList(q.Get("custom_order")),
		PriorityModes:      config.ParseList(q.Get("priority")),
		ExcludeModes:       config.ParseList(q.Get("exclude")),
	}.Normalized()
}

// writeError maps domain errors to HTTP status codes.
func (g *Gateway) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ordering.ErrConfiguration), errors.Is(err, syncer.ErrInvalidTarget):
		code = http.StatusBadRequest
	case errors.Is(err, syncer.ErrNoModes):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, syncer.ErrHistoryDisabled):
		code = http.StatusNotFound
	}
	if code == http.StatusInternalServerError {
		g.logger.Error("request failed", "error", err)
	}
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
