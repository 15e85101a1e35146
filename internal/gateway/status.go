package gateway

import (
	"errors"
	"net/http"
	"time"

	"github.com/flemzord/modesync/internal/history"
	"github.com/flemzord/modesync/internal/ordering"
	"github.com/flemzord/modesync/internal/syncer"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Uptime   time.Duration     `json:"uptime_ns"`
	ModesDir string            `json:"modes_dir"`
	Strategy ordering.Strategy `json:"strategy"`
	Target   string            `json:"target"`
	LastRun  *history.Run      `json:"last_run,omitempty"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc := g.deps.Service
		resp := StatusResponse{
			Uptime:   time.Since(g.startedAt).Truncate(time.Second),
			ModesDir: svc.Syncer().ModesDir(),
		}

		if req, err := svc.Request(syncer.SyncOptions{}); err == nil {
			resp.Strategy = req.Config.Strategy
			resp.Target = req.Target.Path
		}
		if resp.Strategy == "" {
			resp.Strategy = ordering.StrategyStrategic
		}

		runs, err := svc.History(r.Context(), 1)
		switch {
		case err == nil && len(runs) > 0:
			resp.LastRun = &runs[0]
		case err != nil && !errors.Is(err, syncer.ErrHistoryDisabled):
			g.logger.Warn("reading history failed", "error", err)
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
