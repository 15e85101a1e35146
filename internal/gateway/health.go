package gateway

import (
	"net/http"
	"os"
	"time"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status   string        `json:"status"` // "ok" or "degraded"
	Uptime   time.Duration `json:"uptime_ns"`
	ModesDir string        `json:"modes_dir"`
	Reason   string        `json:"reason,omitempty"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
// Returns 200 while the modes directory is readable, 503 otherwise.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		dir := g.deps.Service.Syncer().ModesDir()
		resp := HealthResponse{
			Status:   "ok",
			Uptime:   time.Since(g.startedAt).Truncate(time.Second),
			ModesDir: dir,
		}

		code := http.StatusOK
		if info, err := os.Stat(dir); err != nil {
			resp.Status, resp.Reason = "degraded", err.Error()
			code = http.StatusServiceUnavailable
		} else if !info.IsDir() {
			resp.Status, resp.Reason = "degraded", "modes path is not a directory"
			code = http.StatusServiceUnavailable
		}

		writeJSON(w, code, resp)
	}
}
