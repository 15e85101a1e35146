package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/flemzord/modesync/internal/syncer"
	"github.com/go-chi/chi/v5"
)

// signatureHeader carries "sha256=<hex HMAC of the body>".
const signatureHeader = "X-Signature-256"

// webhookResponse is the JSON response of a webhook delivery.
type webhookResponse struct {
	OK     bool     `json:"ok"`
	Source string   `json:"source"`
	Modes  []string `json:"modes,omitempty"`
}

// handleWebhook validates the HMAC signature of a configured source and
// triggers a sync with the live configuration. The payload itself is not
// interpreted.
func (g *Gateway) handleWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source := chi.URLParam(r, "source")
		cfg, ok := g.config.Webhooks[source]
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown webhook source"})
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read body"})
			return
		}

		if !validateHMAC(body, r.Header.Get(signatureHeader), cfg.Secret) {
			g.logger.Warn("webhook signature mismatch", "source", source, "remote_addr", r.RemoteAddr)
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid signature"})
			return
		}

		g.logger.Info("webhook received, syncing", "source", source)
		report, err := g.deps.Service.Sync(r.Context(), syncer.SyncOptions{})
		if err != nil {
			g.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, webhookResponse{OK: true, Source: source, Modes: report.Modes})
	}
}

// validateHMAC checks HMAC-SHA256 signature in constant time.
func validateHMAC(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
