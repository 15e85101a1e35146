package gateway

import (
	"fmt"
	"net/http"

	"gopkg.in/yaml.v3"
)

// handleConfig returns the live configuration with secrets masked.
func (g *Gateway) handleConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		view, err := g.configView()
		if err != nil {
			g.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// configView round-trips the configuration through YAML so that the
// response uses the file's key names.
func (g *Gateway) configView() (map[string]any, error) {
	raw, err := yaml.Marshal(g.deps.Service.Config())
	if err != nil {
		return nil, fmt.Errorf("gateway: encoding config: %w", err)
	}
	view := map[string]any{}
	if err := yaml.Unmarshal(raw, &view); err != nil {
		return nil, fmt.Errorf("gateway: decoding config: %w", err)
	}
	g.deps.Redactor.RedactMap(view)
	return view, nil
}
