package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flemzord/modesync/internal/config"
	"github.com/flemzord/modesync/internal/history"
	"github.com/flemzord/modesync/internal/metrics"
	"github.com/flemzord/modesync/internal/syncer"
)

const testToken = "secret-token"

type fixture struct {
	gw      *Gateway
	handler http.Handler
	target  string
	store   *history.Store
	metrics *metrics.Recorder
}

func writeModes(t *testing.T, slugs ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, slug := range slugs {
		content := "slug: " + slug + "\nname: " + slug + "\nroleDefinition: You are " + slug + ".\ngroups: [read]\n"
		if err := os.WriteFile(filepath.Join(dir, slug+".yaml"), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// newFixture builds a gateway over code, debug, ask and zeta modes, a
// temporary target and a real history store.
func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	store, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	rec := metrics.New()
	target := filepath.Join(t.TempDir(), "custom_modes.yaml")
	s := syncer.New(writeModes(t, "code", "debug", "ask", "zeta"), syncer.Options{History: store, Metrics: rec})
	svc := syncer.NewService(s, &config.Config{Target: config.TargetConfig{GlobalPath: target}}, store)

	gw, err := New(cfg, Deps{Service: svc, Metrics: rec})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &fixture{gw: gw, handler: gw.Handler(), target: target, store: store, metrics: rec}
}

func (f *fixture) do(t *testing.T, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func bearer() map[string]string {
	return map[string]string{"Authorization": "Bearer " + testToken}
}
