package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/flemzord/modesync/internal/discovery"
	"github.com/flemzord/modesync/internal/history"
	"github.com/flemzord/modesync/internal/syncer"
	"github.com/google/go-cmp/cmp"
)

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("decoding %s: %v", body, err)
	}
	return v
}

func TestListModes(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	rr := f.do(t, http.MethodGet, "/api/modes", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body)
	}
	st := decode[syncer.Status](t, rr.Body.Bytes())
	if st.ModeCount != 4 || len(st.Categories) != 4 {
		t.Errorf("status = %+v", st)
	}
}

func TestPreviewOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"defaults", "", []string{"code", "debug", "ask", "zeta"}},
		{"alphabetical", "?strategy=alphabetical", []string{"ask", "code", "debug", "zeta"}},
		{"mixed case strategy", "?strategy=%20Alphabetical", []string{"ask", "code", "debug", "zeta"}},
		{"mixed case categories", "?strategy=CATEGORY&category_order=Discovered,core", []string{"zeta", "ask", "code", "debug"}},
		{"priority and exclude", "?priority=zeta&exclude=debug,ask", []string{"zeta", "code"}},
		{"custom", "?strategy=custom&custom_order=ask,zeta", []string{"ask", "zeta", "code", "debug"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := f.do(t, http.MethodGet, "/api/order"+tt.query, "", nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rr.Code, rr.Body)
			}
			resp := decode[orderResponse](t, rr.Body.Bytes())
			if diff := cmp.Diff(tt.want, resp.Order); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := os.Stat(f.target); !os.IsNotExist(err) {
		t.Error("preview must not write the target")
	}
}

func TestPreviewOrder_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})

	rr := f.do(t, http.MethodGet, "/api/order?strategy=random", "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown strategy: status = %d, want 400", rr.Code)
	}
	rr = f.do(t, http.MethodGet, "/api/order?strategy=custom", "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("custom without order: status = %d, want 400", rr.Code)
	}

	rr = f.do(t, http.MethodGet, "/api/order?exclude=ghost", "", nil)
	resp := decode[orderResponse](t, rr.Body.Bytes())
	if len(resp.Warnings) != 1 || resp.Warnings[0].Slug != "ghost" {
		t.Errorf("warnings = %+v", resp.Warnings)
	}
}

func TestValidateEndpoint(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{})
	rr := f.do(t, http.MethodGet, "/api/validate", "", nil)
	report := decode[discovery.Report](t, rr.Body.Bytes())
	if rr.Code != http.StatusOK || report.Total != 4 || !report.OK() {
		t.Errorf("validate = %d %+v", rr.Code, report)
	}
}

func TestSync(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{Auth: authConfig()})

	if rr := f.do(t, http.MethodPost, "/api/sync", "", nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated sync = %d, want 401", rr.Code)
	}

	rr := f.do(t, http.MethodPost, "/api/sync", `{"dry_run":true,"strategy":"alphabetical"}`, bearer())
	if rr.Code != http.StatusOK {
		t.Fatalf("dry run = %d: %s", rr.Code, rr.Body)
	}
	if _, err := os.Stat(f.target); !os.IsNotExist(err) {
		t.Error("dry run must not write the target")
	}

	rr = f.do(t, http.MethodPost, "/api/sync", `{"priority_modes":["zeta"]}`, bearer())
	if rr.Code != http.StatusOK {
		t.Fatalf("sync = %d: %s", rr.Code, rr.Body)
	}
	report := decode[syncer.Report](t, rr.Body.Bytes())
	if diff := cmp.Diff([]string{"zeta", "code", "debug", "ask"}, report.Modes); diff != "" {
		t.Errorf("modes mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(f.target); err != nil {
		t.Errorf("target not written: %v", err)
	}

	runs, err := f.store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || !runs[1].DryRun || runs[0].DryRun {
		t.Errorf("runs = %+v", runs)
	}
}

func TestSync_BadRequests(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{Auth: authConfig()})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{`, http.StatusBadRequest},
		{"unknown field", `{"strategy":"custom","colour":"red"}`, http.StatusBadRequest},
		{"invalid strategy", `{"strategy":"random"}`, http.StatusBadRequest},
		{"missing project", `{"project_dir":"/does/not/exist"}`, http.StatusBadRequest},
		{"everything excluded", `{"exclude_modes":["code","debug","ask","zeta"]}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr := f.do(t, http.MethodPost, "/api/sync", tt.body, bearer())
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rr.Code, tt.want, rr.Body)
			}
			if resp := decode[errorResponse](t, rr.Body.Bytes()); resp.Error == "" {
				t.Error("error body should carry a message")
			}
		})
	}
}

func TestHistory(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Config{Auth: authConfig()})
	for range 3 {
		if rr := f.do(t, http.MethodPost, "/api/sync", "", bearer()); rr.Code != http.StatusOK {
			t.Fatalf("sync = %d: %s", rr.Code, rr.Body)
		}
	}

	rr := f.do(t, http.MethodGet, "/api/history?limit=2", "", bearer())
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	runs := decode[[]history.Run](t, rr.Body.Bytes())
	if len(runs) != 2 || runs[0].ID <= runs[1].ID {
		t.Errorf("runs = %+v", runs)
	}

	if rr := f.do(t, http.MethodGet, "/api/history?limit=zero", "", bearer()); rr.Code != http.StatusBadRequest {
		t.Errorf("bad limit = %d, want 400", rr.Code)
	}

	rr = f.do(t, http.MethodGet, "/status", "", bearer())
	st := decode[StatusResponse](t, rr.Body.Bytes())
	if st.LastRun == nil || st.LastRun.ID != runs[0].ID || st.Target != f.target {
		t.Errorf("status = %+v", st)
	}
}

func TestHistory_Disabled(t *testing.T) {
	t.Parallel()

	svc := syncer.NewService(syncer.New(writeModes(t, "code"), syncer.Options{}), nil, nil)
	gw, err := New(Config{Auth: authConfig()}, Deps{Service: svc})
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{gw: gw, handler: gw.Handler()}

	if rr := f.do(t, http.MethodGet, "/api/history", "", bearer()); rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
	if rr := f.do(t, http.MethodGet, "/metrics", "", nil); rr.Code != http.StatusNotFound {
		t.Errorf("/metrics without recorder = %d, want 404", rr.Code)
	}
}
