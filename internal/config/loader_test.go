package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/flemzord/modesync/internal/mode"
	"github.com/flemzord/modesync/internal/ordering"
	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Full(t *testing.T) {
	t.Setenv("MODESYNC_TEST_TOKEN", "s3cret")

	path := writeFile(t, t.TempDir(), "modesync.yaml", `
strategy: category
category_order: [specialized, core]
within_category_sort: manual
manual_category_order:
  core: [debug, code]
priority_modes: [orchestrator]
exclude_modes: [ask]
modes_dir: /srv/modes
target:
  scope: local
  project_dir: /work/project
history:
  retention: 720h
daemon:
  bind: 127.0.0.1:9000
  schedule: "*/15 * * * *"
  watch: true
  poll_interval: 5s
  auth:
    bearer_token: ${MODESYNC_TEST_TOKEN}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	wantOrdering := ordering.Config{
		Strategy:           ordering.StrategyCategory,
		CategoryOrder:      []mode.Category{mode.CategorySpecialized, mode.CategoryCore},
		WithinCategorySort: ordering.SortManual,
		ManualCategoryOrder: map[mode.Category][]string{
			mode.CategoryCore: {"debug", "code"},
		},
		PriorityModes: []string{"orchestrator"},
		ExcludeModes:  []string{"ask"},
	}
	if diff := cmp.Diff(wantOrdering, cfg.Config); diff != "" {
		t.Errorf("ordering mismatch (-want +got):\n%s", diff)
	}
	if cfg.ModesDir != "/srv/modes" || cfg.Target.ProjectDir != "/work/project" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.History.Retention != 720*time.Hour {
		t.Errorf("Retention = %v", cfg.History.Retention)
	}
	if cfg.Daemon.Auth.BearerToken != "s3cret" {
		t.Errorf("BearerToken = %q, want expanded value", cfg.Daemon.Auth.BearerToken)
	}
	if cfg.Daemon.PollInterval != 5*time.Second || !cfg.Daemon.Watch {
		t.Errorf("daemon = %+v", cfg.Daemon)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "modesync.yaml", "strategy: alphabetical\nstrategies: [custom]\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !errors.Is(err, ordering.ErrConfiguration) {
		t.Errorf("error should match ErrConfiguration: %v", err)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "modesync.yaml", "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Strategy != "" {
		t.Errorf("Strategy = %q, want empty", cfg.Strategy)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("MODESYNC_SET", "value")

	out, err := expandEnv([]byte("a: ${MODESYNC_SET}\nb: ${MODESYNC_UNSET_X:-fallback}\n"))
	if err != nil {
		t.Fatalf("expandEnv: %v", err)
	}
	if got := string(out); got != "a: value\nb: fallback\n" {
		t.Errorf("got %q", got)
	}

	_, err = expandEnv([]byte("a: ${MODESYNC_UNSET_Y}\nb: ${MODESYNC_UNSET_Z}\n"))
	if err == nil {
		t.Fatal("expected error for unresolved variables")
	}
	if !strings.Contains(err.Error(), "MODESYNC_UNSET_Y") || !strings.Contains(err.Error(), "MODESYNC_UNSET_Z") {
		t.Errorf("error should list every unresolved variable: %v", err)
	}
}

func TestLoadOrDefault_NoFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Chdir(dir)

	cfg, path, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if path != "" || cfg == nil {
		t.Errorf("got path %q cfg %v, want empty default", path, cfg)
	}
}

func TestLoadOrDefault_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	want := writeFile(t, dir, "modesync/modesync.yaml", "strategy: alphabetical\n")

	cfg, path, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if cfg.Strategy != ordering.StrategyAlphabetical {
		t.Errorf("Strategy = %q", cfg.Strategy)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvModesDir, "/env/modes")

	cfg := &Config{ModesDir: "/file/modes"}
	ApplyEnv(cfg)
	if cfg.ModesDir != "/env/modes" {
		t.Errorf("ModesDir = %q", cfg.ModesDir)
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.Defaults("/data")
	if cfg.Strategy != ordering.StrategyStrategic || cfg.Target.Scope != ScopeGlobal {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.History.Path != filepath.Join("/data", "history.db") {
		t.Errorf("History.Path = %q", cfg.History.Path)
	}
	if cfg.Daemon.Bind == "" || cfg.Daemon.ShutdownTimeout == 0 {
		t.Errorf("daemon defaults missing: %+v", cfg.Daemon)
	}
}

func TestFinalize(t *testing.T) {
	t.Setenv(EnvModesDir, "")

	cfg := &Config{}
	if err := Finalize(cfg, "/data"); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.ModesDir != DefaultModesDir {
		t.Errorf("ModesDir = %q, want %q", cfg.ModesDir, DefaultModesDir)
	}

	bad := &Config{Target: TargetConfig{Scope: ScopeLocal}}
	if err := Finalize(bad, "/data"); err == nil {
		t.Error("expected validation error")
	}
}
