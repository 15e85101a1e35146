package syncer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/flemzord/modesync/internal/backup"
	"github.com/flemzord/modesync/internal/config"
	"github.com/flemzord/modesync/internal/ordering"
	"github.com/google/go-cmp/cmp"
)

func TestTargetFor(t *testing.T) {
	t.Parallel()

	project := t.TempDir()

	tests := []struct {
		name       string
		tc         config.TargetConfig
		projectDir string
		globalPath string
		wantPath   string
		wantScope  backup.Scope
	}{
		{"global from config", config.TargetConfig{GlobalPath: "/tmp/g.yaml"}, "", "", "/tmp/g.yaml", backup.ScopeGlobal},
		{"local from config", config.TargetConfig{Scope: config.ScopeLocal, ProjectDir: project}, "", "", filepath.Join(project, LocalDir, LocalFile), backup.ScopeLocal},
		{"project flag wins", config.TargetConfig{GlobalPath: "/tmp/g.yaml"}, project, "", filepath.Join(project, LocalDir, LocalFile), backup.ScopeLocal},
		{"global flag wins", config.TargetConfig{Scope: config.ScopeLocal, ProjectDir: project}, "", "/tmp/other.yaml", "/tmp/other.yaml", backup.ScopeGlobal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := TargetFor(tt.tc, tt.projectDir, tt.globalPath)
			if err != nil {
				t.Fatalf("TargetFor: %v", err)
			}
			if got.Path != tt.wantPath || got.Scope != tt.wantScope {
				t.Errorf("got %+v, want %s (%s)", got, tt.wantPath, tt.wantScope)
			}
		})
	}

	if _, err := TargetFor(config.TargetConfig{Scope: config.ScopeLocal}, "", ""); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("local without project: got %v", err)
	}
}

func TestService_RequestMergesOverrides(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Config: ordering.Config{
			PriorityModes: []string{"debug"},
			ExcludeModes:  []string{"zeta"},
		},
		Target: config.TargetConfig{GlobalPath: filepath.Join(t.TempDir(), "out.yaml")},
	}
	svc := NewService(New(standardModes(t), Options{}), cfg, nil)

	req, err := svc.Request(SyncOptions{
		Overrides: config.Overrides{PriorityModes: []string{"architect"}, ExcludeModes: []string{"code-enhanced"}},
		DryRun:    true,
	})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if diff := cmp.Diff([]string{"architect", "debug"}, req.Config.PriorityModes); diff != "" {
		t.Errorf("priority mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"zeta", "code-enhanced"}, req.Config.ExcludeModes); diff != "" {
		t.Errorf("exclude mismatch (-want +got):\n%s", diff)
	}
	if !req.DryRun || req.Target.Path != cfg.Target.GlobalPath {
		t.Errorf("req = %+v", req)
	}

	report, err := svc.Sync(context.Background(), SyncOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	want := []string{"debug", "code", "architect", "prompt-enhancer", "code-enhanced"}
	if diff := cmp.Diff(want, report.Modes); diff != "" {
		t.Errorf("modes mismatch (-want +got):\n%s", diff)
	}
}

func TestService_SetConfig(t *testing.T) {
	t.Parallel()

	svc := NewService(New(standardModes(t), Options{}), nil, nil)
	plan, err := svc.Preview(context.Background(), config.Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	if plan.Order[0] != "code" {
		t.Errorf("default order starts with %q", plan.Order[0])
	}

	svc.SetConfig(&config.Config{Config: ordering.Config{Strategy: ordering.StrategyAlphabetical}})
	plan, err = svc.Preview(context.Background(), config.Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	if plan.Order[0] != "architect" || plan.Strategy != ordering.StrategyAlphabetical {
		t.Errorf("after reload: %+v", plan)
	}

	if _, err := svc.History(context.Background(), 5); !errors.Is(err, ErrHistoryDisabled) {
		t.Errorf("History without store: got %v", err)
	}
}
