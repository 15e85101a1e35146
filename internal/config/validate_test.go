package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/flemzord/modesync/internal/mode"
	"github.com/flemzord/modesync/internal/ordering"
)

func TestValidate_Valid(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.Defaults(t.TempDir())
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownStrategy(t *testing.T) {
	t.Parallel()

	cfg := &Config{Config: ordering.Config{Strategy: "random"}}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for unknown strategy")
	}
	if !errors.Is(err, ordering.ErrConfiguration) {
		t.Errorf("error should match ErrConfiguration: %v", err)
	}
	if !strings.Contains(err.Error(), "random") {
		t.Errorf("error should mention the strategy: %v", err)
	}
}

func TestValidate_UnknownCategory(t *testing.T) {
	t.Parallel()

	cfg := &Config{Config: ordering.Config{
		Strategy:      ordering.StrategyCategory,
		CategoryOrder: []mode.Category{"core", "legacy"},
	}}
	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "legacy") {
		t.Fatalf("expected unknown category error, got %v", err)
	}
}

func TestValidate_Target(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target TargetConfig
		want   string
	}{
		{"unknown scope", TargetConfig{Scope: "workspace"}, "unsupported target.scope"},
		{"local without dir", TargetConfig{Scope: ScopeLocal}, "project_dir is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(&Config{Target: tt.target})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestValidate_Daemon(t *testing.T) {
	t.Parallel()

	cfg := &Config{Daemon: DaemonConfig{
		Bind:          "no-port",
		Schedule:      "every minute",
		PruneSchedule: "@daily",
		Webhooks:      map[string]WebhookConfig{"github": {}},
	}}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"daemon.bind", "daemon.schedule", "daemon.webhooks.github.secret"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
	if strings.Contains(err.Error(), "prune_schedule") {
		t.Errorf("@daily is a valid descriptor: %v", err)
	}
}

func TestValidate_MultipleProblems(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Config:  ordering.Config{Strategy: ordering.StrategyCustom},
		History: HistoryConfig{Retention: -1},
	}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "custom_order") || !strings.Contains(err.Error(), "retention") {
		t.Errorf("error should mention both problems: %v", err)
	}
}
