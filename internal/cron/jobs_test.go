package cron_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/flemzord/modesync/internal/cron"
	"github.com/flemzord/modesync/internal/cron/crontest"
	"github.com/flemzord/modesync/internal/syncer"
)

func TestResyncJob(t *testing.T) {
	t.Parallel()

	svc := &crontest.MockSyncService{
		SyncFunc: func(_ context.Context, _ syncer.SyncOptions) (*syncer.Report, error) {
			return &syncer.Report{Target: "/tmp/out.yaml", Modes: []string{"code"}}, nil
		},
	}
	j := &cron.ResyncJob{Service: svc, Logger: slog.Default()}

	if j.Name() != cron.ResyncJobName {
		t.Errorf("name = %q", j.Name())
	}
	if j.Schedule() != "@hourly" {
		t.Errorf("schedule = %q, want @hourly", j.Schedule())
	}
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	calls := svc.Calls()
	if len(calls) != 1 || calls[0].DryRun {
		t.Errorf("calls = %+v", calls)
	}
}

func TestResyncJob_Error(t *testing.T) {
	t.Parallel()

	svc := &crontest.MockSyncService{
		SyncFunc: func(_ context.Context, _ syncer.SyncOptions) (*syncer.Report, error) {
			return nil, syncer.ErrNoModes
		},
	}
	j := &cron.ResyncJob{Service: svc, Logger: slog.Default(), ScheduleExpr: "*/15 * * * *"}

	if j.Schedule() != "*/15 * * * *" {
		t.Errorf("schedule = %q", j.Schedule())
	}
	if err := j.Run(context.Background()); !errors.Is(err, syncer.ErrNoModes) {
		t.Errorf("Run = %v, want ErrNoModes", err)
	}
}

func TestPruneJob(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store := &crontest.MockPruner{
		PruneFunc: func(_ context.Context, _ time.Time) (int64, error) { return 3, nil },
	}
	j := &cron.PruneJob{
		Store:     store,
		Retention: 30 * 24 * time.Hour,
		Logger:    slog.Default(),
		Now:       func() time.Time { return now },
	}

	if j.Schedule() != "@daily" {
		t.Errorf("schedule = %q, want @daily", j.Schedule())
	}
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	cutoffs := store.Cutoffs()
	if len(cutoffs) != 1 || !cutoffs[0].Equal(now.Add(-30*24*time.Hour)) {
		t.Errorf("cutoffs = %v", cutoffs)
	}
}

func TestPruneJob_NoRetentionKeepsEverything(t *testing.T) {
	t.Parallel()

	store := &crontest.MockPruner{}
	j := &cron.PruneJob{Store: store, Logger: slog.Default()}
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(store.Cutoffs()) != 0 {
		t.Error("zero retention must not prune")
	}
}

func TestPruneJob_Error(t *testing.T) {
	t.Parallel()

	store := &crontest.MockPruner{
		PruneFunc: func(_ context.Context, _ time.Time) (int64, error) { return 0, errors.New("disk full") },
	}
	j := &cron.PruneJob{Store: store, Retention: time.Hour, Logger: slog.Default()}
	if err := j.Run(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestScheduler_WithMockJob(t *testing.T) {
	t.Parallel()

	ran := make(chan struct{}, 1)
	job := &crontest.MockJob{
		NameVal:     "mock",
		ScheduleVal: "@yearly",
		RunFunc: func(_ context.Context) error {
			ran <- struct{}{}
			return nil
		},
	}
	s := cron.NewScheduler(nil)
	if err := s.RegisterJob(job); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Trigger("mock"); err != nil {
		t.Fatal(err)
	}
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	if job.CallCount() != 1 || job.LastCall().IsZero() {
		t.Errorf("calls = %d, last = %v", job.CallCount(), job.LastCall())
	}
}
