package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flemzord/modesync/internal/syncer"
)

// Job names.
const (
	ResyncJobName = "resync"
	PruneJobName  = "history_prune"
)

// SyncService is the subset of *syncer.Service needed by ResyncJob.
type SyncService interface {
	Sync(ctx context.Context, opts syncer.SyncOptions) (*syncer.Report, error)
}

// Pruner is the subset of *history.Store needed by PruneJob.
type Pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// ResyncJob rewrites the target configuration with the live configuration.
type ResyncJob struct {
	Service      SyncService
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "@hourly"
}

// Compile-time interface check.
var _ Job = (*ResyncJob)(nil)

// Name implements Job.
func (j *ResyncJob) Name() string { return ResyncJobName }

// Schedule implements Job.
func (j *ResyncJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "@hourly"
}

// Run performs one sync. Sync failures are recorded by the syncer itself
// and returned for the scheduler to log.
func (j *ResyncJob) Run(ctx context.Context) error {
	report, err := j.Service.Sync(ctx, syncer.SyncOptions{})
	if err != nil {
		return fmt.Errorf("cron: resync: %w", err)
	}
	j.Logger.Info("resync complete", "target", report.Target, "modes", len(report.Modes))
	return nil
}

// PruneJob deletes sync runs older than Retention.
type PruneJob struct {
	Store        Pruner
	Retention    time.Duration
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "@daily"

	// Now defaults to time.Now.
	Now func() time.Time
}

// Compile-time interface check.
var _ Job = (*PruneJob)(nil)

// Name implements Job.
func (j *PruneJob) Name() string { return PruneJobName }

// Schedule implements Job.
func (j *PruneJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "@daily"
}

// Run prunes old runs. A zero Retention keeps everything.
func (j *PruneJob) Run(ctx context.Context) error {
	if j.Retention <= 0 {
		return nil
	}
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	n, err := j.Store.Prune(ctx, now().Add(-j.Retention))
	if err != nil {
		return fmt.Errorf("cron: pruning history: %w", err)
	}
	if n > 0 {
		j.Logger.Info("pruned sync history", "runs", n, "retention", j.Retention)
	}
	return nil
}
