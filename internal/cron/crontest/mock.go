// Package crontest provides test doubles for the cron package.
package crontest

import (
	"context"
	"sync"
	"time"

	"github.com/flemzord/modesync/internal/cron"
	"github.com/flemzord/modesync/internal/syncer"
)

// MockJob is a configurable test double for cron.Job.
type MockJob struct {
	NameVal     string
	ScheduleVal string
	RunFunc     func(ctx context.Context) error

	mu       sync.Mutex
	calls    int
	lastCall time.Time
}

// Compile-time interface check.
var _ cron.Job = (*MockJob)(nil)

// Name implements cron.Job.
func (m *MockJob) Name() string { return m.NameVal }

// Schedule implements cron.Job.
func (m *MockJob) Schedule() string { return m.ScheduleVal }

// Run implements cron.Job and increments the call counter.
func (m *MockJob) Run(ctx context.Context) error {
	m.mu.Lock()
	m.calls++
	m.lastCall = time.Now()
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return nil
}

// CallCount returns the number of times Run was called.
func (m *MockJob) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastCall returns the time of the last Run call.
func (m *MockJob) LastCall() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCall
}

// MockSyncService is a test double for cron.SyncService.
type MockSyncService struct {
	SyncFunc func(ctx context.Context, opts syncer.SyncOptions) (*syncer.Report, error)

	mu    sync.Mutex
	calls []syncer.SyncOptions
}

// Sync implements cron.SyncService.
func (m *MockSyncService) Sync(ctx context.Context, opts syncer.SyncOptions) (*syncer.Report, error) {
	m.mu.Lock()
	m.calls = append(m.calls, opts)
	m.mu.Unlock()

	if m.SyncFunc != nil {
		return m.SyncFunc(ctx, opts)
	}
	return &syncer.Report{}, nil
}

// Calls returns the options of every Sync call.
func (m *MockSyncService) Calls() []syncer.SyncOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]syncer.SyncOptions(nil), m.calls...)
}

// MockPruner is a test double for cron.Pruner.
type MockPruner struct {
	PruneFunc func(ctx context.Context, cutoff time.Time) (int64, error)

	mu      sync.Mutex
	cutoffs []time.Time
}

// Prune implements cron.Pruner.
func (m *MockPruner) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	m.cutoffs = append(m.cutoffs, cutoff)
	m.mu.Unlock()

	if m.PruneFunc != nil {
		return m.PruneFunc(ctx, cutoff)
	}
	return 0, nil
}

// Cutoffs returns the cutoff of every Prune call.
func (m *MockPruner) Cutoffs() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Time(nil), m.cutoffs...)
}
