package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler manages periodic job execution using cron expressions.
// A job never overlaps itself: a tick that finds the previous run still
// going is skipped. Triggered runs share the lock of scheduled ones.
type Scheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	jobs   map[string]Job
	order  []string
	locks  map[string]*sync.Mutex
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler. Jobs must be registered before Start().
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		jobs:   make(map[string]Job),
		locks:  make(map[string]*sync.Mutex),
		logger: logger.With("component", "cron"),
	}
}

// Parse parses a 5-field cron expression or a descriptor.
func Parse(expr string) (cron.Schedule, error) {
	return parser.Parse(expr)
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// RegisterJob adds a job to the scheduler. Must be called before Start().
// Returns an error if a job with the same name is already registered.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := j.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("cron: duplicate job name %q", name)
	}

	s.jobs[name] = j
	s.order = append(s.order, name)
	s.locks[name] = &sync.Mutex{}
	return nil
}

// Jobs returns the registered job names in registration order.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Start initializes the cron scheduler and begins executing registered jobs.
// Returns an error if any job has an invalid schedule expression.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	c := cron.New(cron.WithParser(parser))

	for _, name := range s.order {
		job := s.jobs[name]
		if _, err := c.AddFunc(job.Schedule(), func() { s.run(ctx, job) }); err != nil {
			cancel()
			return fmt.Errorf("cron: invalid schedule for job %q: %w", job.Name(), err)
		}
	}

	s.ctx, s.cancel, s.cron = ctx, cancel, c
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.order))
	return nil
}

// Trigger runs the named job now, in the background, unless it is already
// running. It reports whether a run was started.
func (s *Scheduler) Trigger(name string) (bool, error) {
	s.mu.Lock()
	job, ok := s.jobs[name]
	lock := s.locks[name]
	ctx := s.ctx
	s.mu.Unlock()

	if !ok {
		return false, fmt.Errorf("cron: unknown job %q", name)
	}
	if ctx == nil || ctx.Err() != nil {
		return false, fmt.Errorf("cron: scheduler is not running")
	}

	if !lock.TryLock() {
		s.logger.Debug("job already running, trigger ignored", "job", name)
		return false, nil
	}
	go func() {
		defer lock.Unlock()
		s.exec(ctx, job)
	}()
	return true, nil
}

// run executes job unless the previous tick is still running.
func (s *Scheduler) run(ctx context.Context, job Job) {
	lock := s.locks[job.Name()]
	if !lock.TryLock() {
		s.logger.Warn("job still running, skipping tick", "job", job.Name())
		return
	}
	defer lock.Unlock()
	s.exec(ctx, job)
}

func (s *Scheduler) exec(ctx context.Context, job Job) {
	s.logger.Debug("job started", "job", job.Name())
	if err := job.Run(ctx); err != nil {
		s.logger.Error("job failed", "job", job.Name(), "error", err)
		return
	}
	s.logger.Debug("job completed", "job", job.Name())
}

// Stop gracefully shuts down the scheduler, waiting for in-flight
// scheduled and triggered jobs.
func (s *Scheduler) Stop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.cron == nil {
		return nil
	}
	<-s.cron.Stop().Done()
	for _, lock := range s.locks {
		lock.Lock()
		lock.Unlock() //nolint:staticcheck // waits for triggered runs
	}
	s.cron = nil
	s.logger.Info("scheduler stopped")
	return nil
}
