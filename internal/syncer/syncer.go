// Package syncer discovers modes, orders them and writes the ordered
// definitions to a target configuration file.
package syncer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/flemzord/modesync/internal/backup"
	"github.com/flemzord/modesync/internal/discovery"
	"github.com/flemzord/modesync/internal/events"
	"github.com/flemzord/modesync/internal/history"
	"github.com/flemzord/modesync/internal/metrics"
	"github.com/flemzord/modesync/internal/mode"
	"github.com/flemzord/modesync/internal/ordering"
	"github.com/flemzord/modesync/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RunRecorder persists finished runs. *history.Store implements it.
type RunRecorder interface {
	Record(ctx context.Context, run history.Run) (int64, error)
}

// Options holds the optional collaborators of a Syncer. Every field may be
// left zero.
type Options struct {
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *metrics.Recorder
	History RunRecorder
	Events  events.Publisher

	// Backups receives a numbered copy of the target before each write.
	Backups *backup.Manager

	// Now defaults to time.Now.
	Now func() time.Time
}

// Syncer runs syncs against one modes directory. It is safe for concurrent
// use; concurrent syncs to the same target race on the final rename only.
type Syncer struct {
	modesDir   string
	discoverer *discovery.Discoverer
	opts       Options
	logger     *slog.Logger
}

// New creates a Syncer over modesDir.
func New(modesDir string, opts Options) *Syncer {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Tracer == nil {
		opts.Tracer = telemetry.Tracer(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Syncer{
		modesDir:   modesDir,
		discoverer: discovery.New(modesDir, opts.Logger),
		opts:       opts,
		logger:     opts.Logger.With("component", "syncer"),
	}
}

// ModesDir returns the scanned directory.
func (s *Syncer) ModesDir() string { return s.modesDir }

// SkippedMode is an ordered mode left out of the output.
type SkippedMode struct {
	Slug   string `json:"slug"`
	Reason string `json:"reason"`
}

// Plan is the outcome of ordering and loading, before anything is written.
type Plan struct {
	Strategy ordering.Strategy           `json:"strategy"`
	Order    []string                    `json:"order"`
	Skipped  []SkippedMode               `json:"skipped,omitempty"`
	Warnings []ordering.ReferenceWarning `json:"warnings,omitempty"`
	Modes    []*mode.Definition          `json:"-"`
	Catalog  *discovery.Catalog          `json:"-"`
}

// Catalog discovers the modes directory.
func (s *Syncer) Catalog(ctx context.Context) (*discovery.Catalog, error) {
	cat, err := s.discoverer.Discover(ctx)
	if err != nil {
		return nil, err
	}
	s.opts.Metrics.ObserveDiscovery(cat.ByCategory())
	return cat, nil
}

// Plan discovers, resolves and loads the modes cfg selects. Order lists the
// slugs that will be written; modes that fail strict loading or validation
// are moved to Skipped. A *ordering.ConfigurationError is returned for an
// invalid cfg.
func (s *Syncer) Plan(ctx context.Context, cfg ordering.Config) (*Plan, error) {
	cat, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	res, err := ordering.Resolve(cat.Modes(), cfg)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Strategy: cfg.Strategy,
		Warnings: res.Warnings,
		Catalog:  cat,
		Order:    make([]string, 0, len(res.Order)),
	}
	if plan.Strategy == "" {
		plan.Strategy = ordering.StrategyStrategic
	}

	for _, slug := range res.Order {
		entry, _ := cat.Entry(slug)
		def, err := load(entry)
		if err != nil {
			plan.Skipped = append(plan.Skipped, SkippedMode{Slug: slug, Reason: err.Error()})
			s.logger.Warn("skipping invalid mode", "slug", slug, "error", err)
			continue
		}
		plan.Order = append(plan.Order, slug)
		plan.Modes = append(plan.Modes, def)
	}

	for _, w := range res.Warnings {
		s.opts.Metrics.ObserveWarning(w.Field)
		s.logger.Warn("ignoring configuration reference", "field", w.Field, "slug", w.Slug, "reason", w.Reason)
	}

	return plan, nil
}

func load(e discovery.Entry) (*mode.Definition, error) {
	def, err := mode.LoadDefinition(e.Path)
	if err != nil {
		return nil, err
	}
	if err := mode.Validate(def, filepath.Base(e.Path)); err != nil {
		return nil, err
	}
	if def.Slug != e.Mode.Slug {
		return nil, fmt.Errorf("slug %q does not match file name %s", def.Slug, filepath.Base(e.Path))
	}
	return def, nil
}

// Request describes one sync.
type Request struct {
	Config ordering.Config
	Target Target
	DryRun bool
}

// Report is the outcome of a sync.
type Report struct {
	Target   string                      `json:"target"`
	Strategy ordering.Strategy           `json:"strategy"`
	DryRun   bool                        `json:"dry_run"`
	Modes    []string                    `json:"modes"`
	Skipped  []SkippedMode               `json:"skipped,omitempty"`
	Warnings []ordering.ReferenceWarning `json:"warnings,omitempty"`

	// Backup is the sibling copy of the previous target, if any.
	Backup string `json:"backup,omitempty"`

	// Archive is the numbered copy kept by the backup manager, if any.
	Archive string `json:"archive,omitempty"`

	Duration time.Duration `json:"duration_ns"`

	// Content is the rendered document.
	Content []byte `json:"-"`
}

// Sync orders the discovered modes, renders them and, unless DryRun is
// set, writes them to the target after backing up the previous file.
func (s *Syncer) Sync(ctx context.Context, req Request) (report *Report, err error) {
	start := s.opts.Now()
	strategy := req.Config.Strategy
	if strategy == "" {
		strategy = ordering.StrategyStrategic
	}

	ctx, span := s.opts.Tracer.Start(ctx, "modesync.sync", trace.WithAttributes(
		attribute.String("modesync.strategy", string(strategy)),
		attribute.String("modesync.target", req.Target.Path),
		attribute.Bool("modesync.dry_run", req.DryRun),
	))
	defer span.End()

	s.publish(events.Event{
		Type:     events.TypeSyncStarted,
		Time:     start,
		Strategy: string(strategy),
		Target:   req.Target.Path,
		DryRun:   req.DryRun,
	})

	report = &Report{Target: req.Target.Path, Strategy: strategy, DryRun: req.DryRun}
	defer func() {
		report.Duration = s.opts.Now().Sub(start)
		s.finish(ctx, span, start, report, err)
	}()

	if req.Target.Path == "" {
		return report, errors.New("syncer: no target path set")
	}
	if info, statErr := os.Stat(s.modesDir); statErr != nil || !info.IsDir() {
		return report, fmt.Errorf("%w: %s", ErrModesDirNotFound, s.modesDir)
	}

	plan, err := s.Plan(ctx, req.Config)
	if err != nil {
		return report, err
	}
	report.Modes = plan.Order
	report.Skipped = plan.Skipped
	report.Warnings = plan.Warnings

	if len(plan.Modes) == 0 {
		return report, ErrNoModes
	}

	content, err := Render(plan.Modes, req.Target.Source())
	if err != nil {
		return report, err
	}
	report.Content = content

	if req.DryRun {
		return report, nil
	}

	if err := s.write(req.Target, content, report); err != nil {
		return report, err
	}
	return report, nil
}

func (s *Syncer) write(t Target, content []byte, report *Report) error {
	if err := os.MkdirAll(filepath.Dir(t.Path), 0o755); err != nil {
		return fmt.Errorf("syncer: creating %s: %w", filepath.Dir(t.Path), err)
	}

	// A failed backup does not block the write.
	if path, err := backup.BackupSibling(t.Path); err != nil {
		s.logger.Warn("backup failed, continuing", "target", t.Path, "error", err)
	} else {
		report.Backup = path
	}
	if s.opts.Backups != nil && report.Backup != "" {
		if b, err := s.opts.Backups.Backup(t.Path, t.Scope); err != nil {
			s.logger.Warn("archive failed, continuing", "target", t.Path, "error", err)
		} else {
			report.Archive = b.Path
		}
	}

	return backup.WriteAtomic(t.Path, bytes.NewReader(content))
}

func (s *Syncer) finish(ctx context.Context, span trace.Span, start time.Time, r *Report, err error) {
	warnings := make([]string, len(r.Warnings))
	for i, w := range r.Warnings {
		warnings[i] = w.String()
	}

	outcome := metrics.OutcomeSuccess
	evt := events.Event{
		Type:     events.TypeSyncCompleted,
		Strategy: string(r.Strategy),
		Target:   r.Target,
		DryRun:   r.DryRun,
		Modes:    r.Modes,
		Warnings: warnings,
	}
	run := history.Run{
		StartedAt: start,
		Duration:  r.Duration,
		Strategy:  string(r.Strategy),
		Target:    r.Target,
		DryRun:    r.DryRun,
		Modes:     r.Modes,
		Warnings:  warnings,
		Backup:    r.Backup,
	}

	span.SetAttributes(attribute.Int("modesync.modes", len(r.Modes)))
	switch {
	case err != nil:
		outcome = metrics.OutcomeError
		evt.Type = events.TypeSyncFailed
		evt.Error = err.Error()
		run.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("sync failed", "target", r.Target, "strategy", r.Strategy, "error", err)
	case r.DryRun:
		outcome = metrics.OutcomeDryRun
		span.SetStatus(codes.Ok, "")
		s.logger.Info("sync dry run", "target", r.Target, "strategy", r.Strategy, "modes", len(r.Modes))
	default:
		span.SetStatus(codes.Ok, "")
		s.logger.Info("sync complete", "target", r.Target, "strategy", r.Strategy,
			"modes", len(r.Modes), "skipped", len(r.Skipped), "duration", r.Duration)
	}

	s.opts.Metrics.ObserveSync(string(r.Strategy), outcome, r.Duration, len(r.Modes))
	s.publish(evt)

	if s.opts.History != nil {
		// The caller's context may already be canceled; the run is still worth keeping.
		if _, herr := s.opts.History.Record(context.WithoutCancel(ctx), run); herr != nil {
			s.logger.Warn("recording run failed", "error", herr)
		}
	}
}

func (s *Syncer) publish(e events.Event) {
	if s.opts.Events != nil {
		s.opts.Events.Publish(e)
	}
}

// Validate strictly validates every mode file.
func (s *Syncer) Validate(ctx context.Context) (*discovery.Report, error) {
	return s.discoverer.ValidateAll(ctx)
}
