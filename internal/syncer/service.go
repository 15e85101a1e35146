package syncer

import (
	"context"
	"errors"
	"sync"

	"github.com/flemzord/modesync/internal/config"
	"github.com/flemzord/modesync/internal/discovery"
	"github.com/flemzord/modesync/internal/history"
)

// ErrHistoryDisabled is returned by Service.History when no store is set.
var ErrHistoryDisabled = errors.New("syncer: history is disabled")

// HistoryReader lists recorded runs. *history.Store implements it.
type HistoryReader interface {
	Recent(ctx context.Context, n int) ([]history.Run, error)
}

// SyncOptions adjusts one sync on top of the live configuration.
type SyncOptions struct {
	Overrides config.Overrides
	DryRun    bool

	// ProjectDir selects the local target of that project, whatever the
	// configured scope.
	ProjectDir string

	// GlobalPath selects the global target at that path.
	GlobalPath string
}

// Service binds a Syncer to a live configuration. The HTTP gateway, the
// MCP server and the scheduler drive syncs through it; a reload swaps the
// configuration without restarting them.
type Service struct {
	syncer  *Syncer
	history HistoryReader

	mu  sync.RWMutex
	cfg *config.Config
}

// NewService creates a Service. history may be nil.
func NewService(s *Syncer, cfg *config.Config, history HistoryReader) *Service {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &Service{syncer: s, cfg: cfg, history: history}
}

// Syncer returns the underlying Syncer.
func (s *Service) Syncer() *Syncer { return s.syncer }

// Config returns the live configuration. Callers must not modify it.
func (s *Service) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SetConfig replaces the live configuration.
func (s *Service) SetConfig(cfg *config.Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// Request builds the sync request opts selects.
func (s *Service) Request(opts SyncOptions) (Request, error) {
	cfg := s.Config()
	target, err := TargetFor(cfg.Target, opts.ProjectDir, opts.GlobalPath)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Config: config.Merge(cfg.Config, opts.Overrides),
		Target: target,
		DryRun: opts.DryRun,
	}, nil
}

// Sync runs one sync against the live configuration.
func (s *Service) Sync(ctx context.Context, opts SyncOptions) (*Report, error) {
	req, err := s.Request(opts)
	if err != nil {
		return nil, err
	}
	return s.syncer.Sync(ctx, req)
}

// Preview resolves and loads the modes without rendering or writing.
func (s *Service) Preview(ctx context.Context, o config.Overrides) (*Plan, error) {
	return s.syncer.Plan(ctx, config.Merge(s.Config().Config, o))
}

// Status summarizes the modes directory.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	return s.syncer.Status(ctx)
}

// Validate strictly validates every mode file.
func (s *Service) Validate(ctx context.Context) (*discovery.Report, error) {
	return s.syncer.Validate(ctx)
}

// History returns the n most recent runs.
func (s *Service) History(ctx context.Context, n int) ([]history.Run, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.Recent(ctx, n)
}

// TargetFor resolves the target file. projectDir forces the local target of
// that project and globalPath the global target at that path; otherwise tc
// decides.
func TargetFor(tc config.TargetConfig, projectDir, globalPath string) (Target, error) {
	switch {
	case projectDir != "":
		return LocalTarget(projectDir)
	case globalPath != "":
		return GlobalTarget(globalPath), nil
	case tc.Scope == config.ScopeLocal:
		return LocalTarget(tc.ProjectDir)
	default:
		return GlobalTarget(tc.GlobalPath), nil
	}
}
