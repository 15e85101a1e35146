package config

import (
	"errors"
	"fmt"
	"maps"
	"net"
	"slices"

	"github.com/flemzord/modesync/internal/ordering"
	"github.com/robfig/cron/v3"
)

// Validate checks the structural validity of a Config. Ordering problems
// are reported as *ordering.ConfigurationError values; every problem found
// is returned.
func Validate(cfg *Config) error {
	var errs []error

	if err := ordering.Validate(cfg.Config); err != nil {
		errs = append(errs, err)
	}

	switch cfg.Target.Scope {
	case "", ScopeGlobal:
	case ScopeLocal:
		if cfg.Target.ProjectDir == "" {
			errs = append(errs, errors.New("config: target.project_dir is required for the local scope"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unsupported target.scope %q (supported: global, local)", cfg.Target.Scope))
	}

	if cfg.History.Retention < 0 {
		errs = append(errs, errors.New("config: history.retention must not be negative"))
	}

	errs = append(errs, validateDaemon(cfg.Daemon)...)

	return errors.Join(errs...)
}

func validateDaemon(d DaemonConfig) []error {
	var errs []error

	if d.Bind != "" {
		if _, _, err := net.SplitHostPort(d.Bind); err != nil {
			errs = append(errs, fmt.Errorf("config: daemon.bind: %w", err))
		}
	}

	schedules := []struct{ field, spec string }{
		{"daemon.schedule", d.Schedule},
		{"daemon.prune_schedule", d.PruneSchedule},
	}
	for _, s := range schedules {
		if s.spec == "" {
			continue
		}
		if _, err := cron.ParseStandard(s.spec); err != nil {
			errs = append(errs, fmt.Errorf("config: %s: invalid cron expression %q: %w", s.field, s.spec, err))
		}
	}

	for _, source := range slices.Sorted(maps.Keys(d.Webhooks)) {
		if d.Webhooks[source].Secret == "" {
			errs = append(errs, fmt.Errorf("config: daemon.webhooks.%s.secret is required", source))
		}
	}

	if d.PollInterval < 0 {
		errs = append(errs, errors.New("config: daemon.poll_interval must not be negative"))
	}

	return errs
}
