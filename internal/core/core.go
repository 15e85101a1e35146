// Package core runs the daemon's components: it starts them in
// registration order and stops them in reverse.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"
)

// DefaultShutdownTimeout bounds Stop when no timeout is set.
const DefaultShutdownTimeout = 30 * time.Second

// ErrDuplicateComponent is returned by Register for a name already in use.
var ErrDuplicateComponent = errors.New("core: component already registered")

// App manages the lifecycle of a set of components. A component may
// implement Starter, Stopper and Closer in any combination.
type App struct {
	components      []componentInstance
	logger          *slog.Logger
	ShutdownTimeout time.Duration
}

type componentInstance struct {
	name      string
	component any
	started   bool
}

// NewApp creates an empty App. A nil logger discards output.
func NewApp(logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &App{logger: logger.With("component", "core")}
}

// Register appends a component. Components start in registration order.
func (a *App) Register(name string, c any) error {
	if name == "" {
		return errors.New("core: component name must not be empty")
	}
	if c == nil {
		return fmt.Errorf("core: component %s is nil", name)
	}
	if slices.ContainsFunc(a.components, func(ci componentInstance) bool { return ci.name == name }) {
		return fmt.Errorf("%w: %s", ErrDuplicateComponent, name)
	}
	a.components = append(a.components, componentInstance{name: name, component: c})
	return nil
}

// Components returns the registered names in start order.
func (a *App) Components() []string {
	names := make([]string, len(a.components))
	for i, ci := range a.components {
		names[i] = ci.name
	}
	return names
}

// Start starts all registered components that implement Starter, in order.
// If any Start() fails, already-started components are stopped in reverse
// order.
func (a *App) Start() error {
	for i := range a.components {
		ci := &a.components[i]
		if s, ok := ci.component.(Starter); ok {
			a.logger.Info("starting component", "name", ci.name)
			if err := s.Start(); err != nil {
				a.logger.Error("component start failed", "name", ci.name, "error", err)
				a.stopComponents(i - 1)
				return fmt.Errorf("starting component %s: %w", ci.name, err)
			}
		}
		ci.started = true
	}
	a.logger.Info("all components started", "count", len(a.components))
	return nil
}

// Stop stops all started components in reverse order with a timeout.
// Every component is stopped even when an earlier one fails; the errors
// are joined.
func (a *App) Stop() error {
	return a.stopComponents(len(a.components) - 1)
}

// Run starts all components and blocks until ctx is done, then stops them.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	a.logger.Info("shutting down")

	err := a.Stop()
	a.logger.Info("shutdown complete")
	return err
}

func (a *App) stopComponents(fromIndex int) error {
	timeout := a.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for i := fromIndex; i >= 0; i-- {
		ci := &a.components[i]
		if !ci.started {
			continue
		}
		if err := stop(ctx, ci.component); err != nil {
			a.logger.Error("component stop error", "name", ci.name, "error", err)
			errs = append(errs, fmt.Errorf("stopping component %s: %w", ci.name, err))
		} else {
			a.logger.Debug("component stopped", "name", ci.name)
		}
		ci.started = false
	}
	return errors.Join(errs...)
}

func stop(ctx context.Context, c any) error {
	var errs []error
	if s, ok := c.(Stopper); ok {
		errs = append(errs, s.Stop(ctx))
	}
	if cl, ok := c.(Closer); ok {
		errs = append(errs, cl.Close())
	}
	return errors.Join(errs...)
}
