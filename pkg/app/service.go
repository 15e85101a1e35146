package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/kardianos/service"
)

// ServiceName is the name registered with the system service manager.
const ServiceName = "modesync"

// ServiceConfig describes the daemon to the service manager. The service
// runs `modesync daemon run`, with the absolute configPath when set.
func ServiceConfig(configPath string) (*service.Config, error) {
	args := []string{"daemon", "run"}
	if configPath != "" {
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("app: resolving %s: %w", configPath, err)
		}
		args = append(args, "--config", abs)
	}
	return &service.Config{
		Name:        ServiceName,
		DisplayName: "modesync",
		Description: "Keeps editor custom modes in sync with a modes directory.",
		Arguments:   args,
	}, nil
}

// program runs the daemon under a service manager. Start must not block,
// so the daemon runs in its own goroutine until Stop cancels it.
type program struct {
	run func(ctx context.Context) error

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan error
}

func (p *program) Start(_ service.Service) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return errors.New("app: service already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	p.cancel, p.done = cancel, done
	go func() { done <- p.run(ctx) }()
	return nil
}

func (p *program) Stop(_ service.Service) error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	return <-done
}

// NewSystemService binds run to the platform service manager.
func NewSystemService(cfg *service.Config, run func(ctx context.Context) error) (service.Service, error) {
	s, err := service.New(&program{run: run}, cfg)
	if err != nil {
		return nil, fmt.Errorf("app: service manager: %w", err)
	}
	return s, nil
}

// Control performs a service manager action: install, uninstall, start,
// stop or restart.
func Control(s service.Service, action string) error {
	if !slices.Contains(service.ControlAction[:], action) {
		return fmt.Errorf("app: unknown service action %q (valid: %v)", action, service.ControlAction)
	}
	if err := service.Control(s, action); err != nil {
		return fmt.Errorf("app: service %s: %w", action, err)
	}
	return nil
}

// Interactive reports whether the process runs from a terminal rather
// than under a service manager.
func Interactive() bool {
	return service.Interactive()
}
