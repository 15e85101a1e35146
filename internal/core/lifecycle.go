package core

import "context"

// Starter is implemented by components that run background work
// (goroutines, listeners, schedulers). Start must not block.
type Starter interface {
	Start() error
}

// Stopper is implemented by components that need to release resources.
// Called during shutdown in reverse order of Start().
type Stopper interface {
	Stop(ctx context.Context) error
}

// Closer is implemented by components holding resources that are released
// without a deadline, such as a database handle.
type Closer interface {
	Close() error
}

// StarterFunc adapts a function to Starter.
type StarterFunc func() error

// Start calls f.
func (f StarterFunc) Start() error { return f() }

// StopperFunc adapts a function to Stopper.
type StopperFunc func(ctx context.Context) error

// Stop calls f.
func (f StopperFunc) Stop(ctx context.Context) error { return f(ctx) }
