// Package reload watches the configuration file and the modes directory
// by polling, and applies changes to a running daemon.
package reload

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const defaultPollInterval = 2 * time.Second

// WatcherConfig configures the watcher. Either path may be empty.
type WatcherConfig struct {
	// ConfigPath is the configuration file to watch.
	ConfigPath string

	// ModesDir is the directory of mode files to watch.
	ModesDir string

	// PollInterval is how often to check for changes.
	// Defaults to 2 seconds if zero.
	PollInterval time.Duration
}

func (c WatcherConfig) pollIntervalOrDefault() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return defaultPollInterval
}

// EventType describes what changed.
type EventType string

const (
	// EventConfigModified indicates the config file was modified.
	EventConfigModified EventType = "config_modified"

	// EventModesChanged indicates a mode file was added, removed or modified.
	EventModesChanged EventType = "modes_changed"
)

// Event represents a change notification.
type Event struct {
	Type EventType
	Path string
}

// Watcher polls the configuration file and the modes directory. A change
// is reported when the fingerprint of a watched path differs from the
// previous poll: name, size and modification time of the file, or of every
// mode file in the directory.
type Watcher struct {
	cfg     WatcherConfig
	events  chan Event
	stop    chan struct{}
	stopped chan struct{}

	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewWatcher creates a new watcher.
func NewWatcher(cfg WatcherConfig) *Watcher {
	return &Watcher{
		cfg:     cfg,
		events:  make(chan Event, 2),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins polling. Only the first call starts the polling goroutine.
func (w *Watcher) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		w.started.Store(true)
		go w.poll(ctx)
	})
}

// Events returns the channel of change events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop stops the watcher. Safe to call multiple times and before Start.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
	if w.started.Load() {
		<-w.stopped
	}
}

func (w *Watcher) poll(ctx context.Context) {
	defer close(w.stopped)

	ticker := time.NewTicker(w.cfg.pollIntervalOrDefault())
	defer ticker.Stop()

	lastConfig := fileFingerprint(w.cfg.ConfigPath)
	lastModes := dirFingerprint(w.cfg.ModesDir)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			if w.cfg.ConfigPath != "" {
				// A missing file keeps the last fingerprint: deleting the
				// config is not a change worth reloading for.
				if current := fileFingerprint(w.cfg.ConfigPath); current != 0 && current != lastConfig {
					lastConfig = current
					w.emit(Event{Type: EventConfigModified, Path: w.cfg.ConfigPath})
				}
			}
			if w.cfg.ModesDir != "" {
				if current := dirFingerprint(w.cfg.ModesDir); current != lastModes {
					lastModes = current
					w.emit(Event{Type: EventModesChanged, Path: w.cfg.ModesDir})
				}
			}
		}
	}
}

func (w *Watcher) emit(e Event) {
	select {
	case w.events <- e:
	default:
		// Drop event if channel is full (debounce).
	}
}

// fileFingerprint returns 0 for a missing file.
func fileFingerprint(path string) uint64 {
	if path == "" {
		return 0
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%d", info.Size(), info.ModTime().UnixNano())
	return h.Sum64()
}

// dirFingerprint covers the *.yaml files of dir. A missing or empty
// directory fingerprints as 0.
func dirFingerprint(dir string) uint64 {
	if dir == "" {
		return 0
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	var lines []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s:%d:%d", e.Name(), info.Size(), info.ModTime().UnixNano()))
	}
	if len(lines) == 0 {
		return 0
	}
	slices.Sort(lines)

	h := fnv.New64a()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{'\n'})
	}
	return h.Sum64()
}
