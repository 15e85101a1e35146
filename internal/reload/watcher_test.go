package reload

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case evt := <-w.Events():
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
		return Event{}
	}
}

func TestWatcher_DetectsConfigChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("strategy: strategic\n"), 0o644); err != nil {
		t.Fatalf("writing initial file: %v", err)
	}

	w := NewWatcher(WatcherConfig{
		ConfigPath:   path,
		PollInterval: 50 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	// Wait for the watcher to take the initial fingerprint.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("strategy: alphabetical\n"), 0o644); err != nil {
		t.Fatalf("writing modified file: %v", err)
	}

	evt := waitEvent(t, w)
	if evt.Type != EventConfigModified {
		t.Errorf("got event type %q, want %q", evt.Type, EventConfigModified)
	}
	if evt.Path != path {
		t.Errorf("got path %q, want %q", evt.Path, path)
	}
}

func TestWatcher_DetectsModesChange(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "code.yaml"), []byte("slug: code\n"), 0o644); err != nil {
		t.Fatalf("writing mode: %v", err)
	}

	w := NewWatcher(WatcherConfig{
		ModesDir:     dir,
		PollInterval: 50 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "debug.yaml"), []byte("slug: debug\n"), 0o644); err != nil {
		t.Fatalf("adding mode: %v", err)
	}

	evt := waitEvent(t, w)
	if evt.Type != EventModesChanged {
		t.Errorf("got event type %q, want %q", evt.Type, EventModesChanged)
	}
	if evt.Path != dir {
		t.Errorf("got path %q, want %q", evt.Path, dir)
	}
}

func TestDirFingerprint(t *testing.T) {
	dir := t.TempDir()
	if got := dirFingerprint(dir); got != 0 {
		t.Errorf("empty dir fingerprint = %d, want 0", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := dirFingerprint(dir); got != 0 {
		t.Errorf("non-yaml files changed the fingerprint: %d", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "code.yaml"), []byte("slug: code\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	first := dirFingerprint(dir)
	if first == 0 {
		t.Fatal("fingerprint with one mode file is 0")
	}
	if again := dirFingerprint(dir); again != first {
		t.Errorf("fingerprint not stable: %d != %d", again, first)
	}

	if err := os.Remove(filepath.Join(dir, "code.yaml")); err != nil {
		t.Fatal(err)
	}
	if got := dirFingerprint(dir); got != 0 {
		t.Errorf("fingerprint after removal = %d, want 0", got)
	}

	if got := dirFingerprint(filepath.Join(dir, "missing")); got != 0 {
		t.Errorf("missing dir fingerprint = %d, want 0", got)
	}
}

func TestWatcher_Stop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	w := NewWatcher(WatcherConfig{
		ConfigPath:   path,
		ModesDir:     dir,
		PollInterval: 50 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	done := make(chan struct{})
	go func() {
		w.Stop()
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return in time")
	}
}

func TestWatcher_ContextCancellation(t *testing.T) {
	w := NewWatcher(WatcherConfig{
		ConfigPath:   filepath.Join(t.TempDir(), "config.yaml"),
		PollInterval: 50 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after context cancel")
	}
}

func TestWatcher_StopBeforeStart(t *testing.T) {
	w := NewWatcher(WatcherConfig{ConfigPath: "/any/path"})

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop before Start deadlocked")
	}
}

func TestWatcher_MissingPaths(t *testing.T) {
	w := NewWatcher(WatcherConfig{
		ConfigPath:   "/nonexistent/file.yaml",
		ModesDir:     "/nonexistent/modes",
		PollInterval: 50 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	select {
	case evt := <-w.Events():
		t.Errorf("unexpected event: %+v", evt)
	case <-ctx.Done():
	}
}

func TestWatcherConfig_PollInterval(t *testing.T) {
	if got := (WatcherConfig{}).pollIntervalOrDefault(); got != defaultPollInterval {
		t.Errorf("default = %v, want %v", got, defaultPollInterval)
	}
	if got := (WatcherConfig{PollInterval: time.Second}).pollIntervalOrDefault(); got != time.Second {
		t.Errorf("explicit = %v, want 1s", got)
	}
}
