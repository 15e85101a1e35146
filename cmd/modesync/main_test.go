package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flemzord/modesync/internal/config"
	"github.com/flemzord/modesync/internal/history"
	"github.com/flemzord/modesync/internal/ordering"
	"github.com/flemzord/modesync/internal/syncer"
	"github.com/google/go-cmp/cmp"
)

type workspace struct {
	root    string
	modes   string
	config  string
	dataDir string
	target  string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	root := t.TempDir()
	ws := workspace{
		root:    root,
		modes:   filepath.Join(root, "modes"),
		config:  filepath.Join(root, "modesync.yaml"),
		dataDir: filepath.Join(root, "data"),
		target:  filepath.Join(root, "custom_modes.yaml"),
	}
	if err := os.MkdirAll(ws.modes, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, slug := range []string{"code", "debug", "zeta"} {
		writeMode(t, ws.modes, slug)
	}
	cfg := "modes_dir: " + ws.modes + "\ntarget:\n  global_path: " + ws.target + "\n"
	if err := os.WriteFile(ws.config, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvModesDir, "")
	return ws
}

func writeMode(t *testing.T, dir, slug string) {
	t.Helper()
	content := "slug: " + slug + "\nname: " + slug + "\nroleDefinition: You are " + slug + ".\ngroups: [read]\n"
	if err := os.WriteFile(filepath.Join(dir, slug+".yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// run executes the CLI against ws and returns stdout.
func (ws workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--config", ws.config, "--data-dir", ws.dataDir, "--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (ws workspace) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := ws.run(t, args...)
	if err != nil {
		t.Fatalf("modesync %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "modesync dev") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestSync_DryRun(t *testing.T) {
	ws := newWorkspace(t)

	out := ws.mustRun(t, "sync", "--dry-run", "--order", "alphabetical")

	if !strings.Contains(out, "Would sync 3 modes") {
		t.Errorf("missing summary:\n%s", out)
	}
	if !strings.Contains(out, "slug: code") {
		t.Errorf("dry run should print the rendered document:\n%s", out)
	}
	if _, err := os.Stat(ws.target); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("dry run wrote the target: %v", err)
	}
}

func TestSync_WritesTargetAndHistory(t *testing.T) {
	ws := newWorkspace(t)

	out := ws.mustRun(t, "sync", "--json", "--priority", "zeta", "--exclude", "debug")

	var report syncer.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decoding report: %v\n%s", err, out)
	}
	if diff := cmp.Diff([]string{"zeta", "code"}, report.Modes); diff != "" {
		t.Errorf("modes mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(ws.target)
	if err != nil {
		t.Fatalf("target not written: %v", err)
	}
	if strings.Contains(string(data), "slug: debug") {
		t.Error("excluded mode written to target")
	}

	var runs []history.Run
	if err := json.Unmarshal([]byte(ws.mustRun(t, "history", "--json")), &runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || !runs[0].Succeeded() {
		t.Fatalf("history = %+v, want one successful run", runs)
	}
}

func TestSync_StrategyAlias(t *testing.T) {
	ws := newWorkspace(t)

	out := ws.mustRun(t, "sync", "--json", "--dry-run", "--strategy", "custom", "--custom-order", "zeta,debug")

	var report syncer.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"zeta", "debug", "code"}, report.Modes); diff != "" {
		t.Errorf("modes mismatch (-want +got):\n%s", diff)
	}
}

func TestSync_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown strategy", []string{"sync", "--order", "random"}, ordering.ErrConfiguration},
		{"unknown category", []string{"sync", "--order", "category", "--category-order", "core,bogus"}, ordering.ErrConfiguration},
		{"missing project", []string{"sync", "--local", "/does/not/exist"}, syncer.ErrInvalidTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := newWorkspace(t)
			_, err := ws.run(t, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if _, statErr := os.Stat(ws.target); !errors.Is(statErr, os.ErrNotExist) {
				t.Error("target written despite error")
			}
		})
	}
}

func TestSync_ExclusiveTargets(t *testing.T) {
	ws := newWorkspace(t)
	_, err := ws.run(t, "sync", "--local", ws.root, "--global-config", ws.target)
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Fatalf("err = %v", err)
	}
}

func TestSync_Local(t *testing.T) {
	ws := newWorkspace(t)
	project := t.TempDir()

	ws.mustRun(t, "sync", "--local", project)

	data, err := os.ReadFile(filepath.Join(project, syncer.LocalDir, syncer.LocalFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "source: project") {
		t.Errorf("local target not stamped as project:\n%s", data)
	}
}

func TestSync_ListModes(t *testing.T) {
	ws := newWorkspace(t)

	out := ws.mustRun(t, "sync", "--list-modes")

	for _, slug := range []string{"code", "debug", "zeta"} {
		if !strings.Contains(out, slug) {
			t.Errorf("listing misses %s:\n%s", slug, out)
		}
	}
	if _, err := os.Stat(ws.target); !errors.Is(err, os.ErrNotExist) {
		t.Error("--list-modes wrote the target")
	}
}

func TestSync_ValidateOnly(t *testing.T) {
	ws := newWorkspace(t)

	out := ws.mustRun(t, "sync", "--validate-only", "--priority", "ghost")

	if !strings.Contains(out, "Configuration is valid") {
		t.Errorf("missing verdict:\n%s", out)
	}
	if !strings.Contains(out, "ghost") {
		t.Errorf("missing warning for unknown priority mode:\n%s", out)
	}
}

func TestValidate(t *testing.T) {
	ws := newWorkspace(t)
	ws.mustRun(t, "validate")

	bad := "slug: Bad_Slug\nname: bad\nroleDefinition: x\ngroups: [read]\n"
	if err := os.WriteFile(filepath.Join(ws.modes, "bad.yaml"), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := ws.run(t, "validate")
	if err == nil {
		t.Fatal("expected an error for an invalid mode file")
	}
	if !strings.Contains(out, "FAIL  bad") {
		t.Errorf("report misses the invalid file:\n%s", out)
	}
}

func TestStatus(t *testing.T) {
	ws := newWorkspace(t)

	out := ws.mustRun(t, "status")
	if !strings.Contains(out, "never") {
		t.Errorf("expected no previous sync:\n%s", out)
	}

	ws.mustRun(t, "sync")
	out = ws.mustRun(t, "status")
	for _, want := range []string{ws.config, ws.target, "strategic", "3 modes"} {
		if !strings.Contains(out, want) {
			t.Errorf("status misses %q:\n%s", want, out)
		}
	}
}

func TestHistory_Limit(t *testing.T) {
	ws := newWorkspace(t)
	if _, err := ws.run(t, "history", "--limit", "0"); err == nil {
		t.Fatal("expected an error for a zero limit")
	}
	out := ws.mustRun(t, "history")
	if !strings.Contains(out, "No sync runs") {
		t.Errorf("history = %q", out)
	}
}

func TestBackup_ListRestore(t *testing.T) {
	ws := newWorkspace(t)

	original := []byte("customModes: []\n")
	if err := os.WriteFile(ws.target, original, 0o644); err != nil {
		t.Fatal(err)
	}
	ws.mustRun(t, "sync")

	out := ws.mustRun(t, "backup", "list")
	if !strings.Contains(out, "custom_modes_1.yaml") {
		t.Fatalf("backup list misses the archive:\n%s", out)
	}

	ws.mustRun(t, "backup", "restore")
	data, err := os.ReadFile(ws.target)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, original) {
		t.Errorf("restored target = %q, want %q", data, original)
	}

	if _, err := ws.run(t, "backup", "restore", "--number", "7"); err == nil {
		t.Error("expected an error for a missing backup number")
	}
}

func TestModesDirFlag(t *testing.T) {
	ws := newWorkspace(t)
	other := t.TempDir()
	writeMode(t, other, "solo")

	out := ws.mustRun(t, "--modes-dir", other, "list")
	if !strings.Contains(out, "solo") || strings.Contains(out, "zeta") {
		t.Errorf("--modes-dir not applied:\n%s", out)
	}
}
