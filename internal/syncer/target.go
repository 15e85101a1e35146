package syncer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flemzord/modesync/internal/backup"
)

// Local targets live in <project>/.roomodes/modes.yaml.
const (
	LocalDir  = ".roomodes"
	LocalFile = "modes.yaml"
)

// Source values written on each mode entry.
const (
	SourceGlobal  = "global"
	SourceProject = "project"
)

// Target is the configuration file a sync writes.
type Target struct {
	Path  string
	Scope backup.Scope
}

// Source returns the source value stamped on written modes.
func (t Target) Source() string {
	if t.Scope == backup.ScopeLocal {
		return SourceProject
	}
	return SourceGlobal
}

// DefaultGlobalPath is the editor's global custom modes file.
func DefaultGlobalPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "VSCodium", "User", "globalStorage",
		"rooveterinaryinc.roo-cline", "settings", "custom_modes.yaml")
}

// GlobalTarget targets path, or DefaultGlobalPath when path is empty.
func GlobalTarget(path string) Target {
	if path == "" {
		path = DefaultGlobalPath()
	}
	return Target{Path: path, Scope: backup.ScopeGlobal}
}

// LocalTarget targets the project configuration of projectDir, which must
// be an existing directory.
func LocalTarget(projectDir string) (Target, error) {
	info, err := os.Stat(projectDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Target{}, fmt.Errorf("%w: %s does not exist", ErrInvalidTarget, projectDir)
		}
		return Target{}, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	if !info.IsDir() {
		return Target{}, fmt.Errorf("%w: %s is not a directory", ErrInvalidTarget, projectDir)
	}
	return Target{
		Path:  filepath.Join(projectDir, LocalDir, LocalFile),
		Scope: backup.ScopeLocal,
	}, nil
}
