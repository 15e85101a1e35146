// Package backup keeps copies of target configuration files before they
// are overwritten, and restores them on demand.
package backup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Scope separates backups of project-local and global targets.
type Scope string

// Backup scopes.
const (
	ScopeLocal  Scope = "local"
	ScopeGlobal Scope = "global"
)

// IsValid returns true if this is a known scope.
func (s Scope) IsValid() bool {
	return s == ScopeLocal || s == ScopeGlobal
}

// SiblingSuffix is appended to a target path for the single rolling backup.
const SiblingSuffix = ".backup"

var (
	// ErrNoBackup is returned when a scope holds no backup for a file.
	ErrNoBackup = errors.New("backup: no backup found")

	// ErrSourceMissing is returned when the file to back up does not exist.
	ErrSourceMissing = errors.New("backup: source file not found")
)

// Backup describes one numbered backup file.
type Backup struct {
	Path    string    `json:"path"`
	Number  int       `json:"number"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Manager stores numbered backups under <dir>/<scope>.
type Manager struct {
	dir string
}

// NewManager creates a Manager rooted at dir. Directories are created
// lazily on the first backup.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Dir returns the directory holding backups of scope.
func (m *Manager) Dir(scope Scope) string {
	return filepath.Join(m.dir, string(scope))
}

// BackupSibling copies a non-empty file at path to path+".backup",
// replacing any previous sibling backup. It returns the backup path, or ""
// when there was nothing to back up.
func BackupSibling(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("backup: stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		return "", nil
	}

	dst := path + SiblingSuffix
	if err := copyFile(path, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// Backup copies the file at path into the scope directory as
// <stem>_<n><ext>, n being one more than the highest existing number.
func (m *Manager) Backup(path string, scope Scope) (Backup, error) {
	if !scope.IsValid() {
		return Backup{}, fmt.Errorf("backup: unknown scope %q", scope)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Backup{}, fmt.Errorf("%w: %s", ErrSourceMissing, path)
		}
		return Backup{}, fmt.Errorf("backup: stat %s: %w", path, err)
	}

	dir := m.Dir(scope)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Backup{}, fmt.Errorf("backup: creating %s: %w", dir, err)
	}

	existing, err := m.List(scope, filepath.Base(path))
	if err != nil {
		return Backup{}, err
	}
	next := 1
	if len(existing) > 0 {
		next = existing[len(existing)-1].Number + 1
	}

	dst := filepath.Join(dir, numberedName(filepath.Base(path), next))
	if err := copyFile(path, dst); err != nil {
		return Backup{}, err
	}
	return stat(dst, next)
}

// List returns the backups of the file named base in scope, oldest first.
func (m *Manager) List(scope Scope, base string) ([]Backup, error) {
	entries, err := os.ReadDir(m.Dir(scope))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("backup: reading %s: %w", m.Dir(scope), err)
	}

	pattern := numberedPattern(base)
	var out []Backup
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		match := pattern.FindStringSubmatch(e.Name())
		if match == nil {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		b, err := stat(filepath.Join(m.Dir(scope), e.Name()), n)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}

	slices.SortFunc(out, func(a, b Backup) int { return a.Number - b.Number })
	return out, nil
}

// Latest returns the highest-numbered backup of base in scope.
func (m *Manager) Latest(scope Scope, base string) (Backup, error) {
	list, err := m.List(scope, base)
	if err != nil {
		return Backup{}, err
	}
	if len(list) == 0 {
		return Backup{}, fmt.Errorf("%w: %s in %s scope", ErrNoBackup, base, scope)
	}
	return list[len(list)-1], nil
}

// Restore copies backup number n (0 means the latest) of the file at path
// back over path.
func (m *Manager) Restore(path string, scope Scope, n int) (Backup, error) {
	base := filepath.Base(path)

	var b Backup
	if n == 0 {
		latest, err := m.Latest(scope, base)
		if err != nil {
			return Backup{}, err
		}
		b = latest
	} else {
		list, err := m.List(scope, base)
		if err != nil {
			return Backup{}, err
		}
		i := slices.IndexFunc(list, func(b Backup) bool { return b.Number == n })
		if i < 0 {
			return Backup{}, fmt.Errorf("%w: %s #%d in %s scope", ErrNoBackup, base, n, scope)
		}
		b = list[i]
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Backup{}, fmt.Errorf("backup: creating %s: %w", filepath.Dir(path), err)
	}
	if err := copyFile(b.Path, path); err != nil {
		return Backup{}, err
	}
	return b, nil
}

// numberedName turns "modes.yaml" into "modes_3.yaml" and ".roomodes" into
// ".roomodes_3".
func numberedName(base string, n int) string {
	stem, ext := split(base)
	return stem + "_" + strconv.Itoa(n) + ext
}

func numberedPattern(base string) *regexp.Regexp {
	stem, ext := split(base)
	return regexp.MustCompile(`^` + regexp.QuoteMeta(stem) + `_(\d+)` + regexp.QuoteMeta(ext) + `$`)
}

func split(base string) (stem, ext string) {
	ext = filepath.Ext(base)
	if ext == base {
		return base, ""
	}
	return strings.TrimSuffix(base, ext), ext
}

func stat(path string, n int) (Backup, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Backup{}, fmt.Errorf("backup: stat %s: %w", path, err)
	}
	return Backup{Path: path, Number: n, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// copyFile copies src over dst with WriteAtomic.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("backup: opening %s: %w", src, err)
	}
	defer in.Close()
	return WriteAtomic(dst, in)
}

// WriteAtomic writes the contents of r to a temporary file in path's
// directory, makes it world-readable and renames it over path, so that
// path is never left half-written.
func WriteAtomic(path string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("backup: creating temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("backup: writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("backup: chmod %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("backup: closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("backup: writing %s: %w", path, err)
	}
	return nil
}
