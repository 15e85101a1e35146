// Package discovery scans a modes directory for mode definition files and
// assigns each mode a category.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/flemzord/modesync/internal/mode"
)

// Ext is the extension of mode definition files.
const Ext = ".yaml"

// Discoverer scans Dir for mode files.
type Discoverer struct {
	dir         string
	categorizer *mode.Categorizer
	logger      *slog.Logger
}

// New creates a Discoverer over dir. A nil logger discards output.
func New(dir string, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Discoverer{
		dir:         dir,
		categorizer: mode.NewCategorizer(),
		logger:      logger.With("component", "discovery"),
	}
}

// Dir returns the scanned directory.
func (d *Discoverer) Dir() string { return d.dir }

// Entry is a discovered mode file.
type Entry struct {
	Mode mode.Mode
	Path string
}

// Skipped is a YAML file that is not a usable mode definition.
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Discover scans the directory. The slug of a mode is its file stem. Files
// that do not parse or lack required fields are reported in
// Catalog.Skipped. A missing directory yields an empty catalog.
func (d *Discoverer) Discover(ctx context.Context) (*Catalog, error) {
	files, err := d.files()
	if err != nil {
		return nil, err
	}

	cat := &Catalog{bySlug: make(map[string]int, len(files))}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("discovery: reading %s: %w", path, err)
		}

		def, err := mode.PeekDefinition(raw, filepath.Base(path))
		if err != nil {
			cat.Skipped = append(cat.Skipped, Skipped{Path: path, Reason: err.Error()})
			continue
		}
		if !def.HasRequiredFields() {
			cat.Skipped = append(cat.Skipped, Skipped{Path: path, Reason: "missing required fields"})
			continue
		}

		slug := strings.TrimSuffix(filepath.Base(path), Ext)
		m := def.Mode(d.categorizer.Categorize(slug))
		m.Slug = slug
		cat.entries = append(cat.entries, Entry{Mode: m, Path: path})
	}

	slices.SortFunc(cat.entries, func(a, b Entry) int {
		if c := categoryRank(a.Mode.Category) - categoryRank(b.Mode.Category); c != 0 {
			return c
		}
		return strings.Compare(a.Mode.Slug, b.Mode.Slug)
	})
	for i, e := range cat.entries {
		cat.bySlug[e.Mode.Slug] = i
	}

	for _, s := range cat.Skipped {
		d.logger.Debug("skipping file", "path", s.Path, "reason", s.Reason)
	}
	d.logger.Debug("discovery complete", "dir", d.dir, "modes", len(cat.entries), "skipped", len(cat.Skipped))

	return cat, nil
}

// files returns the sorted mode file paths in the directory.
func (d *Discoverer) files() ([]string, error) {
	dirEntries, err := os.ReadDir(d.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("discovery: reading %s: %w", d.dir, err)
	}

	var paths []string
	for _, e := range dirEntries {
		if e.IsDir() || filepath.Ext(e.Name()) != Ext {
			continue
		}
		paths = append(paths, filepath.Join(d.dir, e.Name()))
	}
	return paths, nil
}

func categoryRank(c mode.Category) int {
	if i := slices.Index(mode.AllCategories(), c); i >= 0 {
		return i
	}
	return len(mode.AllCategories())
}
