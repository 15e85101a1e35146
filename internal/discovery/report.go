package discovery

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/flemzord/modesync/internal/mode"
)

// FileResult is the validation outcome of one mode file.
type FileResult struct {
	Slug   string   `json:"slug"`
	Path   string   `json:"path"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Report summarizes a validation pass over every mode file.
type Report struct {
	Total   int          `json:"total"`
	Valid   int          `json:"valid"`
	Invalid int          `json:"invalid"`
	Files   []FileResult `json:"files"`
}

// OK reports whether every file is valid.
func (r *Report) OK() bool { return r.Invalid == 0 }

// ValidateAll strictly decodes and validates every YAML file in the
// directory, including files Discover would skip.
func (d *Discoverer) ValidateAll(ctx context.Context) (*Report, error) {
	files, err := d.files()
	if err != nil {
		return nil, err
	}

	report := &Report{Files: make([]FileResult, 0, len(files))}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := FileResult{
			Slug: strings.TrimSuffix(filepath.Base(path), Ext),
			Path: path,
		}
		if err := ValidateFile(path); err != nil {
			res.Errors = flatten(err)
		} else {
			res.Valid = true
		}

		report.Total++
		if res.Valid {
			report.Valid++
		} else {
			report.Invalid++
		}
		report.Files = append(report.Files, res)
	}

	d.logger.Debug("validation complete", "total", report.Total, "invalid", report.Invalid)
	return report, nil
}

// ValidateFile strictly loads and validates a single mode file.
func ValidateFile(path string) error {
	def, err := mode.LoadDefinition(path)
	if err != nil {
		return err
	}
	return mode.Validate(def, filepath.Base(path))
}

// flatten expands joined errors into one message per problem.
func flatten(err error) []string {
	var out []string
	var walk func(error)
	walk = func(e error) {
		if multi, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range multi.Unwrap() {
				walk(inner)
			}
			return
		}
		if !errors.Is(e, mode.ErrInvalidDefinition) {
			out = append(out, e.Error())
		}
	}
	walk(err)
	return out
}
