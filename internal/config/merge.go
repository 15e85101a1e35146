package config

import (
	"strings"

	"github.com/flemzord/modesync/internal/mode"
	"github.com/flemzord/modesync/internal/ordering"
)

// Overrides holds ordering settings given on the command line. Zero values
// mean "not set".
type Overrides struct {
	Strategy           ordering.Strategy
	CategoryOrder      []mode.Category
	WithinCategorySort ordering.SortMode
	CustomOrder        []string
	PriorityModes      []string
	ExcludeModes       []string
}

// IsZero reports whether no override is set.
func (o Overrides) IsZero() bool {
	return o.Strategy == "" && o.WithinCategorySort == "" &&
		len(o.CategoryOrder) == 0 && len(o.CustomOrder) == 0 &&
		len(o.PriorityModes) == 0 && len(o.ExcludeModes) == 0
}

// Normalized returns a copy of o with the strategy, the sort mode and the
// category names trimmed and lowercased, so that every entry point accepts
// "Alphabetical" as well as "alphabetical".
func (o Overrides) Normalized() Overrides {
	o.Strategy = ordering.Strategy(normalizeName(string(o.Strategy)))
	o.WithinCategorySort = ordering.SortMode(normalizeName(string(o.WithinCategorySort)))
	if len(o.CategoryOrder) > 0 {
		cats := make([]mode.Category, len(o.CategoryOrder))
		for i, c := range o.CategoryOrder {
			cats[i] = mode.Category(normalizeName(string(c)))
		}
		o.CategoryOrder = cats
	}
	return o
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Merge combines a file configuration with command-line overrides. Set
// scalars and lists replace the file value, except that priority modes are
// the override entries followed by file entries not already listed, and
// exclusions are the union of both. base is not modified.
func Merge(base ordering.Config, o Overrides) ordering.Config {
	o = o.Normalized()
	out := base
	out.PriorityModes = clone(base.PriorityModes)
	out.ExcludeModes = clone(base.ExcludeModes)
	out.CategoryOrder = clone(base.CategoryOrder)
	out.CustomOrder = clone(base.CustomOrder)

	if o.Strategy != "" {
		out.Strategy = o.Strategy
	}
	if o.WithinCategorySort != "" {
		out.WithinCategorySort = o.WithinCategorySort
	}
	if len(o.CategoryOrder) > 0 {
		out.CategoryOrder = clone(o.CategoryOrder)
	}
	if len(o.CustomOrder) > 0 {
		out.CustomOrder = clone(o.CustomOrder)
	}
	if len(o.PriorityModes) > 0 {
		out.PriorityModes = union(o.PriorityModes, base.PriorityModes)
	}
	if len(o.ExcludeModes) > 0 {
		out.ExcludeModes = union(base.ExcludeModes, o.ExcludeModes)
	}
	return out
}

// ParseList splits a comma-separated flag value, trimming blanks and
// dropping empty entries.
func ParseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseCategories is ParseList for category names. Names are not checked
// here; ordering.Validate reports unknown ones.
func ParseCategories(s string) []mode.Category {
	list := ParseList(s)
	if len(list) == 0 {
		return nil
	}
	out := make([]mode.Category, len(list))
	for i, name := range list {
		out[i] = mode.Category(normalizeName(name))
	}
	return out
}

func union(first, second []string) []string {
	out := make([]string, 0, len(first)+len(second))
	seen := make(map[string]struct{}, len(first)+len(second))
	for _, list := range [][]string{first, second} {
		for _, s := range list {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

func clone[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append([]T(nil), s...)
}
