package ordering

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/flemzord/modesync/internal/mode"
)

// Result is the outcome of a resolution.
type Result struct {
	// Order is the final sequence of mode slugs: no duplicates, no
	// excluded slugs, priority modes first.
	Order []string `json:"order"`

	// Warnings lists config references that were ignored.
	Warnings []ReferenceWarning `json:"warnings,omitempty"`
}

// curated holds the hand-authored baseline used by the strategic strategy.
var curated = map[mode.Category][]string{
	mode.CategoryCore:        {"code", "architect", "debug", "ask", "orchestrator", "docs"},
	mode.CategorySpecialized: {"prompt-enhancer", "prompt-enhancer-isolated", "conport-maintenance"},
	mode.CategoryEnhanced:    {"code-enhanced"},
}

// strategicCategories is the category precedence of the strategic baseline.
var strategicCategories = []mode.Category{
	mode.CategoryCore,
	mode.CategorySpecialized,
	mode.CategoryEnhanced,
	mode.CategoryDiscovered,
}

// Validate checks cfg without looking at any discovered mode. Every
// problem is reported; each one is a *ConfigurationError.
func Validate(cfg Config) error {
	var errs []error

	s := cfg.strategy()
	if !s.IsValid() {
		errs = append(errs, &ConfigurationError{
			Field:  "strategy",
			Reason: fmt.Sprintf("unknown strategy %q (valid: %s)", s, joinStrategies()),
		})
	}
	if s == StrategyCustom && len(cfg.CustomOrder) == 0 {
		errs = append(errs, &ConfigurationError{
			Field:  "custom_order",
			Reason: "custom strategy requires a non-empty custom_order",
		})
	}

	switch cfg.withinCategorySort() {
	case SortAlphabetical, SortManual:
	default:
		errs = append(errs, &ConfigurationError{
			Field:  "within_category_sort",
			Reason: fmt.Sprintf("unknown sort %q (valid: alphabetical, manual)", cfg.WithinCategorySort),
		})
	}

	// Category lists only drive the category strategy. Other strategies
	// ignore them, and check reports unknown names as warnings.
	if s == StrategyCategory {
		for _, c := range unknownCategories(cfg.CategoryOrder) {
			errs = append(errs, &ConfigurationError{
				Field:  "category_order",
				Reason: fmt.Sprintf("unknown category %q", c),
			})
		}
		for _, c := range unknownCategories(manualKeys(cfg.ManualCategoryOrder)) {
			errs = append(errs, &ConfigurationError{
				Field:  "manual_category_order",
				Reason: fmt.Sprintf("unknown category %q", c),
			})
		}
	}

	return errors.Join(errs...)
}

func unknownCategories(list []mode.Category) []mode.Category {
	var out []mode.Category
	for _, c := range list {
		if !c.IsValid() {
			out = append(out, c)
		}
	}
	return out
}

// manualKeys returns the categories of m, sorted.
func manualKeys(m map[mode.Category][]string) []mode.Category {
	keys := make([]mode.Category, 0, len(m))
	for c := range m {
		keys = append(keys, c)
	}
	slices.Sort(keys)
	return keys
}

// Resolve orders modes according to cfg. It is a pure function: the same
// inputs always produce the same Result, and neither input is modified.
func Resolve(modes []mode.Mode, cfg Config) (Result, error) {
	if err := Validate(cfg); err != nil {
		return Result{}, err
	}

	idx := newIndex(modes)

	var base []string
	switch cfg.strategy() {
	case StrategyStrategic:
		base = strategicOrder(idx)
	case StrategyAlphabetical:
		base = alphabeticalOrder(idx)
	case StrategyCategory:
		base = categoryOrder(idx, cfg)
	case StrategyCustom:
		base = customOrder(idx, cfg.CustomOrder)
	}

	return Result{
		Order:    finalize(base, cfg, idx),
		Warnings: check(idx, cfg),
	}, nil
}

// Check returns the reference warnings Resolve would report, without
// resolving.
func Check(modes []mode.Mode, cfg Config) []ReferenceWarning {
	return check(newIndex(modes), cfg)
}

// index is a lookup view over the discovered modes.
type index struct {
	category   map[string]mode.Category
	byCategory map[mode.Category][]string
	all        []string
}

func newIndex(modes []mode.Mode) *index {
	idx := &index{
		category:   make(map[string]mode.Category, len(modes)),
		byCategory: make(map[mode.Category][]string),
	}
	for _, m := range modes {
		if _, dup := idx.category[m.Slug]; dup || m.Slug == "" {
			continue
		}
		c := m.Category
		if !c.IsValid() {
			c = mode.CategoryDiscovered
		}
		idx.category[m.Slug] = c
		idx.byCategory[c] = append(idx.byCategory[c], m.Slug)
		idx.all = append(idx.all, m.Slug)
	}
	for c := range idx.byCategory {
		slices.Sort(idx.byCategory[c])
	}
	slices.Sort(idx.all)
	return idx
}

func (idx *index) has(slug string) bool {
	_, ok := idx.category[slug]
	return ok
}

// prefixed returns the slugs of category c listed in prefix (in that
// order, first occurrence only) followed by the remaining ones
// alphabetically.
func (idx *index) prefixed(c mode.Category, prefix []string) []string {
	members := idx.byCategory[c]
	out := make([]string, 0, len(members))
	seen := make(map[string]struct{}, len(members))
	for _, slug := range prefix {
		if _, dup := seen[slug]; dup || idx.category[slug] != c {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	for _, slug := range members {
		if _, ok := seen[slug]; !ok {
			out = append(out, slug)
		}
	}
	return out
}

func strategicOrder(idx *index) []string {
	var out []string
	for _, c := range strategicCategories {
		out = append(out, idx.prefixed(c, curated[c])...)
	}
	return out
}

func alphabeticalOrder(idx *index) []string {
	var out []string
	for _, c := range mode.AllCategories() {
		out = append(out, idx.byCategory[c]...)
	}
	return out
}

func categoryOrder(idx *index, cfg Config) []string {
	var out []string
	manual := cfg.withinCategorySort() == SortManual
	for _, c := range effectiveCategoryOrder(cfg.CategoryOrder) {
		if manual {
			out = append(out, idx.prefixed(c, cfg.ManualCategoryOrder[c])...)
			continue
		}
		out = append(out, idx.byCategory[c]...)
	}
	return out
}

// effectiveCategoryOrder returns the listed categories (first occurrence
// only) followed by every omitted category in default order.
func effectiveCategoryOrder(listed []mode.Category) []mode.Category {
	out := make([]mode.Category, 0, len(mode.AllCategories()))
	for _, c := range listed {
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	for _, c := range mode.AllCategories() {
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func customOrder(idx *index, custom []string) []string {
	out := make([]string, 0, len(idx.all))
	seen := make(map[string]struct{}, len(idx.all))
	for _, slug := range custom {
		if _, dup := seen[slug]; dup || !idx.has(slug) {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	for _, slug := range idx.all {
		if _, ok := seen[slug]; !ok {
			out = append(out, slug)
		}
	}
	return out
}

// finalize applies the common post-processing: exclude, then prioritize,
// then deduplicate.
func finalize(base []string, cfg Config, idx *index) []string {
	excluded := make(map[string]struct{}, len(cfg.ExcludeModes))
	for _, slug := range cfg.ExcludeModes {
		excluded[slug] = struct{}{}
	}

	out := make([]string, 0, len(base))
	seen := make(map[string]struct{}, len(base))
	add := func(slug string) {
		if _, skip := excluded[slug]; skip {
			return
		}
		if _, dup := seen[slug]; dup {
			return
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}

	for _, slug := range cfg.PriorityModes {
		if idx.has(slug) {
			add(slug)
		}
	}
	for _, slug := range base {
		add(slug)
	}
	return out
}

func check(idx *index, cfg Config) []ReferenceWarning {
	var warnings []ReferenceWarning
	seen := make(map[ReferenceWarning]struct{})
	warn := func(field, slug, reason string) {
		w := ReferenceWarning{Field: field, Slug: slug, Reason: reason}
		if _, dup := seen[w]; dup {
			return
		}
		seen[w] = struct{}{}
		warnings = append(warnings, w)
	}
	const notFound = "is not a discovered mode"

	excluded := make(map[string]struct{}, len(cfg.ExcludeModes))
	for _, slug := range cfg.ExcludeModes {
		excluded[slug] = struct{}{}
	}

	for _, slug := range cfg.PriorityModes {
		switch _, isExcluded := excluded[slug]; {
		case !idx.has(slug):
			warn("priority_modes", slug, notFound)
		case isExcluded:
			warn("priority_modes", slug, "is also excluded")
		}
	}
	for _, slug := range cfg.ExcludeModes {
		if !idx.has(slug) {
			warn("exclude_modes", slug, notFound)
		}
	}

	const unknownCategory = "is not a known category"
	for _, c := range unknownCategories(cfg.CategoryOrder) {
		warn("category_order", string(c), unknownCategory)
	}
	for _, c := range unknownCategories(manualKeys(cfg.ManualCategoryOrder)) {
		warn("manual_category_order", string(c), unknownCategory)
	}

	for _, c := range mode.AllCategories() {
		entries, ok := cfg.ManualCategoryOrder[c]
		if !ok {
			continue
		}
		if len(cfg.CategoryOrder) > 0 && !slices.Contains(cfg.CategoryOrder, c) {
			warn("manual_category_order", string(c), "category is not listed in category_order")
		}
		for _, slug := range entries {
			actual, found := idx.category[slug]
			switch {
			case !found:
				warn("manual_category_order."+string(c), slug, notFound)
			case actual != c:
				warn("manual_category_order."+string(c), slug, "belongs to category "+string(actual))
			}
		}
	}

	for _, slug := range cfg.CustomOrder {
		if !idx.has(slug) {
			warn("custom_order", slug, notFound)
		}
	}

	return warnings
}

func joinStrategies() string {
	names := make([]string, 0, len(Strategies()))
	for _, s := range Strategies() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
