// Package ordering resolves the order in which discovered modes are
// written to a target configuration. Resolution is a pure function of the
// discovered modes and a Config: one of four strategies produces a base
// order, then exclusions, priorities and deduplication are applied.
package ordering

import "github.com/flemzord/modesync/internal/mode"

// Strategy selects the base ordering algorithm.
type Strategy string

// Available strategies.
const (
	StrategyStrategic    Strategy = "strategic"
	StrategyAlphabetical Strategy = "alphabetical"
	StrategyCategory     Strategy = "category"
	StrategyCustom       Strategy = "custom"
)

// Strategies returns every strategy name.
func Strategies() []Strategy {
	return []Strategy{StrategyStrategic, StrategyAlphabetical, StrategyCategory, StrategyCustom}
}

// IsValid returns true if this is a known strategy.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyStrategic, StrategyAlphabetical, StrategyCategory, StrategyCustom:
		return true
	default:
		return false
	}
}

// Description returns a human-readable summary of the strategy.
func (s Strategy) Description() string {
	switch s {
	case StrategyStrategic:
		return "Strategic ordering (curated core, specialized and enhanced modes, then discovered modes alphabetically)"
	case StrategyAlphabetical:
		return "Alphabetical ordering within categories (core → enhanced → specialized → discovered)"
	case StrategyCategory:
		return "Category-based ordering with configurable category precedence and within-category sorting"
	case StrategyCustom:
		return "Custom explicit ordering with remaining modes appended alphabetically"
	default:
		return "unknown strategy"
	}
}

// SortMode selects how modes are ordered inside a category.
type SortMode string

// Within-category sort modes.
const (
	SortAlphabetical SortMode = "alphabetical"
	SortManual       SortMode = "manual"
)

// Config drives a resolution. Zero values fall back to the defaults
// documented on each field.
type Config struct {
	// Strategy defaults to StrategyStrategic.
	Strategy Strategy `yaml:"strategy,omitempty" json:"strategy,omitempty"`

	// PriorityModes are moved to the front, in this order.
	PriorityModes []string `yaml:"priority_modes,omitempty" json:"priority_modes,omitempty"`

	// ExcludeModes are never written.
	ExcludeModes []string `yaml:"exclude_modes,omitempty" json:"exclude_modes,omitempty"`

	// CategoryOrder is used by StrategyCategory only. Omitted categories
	// follow in default order.
	CategoryOrder []mode.Category `yaml:"category_order,omitempty" json:"category_order,omitempty"`

	// WithinCategorySort defaults to SortAlphabetical.
	WithinCategorySort SortMode `yaml:"within_category_sort,omitempty" json:"within_category_sort,omitempty"`

	// ManualCategoryOrder gives an explicit prefix per category when
	// WithinCategorySort is SortManual.
	ManualCategoryOrder map[mode.Category][]string `yaml:"manual_category_order,omitempty" json:"manual_category_order,omitempty"`

	// CustomOrder is used by StrategyCustom only.
	CustomOrder []string `yaml:"custom_order,omitempty" json:"custom_order,omitempty"`
}

// DefaultConfig returns a Config with every default made explicit.
func DefaultConfig() Config {
	return Config{
		Strategy:           StrategyStrategic,
		CategoryOrder:      mode.AllCategories(),
		WithinCategorySort: SortAlphabetical,
	}
}

func (c Config) strategy() Strategy {
	if c.Strategy == "" {
		return StrategyStrategic
	}
	return c.Strategy
}

func (c Config) withinCategorySort() SortMode {
	if c.WithinCategorySort == "" {
		return SortAlphabetical
	}
	return c.WithinCategorySort
}
