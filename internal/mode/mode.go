// Package mode defines the mode model shared by discovery, ordering and
// synchronization: the category taxonomy, the on-disk mode definition
// schema and its validation rules.
package mode

import "fmt"

// Category is the coarse grouping used for default ordering.
type Category string

// Known categories, in default precedence order.
const (
	CategoryCore        Category = "core"
	CategoryEnhanced    Category = "enhanced"
	CategorySpecialized Category = "specialized"
	CategoryDiscovered  Category = "discovered"
)

// String returns the category as a string.
func (c Category) String() string {
	return string(c)
}

// IsValid returns true if this is a known category.
func (c Category) IsValid() bool {
	switch c {
	case CategoryCore, CategoryEnhanced, CategorySpecialized, CategoryDiscovered:
		return true
	default:
		return false
	}
}

// AllCategories returns every category in default precedence order
// (core → enhanced → specialized → discovered).
func AllCategories() []Category {
	return []Category{CategoryCore, CategoryEnhanced, CategorySpecialized, CategoryDiscovered}
}

// ParseCategory converts a raw name into a Category.
func ParseCategory(name string) (Category, error) {
	c := Category(name)
	if !c.IsValid() {
		return "", fmt.Errorf("mode: unknown category %q (valid: core, enhanced, specialized, discovered)", name)
	}
	return c, nil
}

// CategoryInfo is display metadata for a category.
type CategoryInfo struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// Info returns display metadata for the category.
func (c Category) Info() CategoryInfo {
	switch c {
	case CategoryCore:
		return CategoryInfo{Name: "Core Workflow", Icon: "🏗️", Description: "Fundamental development operations"}
	case CategoryEnhanced:
		return CategoryInfo{Name: "Enhanced Variants", Icon: "💻+", Description: "Extended functionality variants"}
	case CategorySpecialized:
		return CategoryInfo{Name: "Specialized Tools", Icon: "🔧", Description: "Specific utilities and tools"}
	case CategoryDiscovered:
		return CategoryInfo{Name: "Discovered", Icon: "📋", Description: "Additional modes found"}
	default:
		return CategoryInfo{Name: string(c)}
	}
}

// Mode is a discovered mode as seen by the ordering logic. Name and
// Description are carried for display only.
type Mode struct {
	Slug        string   `json:"slug"`
	Category    Category `json:"category"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
}
