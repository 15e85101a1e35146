package discovery

import "github.com/flemzord/modesync/internal/mode"

// Catalog is the result of a discovery pass. Entries are sorted by
// category in default order, then by slug.
type Catalog struct {
	entries []Entry
	bySlug  map[string]int

	// Skipped lists YAML files that were ignored.
	Skipped []Skipped
}

// Modes returns every discovered mode.
func (c *Catalog) Modes() []mode.Mode {
	out := make([]mode.Mode, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Mode
	}
	return out
}

// ByCategory returns the slugs of each category, sorted. Every category is
// present, possibly with an empty list.
func (c *Catalog) ByCategory() map[mode.Category][]string {
	out := make(map[mode.Category][]string, len(mode.AllCategories()))
	for _, cat := range mode.AllCategories() {
		out[cat] = []string{}
	}
	for _, e := range c.entries {
		out[e.Mode.Category] = append(out[e.Mode.Category], e.Mode.Slug)
	}
	return out
}

// Entry returns the discovered file for slug.
func (c *Catalog) Entry(slug string) (Entry, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Count returns the number of discovered modes.
func (c *Catalog) Count() int { return len(c.entries) }
