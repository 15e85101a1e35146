package mode

import "regexp"

// rule maps a slug pattern to a category.
type rule struct {
	category Category
	pattern  *regexp.Regexp
}

// Categorizer assigns categories to slugs by naming convention. Rules are
// evaluated in order; the first match wins and unmatched slugs fall into
// CategoryDiscovered.
type Categorizer struct {
	rules []rule
}

// NewCategorizer returns a Categorizer with the default naming rules.
func NewCategorizer() *Categorizer {
	return &Categorizer{rules: []rule{
		{CategoryCore, regexp.MustCompile(`^(code|architect|debug|ask|orchestrator|docs)$`)},
		{CategoryEnhanced, regexp.MustCompile(`-enhanced$`)},
		{CategoryEnhanced, regexp.MustCompile(`-plus$`)},
		{CategorySpecialized, regexp.MustCompile(`-maintenance$`)},
		{CategorySpecialized, regexp.MustCompile(`-enhancer`)},
		{CategorySpecialized, regexp.MustCompile(`-creator$`)},
		{CategorySpecialized, regexp.MustCompile(`-auditor$`)},
	}}
}

// Categorize returns the category for slug.
func (c *Categorizer) Categorize(slug string) Category {
	for _, r := range c.rules {
		if r.pattern.MatchString(slug) {
			return r.category
		}
	}
	return CategoryDiscovered
}
