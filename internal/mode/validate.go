package mode

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ErrInvalidDefinition is wrapped by every error returned from Validate.
var ErrInvalidDefinition = errors.New("mode: invalid definition")

// ValidGroups lists the plain tool group names a mode may declare.
var ValidGroups = []string{"read", "edit", "browser", "command", "mcp"}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidSlug reports whether slug is lowercase alphanumeric with single
// hyphens between words.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// Validate checks a definition against the mode schema. It reports every
// problem at once; filename is used in messages only.
func Validate(def *Definition, filename string) error {
	var errs []error

	required := []struct {
		field string
		value string
	}{
		{"slug", def.Slug},
		{"name", def.Name},
		{"roleDefinition", def.RoleDefinition},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Errorf("%s: field %q is required and cannot be empty", filename, r.field))
		}
	}

	if def.Slug != "" && !ValidSlug(def.Slug) {
		errs = append(errs, fmt.Errorf("%s: invalid slug %q: slugs must be lowercase alphanumeric with hyphens", filename, def.Slug))
	}

	if len(def.Groups) == 0 {
		errs = append(errs, fmt.Errorf("%s: groups array cannot be empty", filename))
	}
	for i, g := range def.Groups {
		if err := validateGroup(g); err != nil {
			errs = append(errs, fmt.Errorf("%s: groups[%d]: %w", filename, i, err))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidDefinition, errors.Join(errs...))
}

func validateGroup(g Group) error {
	if g.shapeErr != nil {
		return g.shapeErr
	}
	if g.Restriction != nil {
		if g.Name != "edit" {
			return fmt.Errorf("restricted group must start with \"edit\", got %q", g.Name)
		}
		if _, err := regexp.Compile(g.Restriction.FileRegex); err != nil {
			return fmt.Errorf("invalid fileRegex %q: %w", g.Restriction.FileRegex, err)
		}
		return nil
	}
	if !slices.Contains(ValidGroups, g.Name) {
		return fmt.Errorf("invalid group %q (valid: %s)", g.Name, strings.Join(ValidGroups, ", "))
	}
	return nil
}
