package ordering

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every *ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("ordering: invalid configuration")

// ConfigurationError reports an invalid or missing field for the selected
// strategy. It is fatal: no order is produced.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("ordering: invalid %s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// ReferenceWarning reports a config entry that does not match the
// discovered modes. Resolution proceeds without it.
type ReferenceWarning struct {
	Field  string `json:"field"`
	Slug   string `json:"slug"`
	Reason string `json:"reason"`
}

func (w ReferenceWarning) String() string {
	return fmt.Sprintf("%s: %q %s", w.Field, w.Slug, w.Reason)
}
