package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidEnvModes are the accepted [env] tool activation modes.
var ValidEnvModes = []string{EnvAuto, EnvAlways, EnvNever}

// Valid theme settings.
var (
	ValidThemeNames = []string{"default", "none", "nord", "dracula"}
	ValidThemeModes = []string{"auto", "light", "dark"}
)

// validateEnum checks that value (if non-empty) is one of the allowed values.
// Returns a formatted error mentioning the field name and allowed options.
func validateEnum(value, field string, allowed []string) error {
	if value == "" {
		return nil
	}
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s %q: must be %s", field, value, FormatOptions(allowed))
	}
	return nil
}

// FormatOptions formats a list of allowed values for error messages.
// E.g., ["a", "b", "c"] -> `"a", "b", or "c"`
func FormatOptions(opts []string) string {
	quoted := make([]string, len(opts))
	for i, o := range opts {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	if len(quoted) <= 2 {
		return strings.Join(quoted, " or ")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}
