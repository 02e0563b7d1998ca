package cmd

import "strings"

// Quote escapes s for safe use as a single shell word.
// It wraps the value in single quotes and escapes embedded single quotes:
//
//	it's  ->  'it'\''s'
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}
