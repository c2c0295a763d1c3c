package model

import "strings"

// FormatName canonicalizes a user name for comparison and search.
// Surrounding whitespace is removed and the result is lowercased.
// Stored names keep their original form.
func FormatName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
