package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is used for passenger names and family group labels.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// IsBlank reports whether s has no content once whitespace is trimmed.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
