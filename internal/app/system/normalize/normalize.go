// Package normalize provides canonical forms for user-supplied identity
// fields so comparisons and lookups behave consistently across stores.
package normalize

import "strings"

// Name trims and collapses interior whitespace runs to single spaces.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Email lowercases and trims an email address for case-insensitive lookup.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// LoginID lowercases and trims a login identifier.
func LoginID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Role lowercases and trims a role string.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a status string; empty means "active".
func Status(s string) string {
	st := strings.ToLower(strings.TrimSpace(s))
	if st == "" {
		return "active"
	}
	return st
}
