// Package htmlsanitize strips unsafe markup from user-supplied rich text
// (company about sections, holder bios, product descriptions).
package htmlsanitize

import (
	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.UGCPolicy()

// Sanitize removes scripts, event handlers, and other unsafe markup while
// keeping common formatting tags.
func Sanitize(s string) string {
	return policy.Sanitize(s)
}

// Strict strips all HTML, leaving plain text. Used for fields that should
// never carry markup (names, positions, contact numbers).
var strict = bluemonday.StrictPolicy()

// StripTags removes every tag from s.
func StripTags(s string) string {
	return strict.Sanitize(s)
}
