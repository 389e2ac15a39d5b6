package validation

import "github.com/microcosm-cc/bluemonday"

var strict = bluemonday.StrictPolicy()

// Sanitize strips markup from free text and escapes HTML special
// characters before the text is stored.
func Sanitize(s string) string {
	return strict.Sanitize(s)
}
