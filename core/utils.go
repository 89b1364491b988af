package core

import "strings"

// CleanString strips surrounding whitespace from s, lowering the result when
// asked. Emails and other lookup keys are normalized with it before storage
// and comparison.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		s = strings.ToLower(s)
	}
	return s
}
