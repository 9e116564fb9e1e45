// Package textnorm is the shared text normalizer applied to catalog fields at
// load time and to OCR output at request time. The two sides must go through
// the same function or field comparisons stop being fair.
package textnorm

import (
	"strings"
	"unicode"
)

// Normalize lowercases s, drops everything outside letters, digits, spaces
// and basic punctuation (- . ,), and collapses whitespace runs to single
// spaces. Pure and idempotent; empty input yields empty output.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-' || r == '.' || r == ',':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens returns the whitespace-separated tokens of the normalized form.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}
