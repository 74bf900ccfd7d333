// Package normalize puts registrant input into the canonical form used for
// submission and lookup, so the same person typed twice matches.
package normalize

import (
	"strings"
	"unicode"
)

// Name trims and collapses runs of whitespace. Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Phone removes spaces, dashes, dots and parentheses. A leading + is kept.
func Phone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-', r == '.', r == '(', r == ')':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Username lower-cases and trims an admin username.
func Username(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Query trims a search box value.
func Query(s string) string {
	return strings.TrimSpace(s)
}
