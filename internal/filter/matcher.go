package filter

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold normalises s for case-insensitive comparison.
// A Caser keeps state, so each call gets its own.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// MatchesQuery reports whether the folded query is a substring of any field.
// A blank query matches everything.
func MatchesQuery(query string, fields ...string) bool {
	q := Fold(query)
	if q == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(Fold(field), q) {
			return true
		}
	}
	return false
}

// SameEmail compares two addresses ignoring case and surrounding space.
func SameEmail(a, b string) bool {
	fa := Fold(a)
	return fa != "" && fa == Fold(b)
}
