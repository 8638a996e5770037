package textutil

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the Unicode case-folded form of s. Folding is stronger than
// lower-casing: "STRASSE" and "straße" fold to the same string.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	// cases.Caser keeps state between calls, so each call gets its own.
	return cases.Fold().String(s)
}

// ContainsFold reports whether folded haystack contains folded needle.
// An empty needle always matches.
func ContainsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(Fold(haystack), Fold(needle))
}
