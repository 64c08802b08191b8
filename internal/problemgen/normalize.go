package problemgen

import "strings"

// Normalize trims, lowercases and collapses inner whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// EqualFoldTrim reports whether a and b match after Normalize.
func EqualFoldTrim(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
