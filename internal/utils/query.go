package utils

import (
	"strings"
	"unicode"
)

// CleanQuery drops whitespace and control characters from a typed line so
// "a b c" and "abc" ask for the same letters. Everything else is kept as is.
func CleanQuery(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// IsCommand reports whether a CLI line is a control command such as ":q".
func IsCommand(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), ":")
}
