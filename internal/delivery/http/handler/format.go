package handler

import (
	"unicode"
	"unicode/utf8"
)

// capitalize upper-cases the first letter of an error message for display.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
