package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes text for comparison: NFKC unicode
// normalization, lowercase, hyphens/underscores/slashes/commas mapped
// to spaces, every other non-alphanumeric rune dropped, whitespace runs
// collapsed, leading and trailing space trimmed.
//
// It is applied exactly once to every stored term name at load time and
// once to the query text per request, so scoring is case and
// punctuation insensitive. Pure and deterministic.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))

	lastSpace := true // swallows leading whitespace
	for _, r := range text {
		switch {
		case r == '-' || r == '_' || r == '/' || r == ',':
			r = ' '
		case unicode.IsSpace(r):
			r = ' '
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			continue
		}

		if r == ' ' {
			if lastSpace {
				continue
			}
			lastSpace = true
		} else {
			lastSpace = false
		}
		b.WriteRune(r)
	}

	return strings.TrimRight(b.String(), " ")
}
