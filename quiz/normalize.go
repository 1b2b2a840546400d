package quiz

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes accented Latin letters and removes the combining
// marks, so "Bérn" folds to "bern" and "Curaçao" to "curacao".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes an answer for comparison: lowercase, diacritics
// folded to their base letter, punctuation dashes and commas treated as
// spaces, whitespace collapsed.
func Normalize(s string) string {
	s = strings.ToLower(s)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case '-', '.', ',':
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
