package alias

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases text, folds diacritics, and drops every character that
// is not an ASCII letter or digit, so "APT-28", "apt28" and "ap t28" compare
// equal. Actor names and alias keys go through the same function.
func Normalize(text string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, text)
	if err != nil {
		folded = text
	}
	folded = cases.Lower(language.Und).String(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
