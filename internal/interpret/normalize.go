// Package interpret turns free-text chat order lines into structured order
// items by fuzzy-matching them against a store menu snapshot.
package interpret

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold strips diacritics and lowercases, e.g. "Crème Brûlée" -> "creme brulee".
func Fold(s string) string {
	result, _, err := transform.String(stripAccents, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return result
}

// Normalize folds text into comparable form and splits it on literal single
// spaces. Repeated spaces yield empty words on purpose: topping modifiers are
// looked up by word position, so indices must line up with the raw text.
func Normalize(text string) []string {
	return strings.Split(Fold(text), " ")
}
