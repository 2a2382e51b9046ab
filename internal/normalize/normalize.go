// Package normalize prepares Arabic and Persian text for indexing and
// search. Recited texts carry full harakat (fatha, kasra, shadda, ...);
// queries typed on a phone almost never do, so both sides are reduced to
// the same bare form before matching.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// arabicTatweel is the kashida used to stretch words in calligraphic
// layouts. It carries no meaning and is stripped like a diacritic.
const arabicTatweel = 'ـ'

var stripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.Predicate(func(r rune) bool { return r == arabicTatweel })),
	norm.NFC,
)

// Strip removes harakat, other combining marks and tatweel from s. On a
// transform failure the input is returned unchanged; search then simply
// matches less, which beats dropping the text.
func Strip(s string) string {
	out, _, err := transform.String(stripper, s)
	if err != nil {
		return s
	}
	return out
}

// Fold lowercases and strips s for use as a match key. Arabic script has
// no case, but titles and IDs can carry Latin text.
func Fold(s string) string {
	return strings.ToLower(Strip(s))
}
