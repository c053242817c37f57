// Package text provides the canonicalization and similarity primitives used
// for grouping, deduplication, and keyword classification.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFKD and removes combining diacritical marks, so
// "Café" folds to "Cafe" before the ASCII filter runs.
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes arbitrary text for comparison: lowercase, fold
// Latin diacritics, replace anything outside [a-z0-9] with a space, and
// collapse runs of whitespace. Total over any input; "" maps to "".
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	folded, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		// The transform chain cannot fail on valid UTF-8; fall back to the
		// lowercased input for anything it rejects.
		folded = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(folded))
	space := true // swallow leading whitespace
	for _, r := range folded {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			space = false
		default:
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// Fold is the token-destroying variant of Normalize: same canonicalization
// but every non-alphanumeric character is removed instead of spaced, e.g.
// "Café Dupont & Co." → "cafedupontco".
func Fold(s string) string {
	normalized := Normalize(s)
	if normalized == "" {
		return ""
	}
	return strings.ReplaceAll(normalized, " ", "")
}
