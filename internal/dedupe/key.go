// Package dedupe groups records that denote the same real-world place and
// merges each group into one record of maximal completeness.
package dedupe

import (
	"regexp"
	"strings"

	"github.com/magic-city-guide/poi-cli/internal/model"
	"github.com/magic-city-guide/poi-cli/internal/text"
)

// fillerTokens are generic business-type words and cuisine descriptors that
// are dropped before name comparison, so that "Silver Coin" and "Silver Coin
// Indian Grill" collapse to the same key.
var fillerTokens = map[string]struct{}{
	"restaurant": {},
	"grill":      {},
	"kitchen":    {},
	"bar":        {},
	"cafe":       {},
	"caf":        {},
	"eatery":     {},
	"diner":      {},
	"house":      {},
	"co":         {},
	"company":    {},
	"joint":      {},
	"spot":       {},
	"pub":        {},
	"bistro":     {},

	"indian":        {},
	"thai":          {},
	"chinese":       {},
	"japanese":      {},
	"sushi":         {},
	"pizza":         {},
	"bbq":           {},
	"barbeque":      {},
	"seafood":       {},
	"steak":         {},
	"steakhouse":    {},
	"kebab":         {},
	"kabab":         {},
	"mediterranean": {},
	"mexican":       {},
	"latin":         {},
	"american":      {},
	"asian":         {},
	"fusion":        {},
	"taqueria":      {},
	"cantina":       {},
	"pizzeria":      {},
	"smokehouse":    {},
	"taproom":       {},
	"korean":        {},
	"biryani":       {},
	"biryanis":      {},
	"cuisine":       {},
}

// NameKey derives the grouping key for an entity name: normalize, drop
// filler tokens, and concatenate the survivors. When stripping leaves
// nothing, the key falls back to the folded full name so a non-empty name
// never produces an empty key.
func NameKey(name string) string {
	tokens := strings.Fields(text.Normalize(name))

	kept := tokens[:0]
	for _, tok := range tokens {
		if _, filler := fillerTokens[tok]; !filler {
			kept = append(kept, tok)
		}
	}

	if len(kept) == 0 {
		return text.Fold(name)
	}
	return strings.Join(kept, "")
}

// addressAbbrevs is the ordered whole-word replacement table applied before
// an address is folded into a key. Whole-word matching keeps "Westlake"
// from becoming "Wlake".
var addressAbbrevs = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`\bstreet\b`), "st"},
	{regexp.MustCompile(`\bavenue\b`), "ave"},
	{regexp.MustCompile(`\broad\b`), "rd"},
	{regexp.MustCompile(`\bdrive\b`), "dr"},
	{regexp.MustCompile(`\bboulevard\b`), "blvd"},
	{regexp.MustCompile(`\bhighway\b`), "hwy"},
	{regexp.MustCompile(`\bnorth\b`), "n"},
	{regexp.MustCompile(`\bsouth\b`), "s"},
	{regexp.MustCompile(`\beast\b`), "e"},
	{regexp.MustCompile(`\bwest\b`), "w"},
}

// AddressKey derives the grouping key for a street address: lowercase,
// expand/collapse common abbreviations as whole words, then strip everything
// non-alphanumeric. "100 North Street" and "100 N. St" collapse to "100nst".
func AddressKey(address string) string {
	lower := strings.ToLower(address)
	for _, abbr := range addressAbbrevs {
		lower = abbr.pattern.ReplaceAllString(lower, abbr.repl)
	}
	return text.Fold(lower)
}

// KeyFunc derives a grouping key from a record. Records with equal keys are
// treated as the same entity.
type KeyFunc func(model.Record) string

// ByName keys records on the filler-stripped name alone.
func ByName(r model.Record) string {
	return NameKey(r.Get(model.FieldName))
}

// ByNameAddress keys records on name plus address. This is the stricter
// policy used when merging a curated sheet, where distinct locations of the
// same chain must stay separate.
func ByNameAddress(r model.Record) string {
	return NameKey(r.Get(model.FieldName)) + "|" + AddressKey(r.Get(model.FieldAddress))
}
