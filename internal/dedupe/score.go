package dedupe

import "github.com/magic-city-guide/poi-cli/internal/model"

// InfoScore counts how many of the given attributes carry a non-empty value.
// It ranks completeness within a duplicate group and is never meaningful
// across groups.
func InfoScore(r model.Record, attributes []string) int {
	score := 0
	for _, attr := range attributes {
		if r.Has(attr) {
			score++
		}
	}
	return score
}
