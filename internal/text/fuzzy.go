package text

// diceCoefficient scores two already-normalized strings by character-bigram
// multiset overlap: 2*|intersection| / (|bigrams(a)| + |bigrams(b)|).
// Repeated bigrams count once per occurrence, decremented as they match.
// Identical strings score 1; strings too short to produce a bigram score 0
// against everything else.
func diceCoefficient(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	if len(a) < 2 || len(b) < 2 {
		return 0
	}

	bigrams := make(map[string]int, len(a)-1)
	for i := 0; i < len(a)-1; i++ {
		bigrams[a[i:i+2]]++
	}

	intersection := 0
	for i := 0; i < len(b)-1; i++ {
		gram := b[i : i+2]
		if bigrams[gram] > 0 {
			bigrams[gram]--
			intersection++
		}
	}

	return 2 * float64(intersection) / float64(len(a)+len(b)-2)
}

// Score computes the Dice bigram similarity of two strings after
// normalization. The result is always in [0, 1].
func Score(query, candidate string) float64 {
	return diceCoefficient(Normalize(query), Normalize(candidate))
}

// BestMatch scans candidates for the highest Score against query. Ties go to
// the earliest candidate. ok is false when the best score is strictly below
// threshold; the best candidate and its score are returned either way so
// callers can log near-misses.
func BestMatch(query string, candidates []string, threshold float64) (match string, score float64, ok bool) {
	normalized := Normalize(query)

	best := ""
	bestScore := 0.0
	for _, candidate := range candidates {
		s := diceCoefficient(normalized, Normalize(candidate))
		if s > bestScore {
			best = candidate
			bestScore = s
		}
	}

	if bestScore < threshold {
		return best, bestScore, false
	}
	return best, bestScore, true
}
