package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_Identity(t *testing.T) {
	for _, s := range []string{"bbq", "Silver Coin", "pho 280", "ab"} {
		assert.Equal(t, 1.0, Score(s, s), "input %q", s)
	}
}

func TestScore_Symmetry(t *testing.T) {
	pairs := [][2]string{
		{"smokehouse", "smoke house"},
		{"cafe", "café"},
		{"thai kitchen", "pad thai"},
		{"", "anything"},
	}
	for _, p := range pairs {
		assert.Equal(t, Score(p[0], p[1]), Score(p[1], p[0]), "pair %v", p)
	}
}

func TestScore_Bounded(t *testing.T) {
	pairs := [][2]string{
		{"aaaa", "aaaa aaaa"},
		{"abcdef", "uvwxyz"},
		{"a", "a"},
		{"ab", "ba"},
		{"mississippi", "missisippi"},
	}
	for _, p := range pairs {
		s := Score(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0, "pair %v", p)
		assert.LessOrEqual(t, s, 1.0, "pair %v", p)
	}
}

func TestScore_ShortStrings(t *testing.T) {
	// Inputs without a full bigram only match by exact equality.
	assert.Equal(t, 0.0, Score("a", "b"))
	assert.Equal(t, 0.0, Score("a", "abc"))
	assert.Equal(t, 1.0, Score("a", "a"))
	assert.Equal(t, 0.0, Score("", ""))
}

func TestScore_MultisetIntersection(t *testing.T) {
	// "aaa" has bigrams {aa, aa}; "aa" has {aa}. A set intersection would
	// count "aa" twice and overshoot 1.0.
	s := Score("aaa", "aa")
	assert.InDelta(t, 2.0/3.0, s, 1e-9)
}

func TestBestMatch(t *testing.T) {
	candidates := []string{"barbecue", "breakfast", "british"}

	match, score, ok := BestMatch("Best BBQ Barbeque Smokehouse", candidates, 0.25)
	assert.True(t, ok)
	assert.Equal(t, "barbecue", match)
	assert.Greater(t, score, 0.25)
}

func TestBestMatch_BelowThreshold(t *testing.T) {
	match, score, ok := BestMatch("zzzz", []string{"barbecue", "sushi"}, 0.45)
	assert.False(t, ok)
	assert.Empty(t, match)
	assert.Equal(t, 0.0, score)
}

func TestBestMatch_FirstWinsTies(t *testing.T) {
	// "ab" and "cd" each share exactly one bigram with "ab cd", so they
	// score identically; the first encountered must win.
	match, score, ok := BestMatch("ab cd", []string{"ab", "cd"}, 0.1)
	assert.True(t, ok)
	assert.Equal(t, "ab", match)
	assert.InDelta(t, 0.4, score, 1e-9)
}

func TestBestMatch_NoCandidates(t *testing.T) {
	match, score, ok := BestMatch("anything", nil, 0.1)
	assert.False(t, ok)
	assert.Empty(t, match)
	assert.Equal(t, 0.0, score)
}
