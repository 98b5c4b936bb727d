package search

import (
	"unicode/utf8"

	"github.com/hazyhaar/souk-search/pkg/dict"
	"github.com/hbollon/go-edlib"
)

// thresholdTolerance absorbs float error when a similarity lands exactly on
// a threshold, e.g. 1 - 1/5 for a one-edit miss on a five-letter word.
const thresholdTolerance = 1e-9

// Distance is the Levenshtein edit distance between a and b, counted in runes.
func Distance(a, b string) int {
	if a == b {
		return 0
	}
	return edlib.LevenshteinDistance(a, b)
}

// Similarity is 1 - distance/maxLen over the normalized forms of a and b.
// It is 0 when either normalized string is empty.
func Similarity(a, b string) float64 {
	return similarity(dict.Normalize(a), dict.Normalize(b))
}

// similarity works on already-normalized input.
func similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}
	maxLen := max(la, lb)
	return 1 - float64(Distance(a, b))/float64(maxLen)
}

func atLeast(sim, threshold float64) bool {
	return sim >= threshold-thresholdTolerance
}

// above is the strict counterpart of atLeast: a similarity equal to
// threshold, within tolerance, does not pass.
func above(sim, threshold float64) bool {
	return sim > threshold+thresholdTolerance
}
