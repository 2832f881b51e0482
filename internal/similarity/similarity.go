// Package similarity provides the string similarity metric used for
// file-to-track matching and cluster formation.
//
// Score satisfies the scoring contract the rest of the tagger relies on:
// Score(x, x) == 1, Score(a, b) == Score(b, a), Score("", "") == 1, and
// Score("", nonempty) == 0. Between those anchors it degrades gracefully
// with edit distance, so a long shared substring keeps the score well
// above zero even when lengths differ.
package similarity

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

var fold = cases.Fold()

// Score computes the similarity of two strings in [0,1] as a normalized
// edit distance over case-folded text.
func Score(a, b string) float64 {
	a = fold.String(a)
	b = fold.String(b)
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	dist := levenshtein.ComputeDistance(a, b)
	if dist >= longest {
		return 0
	}
	return 1.0 - float64(dist)/float64(longest)
}

// BestMatch returns the index of the highest score and the score
// itself. Ties keep the earliest candidate; an empty slice returns -1.
func BestMatch(scores []float64) (int, float64) {
	best := -1
	bestScore := 0.0
	for i, score := range scores {
		if best == -1 || score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best == -1 {
		return -1, 0
	}
	return best, bestScore
}
