package metadata

import "strconv"

// LengthScoreWindowMS is the length difference, in milliseconds, beyond
// which two durations score 0.0. Equal durations score 1.0 and the score
// degrades linearly in between.
const LengthScoreWindowMS = 30000

const lengthWeight = 8

// Scorer computes the similarity of two short strings in [0,1]. It must
// be symmetric, return 1 for equal inputs, and 0 when exactly one input
// is empty. See the similarity package for the default implementation.
type Scorer func(a, b string) float64

// FieldWeight pairs a comparable tag with its weight in Compare.
type FieldWeight struct {
	Field  string
	Weight float64
}

// numericFields compare by integer equality rather than string similarity.
var numericFields = map[string]bool{
	"tracknumber": true,
	"totaltracks": true,
	"discnumber":  true,
	"totaldiscs":  true,
}

// DefaultWeights returns the field weights used for file-to-track
// comparison.
func DefaultWeights() []FieldWeight {
	return []FieldWeight{
		{Field: "title", Weight: 22},
		{Field: "artist", Weight: 6},
		{Field: "album", Weight: 12},
		{Field: "tracknumber", Weight: 6},
		{Field: "totaltracks", Weight: 5},
		{Field: "discnumber", Weight: 5},
		{Field: "totaldiscs", Weight: 4},
	}
}

// LengthScore scores the closeness of two durations in milliseconds.
func LengthScore(a, b int64) float64 {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	if diff > LengthScoreWindowMS {
		diff = LengthScoreWindowMS
	}
	return 1.0 - float64(diff)/float64(LengthScoreWindowMS)
}

// Compare computes the weighted similarity of two containers in [0,1].
// Fields absent on both sides are skipped rather than counted as zero,
// so sparse containers are not penalized. When both containers carry a
// duration, the length score participates with a fixed weight. If no
// field is comparable the result is 0.
func (c *Container) Compare(other *Container, scorer Scorer, weights []FieldWeight) float64 {
	if other == nil {
		return 0
	}
	if weights == nil {
		weights = DefaultWeights()
	}
	var total, sum float64

	if c.Length > 0 && other.Length > 0 {
		total += LengthScore(c.Length, other.Length) * lengthWeight
		sum += lengthWeight
	}

	for _, fw := range weights {
		a := c.Get(fw.Field)
		b := other.Get(fw.Field)
		if a == "" || b == "" {
			continue
		}
		var score float64
		if numericFields[fw.Field] {
			if ia, errA := strconv.Atoi(a); errA == nil {
				if ib, errB := strconv.Atoi(b); errB == nil {
					if ia == ib {
						score = 1
					}
					total += score * fw.Weight
					sum += fw.Weight
					continue
				}
			}
			if a == b {
				score = 1
			}
		} else {
			score = scorer(a, b)
		}
		total += score * fw.Weight
		sum += fw.Weight
	}

	if sum == 0 {
		return 0
	}
	return total / sum
}
