package rubric

import (
	"math"

	"github.com/jonathan/fast-scorecard/internal/types"
)

// OverallScore returns the mean of scores rounded half-up to one decimal place.
// An empty slice scores 0.
func OverallScore(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return math.Floor(sum/float64(len(scores))*10+0.5) / 10
}

// OverallOf computes OverallScore over the numeric values of criterion scores.
func OverallOf(scores []types.CriterionScore) float64 {
	values := make([]float64, len(scores))
	for i, s := range scores {
		values[i] = s.Score
	}
	return OverallScore(values)
}
