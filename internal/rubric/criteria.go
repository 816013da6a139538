// Package rubric holds the FAST criterion registry and the pure scoring rules built on it:
// reconciliation of model scores against the canonical criteria and overall-score aggregation.
package rubric

import "github.com/jonathan/fast-scorecard/internal/types"

// canonical is the single source of truth for criterion order.
var canonical = [...]types.Criterion{
	types.CriterionClarity,
	types.CriterionSimplexity,
	types.CriterionErrorCorrection,
	types.CriterionUnity,
	types.CriterionPragmaticExperience,
}

var labels = map[types.Criterion]string{
	types.CriterionClarity:             "Clarity",
	types.CriterionSimplexity:          "Simplexity",
	types.CriterionErrorCorrection:     "Error Correction",
	types.CriterionUnity:               "Unity",
	types.CriterionPragmaticExperience: "Pragmatic / Experience",
}

var descriptions = map[types.Criterion]string{
	types.CriterionClarity:             "Precision in language, clean definitions, sharp reasoning",
	types.CriterionSimplexity:          "Captures essence without reduction; releases complexity without deleting it",
	types.CriterionErrorCorrection:     "Corrects errors within and across disciplines; checks contradictions; self-repair",
	types.CriterionUnity:               "Expands capacity to say more with less; integrates without flattening",
	types.CriterionPragmaticExperience: "Returns to lived experience; contact is part of proof",
}

// Count is the number of rubric criteria.
const Count = len(canonical)

// Criteria returns the criteria in canonical order. The returned slice is a copy.
func Criteria() []types.Criterion {
	out := make([]types.Criterion, Count)
	copy(out, canonical[:])
	return out
}

// Rank returns the canonical position of c, or -1 if c is not a rubric criterion.
func Rank(c types.Criterion) int {
	for i, known := range canonical {
		if known == c {
			return i
		}
	}
	return -1
}

// Label returns the display label for c, falling back to the raw identifier.
func Label(c types.Criterion) string {
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}

// Description returns the one-line rubric description for c.
func Description(c types.Criterion) string {
	return descriptions[c]
}
