// Package types provides type definitions for structured data used throughout the scorecard system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Text length bounds for evaluation requests, counted in characters.
const (
	MinTextLength  = 100
	MaxTextLength  = 50000
	MaxTitleLength = 200
)

// Criterion identifies one of the five FAST rubric dimensions.
type Criterion string

// Criterion identifiers as they appear on the wire.
const (
	CriterionClarity             Criterion = "clarity"
	CriterionSimplexity          Criterion = "simplexity"
	CriterionErrorCorrection     Criterion = "errorCorrection"
	CriterionUnity               Criterion = "unity"
	CriterionPragmaticExperience Criterion = "pragmaticExperience"
)

// ContextSufficiency reports whether the excerpt carries enough context to be judged fairly.
type ContextSufficiency string

// RhetoricRisk reports the risk of proof-without-contact in the text.
type RhetoricRisk string

// Diagnostic levels shared by ContextSufficiency and RhetoricRisk.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// CriterionScore is the model's judgment for a single criterion.
type CriterionScore struct {
	Criterion  Criterion `json:"criterion"`
	Score      float64   `json:"score"` // 0-10, direct from the model
	Evaluation string    `json:"evaluation"`
	Suggestion string    `json:"suggestion"`
}

// ScorecardContent is the schema-validated object produced by the scoring model.
type ScorecardContent struct {
	CoreThesis         string             `json:"coreThesis"`
	KeyTerms           []string           `json:"keyTerms"`
	Title              string             `json:"title"`
	Scores             []CriterionScore   `json:"scores"`
	Summary            string             `json:"summary"`
	ContextSufficiency ContextSufficiency `json:"contextSufficiency"`
	RhetoricRisk       RhetoricRisk       `json:"rhetoricRisk"`
}

// EvaluationResult is the engine's output for one evaluated text.
// Scores are always in canonical criterion order.
type EvaluationResult struct {
	CoreThesis         string             `json:"coreThesis"`
	KeyTerms           []string           `json:"keyTerms"`
	Title              string             `json:"title"`
	Scores             []CriterionScore   `json:"scores"`
	OverallScore       float64            `json:"overallScore"`
	Summary            string             `json:"summary"`
	ContextSufficiency ContextSufficiency `json:"contextSufficiency"`
	RhetoricRisk       RhetoricRisk       `json:"rhetoricRisk"`
	ModelUsed          string             `json:"modelUsed"`
	ProcessingTimeMs   int64              `json:"processingTimeMs"`
	InputTokens        int                `json:"inputTokens"`
	OutputTokens       int                `json:"outputTokens"`
	CostUSD            float64            `json:"costUsd"`
}

// Clone returns a deep copy of the result. Slices are never shared with the receiver.
func (r *EvaluationResult) Clone() EvaluationResult {
	out := *r
	if r.KeyTerms != nil {
		out.KeyTerms = append([]string(nil), r.KeyTerms...)
	}
	if r.Scores != nil {
		out.Scores = append([]CriterionScore(nil), r.Scores...)
	}
	return out
}

// Scorecard is the HTTP response body for a successful evaluation.
type Scorecard struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	InputText string    `json:"inputText"`
	WordCount int       `json:"wordCount"`
	EvaluationResult
}

// NewScorecard wraps an evaluation result with the submitted text and a fresh identifier.
func NewScorecard(result *EvaluationResult, inputText string, now time.Time) *Scorecard {
	return &Scorecard{
		ID:               uuid.NewString(),
		CreatedAt:        now.UTC(),
		InputText:        inputText,
		WordCount:        WordCount(inputText),
		EvaluationResult: result.Clone(),
	}
}

// EvaluationRequest is the body accepted by POST /api/evaluate.
type EvaluationRequest struct {
	Text  *string `json:"text" validate:"required,min=100,max=50000"`
	Title string  `json:"title,omitempty" validate:"max=200"`
}

var requestValidator = validator.New()

// Validate checks text and title lengths. Lengths are counted in characters (runes).
// A missing or null text fails the required rule; an empty one fails the minimum length.
func (r *EvaluationRequest) Validate() error {
	return requestValidator.Struct(r)
}

// InputText returns the submitted text, or "" when none was sent.
func (r *EvaluationRequest) InputText() string {
	if r.Text == nil {
		return ""
	}
	return *r.Text
}
