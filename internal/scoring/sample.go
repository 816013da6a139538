package scoring

import (
	"context"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/fast-scorecard/internal/rubric"
	"github.com/jonathan/fast-scorecard/internal/types"
)

// DefaultSampleConcurrency bounds in-flight model calls during sampling.
const DefaultSampleConcurrency = 4

// Evaluator scores text. *Service satisfies it.
type Evaluator interface {
	Evaluate(ctx context.Context, text, title string, opts Options) (*types.EvaluationResult, error)
}

// Stats describes the spread of one score across sample runs.
type Stats struct {
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stdDev"`
}

// Range is Max minus Min.
func (s Stats) Range() float64 {
	return s.Max - s.Min
}

// CriterionStats is the spread for a single criterion.
type CriterionStats struct {
	Criterion types.Criterion `json:"criterion"`
	Stats
}

// SampleSummary aggregates repeated evaluations of the same text.
type SampleSummary struct {
	Runs         int              `json:"runs"`
	Failed       int              `json:"failed"`
	Criteria     []CriterionStats `json:"criteria"`
	Overall      Stats            `json:"overall"`
	TotalCostUSD float64          `json:"totalCostUsd"`
	Errors       []string         `json:"errors,omitempty"`
}

// SampleConfig controls a sampling run.
type SampleConfig struct {
	Runs        int
	Concurrency int
}

// Sample evaluates the same text Runs times with the cache bypassed and summarizes the
// score variance. Individual failures are counted, not fatal; the run fails only when
// the context is cancelled or every evaluation fails.
func Sample(ctx context.Context, evaluator Evaluator, text, title string, cfg SampleConfig) (*SampleSummary, error) {
	if cfg.Runs < 1 {
		return nil, fmt.Errorf("runs must be at least 1, got %d", cfg.Runs)
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultSampleConcurrency
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	var mu sync.Mutex
	var results []*types.EvaluationResult
	var failures []error

	for i := 0; i < cfg.Runs; i++ {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			result, err := evaluator.Evaluate(gCtx, text, title, Options{BypassCache: true})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return nil
			}
			results = append(results, result)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("all %d sample runs failed: %w", cfg.Runs, failures[0])
	}

	summary := Summarize(results)
	summary.Failed = len(failures)
	for _, err := range failures {
		summary.Errors = append(summary.Errors, err.Error())
	}
	return summary, nil
}

// Summarize computes per-criterion and overall statistics over results.
// Criteria are reported in canonical order.
func Summarize(results []*types.EvaluationResult) *SampleSummary {
	summary := &SampleSummary{Runs: len(results)}

	byCriterion := make(map[types.Criterion][]float64, len(rubric.Criteria()))
	overall := make([]float64, 0, len(results))
	for _, r := range results {
		for _, s := range r.Scores {
			byCriterion[s.Criterion] = append(byCriterion[s.Criterion], s.Score)
		}
		overall = append(overall, r.OverallScore)
		summary.TotalCostUSD += r.CostUSD
	}

	for _, c := range rubric.Criteria() {
		values, ok := byCriterion[c]
		if !ok {
			continue
		}
		summary.Criteria = append(summary.Criteria, CriterionStats{Criterion: c, Stats: computeStats(values)})
	}
	summary.Overall = computeStats(overall)

	return summary
}

// computeStats returns the population statistics of values.
func computeStats(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	s := Stats{Min: values[0], Max: values[0]}
	var sum float64
	for _, v := range values {
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean = sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - s.Mean
		sq += d * d
	}
	s.StdDev = math.Sqrt(sq / float64(len(values)))

	return s
}
