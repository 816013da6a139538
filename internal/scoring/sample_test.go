package scoring

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/fast-scorecard/internal/llm"
	"github.com/jonathan/fast-scorecard/internal/types"
)

// stubEvaluator hands out scripted outcomes in call order.
type stubEvaluator struct {
	mu       sync.Mutex
	outcomes []stubOutcome
	calls    int
	bypassed int
}

type stubOutcome struct {
	result *types.EvaluationResult
	err    error
}

func (s *stubEvaluator) Evaluate(_ context.Context, _, _ string, opts Options) (*types.EvaluationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.outcomes[s.calls%len(s.outcomes)]
	s.calls++
	if opts.BypassCache {
		s.bypassed++
	}
	return out.result, out.err
}

func resultWith(clarity, overall, cost float64) *types.EvaluationResult {
	return &types.EvaluationResult{
		Scores: []types.CriterionScore{
			{Criterion: types.CriterionClarity, Score: clarity},
			{Criterion: types.CriterionUnity, Score: 5},
		},
		OverallScore: overall,
		CostUSD:      cost,
	}
}

func TestComputeStats(t *testing.T) {
	s := computeStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 5.0, s.Mean)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 9.0, s.Max)
	assert.Equal(t, 2.0, s.StdDev)
	assert.Equal(t, 7.0, s.Range())

	assert.Equal(t, Stats{}, computeStats(nil))
}

func TestSummarize(t *testing.T) {
	summary := Summarize([]*types.EvaluationResult{
		resultWith(6, 5.0, 0.01),
		resultWith(8, 6.0, 0.02),
	})

	assert.Equal(t, 2, summary.Runs)
	require.Len(t, summary.Criteria, 2)
	assert.Equal(t, types.CriterionClarity, summary.Criteria[0].Criterion)
	assert.Equal(t, 7.0, summary.Criteria[0].Mean)
	assert.Equal(t, 1.0, summary.Criteria[0].StdDev)
	assert.Equal(t, types.CriterionUnity, summary.Criteria[1].Criterion)
	assert.Equal(t, 0.0, summary.Criteria[1].StdDev)
	assert.Equal(t, 5.5, summary.Overall.Mean)
	assert.InDelta(t, 0.03, summary.TotalCostUSD, 1e-12)
}

func TestSample_CountsFailures(t *testing.T) {
	stub := &stubEvaluator{outcomes: []stubOutcome{
		{result: resultWith(6, 5.0, 0.01)},
		{err: &llm.ModelError{Kind: llm.KindRateLimited}},
	}}

	summary, err := Sample(context.Background(), stub, "text", "", SampleConfig{Runs: 6, Concurrency: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Runs)
	assert.Equal(t, 3, summary.Failed)
	assert.Len(t, summary.Errors, 3)
	assert.Equal(t, 6, stub.calls)
	assert.Equal(t, 6, stub.bypassed, "sampling never reads the cache")
}

func TestSample_AllFailed(t *testing.T) {
	boom := errors.New("boom")
	stub := &stubEvaluator{outcomes: []stubOutcome{{err: boom}}}

	_, err := Sample(context.Background(), stub, "text", "", SampleConfig{Runs: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "all 3 sample runs failed")
}

func TestSample_InvalidRuns(t *testing.T) {
	_, err := Sample(context.Background(), &stubEvaluator{}, "text", "", SampleConfig{})
	assert.Error(t, err)
}

func TestSample_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stub := &stubEvaluator{outcomes: []stubOutcome{{result: resultWith(6, 5.0, 0)}}}

	_, err := Sample(ctx, stub, "text", "", SampleConfig{Runs: 2})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, stub.calls)
}

func TestSample_WithService(t *testing.T) {
	client := newFakeClient(ok(validScorecardJSON(), 100, 50))
	cache := NewCache(CacheConfig{Clock: newFakeClock()})
	svc := newTestService(t, client, newFakeClock(), cache)

	summary, err := Sample(context.Background(), svc, "text", "On Maps", SampleConfig{Runs: 3})
	require.NoError(t, err)

	assert.Equal(t, 3, client.Calls())
	assert.Equal(t, 0, cache.Len())
	assert.InDelta(t, 5.4, summary.Overall.Mean, 1e-9)
	assert.InDelta(t, 0.0, summary.Overall.StdDev, 1e-9)
	require.Len(t, summary.Criteria, 5)
}
