package scoring

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jonathan/fast-scorecard/internal/llm"
	"github.com/jonathan/fast-scorecard/internal/types"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeClient replays queued responses and records every request.
type fakeClient struct {
	mu        sync.Mutex
	model     string
	responses []fakeResponse
	requests  []llm.StructuredRequest
	onCall    func()
}

type fakeResponse struct {
	resp *llm.StructuredResponse
	err  error
}

func newFakeClient(responses ...fakeResponse) *fakeClient {
	return &fakeClient{model: "claude-haiku-4-5", responses: responses}
}

func (f *fakeClient) GenerateStructured(_ context.Context, req llm.StructuredRequest) (*llm.StructuredResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	idx := len(f.requests) - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	r := f.responses[idx]
	onCall := f.onCall
	f.mu.Unlock()

	if onCall != nil {
		onCall()
	}
	return r.resp, r.err
}

func (f *fakeClient) Model() string { return f.model }
func (f *fakeClient) Close() error  { return nil }

func (f *fakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func ok(object string, in, out int) fakeResponse {
	return fakeResponse{resp: &llm.StructuredResponse{
		Object: json.RawMessage(object),
		Usage:  llm.Usage{InputTokens: in, OutputTokens: out},
	}}
}

func fail(err error) fakeResponse {
	return fakeResponse{err: err}
}

type scoreSpec struct {
	criterion types.Criterion
	score     float64
}

var defaultScores = []scoreSpec{
	{types.CriterionPragmaticExperience, 4},
	{types.CriterionClarity, 7},
	{types.CriterionUnity, 5},
	{types.CriterionSimplexity, 6},
	{types.CriterionErrorCorrection, 5},
}

// scorecardJSON renders a model object with the given scores and otherwise valid fields.
func scorecardJSON(scores []scoreSpec) string {
	type scoreObj struct {
		Criterion  types.Criterion `json:"criterion"`
		Score      float64         `json:"score"`
		Evaluation string          `json:"evaluation"`
		Suggestion string          `json:"suggestion"`
	}
	objs := make([]scoreObj, 0, len(scores))
	for _, s := range scores {
		objs = append(objs, scoreObj{
			Criterion:  s.criterion,
			Score:      s.score,
			Evaluation: "Evaluation of " + string(s.criterion) + ".",
			Suggestion: "Improve " + string(s.criterion) + ".",
		})
	}
	doc := map[string]any{
		"coreThesis":         "Maps are not territories.",
		"keyTerms":           []string{"map", "territory", "model"},
		"title":              "On Maps",
		"scores":             objs,
		"summary":            "Strong clarity, weak contact. Add tests.",
		"contextSufficiency": "medium",
		"rhetoricRisk":       "low",
	}
	b, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func validScorecardJSON() string {
	return scorecardJSON(defaultScores)
}
