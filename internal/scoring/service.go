package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/fast-scorecard/internal/llm"
	"github.com/jonathan/fast-scorecard/internal/rubric"
	"github.com/jonathan/fast-scorecard/internal/types"
)

// Options control a single evaluation.
type Options struct {
	// BypassCache skips both the cache lookup and the cache write.
	BypassCache bool
}

// ServiceConfig wires a Service. Cache may be nil to disable caching.
type ServiceConfig struct {
	Invoker *Invoker
	Cache   *Cache
	Clock   Clock
	Logger  *slog.Logger
}

// Service is the evaluation entry point shared by the HTTP server and the CLI.
type Service struct {
	invoker *Invoker
	cache   *Cache
	clock   Clock
	logger  *slog.Logger
}

// NewService creates a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Invoker == nil {
		return nil, fmt.Errorf("invoker is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if model := cfg.Invoker.Model(); model != "" {
		if _, known := llm.PricingFor(model); !known {
			cfg.Logger.Warn("no pricing for model, costs will be reported as 0", "model", model)
		}
	}
	return &Service{
		invoker: cfg.Invoker,
		cache:   cfg.Cache,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
	}, nil
}

// Model returns the model every evaluation is sent to.
func (s *Service) Model() string {
	return s.invoker.Model()
}

// Evaluate scores text. Errors from the model call and from score reconciliation are
// returned unchanged so the caller can classify them.
func (s *Service) Evaluate(ctx context.Context, text, title string, opts Options) (*types.EvaluationResult, error) {
	start := s.clock.Now()
	model := s.invoker.Model()
	key := CacheKey(model, title, text)
	useCache := s.cache != nil && !opts.BypassCache

	if useCache {
		cached, ok := s.cache.Get(key)
		recordCacheLookup(ok)
		if ok {
			cached.ProcessingTimeMs = s.elapsedMs(start)
			recordOutcome(outcomeCached, true, s.clock.Now().Sub(start).Seconds())
			s.logger.Debug("evaluation cache hit", "model", model, "processing_ms", cached.ProcessingTimeMs)
			return &cached, nil
		}
		s.logger.Debug("evaluation cache miss", "model", model)
	}

	inv, err := s.invoker.Invoke(ctx, text, title)
	if err != nil {
		outcome := string(llm.KindOf(err))
		var modelErr *llm.ModelError
		if !errors.As(err, &modelErr) && !errors.Is(err, context.DeadlineExceeded) {
			outcome = outcomeRenderError
		}
		recordOutcome(outcome, false, s.clock.Now().Sub(start).Seconds())
		return nil, err
	}

	scores, err := rubric.Reconcile(inv.Content.Scores)
	if err != nil {
		recordOutcome(outcomeIntegrity, false, s.clock.Now().Sub(start).Seconds())
		return nil, err
	}

	cost := llm.CalculateCost(model, inv.Usage.InputTokens, inv.Usage.OutputTokens)
	recordUsage(model, inv.Usage, cost)

	result := &types.EvaluationResult{
		CoreThesis:         inv.Content.CoreThesis,
		KeyTerms:           inv.Content.KeyTerms,
		Title:              inv.Content.Title,
		Scores:             scores,
		OverallScore:       rubric.OverallOf(scores),
		Summary:            inv.Content.Summary,
		ContextSufficiency: inv.Content.ContextSufficiency,
		RhetoricRisk:       inv.Content.RhetoricRisk,
		ModelUsed:          model,
		InputTokens:        inv.Usage.InputTokens,
		OutputTokens:       inv.Usage.OutputTokens,
		CostUSD:            cost,
	}

	if useCache {
		s.cache.Put(key, result)
	}

	result.ProcessingTimeMs = s.elapsedMs(start)
	recordOutcome(outcomeOK, false, s.clock.Now().Sub(start).Seconds())

	s.logger.Info("evaluation complete",
		"model", model,
		"overall_score", result.OverallScore,
		"input_tokens", result.InputTokens,
		"output_tokens", result.OutputTokens,
		"cost_usd", result.CostUSD,
		"processing_ms", result.ProcessingTimeMs,
	)

	return result, nil
}

// elapsedMs is the time since start in whole milliseconds, never less than 1.
func (s *Service) elapsedMs(start time.Time) int64 {
	ms := s.clock.Now().Sub(start).Milliseconds()
	if ms < 1 {
		return 1
	}
	return ms
}
