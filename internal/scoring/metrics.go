package scoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jonathan/fast-scorecard/internal/llm"
)

var (
	// evaluationsTotal counts evaluations by outcome (ok, cached, or the model error kind).
	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fast_evaluations_total",
		Help: "Total evaluations by outcome",
	}, []string{"outcome"})

	// evaluationDuration tracks end-to-end evaluation latency
	evaluationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fast_evaluation_duration_seconds",
		Help:    "Evaluation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~33s
	}, []string{"cached"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fast_cache_lookups_total",
		Help: "Evaluation cache lookups by result",
	}, []string{"result"})

	modelTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fast_model_tokens_total",
		Help: "Tokens consumed by the scoring model",
	}, []string{"model", "direction"})

	modelCostUSD = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fast_model_cost_usd_total",
		Help: "Estimated model spend in USD",
	}, []string{"model"})
)

// Outcome labels recorded on fast_evaluations_total.
const (
	outcomeOK          = "ok"
	outcomeCached      = "cached"
	outcomeIntegrity   = "integrity_error"
	outcomeRenderError = "internal_error"
)

func recordCacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

func recordUsage(model string, usage llm.Usage, cost float64) {
	modelTokens.WithLabelValues(model, "input").Add(float64(usage.InputTokens))
	modelTokens.WithLabelValues(model, "output").Add(float64(usage.OutputTokens))
	modelCostUSD.WithLabelValues(model).Add(cost)
}

func recordOutcome(outcome string, cached bool, seconds float64) {
	evaluationsTotal.WithLabelValues(outcome).Inc()
	label := "false"
	if cached {
		label = "true"
	}
	evaluationDuration.WithLabelValues(label).Observe(seconds)
}
