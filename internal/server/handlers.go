package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/fast-scorecard/internal/llm"
	"github.com/jonathan/fast-scorecard/internal/rubric"
	"github.com/jonathan/fast-scorecard/internal/scoring"
	"github.com/jonathan/fast-scorecard/internal/types"
)

var newRequestID = uuid.NewString

// handleEvaluate scores the submitted text and returns a scorecard
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeEvaluationRequest(w, r)
	if err != nil {
		s.writeError(w, r, Classify(err))
		return
	}

	result, err := s.evaluator.Evaluate(r.Context(), req.InputText(), req.Title, scoring.Options{})
	if err != nil {
		c := s.logFailure(r, err)
		s.writeError(w, r, c)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.NewScorecard(result, req.InputText(), s.now()))
}

// handleEvaluateStream scores the submitted text and streams the result as SSE events:
// one score event per criterion in canonical order, then summary, then complete.
// Failures after the stream opens are sent as a single error event.
func (s *Server) handleEvaluateStream(w http.ResponseWriter, r *http.Request) {
	req, err := decodeEvaluationRequest(w, r)
	if err != nil {
		s.writeError(w, r, Classify(err))
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.writeError(w, r, Classification{Status: http.StatusInternalServerError, Code: types.CodeInternal, Message: err.Error()})
		return
	}

	result, err := s.evaluator.Evaluate(r.Context(), req.InputText(), req.Title, scoring.Options{})
	if err != nil {
		c := s.logFailure(r, err)
		sse.WriteError(errorBody(r, c))
		return
	}

	scorecard := types.NewScorecard(result, req.InputText(), s.now())
	for _, score := range scorecard.Scores {
		if err := sse.WriteEvent(types.StreamEventScore, scoreEvent{
			CriterionScore: score,
			Label:          rubric.Label(score.Criterion),
		}); err != nil {
			s.logger.Warn("stream write failed", "request_id", RequestID(r.Context()), "error", err)
			return
		}
	}
	if err := sse.WriteEvent(types.StreamEventSummary, summaryEvent{
		OverallScore:       scorecard.OverallScore,
		Summary:            scorecard.Summary,
		ContextSufficiency: scorecard.ContextSufficiency,
		RhetoricRisk:       scorecard.RhetoricRisk,
	}); err != nil {
		s.logger.Warn("stream write failed", "request_id", RequestID(r.Context()), "error", err)
		return
	}
	sse.WriteComplete(scorecard)
}

type scoreEvent struct {
	types.CriterionScore
	Label string `json:"label"`
}

type summaryEvent struct {
	OverallScore       float64                  `json:"overallScore"`
	Summary            string                   `json:"summary"`
	ContextSufficiency types.ContextSufficiency `json:"contextSufficiency"`
	RhetoricRisk       types.RhetoricRisk       `json:"rhetoricRisk"`
}

// logFailure classifies an evaluation failure and logs its internal cause.
func (s *Server) logFailure(r *http.Request, err error) Classification {
	c := Classify(err)
	attrs := []any{
		"request_id", RequestID(r.Context()),
		"code", c.Code,
		"status", c.Status,
		"error", err,
	}

	var integrityErr *rubric.IntegrityError
	if errors.As(err, &integrityErr) {
		attrs = append(attrs, "missing", integrityErr.Missing, "duplicate", integrityErr.Duplicates)
	}
	var modelErr *llm.ModelError
	if errors.As(err, &modelErr) {
		attrs = append(attrs, "provider", modelErr.Provider, "kind", modelErr.Kind, "provider_status", modelErr.StatusCode)
	}

	s.logger.Error("evaluation failed", attrs...)
	return c
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "environment": s.environment})
}

// handleNotFound answers every unknown route
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, Classification{Status: http.StatusNotFound, Code: types.CodeNotFound, Message: MsgNotFound})
}
