// Package scoring runs FAST evaluations: it invokes the scoring model, reconciles the
// returned criterion scores, computes aggregates and caches results.
package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonathan/fast-scorecard/internal/llm"
	"github.com/jonathan/fast-scorecard/internal/prompts"
	"github.com/jonathan/fast-scorecard/internal/schemas"
	"github.com/jonathan/fast-scorecard/internal/types"
	schemadocs "github.com/jonathan/fast-scorecard/schemas"
)

// ScorecardSchemaName names the structured-output contract sent to providers.
const ScorecardSchemaName = "fast_scorecard"

// Invocation is a schema-valid model answer plus the token usage it cost.
type Invocation struct {
	Content types.ScorecardContent
	Usage   llm.Usage
}

// scorecardSchema is compiled once from the embedded document.
var scorecardSchema = schemas.MustCompile(ScorecardSchemaName, schemadocs.Scorecard)

// Invoker makes exactly one structured-output call per evaluation.
type Invoker struct {
	client       llm.Client
	schema       *schemas.Schema
	recoverer    Recoverer
	systemPrompt string
}

// NewInvoker creates an invoker for client. A nil recoverer selects ParameterEnvelopeRecoverer.
func NewInvoker(client llm.Client, recoverer Recoverer) (*Invoker, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}

	systemPrompt, err := prompts.Get(prompts.EvaluationFile, prompts.KeyScoringSystem)
	if err != nil {
		return nil, err
	}

	if recoverer == nil {
		recoverer = ParameterEnvelopeRecoverer{}
	}

	return &Invoker{
		client:       client,
		schema:       scorecardSchema,
		recoverer:    recoverer,
		systemPrompt: systemPrompt,
	}, nil
}

// Model returns the model identifier used for every call.
func (i *Invoker) Model() string {
	return i.client.Model()
}

// Invoke scores text with the model. Errors are *llm.ModelError values tagged by kind,
// except for prompt rendering failures which are returned as-is.
func (i *Invoker) Invoke(ctx context.Context, text, title string) (*Invocation, error) {
	userPrompt, err := prompts.EvaluationUserPrompt(text, title)
	if err != nil {
		return nil, err
	}

	resp, err := i.client.GenerateStructured(ctx, llm.StructuredRequest{
		SystemPrompt: i.systemPrompt,
		UserPrompt:   userPrompt,
		SchemaName:   ScorecardSchemaName,
		Schema:       i.schema.Raw(),
		Temperature:  0,
	})
	if err != nil {
		return i.salvage(err)
	}

	content, err := i.decode(resp.Object)
	if err != nil {
		return i.salvage(&llm.ModelError{
			Kind:    llm.KindSchemaInvalid,
			Message: "model output does not match the scorecard schema",
			Payload: resp.Object,
			Usage:   resp.Usage,
			Cause:   err,
		})
	}

	return &Invocation{Content: *content, Usage: resp.Usage}, nil
}

// decode validates raw against the scorecard schema and unmarshals it.
func (i *Invoker) decode(raw json.RawMessage) (*types.ScorecardContent, error) {
	if err := i.schema.Validate(raw); err != nil {
		return nil, err
	}
	var content types.ScorecardContent
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("failed to decode scorecard: %w", err)
	}
	return &content, nil
}

// salvage tries the recoverer on schema failures and otherwise returns err unchanged.
func (i *Invoker) salvage(err error) (*Invocation, error) {
	var modelErr *llm.ModelError
	if !errors.As(err, &modelErr) || modelErr.Kind != llm.KindSchemaInvalid {
		return nil, err
	}

	candidate, ok := i.recoverer.Recover(modelErr.Payload)
	if !ok {
		return nil, err
	}

	content, decodeErr := i.decode(candidate)
	if decodeErr != nil {
		return nil, err
	}

	return &Invocation{Content: *content, Usage: modelErr.Usage}, nil
}
