// Package server provides the HTTP API for the FAST scorecard service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/fast-scorecard/internal/llm"
	"github.com/jonathan/fast-scorecard/internal/rubric"
	"github.com/jonathan/fast-scorecard/internal/types"
)

// Public error messages. Internal causes are logged, never returned.
const (
	MsgInvalidJSON        = "Invalid JSON body"
	MsgRateLimited        = "Rate limited by AI service"
	MsgAITimeout          = "AI service timeout"
	MsgIntegrityFailure   = "Model output failed integrity validation"
	MsgEvaluationFailed   = "Failed to evaluate text"
	MsgNotFound           = "Not found"
	MsgInboundRateLimited = "Rate limit exceeded. Please try again later."
)

// ErrMalformedBody indicates the request body is not valid JSON
type ErrMalformedBody struct {
	Cause error
}

func (e *ErrMalformedBody) Error() string {
	return fmt.Sprintf("malformed request body: %v", e.Cause)
}

func (e *ErrMalformedBody) Unwrap() error {
	return e.Cause
}

// ErrValidation indicates request validation failure.
// Code is TEXT_TOO_SHORT, TEXT_TOO_LONG or VALIDATION_ERROR; Message is the first failure.
type ErrValidation struct {
	Code    types.ErrorCode
	Message string
	Details []types.FieldDetail
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Classification is the externally visible form of a failure.
type Classification struct {
	Status  int
	Code    types.ErrorCode
	Message string
	Details []types.FieldDetail
}

// Classify maps a failure cause to its HTTP status, error code and safe message.
// Request-shape errors come first, then tagged model errors, then integrity errors;
// anything else is reported as a generic model service failure.
func Classify(err error) Classification {
	var malformed *ErrMalformedBody
	if errors.As(err, &malformed) {
		return Classification{Status: http.StatusBadRequest, Code: types.CodeValidation, Message: MsgInvalidJSON}
	}

	var validation *ErrValidation
	if errors.As(err, &validation) {
		return Classification{
			Status:  http.StatusBadRequest,
			Code:    validation.Code,
			Message: validation.Message,
			Details: validation.Details,
		}
	}

	if errors.Is(err, rubric.ErrIntegrity) {
		return Classification{Status: http.StatusInternalServerError, Code: types.CodeInternal, Message: MsgIntegrityFailure}
	}

	var modelErr *llm.ModelError
	if errors.As(err, &modelErr) || errors.Is(err, context.DeadlineExceeded) {
		switch llm.KindOf(err) {
		case llm.KindRateLimited:
			return Classification{Status: http.StatusTooManyRequests, Code: types.CodeRateLimited, Message: MsgRateLimited}
		case llm.KindTimeout:
			return Classification{Status: http.StatusGatewayTimeout, Code: types.CodeAITimeout, Message: MsgAITimeout}
		}
	}

	return Classification{Status: http.StatusBadGateway, Code: types.CodeAIServiceError, Message: MsgEvaluationFailed}
}
