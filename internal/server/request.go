package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/fast-scorecard/internal/types"
)

// maxBodyBytes bounds the request body: MaxTextLength runes of up to 4 bytes plus title and framing.
const maxBodyBytes = 4*types.MaxTextLength + 4*types.MaxTitleLength + 1024

// decodeEvaluationRequest reads and validates an evaluation request body.
// Returns *ErrMalformedBody for unparseable JSON and *ErrValidation for rule failures.
func decodeEvaluationRequest(w http.ResponseWriter, r *http.Request) (*types.EvaluationRequest, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, textTooLong()
		}
		return nil, &ErrMalformedBody{Cause: err}
	}

	var req types.EvaluationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			msg := fmt.Sprintf("Expected %s for %s", typeErr.Type, typeErr.Field)
			return nil, &ErrValidation{
				Code:    types.CodeValidation,
				Message: msg,
				Details: []types.FieldDetail{{Field: typeErr.Field, Rule: "type", Message: msg}},
			}
		}
		return nil, &ErrMalformedBody{Cause: err}
	}

	if err := req.Validate(); err != nil {
		return nil, toValidationError(err)
	}

	return &req, nil
}

// toValidationError converts validator errors into the public taxonomy.
// The first failure decides the code and message; all failures are listed in Details.
func toValidationError(err error) *ErrValidation {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ErrValidation{Code: types.CodeValidation, Message: "Invalid request"}
	}

	out := &ErrValidation{Code: types.CodeValidation}
	for i, fe := range fieldErrs {
		code, msg := describeFieldError(fe)
		if i == 0 {
			out.Code = code
			out.Message = msg
		}
		out.Details = append(out.Details, types.FieldDetail{Field: jsonFieldName(fe.Field()), Rule: fe.Tag(), Message: msg})
	}
	return out
}

func describeFieldError(fe validator.FieldError) (types.ErrorCode, string) {
	if fe.Tag() == "required" {
		return types.CodeValidation, "Required"
	}
	switch fe.Field() {
	case "Text":
		switch fe.Tag() {
		case "min":
			return types.CodeTextTooShort, fmt.Sprintf("Text must be at least %d characters", types.MinTextLength)
		case "max":
			return types.CodeTextTooLong, fmt.Sprintf("Text must not exceed %d characters", types.MaxTextLength)
		}
	case "Title":
		if fe.Tag() == "max" {
			return types.CodeValidation, fmt.Sprintf("Title must not exceed %d characters", types.MaxTitleLength)
		}
	}
	return types.CodeValidation, fmt.Sprintf("%s is invalid (%s)", jsonFieldName(fe.Field()), fe.Tag())
}

func textTooLong() *ErrValidation {
	msg := fmt.Sprintf("Text must not exceed %d characters", types.MaxTextLength)
	return &ErrValidation{
		Code:    types.CodeTextTooLong,
		Message: msg,
		Details: []types.FieldDetail{{Field: "text", Rule: "max", Message: msg}},
	}
}

func jsonFieldName(field string) string {
	switch field {
	case "Text":
		return "text"
	case "Title":
		return "title"
	default:
		return field
	}
}
