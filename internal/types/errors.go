package types

// ErrorCode is the machine-readable error code returned to API callers.
type ErrorCode string

// Error codes in the public taxonomy.
const (
	CodeValidation     ErrorCode = "VALIDATION_ERROR" // Invalid input (400)
	CodeTextTooShort   ErrorCode = "TEXT_TOO_SHORT"   // Text below minimum length (400)
	CodeTextTooLong    ErrorCode = "TEXT_TOO_LONG"    // Text exceeds maximum length (400)
	CodeNotFound       ErrorCode = "NOT_FOUND"        // Resource not found (404)
	CodeRateLimited    ErrorCode = "RATE_LIMITED"     // Too many requests (429)
	CodeAIServiceError ErrorCode = "AI_SERVICE_ERROR" // Model provider error (502)
	CodeAITimeout      ErrorCode = "AI_TIMEOUT"       // Model provider timeout (504)
	CodeInternal       ErrorCode = "INTERNAL_ERROR"   // Unexpected server error (500)
)

// FieldDetail describes one failed request-validation rule.
type FieldDetail struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Details   []FieldDetail `json:"details,omitempty"`
	RequestID string        `json:"requestId"`
}

// StreamEventType names the events emitted by the streaming evaluation endpoint.
type StreamEventType string

// Stream event types.
const (
	StreamEventScore    StreamEventType = "score"
	StreamEventSummary  StreamEventType = "summary"
	StreamEventComplete StreamEventType = "complete"
	StreamEventError    StreamEventType = "error"
)
