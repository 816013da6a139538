package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/fast-scorecard/internal/types"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event types.StreamEventType, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event carrying the classified error body
func (s *SSEWriter) WriteError(body types.ErrorResponse) {
	s.WriteEvent(types.StreamEventError, body) //nolint:errcheck
}

// WriteComplete sends the final scorecard
func (s *SSEWriter) WriteComplete(scorecard *types.Scorecard) {
	s.WriteEvent(types.StreamEventComplete, scorecard) //nolint:errcheck
}
