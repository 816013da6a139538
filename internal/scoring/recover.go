package scoring

import (
	"bytes"
	"encoding/json"
)

// Recoverer extracts a candidate scorecard object from the payload attached to a
// schema-invalid model error. Candidates are validated by the caller.
type Recoverer interface {
	Recover(payload json.RawMessage) (json.RawMessage, bool)
}

// ParameterEnvelopeRecoverer finds scorecards that a model wrapped in a tool-call style
// envelope: {"parameters": {...}} or {"parameter": {...}}, either at the top level or
// nested one level under "value" or "input".
type ParameterEnvelopeRecoverer struct{}

var (
	envelopeKeys = []string{"parameters", "parameter"}
	wrapperKeys  = []string{"value", "input"}
)

// Recover returns the first envelope object found.
func (ParameterEnvelopeRecoverer) Recover(payload json.RawMessage) (json.RawMessage, bool) {
	fields, ok := objectFields(payload)
	if !ok {
		return nil, false
	}

	if candidate, ok := envelope(fields); ok {
		return candidate, true
	}

	for _, key := range wrapperKeys {
		nested, ok := objectFields(fields[key])
		if !ok {
			continue
		}
		if candidate, ok := envelope(nested); ok {
			return candidate, true
		}
	}

	return nil, false
}

func envelope(fields map[string]json.RawMessage) (json.RawMessage, bool) {
	for _, key := range envelopeKeys {
		if _, ok := objectFields(fields[key]); ok {
			return fields[key], true
		}
	}
	return nil, false
}

// objectFields decodes raw when it is a JSON object.
func objectFields(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, false
	}
	return fields, true
}
