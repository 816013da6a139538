// Package schemas holds the JSON Schema documents that define the structured-output contracts
// exchanged with the scoring model.
package schemas

import _ "embed"

// Scorecard is the JSON Schema for the object the scoring model must return.
//
//go:embed scorecard.schema.json
var Scorecard []byte
