package llm

import (
	"encoding/json"
	"strings"
	"unicode"
)

const fence = "```"

// decodeReply turns a provider's text reply into a structured response. Replies that are
// already valid JSON pass through untouched; otherwise one surrounding markdown fence is
// removed before trying again.
func decodeReply(p Provider, text string, usage Usage) (*StructuredResponse, error) {
	text = strings.TrimSpace(text)
	if json.Valid([]byte(text)) {
		return &StructuredResponse{Object: json.RawMessage(text), Usage: usage}, nil
	}

	inner, fenced := stripFence(text)
	if fenced && json.Valid([]byte(inner)) {
		return &StructuredResponse{Object: json.RawMessage(inner), Usage: usage}, nil
	}

	msg := "response content is not valid JSON"
	if fenced {
		msg += " (after removing markdown fence)"
	}
	return nil, &ModelError{
		Kind:     KindSchemaInvalid,
		Provider: p,
		Message:  msg,
		Usage:    usage,
	}
}

// stripFence removes a markdown code fence wrapping the whole of text, including any
// language tag after the opening marker. Reports false when text is not fenced.
func stripFence(text string) (string, bool) {
	if len(text) < 2*len(fence) || !strings.HasPrefix(text, fence) || !strings.HasSuffix(text, fence) {
		return text, false
	}

	inner := text[len(fence) : len(text)-len(fence)]
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		if tag := strings.TrimSpace(inner[:nl]); !strings.ContainsAny(tag, "{[\" ") {
			inner = inner[nl+1:]
		}
	} else {
		inner = strings.TrimLeftFunc(inner, unicode.IsLetter)
	}
	return strings.TrimSpace(inner), true
}
