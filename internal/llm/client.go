package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateStructured asks the model for one JSON object conforming to req.Schema.
	// The provider may reject non-conforming output with a KindSchemaInvalid *ModelError.
	GenerateStructured(ctx context.Context, req StructuredRequest) (*StructuredResponse, error)
	// Model returns the model identifier used for every call
	Model() string
	// Close releases any resources held by the client
	Close() error
}

// StructuredRequest is a single structured-output call.
type StructuredRequest struct {
	SystemPrompt string
	UserPrompt   string
	SchemaName   string
	Schema       json.RawMessage
	Temperature  float32
}

// Usage holds token counts reported by the provider. Missing figures are zero.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// StructuredResponse is the provider's answer to a StructuredRequest.
type StructuredResponse struct {
	Object json.RawMessage
	Usage  Usage
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Provider {
	case ProviderAnthropic:
		return NewAnthropicClient(config)
	case ProviderGemini:
		return NewGeminiClient(ctx, config)
	case ProviderOpenAI:
		return NewOpenAIClient(config)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}
