package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client for OpenAI chat models using the json_schema response format.
type OpenAIClient struct {
	client *openai.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(config *Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: config.RequestTimeout}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// GenerateStructured requests a single JSON object matching req.Schema
func (c *OpenAIClient) GenerateStructured(ctx context.Context, req StructuredRequest) (*StructuredResponse, error) {
	name := req.SchemaName
	if name == "" {
		name = "structured_output"
	}

	temperature := req.Temperature
	if temperature == 0 {
		// go-openai drops a zero temperature from the request body.
		temperature = math.SmallestNonzeroFloat32
	}

	chatReq := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
		Temperature:         temperature,
		MaxCompletionTokens: c.config.MaxOutputTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: req.Schema,
			},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	usage := Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens}

	if len(resp.Choices) == 0 {
		return nil, &ModelError{Kind: KindProvider, Provider: ProviderOpenAI, Message: "no choices in response", Usage: usage}
	}

	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return nil, &ModelError{Kind: KindProvider, Provider: ProviderOpenAI, Message: "model refused: " + msg.Refusal, Usage: usage}
	}

	return decodeReply(ProviderOpenAI, msg.Content, usage)
}

// Model returns the configured model name
func (c *OpenAIClient) Model() string {
	return c.config.Model
}

// Close releases resources held by the client
func (c *OpenAIClient) Close() error {
	return nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		kind := kindForStatus(apiErr.HTTPStatusCode)
		if apiErr.Type == "rate_limit_error" || apiErr.Type == "rate_limit_exceeded" {
			kind = KindRateLimited
		}
		return &ModelError{
			Kind:       kind,
			Provider:   ProviderOpenAI,
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Cause:      err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ModelError{
			Kind:       kindForStatus(reqErr.HTTPStatusCode),
			Provider:   ProviderOpenAI,
			StatusCode: reqErr.HTTPStatusCode,
			Message:    "request failed",
			Cause:      err,
		}
	}

	return transportError(ProviderOpenAI, err)
}
