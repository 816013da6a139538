package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
)

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []option.ClientOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(config.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// GenerateStructured generates JSON content constrained by a response schema
func (c *GeminiClient) GenerateStructured(ctx context.Context, req StructuredRequest) (*StructuredResponse, error) {
	responseSchema, err := GeminiSchema(req.Schema)
	if err != nil {
		return nil, err
	}

	model := c.client.GenerativeModel(c.config.Model)
	model.SetTemperature(req.Temperature)
	if c.config.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(c.config.MaxOutputTokens))
	}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = responseSchema
	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemPrompt)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.UserPrompt))
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	var usage Usage
	if resp.UsageMetadata != nil {
		usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return nil, &ModelError{Kind: KindProvider, Provider: ProviderGemini, Message: err.Error(), Usage: usage}
	}

	return decodeReply(ProviderGemini, text, usage)
}

// Model returns the configured model name
func (c *GeminiClient) Model() string {
	return c.config.Model
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}

func classifyGeminiError(err error) error {
	modelErr := &ModelError{Kind: KindProvider, Provider: ProviderGemini, Message: "generate content failed", Cause: err}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if status := apiErr.GRPCStatus(); status != nil {
			switch status.Code() {
			case codes.ResourceExhausted:
				modelErr.Kind = KindRateLimited
			case codes.DeadlineExceeded:
				modelErr.Kind = KindTimeout
			}
		}
		if code := apiErr.HTTPCode(); code > 0 {
			modelErr.StatusCode = code
			if modelErr.Kind == KindProvider {
				modelErr.Kind = kindForStatus(code)
			}
		}
		return modelErr
	}

	return transportError(ProviderGemini, err)
}

// jsonSchemaNode is the subset of JSON Schema that Gemini response schemas can express.
type jsonSchemaNode struct {
	Type        string                     `json:"type"`
	Description string                     `json:"description"`
	Enum        []string                   `json:"enum"`
	Items       *jsonSchemaNode            `json:"items"`
	Properties  map[string]*jsonSchemaNode `json:"properties"`
	Required    []string                   `json:"required"`
}

// GeminiSchema converts a JSON Schema document to a Gemini response schema.
// Cardinality and length constraints have no Gemini equivalent and are dropped;
// callers validate the returned object against the full JSON Schema.
func GeminiSchema(schemaJSON []byte) (*genai.Schema, error) {
	var root jsonSchemaNode
	if err := json.Unmarshal(schemaJSON, &root); err != nil {
		return nil, fmt.Errorf("failed to parse response schema: %w", err)
	}
	return convertSchemaNode(&root)
}

func convertSchemaNode(n *jsonSchemaNode) (*genai.Schema, error) {
	out := &genai.Schema{Description: n.Description, Enum: n.Enum}

	switch n.Type {
	case "object":
		out.Type = genai.TypeObject
		out.Required = n.Required
		out.Properties = make(map[string]*genai.Schema, len(n.Properties))
		for name, prop := range n.Properties {
			converted, err := convertSchemaNode(prop)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", name, err)
			}
			out.Properties[name] = converted
		}
	case "array":
		out.Type = genai.TypeArray
		if n.Items == nil {
			return nil, fmt.Errorf("array schema without items")
		}
		items, err := convertSchemaNode(n.Items)
		if err != nil {
			return nil, err
		}
		out.Items = items
	case "string":
		out.Type = genai.TypeString
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	default:
		return nil, fmt.Errorf("unsupported schema type %q", n.Type)
	}

	return out, nil
}
