package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultAnthropicEndpoint = "https://api.anthropic.com/v1"
	anthropicVersion         = "2023-06-01"
)

// AnthropicClient implements Client for Anthropic Claude models using forced tool use:
// the schema is registered as the only tool's input schema and the tool input is the result.
type AnthropicClient struct {
	httpClient *http.Client
	config     *Config
	endpoint   string
}

// NewAnthropicClient creates a new Anthropic client
func NewAnthropicClient(config *Config) (*AnthropicClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	endpoint := strings.TrimSuffix(config.BaseURL, "/")
	if endpoint == "" {
		endpoint = defaultAnthropicEndpoint
	}

	return &AnthropicClient{
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		config:     config,
		endpoint:   endpoint,
	}, nil
}

type anthropicTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float32            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Tools       []anthropicTool    `json:"tools"`
	ToolChoice  map[string]string  `json:"tool_choice"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type  string          `json:"type"`
		Name  string          `json:"name,omitempty"`
		Text  string          `json:"text,omitempty"`
		Input json.RawMessage `json:"input,omitempty"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// GenerateStructured calls the Messages API with a single forced tool
func (c *AnthropicClient) GenerateStructured(ctx context.Context, req StructuredRequest) (*StructuredResponse, error) {
	toolName := req.SchemaName
	if toolName == "" {
		toolName = "structured_output"
	}

	body := anthropicRequest{
		Model:       c.config.Model,
		MaxTokens:   c.config.MaxOutputTokens,
		Temperature: req.Temperature,
		System:      req.SystemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: req.UserPrompt}},
		Tools: []anthropicTool{{
			Name:        toolName,
			Description: "Record the structured result.",
			InputSchema: req.Schema,
		}},
		ToolChoice: map[string]string{"type": "tool", "name": toolName},
	}
	if body.MaxTokens == 0 {
		body.MaxTokens = DefaultMaxOutputTokens
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.config.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(ProviderAnthropic, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, transportError(ProviderAnthropic, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, parseAnthropicError(httpResp.StatusCode, respBody)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &ModelError{
			Kind:     KindProvider,
			Provider: ProviderAnthropic,
			Message:  "failed to parse response",
			Cause:    err,
		}
	}

	usage := Usage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens}

	for _, block := range resp.Content {
		if block.Type == "tool_use" && block.Name == toolName && len(block.Input) > 0 {
			return &StructuredResponse{Object: block.Input, Usage: usage}, nil
		}
	}

	return nil, &ModelError{
		Kind:     KindSchemaInvalid,
		Provider: ProviderAnthropic,
		Message:  fmt.Sprintf("no %s tool call in response (stop_reason=%s)", toolName, resp.StopReason),
		Usage:    usage,
	}
}

// Model returns the configured model name
func (c *AnthropicClient) Model() string {
	return c.config.Model
}

// Close releases resources held by the client
func (c *AnthropicClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// parseAnthropicError converts an Anthropic error body into a tagged ModelError.
func parseAnthropicError(statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}

	modelErr := &ModelError{
		Kind:       kindForStatus(statusCode),
		Provider:   ProviderAnthropic,
		StatusCode: statusCode,
		Message:    strings.TrimSpace(string(body)),
	}

	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		modelErr.Message = errResp.Error.Message
		if errResp.Error.Type == "rate_limit_error" {
			modelErr.Kind = KindRateLimited
		}
	}

	return modelErr
}
