// Package llm provides centralized LLM configuration and client abstractions.
// Every provider implements the same structured-output contract so the scoring engine
// never depends on a specific vendor SDK.
package llm

import (
	"fmt"
	"time"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderAnthropic is the Anthropic/Claude provider
	ProviderAnthropic Provider = "anthropic"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider
	ProviderOpenAI Provider = "openai"
)

// Default limits for a scoring call.
const (
	DefaultMaxOutputTokens = 4096
	DefaultRequestTimeout  = 120 * time.Second
)

var defaultModels = map[Provider]string{
	ProviderAnthropic: "claude-haiku-4-5",
	ProviderGemini:    "gemini-2.5-flash",
	ProviderOpenAI:    "gpt-4o-mini",
}

// Config holds the model configuration for the application
type Config struct {
	Provider        Provider
	Model           string
	APIKey          string
	BaseURL         string        // Optional endpoint override (tests, proxies)
	RequestTimeout  time.Duration // Transport deadline owned by the provider call
	MaxOutputTokens int
}

// DefaultConfig returns the default configuration (Anthropic Claude Haiku)
func DefaultConfig() *Config {
	return DefaultConfigFor(ProviderAnthropic)
}

// DefaultConfigFor returns the default configuration for a provider.
// The model is empty when the provider is unknown.
func DefaultConfigFor(p Provider) *Config {
	return &Config{
		Provider:        p,
		Model:           defaultModels[p],
		RequestTimeout:  DefaultRequestTimeout,
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}

// ParseProvider converts a configuration string into a Provider.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(s); p {
	case ProviderAnthropic, ProviderGemini, ProviderOpenAI:
		return p, nil
	default:
		return "", fmt.Errorf("unknown LLM provider %q", s)
	}
}

// Validate checks that the configuration can build a client.
func (c *Config) Validate() error {
	if _, err := ParseProvider(string(c.Provider)); err != nil {
		return err
	}
	if c.Model == "" {
		return fmt.Errorf("no model configured for provider %s", c.Provider)
	}
	if c.APIKey == "" {
		return fmt.Errorf("API key is required for provider %s", c.Provider)
	}
	if c.MaxOutputTokens < 0 {
		return fmt.Errorf("max output tokens must be non-negative")
	}
	return nil
}
