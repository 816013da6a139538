package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderAnthropic, config.Provider)
	assert.Equal(t, "claude-haiku-4-5", config.Model)
	assert.Equal(t, DefaultRequestTimeout, config.RequestTimeout)
	assert.Equal(t, DefaultMaxOutputTokens, config.MaxOutputTokens)
}

func TestDefaultConfigFor(t *testing.T) {
	tests := []struct {
		provider Provider
		model    string
	}{
		{ProviderAnthropic, "claude-haiku-4-5"},
		{ProviderGemini, "gemini-2.5-flash"},
		{ProviderOpenAI, "gpt-4o-mini"},
		{"unknown", ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			config := DefaultConfigFor(tt.provider)
			assert.Equal(t, tt.provider, config.Provider)
			assert.Equal(t, tt.model, config.Model)
			assert.Equal(t, DefaultRequestTimeout, config.RequestTimeout)
		})
	}
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		input   string
		want    Provider
		wantErr bool
	}{
		{"anthropic", ProviderAnthropic, false},
		{"gemini", ProviderGemini, false},
		{"openai", ProviderOpenAI, false},
		{"", "", true},
		{"Anthropic", "", true},
		{"mistral", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseProvider(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.APIKey = "key"
	require.NoError(t, valid.Validate())

	noKey := DefaultConfig()
	assert.ErrorContains(t, noKey.Validate(), "API key is required")

	noModel := *valid
	noModel.Model = ""
	assert.ErrorContains(t, noModel.Validate(), "no model configured")

	badProvider := *valid
	badProvider.Provider = "other"
	assert.Error(t, badProvider.Validate())

	negative := *valid
	negative.MaxOutputTokens = -1
	assert.Error(t, negative.Validate())
}
