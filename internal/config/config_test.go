package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/fast-scorecard/internal/llm"
)

// clearEnv blanks every variable the loader reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvProvider, EnvModel, EnvBaseURL, EnvCacheTTL, EnvCacheMaxEntries, EnvCacheDisabled,
		EnvEnvironment, EnvRequestTimeout, EnvPort, EnvLogLevel,
		"ANTHROPIC_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))
	return tmpFile
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	tmpFile := writeConfig(t, `{
		"provider": "gemini",
		"model": "gemini-2.5-pro",
		"cache_ttl": "10m",
		"cache_max_entries": 64,
		"port": 9090,
		"environment": "staging"
	}`)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)
	assert.Equal(t, "10m", cfg.CacheTTL)
	assert.Equal(t, 64, cfg.CacheMaxEntries)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "staging", cfg.Environment)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := writeConfig(t, `{ invalid json }`)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_DefaultsOnly(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "", cfg.Model)
	assert.Equal(t, "30m0s", cfg.CacheTTL)
	assert.Equal(t, 128, cfg.CacheMaxEntries)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvModel, "claude-sonnet-4-5")
	t.Setenv(EnvCacheMaxEntries, "16")
	t.Setenv("ANTHROPIC_API_KEY", "env-key")

	path := writeConfig(t, `{"model": "file-model", "cache_ttl": "5m", "environment": "staging"}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet-4-5", cfg.Model, "environment wins over file")
	assert.Equal(t, "5m", cfg.CacheTTL, "file wins over defaults")
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 16, cfg.CacheMaxEntries)
	assert.Equal(t, "env-key", cfg.APIKey)
}

func TestLoad_ProviderSpecificAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvProvider, "openai")
	t.Setenv("ANTHROPIC_API_KEY", "wrong")
	t.Setenv("OPENAI_API_KEY", "right")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "right", cfg.APIKey)
	assert.Equal(t, "OPENAI_API_KEY", APIKeyEnv("openai"))
}

func TestLoad_FileCanDisableCache(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{"cache_disabled": true}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	_, enabled, err := cfg.CacheConfig()
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvProvider, "mistral")

	_, err := Load("")
	assert.ErrorContains(t, err, "unknown LLM provider")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Defaults(), ""},
		{"bad duration", Config{CacheTTL: "soon"}, "'cache_ttl' is not a duration"},
		{"zero timeout", Config{RequestTimeout: "0s"}, "'request_timeout' must be positive"},
		{"negative entries", Config{CacheMaxEntries: -1}, "'cache_max_entries' must be non-negative"},
		{"negative tokens", Config{MaxOutputTokens: -5}, "'max_output_tokens' must be non-negative"},
		{"bad port", Config{Port: 70000}, "'port' must be between"},
		{"bad log level", Config{LogLevel: "verbose"}, "unknown log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{Model: "custom", Port: 9000}
	defaults := Config{Model: "default-model", Provider: "gemini", Port: 8080, CacheMaxEntries: 10}

	result := cfg.MergeWithDefaults(defaults)

	assert.Equal(t, "custom", result.Model)
	assert.Equal(t, 9000, result.Port)
	assert.Equal(t, "gemini", result.Provider)
	assert.Equal(t, 10, result.CacheMaxEntries)
	assert.Equal(t, "", cfg.Provider, "receiver is not modified")
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := &Config{Model: "custom", CacheDisabled: true}

	result := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "custom", result.Model)
	assert.True(t, result.CacheDisabled)
}

func TestLLMConfig(t *testing.T) {
	cfg := Defaults()
	cfg.APIKey = "key"
	cfg.RequestTimeout = "45s"

	llmCfg, err := cfg.LLMConfig()
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderAnthropic, llmCfg.Provider)
	assert.Equal(t, "claude-haiku-4-5", llmCfg.Model, "empty model falls back to the provider default")
	assert.Equal(t, 45*time.Second, llmCfg.RequestTimeout)
	assert.Equal(t, "key", llmCfg.APIKey)
	assert.NoError(t, llmCfg.Validate())

	cfg.Provider = "openai"
	cfg.MaxOutputTokens = 0
	llmCfg, err = cfg.LLMConfig()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", llmCfg.Model)
	assert.Equal(t, llm.DefaultMaxOutputTokens, llmCfg.MaxOutputTokens, "unset token cap keeps the provider default")

	cfg.Model = "gpt-4o"
	cfg.MaxOutputTokens = 2048
	llmCfg, err = cfg.LLMConfig()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", llmCfg.Model)
	assert.Equal(t, 2048, llmCfg.MaxOutputTokens)

	cfg.Provider = "other"
	_, err = cfg.LLMConfig()
	assert.Error(t, err)
}

func TestCacheConfig(t *testing.T) {
	cfg := Defaults()
	cfg.CacheTTL = "90s"
	cfg.CacheMaxEntries = 7

	cacheCfg, enabled, err := cfg.CacheConfig()
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.Equal(t, 90*time.Second, cacheCfg.TTL)
	assert.Equal(t, 7, cacheCfg.MaxEntries)
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "debug"}).SlogLevel())
	assert.Equal(t, slog.LevelWarn, (&Config{LogLevel: "WARN"}).SlogLevel())
	assert.Equal(t, slog.LevelInfo, (&Config{}).SlogLevel())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: "nope"}).SlogLevel())
}
