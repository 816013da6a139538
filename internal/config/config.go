// Package config provides configuration loading and validation for the service and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/fast-scorecard/internal/llm"
	"github.com/jonathan/fast-scorecard/internal/scoring"
)

// Environment variables read by FromEnv.
const (
	EnvProvider        = "FAST_PROVIDER"
	EnvModel           = "FAST_MODEL"
	EnvBaseURL         = "FAST_BASE_URL"
	EnvCacheTTL        = "FAST_CACHE_TTL"
	EnvCacheMaxEntries = "FAST_CACHE_MAX_ENTRIES"
	EnvCacheDisabled   = "FAST_CACHE_DISABLED"
	EnvEnvironment     = "FAST_ENVIRONMENT"
	EnvRequestTimeout  = "FAST_REQUEST_TIMEOUT"
	EnvPort            = "PORT"
	EnvLogLevel        = "LOG_LEVEL"
)

// apiKeyEnv maps each provider to the environment variable holding its key.
var apiKeyEnv = map[llm.Provider]string{
	llm.ProviderAnthropic: "ANTHROPIC_API_KEY",
	llm.ProviderGemini:    "GEMINI_API_KEY",
	llm.ProviderOpenAI:    "OPENAI_API_KEY",
}

// Config represents the service configuration that can be loaded from a JSON file.
// All fields are optional; missing values come from the environment or defaults.
type Config struct {
	// Model
	Provider        string `json:"provider,omitempty"`          // anthropic, gemini or openai
	Model           string `json:"model,omitempty"`             // Model identifier; defaults per provider
	APIKey          string `json:"api_key,omitempty"`           // Provider API key
	BaseURL         string `json:"base_url,omitempty"`          // Provider endpoint override
	RequestTimeout  string `json:"request_timeout,omitempty"`   // Provider HTTP timeout, e.g. "120s"
	MaxOutputTokens int    `json:"max_output_tokens,omitempty"` // Output token cap per call

	// Cache
	CacheTTL        string `json:"cache_ttl,omitempty"`         // e.g. "30m"
	CacheMaxEntries int    `json:"cache_max_entries,omitempty"` // FIFO capacity
	CacheDisabled   bool   `json:"cache_disabled,omitempty"`

	// Server
	Port        int    `json:"port,omitempty"`
	Environment string `json:"environment,omitempty"` // Reported by /api/health
	LogLevel    string `json:"log_level,omitempty"`   // debug, info, warn, error
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Provider:        string(llm.ProviderAnthropic),
		RequestTimeout:  llm.DefaultRequestTimeout.String(),
		MaxOutputTokens: llm.DefaultMaxOutputTokens,
		CacheTTL:        scoring.DefaultCacheTTL.String(),
		CacheMaxEntries: scoring.DefaultCacheMaxEntries,
		Port:            8080,
		Environment:     "development",
		LogLevel:        "info",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads the configuration fields set in the environment.
func FromEnv() Config {
	return Config{
		Provider:        os.Getenv(EnvProvider),
		Model:           os.Getenv(EnvModel),
		BaseURL:         os.Getenv(EnvBaseURL),
		RequestTimeout:  os.Getenv(EnvRequestTimeout),
		CacheTTL:        os.Getenv(EnvCacheTTL),
		CacheMaxEntries: getEnvInt(EnvCacheMaxEntries, 0),
		CacheDisabled:   getEnvBool(EnvCacheDisabled, false),
		Port:            getEnvInt(EnvPort, 0),
		Environment:     os.Getenv(EnvEnvironment),
		LogLevel:        os.Getenv(EnvLogLevel),
	}
}

// Load builds the effective configuration: environment over the optional file over defaults.
// The API key falls back to the provider's own environment variable.
func Load(path string) (*Config, error) {
	cfg := FromEnv()
	if path != "" {
		file, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = cfg.MergeWithDefaults(*file)
		cfg.CacheDisabled = cfg.CacheDisabled || file.CacheDisabled
	}
	cfg = cfg.MergeWithDefaults(Defaults())
	cfg.ResolveAPIKey()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ResolveAPIKey fills APIKey from the provider's environment variable when unset.
func (c *Config) ResolveAPIKey() {
	if c.APIKey != "" {
		return
	}
	if env, ok := apiKeyEnv[llm.Provider(c.Provider)]; ok {
		c.APIKey = os.Getenv(env)
	}
}

// APIKeyEnv returns the environment variable holding the key for provider.
func APIKeyEnv(provider string) string {
	return apiKeyEnv[llm.Provider(provider)]
}

// Validate checks that the configuration has valid values.
// Note: the API key is not required here; it is checked when a model client is built.
func (c *Config) Validate() error {
	if c.Provider != "" {
		if _, err := llm.ParseProvider(c.Provider); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}

	for name, value := range map[string]string{"request_timeout": c.RequestTimeout, "cache_ttl": c.CacheTTL} {
		if value == "" {
			continue
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("config error: '%s' is not a duration: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("config error: '%s' must be positive", name)
		}
	}

	if c.CacheMaxEntries < 0 {
		return fmt.Errorf("config error: 'cache_max_entries' must be non-negative")
	}
	if c.MaxOutputTokens < 0 {
		return fmt.Errorf("config error: 'max_output_tokens' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.LogLevel != "" {
		if _, err := parseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to layer environment, file and built-in values before CLI flags apply.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.RequestTimeout == "" {
		result.RequestTimeout = defaults.RequestTimeout
	}
	if result.CacheTTL == "" {
		result.CacheTTL = defaults.CacheTTL
	}
	if result.Environment == "" {
		result.Environment = defaults.Environment
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	// Int fields: use default if zero
	if result.MaxOutputTokens == 0 {
		result.MaxOutputTokens = defaults.MaxOutputTokens
	}
	if result.CacheMaxEntries == 0 {
		result.CacheMaxEntries = defaults.CacheMaxEntries
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// LLMConfig builds the model client configuration.
func (c *Config) LLMConfig() (*llm.Config, error) {
	provider, err := llm.ParseProvider(c.Provider)
	if err != nil {
		return nil, err
	}

	timeout, err := durationOr(c.RequestTimeout, llm.DefaultRequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid request timeout: %w", err)
	}

	out := llm.DefaultConfigFor(provider)
	if c.Model != "" {
		out.Model = c.Model
	}
	if c.MaxOutputTokens > 0 {
		out.MaxOutputTokens = c.MaxOutputTokens
	}
	out.APIKey = c.APIKey
	out.BaseURL = c.BaseURL
	out.RequestTimeout = timeout
	return out, nil
}

// CacheConfig builds the evaluation cache configuration.
// Returns ok=false when caching is disabled.
func (c *Config) CacheConfig() (scoring.CacheConfig, bool, error) {
	if c.CacheDisabled {
		return scoring.CacheConfig{}, false, nil
	}
	ttl, err := durationOr(c.CacheTTL, scoring.DefaultCacheTTL)
	if err != nil {
		return scoring.CacheConfig{}, false, fmt.Errorf("invalid cache TTL: %w", err)
	}
	return scoring.CacheConfig{TTL: ttl, MaxEntries: c.CacheMaxEntries}, true, nil
}

// SlogLevel returns the configured log level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

func durationOr(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
