// Package main provides the entry point for the FAST Scorecard CLI and HTTP API server.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/fast-scorecard/internal/config"
	"github.com/jonathan/fast-scorecard/internal/llm"
	"github.com/jonathan/fast-scorecard/internal/scoring"
)

var rootCmd = &cobra.Command{
	Use:           "fast_scorecard",
	Short:         "FAST Scorecard evaluation engine",
	Long:          "FAST Scorecard scores prose against the five FAST criteria (Clarity, Simplexity, Error Correction, Unity, Pragmatic / Experience) using a structured-output language model, from the command line or over a REST API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath   string
	providerFlag string
	modelFlag    string
	logLevelFlag string
)

// newLLMClient builds the model client. Tests replace it with a fake.
var newLLMClient = llm.NewClient

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to JSON config file")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "LLM provider: anthropic, gemini or openai (overrides FAST_PROVIDER)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "Model identifier (overrides FAST_MODEL)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration. Command-line flags win over the
// environment, which wins over the config file and built-in defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if providerFlag != "" && providerFlag != cfg.Provider {
		cfg.Provider = providerFlag
		// Key and model from the environment belong to the previous provider.
		cfg.APIKey = ""
		cfg.Model = ""
		cfg.ResolveAPIKey()
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger returns a text logger for interactive use or a JSON logger for the server.
func newLogger(w io.Writer, level slog.Level, jsonFormat bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if jsonFormat {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// buildService wires the model client, invoker and cache into an evaluation service.
// The returned close func releases the model client.
func buildService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*scoring.Service, func(), error) {
	llmCfg, err := cfg.LLMConfig()
	if err != nil {
		return nil, nil, err
	}
	if llmCfg.APIKey == "" {
		return nil, nil, fmt.Errorf("%s environment variable is required", config.APIKeyEnv(cfg.Provider))
	}

	client, err := newLLMClient(ctx, llmCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	closeClient := func() { _ = client.Close() }

	invoker, err := scoring.NewInvoker(client, nil)
	if err != nil {
		closeClient()
		return nil, nil, fmt.Errorf("failed to create invoker: %w", err)
	}

	var cache *scoring.Cache
	cacheCfg, enabled, err := cfg.CacheConfig()
	if err != nil {
		closeClient()
		return nil, nil, err
	}
	if enabled {
		cache = scoring.NewCache(cacheCfg)
	}

	svc, err := scoring.NewService(scoring.ServiceConfig{
		Invoker: invoker,
		Cache:   cache,
		Logger:  logger,
	})
	if err != nil {
		closeClient()
		return nil, nil, err
	}

	return svc, closeClient, nil
}
