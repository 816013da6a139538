package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/fast-scorecard/internal/config"
	"github.com/jonathan/fast-scorecard/internal/llm"
	"github.com/jonathan/fast-scorecard/internal/scoring"
	"github.com/jonathan/fast-scorecard/internal/types"
)

const modelObject = `{
	"coreThesis": "A model is useful only while it stays in contact with what it models.",
	"keyTerms": ["map", "territory", "contact"],
	"title": "On Maps",
	"scores": [
		{"criterion": "unity", "score": 5, "evaluation": "Holds together.", "suggestion": "Tie the sections."},
		{"criterion": "clarity", "score": 7, "evaluation": "Clean definitions.", "suggestion": "Define contact."},
		{"criterion": "pragmaticExperience", "score": 4, "evaluation": "Few examples.", "suggestion": "Add a case."},
		{"criterion": "simplexity", "score": 6, "evaluation": "Compact.", "suggestion": "Keep the nuance."},
		{"criterion": "errorCorrection", "score": 5, "evaluation": "Some checks.", "suggestion": "Name a failure."}
	],
	"summary": "Strong clarity, weak contact.",
	"contextSufficiency": "medium",
	"rhetoricRisk": "low"
}`

var essay = strings.Repeat("Maps are useful until the territory changes under them. ", 4)

// stubClient answers every call with modelObject.
type stubClient struct {
	mu    sync.Mutex
	model string
	calls int
}

func (s *stubClient) GenerateStructured(_ context.Context, _ llm.StructuredRequest) (*llm.StructuredResponse, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return &llm.StructuredResponse{
		Object: json.RawMessage(modelObject),
		Usage:  llm.Usage{InputTokens: 2000, OutputTokens: 800},
	}, nil
}

func (s *stubClient) Model() string { return s.model }
func (s *stubClient) Close() error  { return nil }

// setupCLI isolates a test from the host environment and from flag values set by other tests.
func setupCLI(t *testing.T) *stubClient {
	t.Helper()
	for _, key := range []string{
		config.EnvProvider, config.EnvModel, config.EnvBaseURL, config.EnvCacheTTL,
		config.EnvCacheMaxEntries, config.EnvCacheDisabled, config.EnvEnvironment,
		config.EnvRequestTimeout, config.EnvPort, config.EnvLogLevel,
		"GEMINI_API_KEY", "OPENAI_API_KEY",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv(config.EnvLogLevel, "error")

	stub := &stubClient{}
	origClient := newLLMClient
	newLLMClient = func(_ context.Context, cfg *llm.Config) (llm.Client, error) {
		stub.model = cfg.Model
		return stub, nil
	}

	t.Cleanup(func() {
		newLLMClient = origClient
		configPath, providerFlag, modelFlag, logLevelFlag = "", "", "", ""
		evalInput, evalJSON, evalBypassCache, evalFeedback = inputFlags{}, false, false, false
		sampleInput, sampleRuns, sampleConcurrency, sampleJSON = inputFlags{}, 5, scoring.DefaultSampleConcurrency, false
	})
	return stub
}

func writeEssay(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "essay.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadInput_File(t *testing.T) {
	path := writeEssay(t, "\n"+essay+"\n\n")

	text, title, err := readInput(context.Background(), strings.NewReader(""), inputFlags{file: path, title: "On Maps"})
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(essay), text)
	assert.Equal(t, "On Maps", title)
}

func TestReadInput_Stdin(t *testing.T) {
	for _, file := range []string{"", "-"} {
		text, _, err := readInput(context.Background(), strings.NewReader(essay), inputFlags{file: file})
		require.NoError(t, err)
		assert.Equal(t, strings.TrimSpace(essay), text)
	}
}

func TestReadInput_URL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Maps and Territories</title></head><body><article><p>` + essay + `</p></article></body></html>`))
	}))
	defer server.Close()

	text, title, err := readInput(context.Background(), nil, inputFlags{url: server.URL})
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(essay), text)
	assert.Equal(t, "Maps and Territories", title)

	_, title, err = readInput(context.Background(), nil, inputFlags{url: server.URL, title: "Mine"})
	require.NoError(t, err)
	assert.Equal(t, "Mine", title, "explicit title wins over the page title")
}

func TestReadInput_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      inputFlags
		stdin   string
		wantErr string
	}{
		{"both sources", inputFlags{file: "a.txt", url: "https://example.com"}, "", "mutually exclusive"},
		{"missing file", inputFlags{file: "/nonexistent/essay.md"}, "", "failed to read input file"},
		{"too short", inputFlags{}, "too short", "at least 100 characters (got 9)"},
		{"title too long", inputFlags{title: strings.Repeat("t", 201)}, essay, "title must not exceed 200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := readInput(context.Background(), strings.NewReader(tt.stdin), tt.in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateInput_CountsCharacters(t *testing.T) {
	assert.NoError(t, validateInput(strings.Repeat("é", 100), ""))
	assert.ErrorContains(t, validateInput(strings.Repeat("é", 99), ""), "got 99")
	assert.ErrorContains(t, validateInput(strings.Repeat("a", 50001), ""), "must not exceed 50000")
}

func TestClampRunes(t *testing.T) {
	assert.Equal(t, "abc", clampRunes("abc", 5))
	assert.Equal(t, "éé", clampRunes("ééé", 2))
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	setupCLI(t)
	t.Setenv(config.EnvModel, "claude-sonnet-4-5")
	t.Setenv("OPENAI_API_KEY", "openai-key")

	providerFlag = "openai"
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "openai-key", cfg.APIKey)
	assert.Equal(t, "", cfg.Model, "a model chosen for another provider is dropped")

	modelFlag = "gpt-4.1"
	logLevelFlag = "debug"
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1", cfg.Model)
	assert.Equal(t, "debug", cfg.LogLevel)

	providerFlag = "mistral"
	_, err = loadConfig()
	assert.Error(t, err)
}

func TestBuildService_RequiresAPIKey(t *testing.T) {
	setupCLI(t)
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg, err := loadConfig()
	require.NoError(t, err)

	_, _, err = buildService(context.Background(), cfg, newLogger(&bytes.Buffer{}, cfg.SlogLevel(), false))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY environment variable is required")
}

func TestBuildService_UsesCache(t *testing.T) {
	stub := setupCLI(t)

	cfg, err := loadConfig()
	require.NoError(t, err)
	svc, closeClient, err := buildService(context.Background(), cfg, newLogger(&bytes.Buffer{}, cfg.SlogLevel(), false))
	require.NoError(t, err)
	defer closeClient()

	assert.Equal(t, "claude-haiku-4-5", svc.Model())

	for i := 0; i < 2; i++ {
		_, err := svc.Evaluate(context.Background(), essay, "", scoring.Options{})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, stub.calls)
}

func TestRunEvaluate_JSON(t *testing.T) {
	stub := setupCLI(t)
	evalInput = inputFlags{file: writeEssay(t, essay), title: "On Maps"}
	evalJSON = true

	var out bytes.Buffer
	evaluateCmd.SetOut(&out)
	defer evaluateCmd.SetOut(nil)

	require.NoError(t, runEvaluate(evaluateCmd, nil))
	assert.Equal(t, 1, stub.calls)

	var result types.EvaluationResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, 5.4, result.OverallScore)
	assert.Equal(t, types.CriterionClarity, result.Scores[0].Criterion)
	assert.Equal(t, types.CriterionPragmaticExperience, result.Scores[4].Criterion)
	assert.Equal(t, "claude-haiku-4-5", result.ModelUsed)
	assert.InDelta(t, 0.006, result.CostUSD, 1e-12)
}

func TestRunEvaluate_Boxed(t *testing.T) {
	setupCLI(t)
	evalFeedback = true

	var out bytes.Buffer
	evaluateCmd.SetOut(&out)
	evaluateCmd.SetIn(strings.NewReader(essay))
	defer func() {
		evaluateCmd.SetOut(nil)
		evaluateCmd.SetIn(nil)
	}()

	require.NoError(t, runEvaluate(evaluateCmd, nil))
	output := out.String()
	assert.Contains(t, output, "FAST SCORECARD")
	assert.Contains(t, output, "Pragmatic / Experience")
	assert.Contains(t, output, "FEEDBACK")
	assert.Contains(t, output, "→ Define contact.")
}

func TestRunSample_JSON(t *testing.T) {
	stub := setupCLI(t)
	sampleInput = inputFlags{file: writeEssay(t, essay)}
	sampleRuns = 3
	sampleJSON = true

	var out bytes.Buffer
	sampleCmd.SetOut(&out)
	defer sampleCmd.SetOut(nil)

	require.NoError(t, runSample(sampleCmd, nil))
	assert.Equal(t, 3, stub.calls, "sampling bypasses the cache")

	var summary scoring.SampleSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, 3, summary.Runs)
	assert.Equal(t, 0, summary.Failed)
	require.Len(t, summary.Criteria, 5)
	assert.InDelta(t, 0.0, summary.Overall.StdDev, 1e-9)
}

func TestRunSample_InvalidRuns(t *testing.T) {
	setupCLI(t)
	sampleRuns = 0

	err := runSample(sampleCmd, nil)
	assert.ErrorContains(t, err, "--runs must be at least 1")
}
