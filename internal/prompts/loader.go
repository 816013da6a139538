// Package prompts provides a loader for externalized LLM prompt templates.
// Prompts are stored as JSON files and embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// EvaluationFile holds the FAST scoring prompts.
const EvaluationFile = "evaluation.json"

// Keys in EvaluationFile.
const (
	KeyScoringSystem = "scoring-system"
	KeyUserPrompt    = "user-prompt"
	KeyTitleBlock    = "title-block"
)

// cache stores parsed prompt files to avoid repeated JSON parsing
var (
	cache   = make(map[string]map[string]string)
	cacheMu sync.RWMutex
)

// Get retrieves a prompt by filename and key.
// The filename should not include the path (e.g., "evaluation.json").
// Returns an error if the file or key is not found.
func Get(filename, key string) (string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	prompt, exists := prompts[key]
	if !exists {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}

	return prompt, nil
}

// Format replaces template placeholders in the form {{.Key}} with values from data.
// Replacement is a single pass: placeholders that appear inside substituted values
// are left as they are.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, fmt.Sprintf("{{.%s}}", key), value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// EvaluationUserPrompt renders the user message for one evaluation.
// The title line is omitted when title is empty.
func EvaluationUserPrompt(text, title string) (string, error) {
	tmpl, err := Get(EvaluationFile, KeyUserPrompt)
	if err != nil {
		return "", err
	}
	titleBlock := ""
	if title != "" {
		block, err := Get(EvaluationFile, KeyTitleBlock)
		if err != nil {
			return "", err
		}
		titleBlock = Format(block, map[string]string{"Title": title})
	}
	return Format(tmpl, map[string]string{"TitleBlock": titleBlock, "Text": text}), nil
}

// loadFile loads and caches a prompt file.
func loadFile(filename string) (map[string]string, error) {
	// Check cache first
	cacheMu.RLock()
	if prompts, exists := cache[filename]; exists {
		cacheMu.RUnlock()
		return prompts, nil
	}
	cacheMu.RUnlock()

	// Load from embedded filesystem
	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var prompts map[string]string
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	// Cache the result
	cacheMu.Lock()
	cache[filename] = prompts
	cacheMu.Unlock()

	return prompts, nil
}
