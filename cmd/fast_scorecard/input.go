package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/fast-scorecard/internal/fetch"
	"github.com/jonathan/fast-scorecard/internal/types"
)

// inputFlags selects where the text to score comes from.
type inputFlags struct {
	file  string
	url   string
	title string
}

// readInput loads the text from a file, a URL or stdin, in that order of preference.
// A page title found at the URL is used when no title was given.
func readInput(ctx context.Context, stdin io.Reader, in inputFlags) (string, string, error) {
	if in.file != "" && in.url != "" {
		return "", "", fmt.Errorf("--file and --url are mutually exclusive; provide only one")
	}

	title := in.title
	var text string

	switch {
	case in.url != "":
		article, err := fetch.FetchArticle(ctx, in.url, nil)
		if err != nil {
			return "", "", fmt.Errorf("failed to fetch URL: %w", err)
		}
		text = article.Text
		if title == "" {
			title = clampRunes(article.Title, types.MaxTitleLength)
		}
	case in.file != "" && in.file != "-":
		data, err := os.ReadFile(in.file)
		if err != nil {
			return "", "", fmt.Errorf("failed to read input file: %w", err)
		}
		text = string(data)
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if err := validateInput(text, title); err != nil {
		return "", "", err
	}
	return text, title, nil
}

// validateInput applies the same length bounds as the HTTP API.
func validateInput(text, title string) error {
	req := types.EvaluationRequest{Text: &text, Title: title}
	if err := req.Validate(); err != nil {
		n := utf8.RuneCountInString(text)
		switch {
		case n < types.MinTextLength:
			return fmt.Errorf("text must be at least %d characters (got %d)", types.MinTextLength, n)
		case n > types.MaxTextLength:
			return fmt.Errorf("text must not exceed %d characters (got %d)", types.MaxTextLength, n)
		default:
			return fmt.Errorf("title must not exceed %d characters", types.MaxTitleLength)
		}
	}
	return nil
}

func clampRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
