// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/fast-scorecard/internal/rubric"
	"github.com/jonathan/fast-scorecard/internal/scoring"
	"github.com/jonathan/fast-scorecard/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// barWidth is the number of cells in a score bar
	barWidth = 10
	// maxKeyTerms is the default number of key terms to display
	maxKeyTerms = 6
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintScorecard outputs the scores, overall score, diagnostics and usage of one evaluation.
func (p *Printer) PrintScorecard(result *types.EvaluationResult) {
	if result == nil {
		return
	}

	var sb strings.Builder

	if result.Title != "" {
		sb.WriteString(fmt.Sprintf("Title:    %s\n", result.Title))
	}
	if result.CoreThesis != "" {
		for i, line := range wrap(result.CoreThesis, boxWidth-14) {
			if i == 0 {
				sb.WriteString(fmt.Sprintf("Thesis:   %s\n", line))
			} else {
				sb.WriteString(fmt.Sprintf("          %s\n", line))
			}
		}
	}
	if len(result.KeyTerms) > 0 {
		terms := result.KeyTerms
		suffix := ""
		if len(terms) > maxKeyTerms {
			suffix = fmt.Sprintf(" (+%d)", len(terms)-maxKeyTerms)
			terms = terms[:maxKeyTerms]
		}
		sb.WriteString(fmt.Sprintf("Terms:    %s%s\n", strings.Join(terms, ", "), suffix))
	}
	sb.WriteString("\n")

	for _, s := range result.Scores {
		sb.WriteString(fmt.Sprintf("%-22s %4.1f  %s\n", rubric.Label(s.Criterion), s.Score, bar(s.Score)))
	}
	sb.WriteString(fmt.Sprintf("%-22s %4.1f  %s\n", "Overall", result.OverallScore, bar(result.OverallScore)))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Context sufficiency: %s\n", result.ContextSufficiency))
	sb.WriteString(fmt.Sprintf("Rhetoric risk:       %s\n", result.RhetoricRisk))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Model:    %s\n", result.ModelUsed))
	sb.WriteString(fmt.Sprintf("Tokens:   %d in / %d out\n", result.InputTokens, result.OutputTokens))
	sb.WriteString(fmt.Sprintf("Cost:     $%.4f\n", result.CostUSD))
	sb.WriteString(fmt.Sprintf("Time:     %d ms", result.ProcessingTimeMs))

	p.printBox("FAST SCORECARD", sb.String())
}

// PrintFeedback outputs the per-criterion evaluation and suggestion, followed by the summary.
func (p *Printer) PrintFeedback(result *types.EvaluationResult) {
	if result == nil || len(result.Scores) == 0 {
		return
	}

	var sb strings.Builder
	for i, s := range result.Scores {
		sb.WriteString(fmt.Sprintf("%s (%.1f)\n", rubric.Label(s.Criterion), s.Score))
		if desc := rubric.Description(s.Criterion); desc != "" {
			for _, line := range wrap(desc, boxWidth-6) {
				sb.WriteString(fmt.Sprintf("  %s\n", line))
			}
		}
		for _, line := range wrap(s.Evaluation, boxWidth-6) {
			sb.WriteString(fmt.Sprintf("  %s\n", line))
		}
		if s.Suggestion != "" {
			for j, line := range wrap(s.Suggestion, boxWidth-8) {
				if j == 0 {
					sb.WriteString(fmt.Sprintf("  → %s\n", line))
				} else {
					sb.WriteString(fmt.Sprintf("    %s\n", line))
				}
			}
		}
		if i < len(result.Scores)-1 {
			sb.WriteString("\n")
		}
	}

	if result.Summary != "" {
		sb.WriteString("\nSummary:\n")
		for _, line := range wrap(result.Summary, boxWidth-6) {
			sb.WriteString(fmt.Sprintf("  %s\n", line))
		}
	}

	p.printBox("FEEDBACK", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSampleSummary outputs score variance across repeated evaluations.
func (p *Printer) PrintSampleSummary(summary *scoring.SampleSummary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Runs: %d succeeded, %d failed\n\n", summary.Runs, summary.Failed))
	sb.WriteString(fmt.Sprintf("%-22s %5s %5s %5s %6s\n", "Criterion", "mean", "min", "max", "stddev"))
	for _, c := range summary.Criteria {
		sb.WriteString(statsRow(rubric.Label(c.Criterion), c.Stats))
	}
	sb.WriteString(statsRow("Overall", summary.Overall))
	sb.WriteString(fmt.Sprintf("\nOverall spread: %.2f\n", summary.Overall.Range()))
	sb.WriteString(fmt.Sprintf("Total cost:     $%.4f", summary.TotalCostUSD))

	if len(summary.Errors) > 0 {
		sb.WriteString("\n\nFailures:\n")
		for i, e := range summary.Errors {
			sb.WriteString(fmt.Sprintf("⚠ %s", e))
			if i < len(summary.Errors)-1 {
				sb.WriteString("\n")
			}
		}
	}

	p.printBox("SCORE VARIANCE", sb.String())
}

func statsRow(label string, s scoring.Stats) string {
	return fmt.Sprintf("%-22s %5.2f %5.1f %5.1f %6.2f\n", label, s.Mean, s.Min, s.Max, s.StdDev)
}

// bar renders a 0-10 score as a fixed-width bar.
func bar(score float64) string {
	filled := int(score + 0.5)
	filled = max(0, min(barWidth, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// truncate shortens s to at most width runes.
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// wrap breaks text into lines of at most width runes on word boundaries.
func wrap(text string, width int) []string {
	var lines []string
	var line []rune
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		if len(line) > 0 && len(line)+1+len(w) > width {
			lines = append(lines, string(line))
			line = line[:0]
		}
		if len(line) > 0 {
			line = append(line, ' ')
		}
		line = append(line, w...)
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	return lines
}
