package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/fast-scorecard/internal/observability"
	"github.com/jonathan/fast-scorecard/internal/scoring"
	"github.com/jonathan/fast-scorecard/internal/types"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a text from a file, a URL or stdin",
	Long: `Score a text against the FAST rubric and print the scorecard.

The text is read from --file, fetched from --url, or read from stdin when neither is given.`,
	Example: `  fast_scorecard evaluate --file essay.md --title "On Maps"
  cat essay.md | fast_scorecard evaluate --json
  fast_scorecard evaluate --url https://example.com/post --feedback`,
	RunE: runEvaluate,
}

var (
	evalInput       inputFlags
	evalJSON        bool
	evalBypassCache bool
	evalFeedback    bool
)

func init() {
	evaluateCmd.Flags().StringVarP(&evalInput.file, "file", "f", "", "Path to text file (\"-\" for stdin)")
	evaluateCmd.Flags().StringVarP(&evalInput.url, "url", "u", "", "URL to fetch the text from")
	evaluateCmd.Flags().StringVarP(&evalInput.title, "title", "t", "", "Optional title passed to the model")
	evaluateCmd.Flags().BoolVar(&evalJSON, "json", false, "Print the result as JSON")
	evaluateCmd.Flags().BoolVar(&evalBypassCache, "bypass-cache", false, "Skip the result cache")
	evaluateCmd.Flags().BoolVar(&evalFeedback, "feedback", false, "Also print per-criterion evaluations and suggestions")

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd.Context()), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	text, title, err := readInput(ctx, cmd.InOrStdin(), evalInput)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.SlogLevel(), false)
	svc, closeClient, err := buildService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeClient()

	result, err := svc.Evaluate(ctx, text, title, scoring.Options{BypassCache: evalBypassCache})
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	return writeResult(cmd.OutOrStdout(), result, evalJSON, evalFeedback)
}

func writeResult(w io.Writer, result *types.EvaluationResult, asJSON, feedback bool) error {
	if asJSON {
		return writeJSON(w, result)
	}

	printer := observability.NewPrinter(w)
	printer.PrintScorecard(result)
	if feedback {
		printer.PrintFeedback(result)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// commandContext returns ctx, falling back to Background for commands run outside Execute.
func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
