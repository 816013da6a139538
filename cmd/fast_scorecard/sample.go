package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jonathan/fast-scorecard/internal/observability"
	"github.com/jonathan/fast-scorecard/internal/scoring"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Score the same text repeatedly and report score variance",
	Long: `Evaluate one text several times with the cache bypassed and report the mean,
range and standard deviation of each criterion and of the overall score.

Useful for checking how stable a model's scores are before switching models or prompts.`,
	RunE: runSample,
}

var (
	sampleInput       inputFlags
	sampleRuns        int
	sampleConcurrency int
	sampleJSON        bool
)

func init() {
	sampleCmd.Flags().StringVarP(&sampleInput.file, "file", "f", "", "Path to text file (\"-\" for stdin)")
	sampleCmd.Flags().StringVarP(&sampleInput.url, "url", "u", "", "URL to fetch the text from")
	sampleCmd.Flags().StringVarP(&sampleInput.title, "title", "t", "", "Optional title passed to the model")
	sampleCmd.Flags().IntVarP(&sampleRuns, "runs", "n", 5, "Number of evaluations")
	sampleCmd.Flags().IntVar(&sampleConcurrency, "concurrency", scoring.DefaultSampleConcurrency, "Maximum evaluations in flight")
	sampleCmd.Flags().BoolVar(&sampleJSON, "json", false, "Print the summary as JSON")

	rootCmd.AddCommand(sampleCmd)
}

func runSample(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd.Context()), os.Interrupt)
	defer stop()

	if sampleRuns < 1 {
		return fmt.Errorf("--runs must be at least 1")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	text, title, err := readInput(ctx, cmd.InOrStdin(), sampleInput)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.SlogLevel(), false)
	svc, closeClient, err := buildService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeClient()

	summary, err := scoring.Sample(ctx, svc, text, title, scoring.SampleConfig{
		Runs:        sampleRuns,
		Concurrency: sampleConcurrency,
	})
	if err != nil {
		return fmt.Errorf("sampling failed: %w", err)
	}

	if sampleJSON {
		return writeJSON(cmd.OutOrStdout(), summary)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintSampleSummary(summary)
	return nil
}
