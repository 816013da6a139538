package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/fast-scorecard/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes POST /api/evaluate, POST /api/evaluate/stream, GET /api/health and GET /metrics.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT, default 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	logger := newLogger(os.Stdout, cfg.SlogLevel(), true)

	svc, closeClient, err := buildService(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeClient()

	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		Environment: cfg.Environment,
		Evaluator:   svc,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
