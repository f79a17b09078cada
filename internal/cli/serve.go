package cli

import (
	"context"
	"fmt"
	"time"

	"screener/internal/api"
	"screener/internal/observability"
	"screener/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the browser UI",
	Long: `Start a local web server with the screener UI: dashboard, resume upload,
job description form and the candidate list with bulk matching.

Pages:
- GET /: Dashboard
- GET /upload: Upload a PDF resume
- GET /jobs: Create a job description
- GET /candidates: Select a job and resumes, match and review results
- GET /health: Health check, including whether the screening API answers

Set upload.watchDir (or --watch) to also upload PDFs dropped into a folder.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveFlags struct {
	host  string
	port  string
	watch string
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.port, "port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.host, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.watch, "watch", "", "Drop folder to upload PDFs from (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Flags override config values
	if serveFlags.host != "" {
		cfg.Server.Host = serveFlags.host
	}
	if serveFlags.port != "" {
		cfg.Server.Port = serveFlags.port
	}
	if serveFlags.watch != "" {
		cfg.Upload.WatchDir = serveFlags.watch
	}

	metrics, err := observability.NewManager(observability.SettingsFromConfig(cfg, Version), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := metrics.Shutdown(shutdownCtx); err != nil {
			logger.LogError(err, "Failed to shutdown observability")
		}
	}()

	client := api.NewClient(cfg.API, logger, api.WithRecorder(metrics))

	srv, err := server.NewServer(cfg, server.Options{
		Version: Version,
		Backend: client,
		Metrics: metrics,
	}, logger)
	if err != nil {
		return err
	}
	return srv.Start(cmd.Context())
}
