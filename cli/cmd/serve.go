package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fluxbase-eu/gqlvalidate/internal/api"
	"github.com/fluxbase-eu/gqlvalidate/internal/demo"
	"github.com/fluxbase-eu/gqlvalidate/internal/observability"
	"github.com/fluxbase-eu/gqlvalidate/internal/validation"
)

var serveAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sample schema over HTTP",
	Long: `Serve the sample schema over HTTP.

Routes:
  POST /graphql   execute a document (depth, complexity and fragment limits apply)
  GET  /graphql   introspection, when enabled
  GET  /health    liveness
  GET  /metrics   Prometheus metrics, when enabled

Examples:
  gqlvalidate serve
  gqlvalidate serve --config config.yaml
  gqlvalidate serve --address :9090 --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddress, "address", "a", "", "override listen address")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddress != "" {
		cfg.Server.Address = serveAddress
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracing, err := observability.SetupTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Failed to flush traces")
		}
	}()

	opts := []validation.Option{
		validation.WithTracer(tracing.Tracer("gqlvalidate/validation")),
		validation.WithLogRejections(cfg.Validation.LogRejections),
		validation.WithExtensionKey(cfg.Validation.ExtensionKey),
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
		opts = append(opts, validation.WithRecorder(metrics))
	}

	schema, err := demo.NewSchema(opts...)
	if err != nil {
		return err
	}

	server := api.NewServer(cfg, schema.Schema, metrics)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}
