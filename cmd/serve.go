package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/achievemate/gradeflow/internal/config"
	"github.com/achievemate/gradeflow/internal/logger"
	"github.com/achievemate/gradeflow/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the grade pipeline over HTTP",
	Long: `Run the HTTP API the mobile client talks to:

  POST /v1/extract  - parse OCR text into a review document (no backend calls)
  POST /v1/review   - run the full pipeline up to ready-for-review
  POST /v1/submit   - persist an approved upload
  GET  /healthz     - liveness probe

Required environment variables:
  BACKEND_BASE_URL - Base URL of the persistence backend
  SERVER_ADDR      - Listen address (default :8080)`,
	Example: `  # Serve on the configured address
  gradeflow serve

  # Override the listen address
  gradeflow serve --addr :9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (overrides SERVER_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Configuration is incomplete")
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.ServerAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(buildOrchestrator(cfg)).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server failed")
			return fmt.Errorf("http server failed: %w", err)
		}
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown failed")
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
	}

	log.Info().Msg("HTTP server stopped")
	return nil
}
