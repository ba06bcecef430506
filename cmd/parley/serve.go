package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/parley/internal/cli"
	httpAdapter "github.com/aretw0/parley/pkg/adapters/http"
	"github.com/aretw0/parley/pkg/observability"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Exposes the engine as a JSON API (POST /api/chatbot) with session inspection, SSE turn events and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := readOptions(cmd)
		port, _ := cmd.Flags().GetString("port")

		logger := cli.CreateLogger(opts)
		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		backend, err := cli.CreateBackend(sigCtx, opts, logger)
		if err != nil {
			return err
		}

		metrics := observability.NewMetrics(nil)
		streams := httpAdapter.NewStreamManager()
		engine, err := cli.CreateEngine(opts, backend, logger, metrics.Hooks(), streams.Hooks())
		if err != nil {
			return err
		}
		defer engine.Close()

		srv := &http.Server{
			Addr: ":" + port,
			Handler: httpAdapter.NewHandler(engine,
				httpAdapter.WithStreams(streams),
				httpAdapter.WithMetricsHandler(metrics.Handler()),
				httpAdapter.WithLogger(logger),
				httpAdapter.WithMaxInputSize(opts.MaxInputSize),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Parley Server on %s (sessions: %s)\n", srv.Addr, backend.Kind)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-sigCtx.Done():
			fmt.Printf("\nStart shutdown... Signal: %v\n", sigCtx.Signal())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// SSE subscribers never finish on their own, so a timeout here is expected with open streams.
			if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				logger.Warn("Graceful shutdown did not complete", "err", err)
			}
			if err := srv.Close(); err != nil {
				logger.Warn("Error closing server", "err", err)
			}
			fmt.Println("Parley Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
