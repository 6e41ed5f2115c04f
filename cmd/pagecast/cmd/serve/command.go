// Package serve provides the HTTP server command.
package serve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/pagecast/cmd/application"
	"github.com/agentstation/pagecast/internal/server"
)

// NewCommand creates the serve command.
func NewCommand(app application.Application) *cobra.Command {
	defaults := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: "core",
		Short:   "Serve downloads and page streams over HTTP",
		Long: `Serve starts an HTTP server over the registered repositories.

Endpoints (under --prefix):
  POST /pages/{type}/{id}        download a single page
  POST /pages/{type}             download a collection
  GET  /pages/{type}/{id}        read a page (waits up to ?wait=)
  GET  /pages/{type}             read a collection
  GET  /pages/{type}/stream      SSE stream of pages (?field=&value=)
  GET  /pages/{type}/list/stream SSE stream of collections
  GET  /updates/stream           SSE stream of every broadcast
  GET  /updates/ws               WebSocket feed of every broadcast
  GET  /registrations            registered repositories

Environment Variables:
  HTTP_PORT - Server port
  HTTP_HOST - Bind address`,
		Example: `  pagecast serve
  pagecast serve --port 3000 --prefix /v1`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFromFlags(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), app, cfg)
		},
	}

	cmd.Flags().IntP("port", "p", defaults.Port, "Server port")
	cmd.Flags().String("host", defaults.Host, "Bind address")
	cmd.Flags().String("prefix", defaults.PathPrefix, "API path prefix")
	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout (0 keeps streams open)")
	cmd.Flags().Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")

	return cmd
}

// configFromFlags builds the server config from flags and environment.
func configFromFlags(cmd *cobra.Command) (server.Config, error) {
	cfg := server.DefaultConfig()
	cfg.Port, _ = cmd.Flags().GetInt("port")
	cfg.Host, _ = cmd.Flags().GetString("host")
	cfg.PathPrefix, _ = cmd.Flags().GetString("prefix")
	cfg.ReadTimeout, _ = cmd.Flags().GetDuration("read-timeout")
	cfg.WriteTimeout, _ = cmd.Flags().GetDuration("write-timeout")
	cfg.IdleTimeout, _ = cmd.Flags().GetDuration("idle-timeout")

	// Override with environment variables
	if envPort := os.Getenv("HTTP_PORT"); envPort != "" && !cmd.Flags().Changed("port") {
		p, err := strconv.Atoi(envPort)
		if err != nil || p <= 0 || p > 65535 {
			return cfg, fmt.Errorf("invalid HTTP_PORT %q", envPort)
		}
		cfg.Port = p
	}
	if envHost := os.Getenv("HTTP_HOST"); envHost != "" && !cmd.Flags().Changed("host") {
		cfg.Host = envHost
	}
	return cfg, nil
}

func run(ctx context.Context, app application.Application, cfg server.Config) error {
	client, err := app.Client()
	if err != nil {
		return err
	}
	cfg.DownloadTimeout = app.Timeout()

	logger := app.Logger()
	srv := server.New(client, cfg, logger)
	srv.Start()

	httpServer := srv.HTTPServer()
	logger.Info().
		Str("addr", httpServer.Addr).
		Str("prefix", cfg.PathPrefix).
		Int("registrations", len(client.Registrations())).
		Msg("Starting API server")

	return serveUntilDone(ctx, httpServer, srv, logger)
}

// serveUntilDone runs httpServer until it fails or ctx ends, then drains it.
func serveUntilDone(ctx context.Context, httpServer *http.Server, srv *server.Server, logger *zerolog.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stream handlers end when the server's base context is cancelled, so
	// background services stop before the listener drains.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Background services did not stop cleanly")
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info().Msg("Server stopped gracefully")
	return nil
}
