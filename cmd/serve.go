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

	"github.com/khanhnv2901/sitecheck/internal/api"
	"github.com/khanhnv2901/sitecheck/internal/application"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON API and HTML form",
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)
		cfg := appCtx.Config
		if err := validateScanConfig(cfg.Scan); err != nil {
			return err
		}

		logger := appCtx.Logger
		defer func() {
			// Sync on stderr fails on some platforms.
			_ = logger.Sync()
		}()

		container := application.NewContainer(cfg.Scan.checkerConfig(), logger)
		server := api.NewServer(api.Config{
			Scans:       container.ScanService,
			AuthToken:   cfg.Serve.AuthToken,
			Logger:      logger.Named("api"),
			CORSOrigins: cfg.Serve.CORSOrigins,
			RateLimit:   cfg.Serve.RateLimit,
			RateBurst:   cfg.Serve.RateBurst,
			TrustProxy:  cfg.Serve.TrustProxy,
		})
		defer server.Close()

		httpServer := newHTTPServer(cfg.Serve.Addr, server)

		if !cfg.Scan.NoBanner {
			printBanner(cmd.OutOrStdout())
		}

		// Channel to listen for errors from the server
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s Listening on http://%s (API: POST /api/v1/scan)\n", colorInfo("→"), cfg.Serve.Addr)
			fmt.Fprintf(cmd.OutOrStdout(), "%s Press Ctrl+C to gracefully shutdown\n", colorInfo("→"))
			serverErrors <- httpServer.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		case sig := <-shutdown:
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s Received signal %v, initiating graceful shutdown...\n", colorInfo("→"), sig)

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Serve.ShutdownTimeout)
			defer cancel()

			if err := httpServer.Shutdown(ctx); err != nil {
				// Force close if graceful shutdown fails
				if closeErr := httpServer.Close(); closeErr != nil {
					return fmt.Errorf("failed to gracefully shutdown server: %w (close error: %v)", err, closeErr)
				}
				return fmt.Errorf("failed to gracefully shutdown server: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Server shutdown complete\n", colorSuccess("✓"))
		}

		return nil
	},
}

// newHTTPServer bounds every phase of a request. A scan can take two probe
// timeouts, so the write timeout leaves room for both.
func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func init() {
	serve := &cliConfig.Serve
	serveCmd.Flags().StringVar(&serve.Addr, "addr", serve.Addr, "Address for the HTTP server")
	serveCmd.Flags().StringVar(&serve.AuthToken, "auth-token", "", "Optional shared secret for API requests (X-Auth-Token)")
	serveCmd.Flags().DurationVar(&serve.ShutdownTimeout, "shutdown-timeout", serve.ShutdownTimeout, "Graceful shutdown timeout")
	serveCmd.Flags().StringSliceVar(&serve.CORSOrigins, "cors-origins", []string{}, "Allowed CORS origins (empty = allow all)")
	serveCmd.Flags().IntVar(&serve.RateLimit, "rate-limit", serve.RateLimit, "Rate limit per IP (requests/second, 0 = disabled)")
	serveCmd.Flags().IntVar(&serve.RateBurst, "rate-burst", serve.RateBurst, "Rate limit burst size")
	serveCmd.Flags().BoolVar(&serve.TrustProxy, "trust-proxy", false, "Rate limit on X-Forwarded-For/X-Real-IP (only behind a reverse proxy)")
	serveCmd.Flags().BoolVar(&cliConfig.Scan.NoBanner, "no-banner", false, "Suppress the ASCII banner")
	rootCmd.AddCommand(serveCmd)
}
