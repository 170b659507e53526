package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stacklok/readmesync/internal/app"
	"github.com/stacklok/readmesync/internal/config"
	"github.com/stacklok/readmesync/internal/telemetry"
	"github.com/stacklok/readmesync/internal/versions"
)

// telemetryShutdownTimeout bounds the final flush of spans and metrics
const telemetryShutdownTimeout = 5 * time.Second

type serveOptions struct {
	configPath string
	address    string
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook server",
		Long: `Start the webhook server. Every request carrying the github_repo and
dockerhub_repo query parameters copies README.md from GitHub to Docker Hub.

The configuration file (--config) holds the Docker Hub credentials and the
optional GitHub token, timeouts and telemetry settings. Any value can be
overridden with READMESYNC_* environment variables.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := serveOptions{}
			var err error
			if opts.configPath, err = cmd.Flags().GetString("config"); err != nil {
				return err
			}
			if opts.address, err = cmd.Flags().GetString("address"); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, opts)
		},
	}

	cmd.Flags().String("config", config.DefaultConfigPath, "Path to configuration file (JSON or YAML)")
	cmd.Flags().String("address", "", "Address to listen on, overrides the configured port")

	return cmd
}

// serve runs the server until ctx is cancelled or a server fails, then drains in-flight requests
func serve(ctx context.Context, opts serveOptions) error {
	cfg, err := config.LoadConfig(config.WithConfigPath(opts.configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Info("Loaded configuration", "path", opts.configPath, "dockerhub_username", cfg.DockerHubUsername)

	if cfg.Telemetry != nil && cfg.Telemetry.ServiceVersion == "" {
		cfg.Telemetry.ServiceVersion = versions.GetVersionInfo().Version
	}
	tel, err := telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown telemetry", "error", err)
		}
	}()

	appOpts := []app.ReadmeSyncAppOptions{
		app.WithConfig(cfg),
		app.WithTracerProvider(tel.TracerProvider()),
		app.WithMeterProvider(tel.MeterProvider()),
		app.WithMetricsServer(tel.PrometheusAddress(), tel.MetricsHandler()),
	}
	if opts.address != "" {
		appOpts = append(appOpts, app.WithAddress(opts.address))
	}

	// The app context outlives ctx so in-flight syncs survive the signal and drain.
	syncApp, err := app.NewReadmeSyncApp(context.WithoutCancel(ctx), appOpts...)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- syncApp.Start()
	}()

	select {
	case err := <-errCh:
		slog.Error("Server failed", "error", err)
		_ = syncApp.Stop(cfg.GetShutdownTimeout())
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	if err := syncApp.Stop(cfg.GetShutdownTimeout()); err != nil {
		return err
	}
	if err := <-errCh; err != nil {
		return err
	}

	slog.Info("Server shutdown complete")
	return nil
}
