// Package app provides application lifecycle management for the readme sync server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stacklok/readmesync/internal/config"
)

// ReadmeSyncApp encapsulates all components needed to run the webhook server.
// It provides lifecycle management and graceful shutdown capabilities.
type ReadmeSyncApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	// metricsServer serves /metrics on its own address; nil when disabled
	metricsServer *http.Server

	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start serves webhook requests, and metrics when configured, blocking until the
// servers stop. If one server fails the other is closed.
func (app *ReadmeSyncApp) Start() error {
	g, ctx := errgroup.WithContext(app.ctx)

	g.Go(func() error {
		return listenAndServe(app.httpServer, "HTTP server")
	})

	if app.metricsServer != nil {
		g.Go(func() error {
			return listenAndServe(app.metricsServer, "metrics server")
		})
		// The group context ends when either server fails or the app is stopped
		g.Go(func() error {
			<-ctx.Done()
			_ = app.httpServer.Close()
			_ = app.metricsServer.Close()
			return nil
		})
	}

	return g.Wait()
}

func listenAndServe(server *http.Server, name string) error {
	slog.Info("Server listening", "server", name, "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

// Stop stops accepting connections and waits up to timeout for in-flight syncs to finish
func (app *ReadmeSyncApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...", "timeout", timeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := app.httpServer.Shutdown(shutdownCtx)

	if app.metricsServer != nil {
		if metricsErr := app.metricsServer.Shutdown(shutdownCtx); metricsErr != nil {
			slog.Warn("Failed to shut down metrics server", "error", metricsErr)
		}
	}

	// In-flight requests derive from the app context, so cancel only after the drain
	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *ReadmeSyncApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server (useful for testing to get the actual port)
func (app *ReadmeSyncApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// GetMetricsServer returns the metrics server, or nil when metrics are not served
func (app *ReadmeSyncApp) GetMetricsServer() *http.Server {
	return app.metricsServer
}
