package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/readmesync/internal/api"
	"github.com/stacklok/readmesync/internal/config"
	"github.com/stacklok/readmesync/internal/dockerhub"
	"github.com/stacklok/readmesync/internal/github"
	"github.com/stacklok/readmesync/internal/readmesync"
	"github.com/stacklok/readmesync/internal/telemetry"
)

const (
	defaultReadTimeout       = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultIdleTimeout       = 60 * time.Second

	// writeTimeoutMargin leaves room to write the response after the request timeout fires
	writeTimeoutMargin = 15 * time.Second
)

// ReadmeSyncAppOptions is a function that configures the readme sync app builder
type ReadmeSyncAppOptions func(*readmeSyncAppConfig) error

// readmeSyncAppConfig collects the builder settings
// It supports dependency injection for testing while providing sensible defaults for production
type readmeSyncAppConfig struct {
	config *config.Config

	// Optional component overrides (primarily for testing)
	syncService     readmesync.Service
	githubOptions   []github.Option
	dockerhubOption []dockerhub.Option

	// HTTP server options
	address        string
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	idleTimeout    time.Duration

	// Telemetry components
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	metricsAddress string
	metricsHandler http.Handler
}

func baseConfig(opts ...ReadmeSyncAppOptions) (*readmeSyncAppConfig, error) {
	cfg := &readmeSyncAppConfig{
		readTimeout: defaultReadTimeout,
		idleTimeout: defaultIdleTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.address == "" {
		cfg.address = cfg.config.GetAddress()
	}
	if cfg.requestTimeout == 0 {
		cfg.requestTimeout = cfg.config.GetRequestTimeout()
	}

	return cfg, nil
}

// NewReadmeSyncApp builds the sync service and the HTTP server around it
func NewReadmeSyncApp(
	ctx context.Context,
	opts ...ReadmeSyncAppOptions,
) (*ReadmeSyncApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	components, err := buildSyncComponents(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build sync components: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)

	httpServer, err := buildHTTPServer(appCtx, cfg, components.SyncService)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	return &ReadmeSyncApp{
		config:        cfg.config,
		components:    components,
		httpServer:    httpServer,
		metricsServer: buildMetricsServer(cfg),
		ctx:           appCtx,
		cancelFunc:    cancel,
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) ReadmeSyncAppOptions {
	return func(cfg *readmeSyncAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress overrides the listen address derived from the configured port
func WithAddress(addr string) ReadmeSyncAppOptions {
	return func(cfg *readmeSyncAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, ok := strings.Cut(addr, ":")
		if !ok || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ReadmeSyncAppOptions {
	return func(cfg *readmeSyncAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithRequestTimeout overrides the configured request timeout
func WithRequestTimeout(timeout time.Duration) ReadmeSyncAppOptions {
	return func(cfg *readmeSyncAppConfig) error {
		if timeout <= 0 {
			return fmt.Errorf("request timeout must be positive")
		}
		cfg.requestTimeout = timeout
		return nil
	}
}

// WithSyncService allows injecting a custom sync service (for testing)
func WithSyncService(svc readmesync.Service) ReadmeSyncAppOptions {
	return func(cfg *readmeSyncAppConfig) error {
		cfg.syncService = svc
		return nil
	}
}

// WithGitHubOptions passes extra options to the GitHub client, e.g. test endpoints
func WithGitHubOptions(opts ...github.Option) ReadmeSyncAppOptions {
	return func(cfg *readmeSyncAppConfig) error {
		cfg.githubOptions = append(cfg.githubOptions, opts...)
		return nil
	}
}

// WithDockerHubOptions passes extra options to the Docker Hub client, e.g. test endpoints
func WithDockerHubOptions(opts ...dockerhub.Option) ReadmeSyncAppOptions {
	return func(cfg *readmeSyncAppConfig) error {
		cfg.dockerhubOption = append(cfg.dockerhubOption, opts...)
		return nil
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider for HTTP and sync metrics
func WithMeterProvider(mp metric.MeterProvider) ReadmeSyncAppOptions {
	return func(cfg *readmeSyncAppConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider for HTTP and sync spans
func WithTracerProvider(tp trace.TracerProvider) ReadmeSyncAppOptions {
	return func(cfg *readmeSyncAppConfig) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// WithMetricsServer serves handler at /metrics on a separate address
func WithMetricsServer(addr string, handler http.Handler) ReadmeSyncAppOptions {
	return func(cfg *readmeSyncAppConfig) error {
		if handler == nil {
			return nil
		}
		if addr == "" {
			return fmt.Errorf("metrics address cannot be empty")
		}
		cfg.metricsAddress = addr
		cfg.metricsHandler = handler
		return nil
	}
}

// buildSyncComponents builds the GitHub and Docker Hub clients and the sync service
func buildSyncComponents(b *readmeSyncAppConfig) (*AppComponents, error) {
	if b.syncService != nil {
		return &AppComponents{SyncService: b.syncService}, nil
	}

	slog.Info("Initializing sync components")

	callTimeout := b.config.GetCallTimeout()

	ghOpts := []github.Option{github.WithTimeout(callTimeout)}
	if b.config.GitHubToken != "" {
		ghOpts = append(ghOpts, github.WithToken(b.config.GitHubToken))
		slog.Info("Authenticated GitHub access enabled")
	}
	gh := github.NewClient(append(ghOpts, b.githubOptions...)...)

	dh := dockerhub.NewClient(callTimeout, b.dockerhubOption...)

	svc, err := readmesync.New(
		readmesync.Dependencies{
			Checker:       gh,
			Authenticator: dh,
			Fetcher:       gh,
			Publisher:     dh,
		},
		readmesync.WithCredentials(b.config.DockerHubUsername, b.config.DockerHubPassword),
		readmesync.WithCallTimeout(callTimeout),
		readmesync.WithTracerProvider(b.tracerProvider),
		readmesync.WithMeterProvider(b.meterProvider),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync service: %w", err)
	}

	slog.Info("Sync components initialized successfully", "call_timeout", callTimeout)
	return &AppComponents{
		SyncService: svc,
		GitHub:      gh,
		DockerHub:   dh,
	}, nil
}

// buildHTTPServer builds the HTTP server with router and middleware.
// Request contexts derive from ctx.
func buildHTTPServer(
	ctx context.Context,
	b *readmeSyncAppConfig,
	svc readmesync.Service,
) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	// Use default middlewares if not provided
	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			api.TimeoutMiddleware(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Telemetry goes first to capture every request, including recovered panics
	var telemetryMiddlewares []func(http.Handler) http.Handler
	if b.tracerProvider != nil {
		telemetryMiddlewares = append(telemetryMiddlewares, telemetry.TracingMiddleware(b.tracerProvider))
		slog.Info("HTTP tracing middleware enabled")
	}
	if b.meterProvider != nil {
		metricsMiddleware, err := telemetry.MetricsMiddleware(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
		}
		telemetryMiddlewares = append(telemetryMiddlewares, metricsMiddleware)
		slog.Info("HTTP metrics middleware enabled")
	}
	middlewares := append(telemetryMiddlewares, b.middlewares...)

	router := api.NewServer(svc, api.WithMiddlewares(middlewares...))

	server := &http.Server{
		Addr:              b.address,
		Handler:           router,
		ReadTimeout:       b.readTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		WriteTimeout:      b.requestTimeout + writeTimeoutMargin,
		IdleTimeout:       b.idleTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	slog.Info("HTTP server configured", "address", b.address, "request_timeout", b.requestTimeout)
	return server, nil
}

// buildMetricsServer builds the /metrics server, or returns nil when no handler is set
func buildMetricsServer(b *readmeSyncAppConfig) *http.Server {
	if b.metricsHandler == nil {
		return nil
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", b.metricsHandler)

	slog.Info("Metrics server configured", "address", b.metricsAddress)
	return &http.Server{
		Addr:              b.metricsAddress,
		Handler:           r,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		IdleTimeout:       b.idleTimeout,
	}
}
