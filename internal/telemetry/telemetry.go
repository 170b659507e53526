package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry owns the tracer and meter providers and their shutdown.
type Telemetry struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider

	// metricsHandler serves the prometheus registry; nil unless that exporter is enabled
	metricsHandler    http.Handler
	prometheusAddress string
}

// New initializes telemetry from cfg. A nil or disabled cfg yields no-op providers.
// The caller must call Shutdown before exiting to flush pending data.
func New(ctx context.Context, cfg *Config) (*Telemetry, error) {
	if cfg == nil || !cfg.Enabled {
		slog.Debug("Telemetry disabled")
		return NewNoOp(), nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry configuration: %w", err)
	}

	slog.Info("Initializing telemetry",
		"service_name", cfg.GetServiceName(),
		"service_version", cfg.GetServiceVersion(),
	)

	common := []ProviderOption{
		WithService(cfg.GetServiceName(), cfg.GetServiceVersion()),
		WithEndpoint(cfg.GetEndpoint(), cfg.Insecure),
	}

	tracerProvider, err := NewTracerProvider(ctx, append(common, WithTracing(cfg.Tracing))...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer provider: %w", err)
	}

	tel := &Telemetry{tracerProvider: tracerProvider}

	metricsOpts := append(common, WithMetrics(cfg.Metrics))
	if cfg.Metrics != nil && cfg.Metrics.Enabled && cfg.Metrics.HasExporter(ExporterPrometheus) {
		registry := prometheus.NewRegistry()
		metricsOpts = append(metricsOpts, WithPrometheusRegisterer(registry))
		tel.metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
		tel.prometheusAddress = cfg.Metrics.GetPrometheusAddress()
	}

	tel.meterProvider, err = NewMeterProvider(ctx, metricsOpts...)
	if err != nil {
		if tp, ok := tracerProvider.(*sdktrace.TracerProvider); ok {
			_ = tp.Shutdown(ctx)
		}
		return nil, fmt.Errorf("failed to create meter provider: %w", err)
	}

	return tel, nil
}

// NewNoOp returns telemetry backed by no-op providers
func NewNoOp() *Telemetry {
	// Neither constructor can fail without tracing/metrics configuration.
	tp, _ := NewTracerProvider(context.Background())
	mp, _ := NewMeterProvider(context.Background())
	return &Telemetry{tracerProvider: tp, meterProvider: mp}
}

// TracerProvider returns the configured tracer provider
func (t *Telemetry) TracerProvider() trace.TracerProvider {
	return t.tracerProvider
}

// MeterProvider returns the configured meter provider
func (t *Telemetry) MeterProvider() metric.MeterProvider {
	return t.meterProvider
}

// MetricsHandler returns the prometheus /metrics handler, or nil when the exporter is off
func (t *Telemetry) MetricsHandler() http.Handler {
	return t.metricsHandler
}

// PrometheusAddress returns the listen address for MetricsHandler
func (t *Telemetry) PrometheusAddress() string {
	return t.prometheusAddress
}

// Shutdown flushes and stops the SDK providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if tp, ok := t.tracerProvider.(*sdktrace.TracerProvider); ok {
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
		}
	}

	if mp, ok := t.meterProvider.(*sdkmetric.MeterProvider); ok {
		if err := mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown meter provider: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Debug("Telemetry shutdown complete")
	return nil
}
