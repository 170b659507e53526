// Package telemetry provides OpenTelemetry instrumentation for the readmesync server.
// Tracing and metrics are exported over OTLP/HTTP when enabled in the configuration.
package telemetry

import (
	"errors"
	"fmt"
	"slices"
)

const (
	// DefaultServiceName is reported as service.name when none is configured
	DefaultServiceName = "readmesync"

	// DefaultEndpoint is the OTLP/HTTP collector address used when none is configured
	DefaultEndpoint = "localhost:4318"

	// DefaultSampling is the trace sampling ratio used when none is configured.
	// Every sync makes four outbound calls, so a low ratio still yields useful traces.
	DefaultSampling = 0.1

	// DefaultPrometheusAddress is where /metrics is served when the prometheus exporter is on
	DefaultPrometheusAddress = ":9090"
)

// Metric exporters
const (
	ExporterOTLP       = "otlp"
	ExporterPrometheus = "prometheus"
)

// Config is the "telemetry" section of the readmesync configuration file
type Config struct {
	// Enabled switches all telemetry on or off
	Enabled bool `json:"enabled"`

	// ServiceName overrides DefaultServiceName
	ServiceName string `json:"serviceName,omitempty"`

	// ServiceVersion overrides the build version
	ServiceVersion string `json:"serviceVersion,omitempty"`

	// Endpoint is the collector "host:port"; /v1/traces and /v1/metrics are appended by the exporters
	Endpoint string `json:"endpoint,omitempty"`

	// Insecure sends telemetry over plain HTTP
	Insecure bool `json:"insecure,omitempty"`

	Tracing *TracingConfig `json:"tracing,omitempty"`
	Metrics *MetricsConfig `json:"metrics,omitempty"`
}

// TracingConfig holds the tracing settings
type TracingConfig struct {
	Enabled bool `json:"enabled"`

	// Sampling is the ratio of traces kept, between 0.0 and 1.0.
	// Zero means "not set" and falls back to DefaultSampling.
	Sampling float64 `json:"sampling,omitempty"`
}

// MetricsConfig holds the metrics settings
type MetricsConfig struct {
	Enabled bool `json:"enabled"`

	// Exporters lists "otlp" (push) and/or "prometheus" (pull). Defaults to otlp only.
	Exporters []string `json:"exporters,omitempty"`

	// PrometheusAddress is the listen address of the /metrics endpoint
	PrometheusAddress string `json:"prometheusAddress,omitempty"`
}

// GetServiceName returns the service name, using DefaultServiceName if not specified
func (c *Config) GetServiceName() string {
	if c.ServiceName == "" {
		return DefaultServiceName
	}
	return c.ServiceName
}

// GetServiceVersion returns the service version, using "unknown" if not specified
func (c *Config) GetServiceVersion() string {
	if c.ServiceVersion == "" {
		return "unknown"
	}
	return c.ServiceVersion
}

// GetEndpoint returns the collector endpoint, using DefaultEndpoint if not specified
func (c *Config) GetEndpoint() string {
	if c.Endpoint == "" {
		return DefaultEndpoint
	}
	return c.Endpoint
}

// GetSampling returns the sampling ratio, using DefaultSampling when unset
func (c *TracingConfig) GetSampling() float64 {
	if c.Sampling == 0.0 {
		return DefaultSampling
	}
	return c.Sampling
}

// GetExporters returns the configured exporters, defaulting to OTLP
func (c *MetricsConfig) GetExporters() []string {
	if len(c.Exporters) == 0 {
		return []string{ExporterOTLP}
	}
	return c.Exporters
}

// HasExporter reports whether name is among the configured exporters
func (c *MetricsConfig) HasExporter(name string) bool {
	return slices.Contains(c.GetExporters(), name)
}

// GetPrometheusAddress returns the /metrics listen address, using DefaultPrometheusAddress if not specified
func (c *MetricsConfig) GetPrometheusAddress() string {
	if c.PrometheusAddress == "" {
		return DefaultPrometheusAddress
	}
	return c.PrometheusAddress
}

// Validate validates the telemetry configuration. A nil or disabled config is valid.
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	var errs []error
	if c.Tracing != nil && c.Tracing.Enabled {
		if c.Tracing.Sampling < 0 || c.Tracing.Sampling > 1.0 {
			errs = append(errs, fmt.Errorf("tracing: sampling must be between 0.0 and 1.0, got %f", c.Tracing.Sampling))
		}
	}

	if c.Metrics != nil && c.Metrics.Enabled {
		for _, exporter := range c.Metrics.Exporters {
			if exporter != ExporterOTLP && exporter != ExporterPrometheus {
				errs = append(errs, fmt.Errorf("metrics: unknown exporter %q (expected %s or %s)",
					exporter, ExporterOTLP, ExporterPrometheus))
			}
		}
	}

	return errors.Join(errs...)
}
