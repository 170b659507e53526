// Package config provides configuration loading and management for the readmesync server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"sigs.k8s.io/yaml"

	"github.com/stacklok/readmesync/internal/telemetry"
)

const (
	// EnvPrefix is the prefix for environment variables that override file settings
	EnvPrefix = "READMESYNC"

	// DefaultConfigPath is where the configuration file is looked up when no path is given
	DefaultConfigPath = "/config/readmesync.json"

	// DefaultPort is the port the server listens on when none is configured
	DefaultPort = 80

	// DefaultCallTimeout bounds every single outbound call of a sync
	DefaultCallTimeout = 10 * time.Second

	// DefaultRequestTimeout bounds a whole inbound request
	DefaultRequestTimeout = 60 * time.Second

	// DefaultShutdownTimeout bounds the graceful drain of in-flight requests
	DefaultShutdownTimeout = 30 * time.Second
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a JSON (HuJSON or YAML) file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// DockerHubUsername is the account used to log in to Docker Hub
	DockerHubUsername string `json:"dockerhub_username"`

	// DockerHubPassword is the password or personal access token for DockerHubUsername
	DockerHubPassword string `json:"dockerhub_password,omitempty"`

	// DockerHubPasswordFile is a file holding the password, used when DockerHubPassword is empty
	DockerHubPasswordFile string `json:"dockerhub_password_file,omitempty"`

	// Port is the TCP port the server listens on. Defaults to 80.
	Port int `json:"port,omitempty"`

	// GitHubToken enables authenticated GitHub access (private repositories, API lookups)
	GitHubToken string `json:"github_token,omitempty"`

	// CallTimeout bounds each outbound call (e.g. "10s")
	CallTimeout string `json:"call_timeout,omitempty"`

	// RequestTimeout bounds a whole inbound request (e.g. "60s")
	RequestTimeout string `json:"request_timeout,omitempty"`

	// ShutdownTimeout bounds the graceful drain on termination (e.g. "30s")
	ShutdownTimeout string `json:"shutdown_timeout,omitempty"`

	// Telemetry holds the optional OpenTelemetry settings
	Telemetry *telemetry.Config `json:"telemetry,omitempty"`
}

// LoadConfig loads and parses configuration from a file and applies environment overrides
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	doc, err := normalize(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validateSchema(doc); err != nil {
		return nil, fmt.Errorf("config does not match schema: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(doc, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	if err := config.resolvePassword(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyEnv overrides file values with READMESYNC_* environment variables
func (c *Config) applyEnv() error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	overrides := map[string]*string{
		"dockerhub_username": &c.DockerHubUsername,
		"dockerhub_password": &c.DockerHubPassword,
		"github_token":       &c.GitHubToken,
		"call_timeout":       &c.CallTimeout,
		"request_timeout":    &c.RequestTimeout,
		"shutdown_timeout":   &c.ShutdownTimeout,
	}
	for key, field := range overrides {
		if val := v.GetString(key); val != "" {
			*field = val
		}
	}

	if val := v.GetString("port"); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s_PORT %q: %w", EnvPrefix, val, err)
		}
		c.Port = port
	}

	return nil
}

// resolvePassword reads the password from DockerHubPasswordFile if no inline password is set.
// The file content has leading/trailing whitespace trimmed.
func (c *Config) resolvePassword() error {
	if c.DockerHubPassword != "" || c.DockerHubPasswordFile == "" {
		return nil
	}

	cleanPath := filepath.Clean(c.DockerHubPasswordFile)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to read password from file %s: %w", c.DockerHubPasswordFile, err)
	}

	c.DockerHubPassword = strings.TrimSpace(string(data))
	return nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errs []error

	if c.DockerHubUsername == "" {
		errs = append(errs, fmt.Errorf("dockerhub_username is required"))
	}
	if c.DockerHubPassword == "" {
		errs = append(errs, fmt.Errorf("dockerhub_password is required"))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 0 and 65535, got %d", c.Port))
	}

	for _, d := range []struct{ key, value string }{
		{"call_timeout", c.CallTimeout},
		{"request_timeout", c.RequestTimeout},
		{"shutdown_timeout", c.ShutdownTimeout},
	} {
		if err := validateDuration(d.key, d.value); err != nil {
			errs = append(errs, err)
		}
	}

	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}

	return errors.Join(errs...)
}

func validateDuration(key, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s must be a valid duration (e.g., '10s', '1m'): %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %s", key, value)
	}
	return nil
}

// GetPort returns the configured port, using DefaultPort if not specified
func (c *Config) GetPort() int {
	if c.Port == 0 {
		return DefaultPort
	}
	return c.Port
}

// GetAddress returns the listen address derived from the port
func (c *Config) GetAddress() string {
	return fmt.Sprintf(":%d", c.GetPort())
}

// GetCallTimeout returns the per-call timeout, using DefaultCallTimeout if not specified
func (c *Config) GetCallTimeout() time.Duration {
	return durationOrDefault(c.CallTimeout, DefaultCallTimeout)
}

// GetRequestTimeout returns the request timeout, using DefaultRequestTimeout if not specified
func (c *Config) GetRequestTimeout() time.Duration {
	return durationOrDefault(c.RequestTimeout, DefaultRequestTimeout)
}

// GetShutdownTimeout returns the drain timeout, using DefaultShutdownTimeout if not specified
func (c *Config) GetShutdownTimeout() time.Duration {
	return durationOrDefault(c.ShutdownTimeout, DefaultShutdownTimeout)
}

func durationOrDefault(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
