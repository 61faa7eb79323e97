// Package config provides configuration loading and management for the inventory sync server.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dsimmons122/employee-management/internal/telemetry"
)

const (
	defaultStageTimeout  = 10 * time.Minute
	defaultPollInterval  = 5 * time.Second
	defaultSourceTimeout = 30 * time.Second
	defaultBatchWorkers  = 10
	defaultListenAddress = ":8080"

	// EnvPrefix is the prefix for all environment variables consulted by
	// the application.
	EnvPrefix = "EMPSYNC"

	passwordEnvVar = "EMPSYNC_DATABASE_PASSWORD"

	// DirectoryTokenEnvVar is consulted for the directory source token
	// when no token file is configured.
	DirectoryTokenEnvVar = "EMPSYNC_DIRECTORY_TOKEN"

	// ManagementTokenEnvVar is consulted for the device-management source
	// token when no token file is configured.
	ManagementTokenEnvVar = "EMPSYNC_MANAGEMENT_TOKEN"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
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

		// Validate the path to prevent path traversal attacks
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
	// Server configures the HTTP API listener
	Server *ServerConfig `yaml:"server,omitempty"`

	// Database configures the backing Postgres store
	Database *DatabaseConfig `yaml:"database"`

	// Directory configures the identity directory source
	Directory SourceConfig `yaml:"directory"`

	// DeviceManagement configures the device-management source
	DeviceManagement SourceConfig `yaml:"deviceManagement"`

	// Sync configures sync orchestration behavior
	Sync *SyncConfig `yaml:"sync,omitempty"`

	// Telemetry configures OpenTelemetry tracing and Prometheus metrics
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// ServerConfig defines HTTP server settings
type ServerConfig struct {
	// Address is the listen address for the HTTP API, e.g. ":8080"
	Address string `yaml:"address,omitempty"`
}

// SourceConfig defines the connection settings for one external source
type SourceConfig struct {
	// Endpoint is the base URL of the source API (without path)
	Endpoint string `yaml:"endpoint"`

	// TokenFile is the path to a file containing a bearer token for the
	// source. Token acquisition and refresh are handled outside this
	// service; the file content is used as-is.
	TokenFile string `yaml:"tokenFile,omitempty"`

	// Timeout is the per-request timeout for source calls (e.g. "30s")
	Timeout string `yaml:"timeout,omitempty"`
}

// SyncConfig defines synchronization orchestration settings
type SyncConfig struct {
	// StageTimeout bounds how long the orchestrator waits for each sync
	// stage before giving up on its direct response (e.g. "10m")
	StageTimeout string `yaml:"stageTimeout,omitempty"`

	// PollInterval is the interval at which the orchestrator polls the
	// store for a child run's terminal state (e.g. "5s")
	PollInterval string `yaml:"pollInterval,omitempty"`

	// BatchWorkers is the number of parallel workers for per-device
	// processing inside a sync task
	BatchWorkers int `yaml:"batchWorkers,omitempty"`

	// Schedule is an optional interval for automatic background syncs
	// (e.g. "1h"). Empty disables scheduled syncs.
	Schedule string `yaml:"schedule,omitempty"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password
	// This is the recommended approach for production deployments
	// The file should contain only the password with optional trailing whitespace
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxConns is the maximum number of connections in the pool
	MaxConns int32 `yaml:"maxConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from EMPSYNC_DATABASE_PASSWORD environment variable
func (d *DatabaseConfig) GetPassword() (string, error) {
	// Priority 1: Read from file if specified
	if d.PasswordFile != "" {
		// Use filepath.Clean to prevent path traversal attacks
		cleanPath := filepath.Clean(d.PasswordFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}

		// Trim whitespace (including newlines) from file content
		password := strings.TrimSpace(string(data))
		return password, nil
	}

	// Priority 2: Check environment variable
	if envPassword := os.Getenv(passwordEnvVar); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or %s environment variable", passwordEnvVar,
	)
}

// GetToken returns the bearer token for the source, if configured. Sources
// behind network-level auth need no token, so an empty result is not an
// error when neither the file nor the environment variable is set.
func (s *SourceConfig) GetToken(envVar string) (string, error) {
	if s.TokenFile != "" {
		cleanPath := filepath.Clean(s.TokenFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read token from file %s: %w", s.TokenFile, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	return os.Getenv(envVar), nil
}

// RequestTimeout returns the per-request timeout for source calls.
func (s *SourceConfig) RequestTimeout() time.Duration {
	if s.Timeout == "" {
		return defaultSourceTimeout
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return defaultSourceTimeout
	}
	return d
}

// ListenAddress returns the configured listen address or the default.
func (c *Config) ListenAddress() string {
	if c.Server == nil || c.Server.Address == "" {
		return defaultListenAddress
	}
	return c.Server.Address
}

// StageTimeout returns how long the orchestrator waits for a sync stage.
func (c *Config) StageTimeout() time.Duration {
	if c.Sync == nil || c.Sync.StageTimeout == "" {
		return defaultStageTimeout
	}
	d, err := time.ParseDuration(c.Sync.StageTimeout)
	if err != nil {
		return defaultStageTimeout
	}
	return d
}

// PollInterval returns the store polling interval for run-state fallback.
func (c *Config) PollInterval() time.Duration {
	if c.Sync == nil || c.Sync.PollInterval == "" {
		return defaultPollInterval
	}
	d, err := time.ParseDuration(c.Sync.PollInterval)
	if err != nil {
		return defaultPollInterval
	}
	return d
}

// BatchWorkers returns the per-task device worker pool size.
func (c *Config) BatchWorkers() int {
	if c.Sync == nil || c.Sync.BatchWorkers <= 0 {
		return defaultBatchWorkers
	}
	return c.Sync.BatchWorkers
}

// SyncSchedule returns the background sync interval and whether scheduled
// syncs are enabled.
func (c *Config) SyncSchedule() (time.Duration, bool) {
	if c.Sync == nil || c.Sync.Schedule == "" {
		return 0, false
	}
	d, err := time.ParseDuration(c.Sync.Schedule)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	if c.Database == nil {
		return fmt.Errorf("database configuration is required")
	}
	if err := validateEndpoint("directory", c.Directory.Endpoint); err != nil {
		return err
	}
	if err := validateEndpoint("deviceManagement", c.DeviceManagement.Endpoint); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry configuration is invalid: %w", err)
	}
	return nil
}

func validateEndpoint(name, endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("%s.endpoint is required", name)
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%s.endpoint is not a valid URL: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s.endpoint must use http or https, got %q", name, u.Scheme)
	}
	return nil
}

// LoadConfig loads configuration using the provided options
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	// As of now, this is required because there's no other options to load
	// configuration. Once we add more options, we can remove this check.
	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	// Read the entire file into memory
	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML content
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	// Validate the config
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
