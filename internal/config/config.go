package config

import (
	"fmt"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds the configuration for the Q&A service.
// Environment variables are parsed from the QA_SERVICE_ prefix.
type Config struct {
	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Primary store driver: sqlite (default) or postgres
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:""`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Mirror / data layout
	DataDir string `envconfig:"DATA_DIR" default:"data"`

	// Answer source
	ResponsesPath string `envconfig:"RESPONSES_PATH" default:"responses.json"`

	// Mirror write path: background worker with a bounded queue, or inline
	MirrorAsync     bool `envconfig:"MIRROR_ASYNC" default:"true"`
	MirrorQueueSize int  `envconfig:"MIRROR_QUEUE_SIZE" default:"256"`

	// Health checking
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
}

// ResolveDefaults validates the driver selection and derives the SQLite path
// under the data directory when not set explicitly.
func (c *Config) ResolveDefaults() error {
	switch c.DBDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			c.SQLitePath = filepath.Join(c.DataDir, "qa_database.db")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("DB_DRIVER=postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Example: QA_SERVICE_HTTP_PORT, QA_SERVICE_DB_DRIVER.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("QA_SERVICE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Str("data_dir", cfg.DataDir).
		Int("port", cfg.HTTPPort).
		Bool("mirror_async", cfg.MirrorAsync).
		Str("postgres_dsn_present", func() string {
			if cfg.PostgresDSN != "" {
				return "true"
			}
			return "false"
		}()).
		Msg("Configuration loaded")

	return &cfg, nil
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
