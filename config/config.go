// Package config holds runtime configuration, read from environment
// variables with kelseyhightower/envconfig. Command-line flags in
// cmd/server override a handful of values for local runs.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	Addr         string        `envconfig:"ADDR" default:":8080"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`

	DBPath string `envconfig:"DB_PATH" default:"ledger.db"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://localhost:8080"`
}

// Load reads configuration from COSTENGINE_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("costengine", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
