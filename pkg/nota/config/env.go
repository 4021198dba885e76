package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// WithEnv applies NOTA_* environment variable overrides.
//
// Environment variables:
//
//	NOTA_API_URL      - API base URL (default: "http://localhost:8080/api/v1")
//	NOTA_TIMEOUT      - Request timeout, e.g. "10s" (default: "30s")
//	NOTA_SIGNUP_PATH  - Registration route (default: "/auth/register")
//	NOTA_UPDATE_BY_ID - Use /content/update/:id (default: false)
//	NOTA_RETRIES      - Attempts for GET requests (default: 0, no retry)
//	NOTA_LOG_LEVEL    - debug, info, warn, error (default: "info")
//	NOTA_LOG_FORMAT   - console, json (default: "console")
//	NOTA_SESSION_FILE - notactl session file
//
// Unset variables keep the current value.
func WithEnv() Option {
	return func(c *Config) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("read environment: %w", err)
		}
		return nil
	}
}

// WithFile reads a YAML, JSON, TOML or .env file. Keys missing from the file
// keep their current value, and environment variables override the file.
func WithFile(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return nil
		}
		if err := cleanenv.ReadConfig(path, c); err != nil {
			return fmt.Errorf("read config file %s: %w", path, err)
		}
		return nil
	}
}

// Description lists the environment variables understood by WithEnv.
func Description() (string, error) {
	var c Config
	return cleanenv.GetDescription(&c, nil)
}
