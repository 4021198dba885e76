// Package config loads the settings of the Nota dashboard client.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/tendant/nota-dashboard/pkg/nota/client"
)

// Option applies configuration to a Config instance.
type Option func(*Config) error

// Load constructs a Config by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*Config, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() Config {
	return Config{
		APIURL:      "http://localhost:8080/api/v1",
		Timeout:     client.DefaultTimeout,
		LogLevel:    "info",
		LogFormat:   "console",
		SessionFile: DefaultSessionFile(),
		SignupPath:  client.DefaultSignupPath,
	}
}

// DefaultSessionFile returns the per-user session file location.
func DefaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".nota-session.yaml"
	}
	return filepath.Join(dir, "nota", "session.yaml")
}

// Config represents the settings of the dashboard client
type Config struct {
	// API
	APIURL     string        `yaml:"api_url" json:"api_url" env:"NOTA_API_URL" env-description:"Base URL of the Nota API, e.g. http://localhost:8080/api/v1"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout" env:"NOTA_TIMEOUT" env-description:"Per-request timeout"`
	SignupPath string        `yaml:"signup_path" json:"signup_path" env:"NOTA_SIGNUP_PATH" env-description:"Registration route, /auth/register or /auth/signup"`
	UpdateByID bool          `yaml:"update_by_id" json:"update_by_id" env:"NOTA_UPDATE_BY_ID" env-description:"Send updates to /content/update/:id"`
	Retries    int           `yaml:"retries" json:"retries" env:"NOTA_RETRIES" env-description:"Attempts for idempotent requests"`

	// Logging
	LogLevel  string `yaml:"log_level" json:"log_level" env:"NOTA_LOG_LEVEL" env-description:"debug, info, warn or error"`
	LogFormat string `yaml:"log_format" json:"log_format" env:"NOTA_LOG_FORMAT" env-description:"console or json"`

	// CLI
	SessionFile string `yaml:"session_file" json:"session_file" env:"NOTA_SESSION_FILE" env-description:"File holding the session cookies of notactl"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("api_url is required")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url must be an http or https URL, got %q", c.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api_url has no host: %q", c.APIURL)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries cannot be negative, got %d", c.Retries)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be 'console' or 'json', got %q", c.LogFormat)
	}

	return nil
}

// ClientOptions translates the configuration into client options
func (c *Config) ClientOptions(logger *zap.Logger) []client.Option {
	opts := []client.Option{
		client.WithTimeout(c.Timeout),
		client.WithSignupPath(c.SignupPath),
		client.WithLogger(logger),
	}
	if c.UpdateByID {
		opts = append(opts, client.WithUpdatePathByID())
	}
	if c.Retries > 0 {
		opts = append(opts, client.WithRetry(c.Retries, 200*time.Millisecond))
	}
	return opts
}

// BuildClient creates a REST client from the configuration
func (c *Config) BuildClient(logger *zap.Logger, extra ...client.Option) (*client.Client, error) {
	opts := append(c.ClientOptions(logger), extra...)
	cl, err := client.New(c.APIURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build client: %w", err)
	}
	return cl, nil
}
