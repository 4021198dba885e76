package config

import (
	"fmt"
	"time"
)

// WithAPIURL sets the API base URL
func WithAPIURL(apiURL string) Option {
	return func(c *Config) error {
		if apiURL == "" {
			return fmt.Errorf("api url cannot be empty")
		}
		c.APIURL = apiURL
		return nil
	}
}

// WithTimeout sets the request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got: %s", d)
		}
		c.Timeout = d
		return nil
	}
}

// WithLogging sets the log level and format. Empty values keep the current
// setting.
func WithLogging(level, format string) Option {
	return func(c *Config) error {
		if level != "" {
			c.LogLevel = level
		}
		if format != "" {
			c.LogFormat = format
		}
		return nil
	}
}

// WithSessionFile sets the CLI session file
func WithSessionFile(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return fmt.Errorf("session file cannot be empty")
		}
		c.SessionFile = path
		return nil
	}
}

// WithSignupPath sets the registration route
func WithSignupPath(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return fmt.Errorf("signup path cannot be empty")
		}
		c.SignupPath = path
		return nil
	}
}

// WithUpdateByID selects the /content/update/:id route
func WithUpdateByID(enabled bool) Option {
	return func(c *Config) error {
		c.UpdateByID = enabled
		return nil
	}
}

// WithRetries sets the number of attempts for GET requests
func WithRetries(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return fmt.Errorf("retries cannot be negative, got: %d", n)
		}
		c.Retries = n
		return nil
	}
}
