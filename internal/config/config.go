// Package config loads the runtime configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config enumerates every external setting the workflows depend on. All
// values come from LABKEEPER_* environment variables; main loads an
// optional .env file first.
type Config struct {
	// Controller access.
	APIBaseURL    string `envconfig:"API_BASE_URL" required:"true"`
	AdminUsername string `envconfig:"ADMIN_USERNAME" required:"true"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" required:"true"`

	// URLs included in the notification emails.
	PlatformURL string `envconfig:"PLATFORM_URL"`
	BookingURL  string `envconfig:"BOOKING_URL"`

	// Email delivery. OperatorEmail receives failure traces and a bcc of
	// every user notification; empty disables both.
	OperatorEmail string `envconfig:"OPERATOR_EMAIL"`
	SenderEmail   string `envconfig:"SENDER_EMAIL"`
	SMTPHost      string `envconfig:"SMTP_HOST"`
	SMTPPort      int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername  string `envconfig:"SMTP_USERNAME"`
	SMTPPassword  string `envconfig:"SMTP_PASSWORD"`

	// Local state.
	ArchiveDir string `envconfig:"ARCHIVE_DIR" default:"labs"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the configuration from the environment, normalizes it and
// validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("labkeeper", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment configuration: %w", err)
	}

	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Normalize sanitizes user input to consistent formats.
func (c *Config) Normalize() {
	c.APIBaseURL = strings.TrimSpace(c.APIBaseURL)
	c.SMTPHost = strings.TrimSpace(c.SMTPHost)
	c.OperatorEmail = strings.TrimSpace(c.OperatorEmail)
	c.SenderEmail = strings.TrimSpace(c.SenderEmail)
}

// Validate checks the configuration for errors. It does not probe the
// controller or the SMTP relay, only the structure of the values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api base url must be http(s), got %q", c.APIBaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api base url has no host: %q", c.APIBaseURL)
	}

	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("smtp port must be in 1..65535, got %d", c.SMTPPort)
	}
	if c.SMTPHost != "" && c.SenderEmail == "" {
		return fmt.Errorf("sender email is required when an smtp host is configured")
	}

	if c.ArchiveDir == "" {
		return fmt.Errorf("archive dir is required")
	}

	return nil
}
