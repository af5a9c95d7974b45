// Package config provides configuration parsing and validation for the
// dispatcher and API binaries.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// DispatcherConfig holds all configuration parameters for the dispatcher.
type DispatcherConfig struct {
	KafkaBrokers string
	EventsTopic  string
	GroupID      string
	PostgresDSN  string

	// RedisAddr is optional; metrics reporting is disabled when empty.
	RedisAddr string

	MaxConcurrentDeliveries int
	DeliveryTimeout         time.Duration
	ProcessTimeout          time.Duration
}

// Validate checks that all required configuration fields are set and have
// valid values. Returns an error if validation fails, nil otherwise.
func (c *DispatcherConfig) Validate() error {
	if c.KafkaBrokers == "" {
		return fmt.Errorf("kafka-brokers cannot be empty")
	}
	if c.EventsTopic == "" {
		return fmt.Errorf("events-topic cannot be empty")
	}
	if c.GroupID == "" {
		return fmt.Errorf("group-id cannot be empty")
	}
	if c.PostgresDSN == "" {
		return fmt.Errorf("postgres-dsn cannot be empty")
	}
	if c.MaxConcurrentDeliveries <= 0 {
		return fmt.Errorf("max-concurrent-deliveries must be positive")
	}
	if c.DeliveryTimeout <= 0 {
		return fmt.Errorf("delivery-timeout must be positive")
	}
	if c.ProcessTimeout < 0 {
		return fmt.Errorf("process-timeout cannot be negative")
	}
	return nil
}

// APIConfig holds all configuration parameters for the API service.
type APIConfig struct {
	HTTPPort     string
	KafkaBrokers string
	EventsTopic  string
	PostgresDSN  string

	// RedisAddr is optional; the service metrics endpoint reports an error
	// when it is not configured.
	RedisAddr string
}

// Validate checks that all required configuration fields are set and have
// valid values. Returns an error if validation fails, nil otherwise.
func (c *APIConfig) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("http-port cannot be empty")
	}
	if c.KafkaBrokers == "" {
		return fmt.Errorf("kafka-brokers cannot be empty")
	}
	if c.EventsTopic == "" {
		return fmt.Errorf("events-topic cannot be empty")
	}
	if c.PostgresDSN == "" {
		return fmt.Errorf("postgres-dsn cannot be empty")
	}
	return nil
}

// EmailConfig holds the email channel's provider settings. Unlike the
// service flags these come from the environment: API keys and passwords do
// not belong on a command line.
type EmailConfig struct {
	// Provider names the primary backend ("smtp", "ses", "resend" or
	// "postmark"); FallbackProviders are tried in order when it fails.
	Provider          string
	FallbackProviders []string

	// From is the sender address stamped on every outgoing email.
	From string

	SMTP SMTPConfig

	// AWSRegion enables the SES backend when set.
	AWSRegion string

	ResendAPIKey         string
	PostmarkServerToken  string
	PostmarkAccountToken string
}

// SMTPConfig holds plain SMTP transport settings. The defaults point at a
// local development server such as MailHog.
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
}

// LoadEmailConfig reads the email channel configuration from the
// environment. Missing credentials are not an error here: a backend without
// them is registered as unavailable and skipped at send time.
func LoadEmailConfig() EmailConfig {
	return EmailConfig{
		Provider:          getenv("EMAIL_PROVIDER", "smtp"),
		FallbackProviders: splitList(os.Getenv("EMAIL_FALLBACK_PROVIDERS")),
		From:              getenv("EMAIL_FROM", "notifications@event-notification.local"),
		SMTP: SMTPConfig{
			Host:     getenv("SMTP_HOST", "localhost"),
			Port:     getenv("SMTP_PORT", "1025"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
		},
		AWSRegion:            os.Getenv("AWS_REGION"),
		ResendAPIKey:         os.Getenv("RESEND_API_KEY"),
		PostmarkServerToken:  os.Getenv("POSTMARK_SERVER_TOKEN"),
		PostmarkAccountToken: os.Getenv("POSTMARK_ACCOUNT_TOKEN"),
	}
}

// getenv returns the environment value, or the fallback when unset or empty.
func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitList parses a comma-separated list, trimming whitespace and dropping
// empty entries.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
