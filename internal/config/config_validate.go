// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// MinTokenSecretLength is the shortest accepted TOKEN_SECRET.
const MinTokenSecretLength = 32

// Validate checks every section.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateCodeforces,
		c.validateDatabase,
		c.validateSync,
		c.validateNotifier,
		c.validateEmail,
		c.validateServer,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateCodeforces() error {
	u, err := url.Parse(c.Codeforces.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("CODEFORCES_BASE_URL must be an absolute URL, got %q", c.Codeforces.BaseURL)
	}
	if c.Codeforces.Timeout <= 0 {
		return fmt.Errorf("CODEFORCES_TIMEOUT must be positive")
	}
	if c.Codeforces.RequestsPerSecond <= 0 {
		return fmt.Errorf("CODEFORCES_RPS must be positive")
	}
	if c.Codeforces.MaxRetries < 0 {
		return fmt.Errorf("CODEFORCES_MAX_RETRIES must not be negative")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative")
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.Concurrency < 1 {
		return fmt.Errorf("SYNC_CONCURRENCY must be at least 1, got %d", c.Sync.Concurrency)
	}
	if c.Sync.Delay < 0 {
		return fmt.Errorf("SYNC_DELAY must not be negative")
	}
	if strings.TrimSpace(c.Sync.DefaultCron) == "" {
		return fmt.Errorf("DEFAULT_CRON must not be empty")
	}
	return nil
}

func (c *Config) validateNotifier() error {
	if c.Notifier.WindowDays < 1 {
		return fmt.Errorf("NOTIFY_WINDOW_DAYS must be at least 1, got %d", c.Notifier.WindowDays)
	}
	if c.Notifier.Concurrency < 1 {
		return fmt.Errorf("NOTIFY_CONCURRENCY must be at least 1, got %d", c.Notifier.Concurrency)
	}
	return nil
}

func (c *Config) validateEmail() error {
	switch c.Email.Provider {
	case "log":
		return nil
	case "resend":
		if c.Email.ResendAPIKey == "" {
			return fmt.Errorf("RESEND_API_KEY is required when EMAIL_PROVIDER=resend")
		}
	case "smtp":
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when EMAIL_PROVIDER=smtp")
		}
		if c.Email.SMTPPort < 1 || c.Email.SMTPPort > 65535 {
			return fmt.Errorf("SMTP_PORT must be between 1 and 65535, got %d", c.Email.SMTPPort)
		}
	default:
		return fmt.Errorf("EMAIL_PROVIDER must be one of resend, smtp, log; got %q", c.Email.Provider)
	}
	if c.Email.Sender == "" {
		return fmt.Errorf("EMAIL_SENDER is required when email delivery is enabled")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if len(c.Security.TokenSecret) < MinTokenSecretLength {
		return fmt.Errorf("TOKEN_SECRET must be at least %d characters", MinTokenSecretLength)
	}
	if c.Security.TokenExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive")
	}
	if c.Security.CookieName == "" {
		return fmt.Errorf("COOKIE_NAME must not be empty")
	}
	if !c.Security.RateLimitDisabled && c.Security.RateLimitRequests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("CORS_ORIGINS must not contain a wildcard: the token cookie requires credentialed CORS")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
