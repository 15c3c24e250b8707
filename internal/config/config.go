// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package config

import "time"

// Config is the root configuration.
type Config struct {
	Codeforces CodeforcesConfig `koanf:"codeforces"`
	Database   DatabaseConfig   `koanf:"database"`
	Sync       SyncConfig       `koanf:"sync"`
	Notifier   NotifierConfig   `koanf:"notifier"`
	Email      EmailConfig      `koanf:"email"`
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// CodeforcesConfig holds upstream API client settings.
type CodeforcesConfig struct {
	BaseURL           string        `koanf:"base_url"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	MaxRetries        int           `koanf:"max_retries"`
	RetryBaseDelay    time.Duration `koanf:"retry_base_delay"`
	BreakerFailures   uint32        `koanf:"breaker_failures"` // consecutive failures before the breaker opens
	BreakerTimeout    time.Duration `koanf:"breaker_timeout"`  // open -> half-open
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// SyncConfig holds sync engine settings.
type SyncConfig struct {
	Concurrency int           `koanf:"concurrency"`
	Delay       time.Duration `koanf:"delay"`
	DefaultCron string        `koanf:"default_cron"`
}

// NotifierConfig holds inactivity reminder settings.
type NotifierConfig struct {
	WindowDays  int    `koanf:"window_days"`
	Concurrency int    `koanf:"concurrency"`
	Subject     string `koanf:"subject"`
}

// EmailConfig selects and configures the outbound email channel.
type EmailConfig struct {
	Provider       string        `koanf:"provider"` // resend, smtp, log
	Sender         string        `koanf:"sender"`
	ResendAPIKey   string        `koanf:"resend_api_key"`
	ResendEndpoint string        `koanf:"resend_endpoint"`
	SMTPHost       string        `koanf:"smtp_host"`
	SMTPPort       int           `koanf:"smtp_port"`
	SMTPUsername   string        `koanf:"smtp_username"`
	SMTPPassword   string        `koanf:"smtp_password"`
	SMTPTLS        bool          `koanf:"smtp_tls"`
	Timeout        time.Duration `koanf:"timeout"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SecurityConfig holds authentication and HTTP hardening settings.
type SecurityConfig struct {
	TokenSecret       string        `koanf:"token_secret"`
	TokenExpiry       time.Duration `koanf:"token_expiry"`
	CookieName        string        `koanf:"cookie_name"`
	CookieSecure      bool          `koanf:"cookie_secure"`
	RevocationPath    string        `koanf:"revocation_path"` // empty keeps revocations in memory
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads the layered configuration and validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
