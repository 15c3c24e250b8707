// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cftracker/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Codeforces: CodeforcesConfig{
			BaseURL:           "https://codeforces.com/api",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 2,
			MaxRetries:        3,
			RetryBaseDelay:    time.Second,
			BreakerFailures:   5,
			BreakerTimeout:    time.Minute,
		},
		Database: DatabaseConfig{
			Path:      "/data/cftracker.duckdb",
			MaxMemory: "1GB",
		},
		Sync: SyncConfig{
			Concurrency: 2,
			Delay:       500 * time.Millisecond,
			DefaultCron: "0 0 * * *",
		},
		Notifier: NotifierConfig{
			WindowDays:  7,
			Concurrency: 3,
			Subject:     "Codeforces misses you!",
		},
		Email: EmailConfig{
			Provider:       "log",
			Sender:         "onboarding@resend.dev",
			ResendEndpoint: "https://api.resend.com",
			SMTPPort:       587,
			SMTPTLS:        true,
			Timeout:        30 * time.Second,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			TokenExpiry:       240 * time.Hour,
			CookieName:        "token",
			CookieSecure:      true,
			RevocationPath:    "/data/revoked",
			CORSOrigins:       []string{},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads defaults, then the optional YAML file, then environment
// variables, and validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := make([]string, 0)
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variables to koanf paths. Variables not listed
// here are ignored.
var envMappings = map[string]string{
	"codeforces_base_url":         "codeforces.base_url",
	"codeforces_timeout":          "codeforces.timeout",
	"codeforces_rps":              "codeforces.requests_per_second",
	"codeforces_max_retries":      "codeforces.max_retries",
	"codeforces_breaker_failures": "codeforces.breaker_failures",
	"codeforces_breaker_timeout":  "codeforces.breaker_timeout",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"sync_concurrency": "sync.concurrency",
	"sync_delay":       "sync.delay",
	"default_cron":     "sync.default_cron",

	"notify_window_days": "notifier.window_days",
	"notify_concurrency": "notifier.concurrency",
	"notify_subject":     "notifier.subject",

	"email_provider":  "email.provider",
	"email_sender":    "email.sender",
	"resend_api_key":  "email.resend_api_key",
	"resend_endpoint": "email.resend_endpoint",
	"smtp_host":       "email.smtp_host",
	"smtp_port":       "email.smtp_port",
	"smtp_username":   "email.smtp_username",
	"smtp_password":   "email.smtp_password",
	"smtp_tls":        "email.smtp_tls",
	"email_timeout":   "email.timeout",

	"http_host":        "server.host",
	"http_port":        "server.port",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",

	"token_secret":        "security.token_secret",
	"jwt_expiry":          "security.token_expiry",
	"cookie_name":         "security.cookie_name",
	"cookie_secure":       "security.cookie_secure",
	"revocation_path":     "security.revocation_path",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps DUCKDB_PATH to database.path and so on. Returning ""
// tells koanf to skip the variable.
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}
