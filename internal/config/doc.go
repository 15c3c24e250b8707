// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

/*
Package config loads CFTracker configuration with koanf.

Sources are layered, later layers win:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml, /etc/cftracker/config.yaml
 3. Environment variables

# Environment Variables

Upstream:
  - CODEFORCES_BASE_URL: API root (default: https://codeforces.com/api)
  - CODEFORCES_TIMEOUT: per request timeout (default: 30s)
  - CODEFORCES_RPS: courtesy request rate (default: 2)

Database:
  - DUCKDB_PATH: database file (default: /data/cftracker.duckdb)
  - DUCKDB_MAX_MEMORY: memory limit (default: 1GB)
  - DUCKDB_THREADS: worker threads (default: 0 = NumCPU)

Sync and notifications:
  - SYNC_CONCURRENCY: students synced in parallel (default: 2)
  - SYNC_DELAY: pause before each student sync (default: 500ms)
  - NOTIFY_WINDOW_DAYS: inactivity window (default: 7)
  - NOTIFY_CONCURRENCY: parallel reminder sends (default: 3)
  - DEFAULT_CRON: expression stored when no setting exists (default: "0 0 * * *")

Email:
  - EMAIL_PROVIDER: resend, smtp or log (default: log)
  - EMAIL_SENDER: From address (default: onboarding@resend.dev)
  - RESEND_API_KEY, RESEND_ENDPOINT
  - SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD, SMTP_TLS

HTTP and security:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:3000)
  - TOKEN_SECRET: HMAC secret for login tokens (required, 32+ chars)
  - JWT_EXPIRY: token lifetime (default: 240h)
  - COOKIE_SECURE: set Secure on the token cookie (default: true)
  - REVOCATION_PATH: badger directory for logged-out tokens (default: /data/revoked)
  - CORS_ORIGINS: comma separated origins
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
*/
package config
