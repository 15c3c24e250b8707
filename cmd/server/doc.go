// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

/*
Package main is the entry point for the CFTracker server.

CFTracker keeps a roster of students with their Codeforces handles, mirrors
their contest history and submissions into DuckDB, serves per-student
progress reports over a REST API, and emails students who have gone quiet.

# Application Architecture

	RootSupervisor ("cftracker")
	├── DataSupervisor ("data-layer")
	│   └── CheckpointService (DuckDB CHECKPOINT every 5 minutes)
	├── SchedulingSupervisor ("scheduling-layer")
	│   └── SchedulerService (cron-driven sync cycle + reminders)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Database: DuckDB with schema migration
 4. Upstream: Codeforces client with rate limiter and circuit breaker
 5. Sync engine and inactivity notifier (Resend, SMTP or log channel)
 6. Scheduler: stored cron expression, default "0 0 * * *" UTC
 7. Authentication: JWT cookies, BadgerDB revocation list, casbin RBAC
 8. HTTP server under the supervisor tree

# Configuration

Commonly set environment variables:

	TOKEN_SECRET        32+ character HS256 secret (required)
	DUCKDB_PATH         database file, default /data/cftracker.duckdb
	HTTP_PORT           listen port, default 3000
	DEFAULT_CRON        cron used when no setting is stored
	EMAIL_PROVIDER      resend, smtp or log
	RESEND_API_KEY      required for the resend provider
	COOKIE_SECURE       true behind HTTPS
	REVOCATION_PATH     BadgerDB directory for logged-out tokens
	LOG_LEVEL           trace, debug, info, warn, error

Login users are created with the seed command:

	cftracker-seed user admin 's3cret-pass'

# Signal Handling

SIGINT and SIGTERM cancel the supervisor context. The HTTP server drains
within SHUTDOWN_TIMEOUT, the scheduler stops waiting for a running cycle,
and the database is checkpointed before close.
*/
package main
