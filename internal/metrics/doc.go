// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

/*
Package metrics provides Prometheus metrics for the tracker.

All collectors are registered on the default registry through promauto and
exposed at /metrics.

# Available Metrics

HTTP:
  - api_requests_total (method, endpoint, status_code)
  - api_request_duration_seconds (method, endpoint)
  - api_active_requests

Database:
  - duckdb_query_duration_seconds (operation, table)
  - duckdb_query_errors_total (operation, table, error_type)

Sync and notifications:
  - sync_duration_seconds
  - sync_students_total (result)
  - sync_stage_failures_total (stage)
  - sync_records_inserted_total (kind)
  - sync_last_success_timestamp
  - notifications_total (channel, result)
  - notifier_candidates

Upstream:
  - codeforces_request_duration_seconds (method)
  - codeforces_requests_total (method, result)
  - circuit_breaker_state (name)
  - circuit_breaker_state_transitions_total (name, from_state, to_state)

Scheduler and auth:
  - scheduler_runs_total (result)
  - scheduler_next_run_timestamp
  - auth_attempts_total (result)
  - authz_decisions_total (object, action, result)

Cache:
  - cache_requests_total (cache, result)
*/
package metrics
