// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Sync Metrics
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sync_duration_seconds",
			Help:    "Duration of a single student sync in seconds",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	SyncStudentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_students_total",
			Help: "Total number of student syncs by outcome",
		},
		[]string{"result"}, // success, failure
	)

	SyncStageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_stage_failures_total",
			Help: "Total number of failed sync stages",
		},
		[]string{"stage"}, // profile, contests, submissions, unsolved, timestamp
	)

	SyncRecordsInserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_records_inserted_total",
			Help: "Total number of new contest and submission rows",
		},
		[]string{"kind"}, // contest, submission
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sync_last_success_timestamp",
			Help: "Unix timestamp of the last completed sync cycle",
		},
	)

	// Notifier Metrics
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of inactivity reminders by outcome",
		},
		[]string{"channel", "result"}, // result: sent, failed
	)

	NotifierCandidates = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notifier_candidates",
			Help: "Inactive opted-in students found in the last run",
		},
	)

	// Upstream Metrics
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codeforces_request_duration_seconds",
			Help:    "Duration of Codeforces API calls in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method"},
	)

	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codeforces_requests_total",
			Help: "Total number of Codeforces API calls by outcome",
		},
		[]string{"method", "result"}, // ok, failed, rejected
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Scheduler Metrics
	SchedulerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_runs_total",
			Help: "Total number of scheduled cycles",
		},
		[]string{"result"}, // completed, skipped
	)

	SchedulerNextRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_next_run_timestamp",
			Help: "Unix timestamp of the next scheduled cycle",
		},
	)

	// Auth Metrics
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"result"}, // success, failure
	)

	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"object", "action", "result"}, // allowed, denied
	)

	// Cache Metrics
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Total number of report cache lookups",
		},
		[]string{"cache", "result"}, // hit, miss
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordStudentSync records the outcome of one SyncOne call.
func RecordStudentSync(duration time.Duration, success bool, contests, submissions int) {
	SyncDuration.Observe(duration.Seconds())
	result := "success"
	if !success {
		result = "failure"
	}
	SyncStudentsTotal.WithLabelValues(result).Inc()
	SyncRecordsInserted.WithLabelValues("contest").Add(float64(contests))
	SyncRecordsInserted.WithLabelValues("submission").Add(float64(submissions))
}

// RecordStageFailure counts a failed sync stage.
func RecordStageFailure(stage string) {
	SyncStageFailures.WithLabelValues(stage).Inc()
}

// RecordSyncCycle marks a completed SyncAll pass.
func RecordSyncCycle() {
	SyncLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordNotification records a reminder delivery attempt.
func RecordNotification(channel string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	NotificationsTotal.WithLabelValues(channel, result).Inc()
}

// RecordUpstreamCall records a Codeforces API call.
func RecordUpstreamCall(method string, duration time.Duration, err error) {
	UpstreamRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
	result := "ok"
	switch {
	case err == nil:
	case strings.Contains(err.Error(), "circuit breaker"):
		result = "rejected"
	default:
		result = "failed"
	}
	UpstreamRequestsTotal.WithLabelValues(method, result).Inc()
}

// RecordBreakerTransition updates the state gauge and transition counter.
// States follow gobreaker naming: "closed", "half-open", "open".
func RecordBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// RecordSchedulerRun counts a scheduler tick. skipped is true when a previous
// cycle was still running.
func RecordSchedulerRun(skipped bool) {
	if skipped {
		SchedulerRuns.WithLabelValues("skipped").Inc()
		return
	}
	SchedulerRuns.WithLabelValues("completed").Inc()
}

// SetNextRun publishes the next scheduled run time.
func SetNextRun(next time.Time) {
	if next.IsZero() {
		SchedulerNextRun.Set(0)
		return
	}
	SchedulerNextRun.Set(float64(next.Unix()))
}

// RecordAuthAttempt counts a login attempt.
func RecordAuthAttempt(success bool) {
	if success {
		AuthAttempts.WithLabelValues("success").Inc()
		return
	}
	AuthAttempts.WithLabelValues("failure").Inc()
}

// RecordAuthzDecision counts an authorization decision.
func RecordAuthzDecision(object, action string, allowed bool) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	AuthzDecisions.WithLabelValues(object, action, result).Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheRequests.WithLabelValues(cache, "hit").Inc()
		return
	}
	CacheRequests.WithLabelValues(cache, "miss").Inc()
}
