// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

/*
Package middleware provides chi-compatible HTTP middleware.

Key Components:

  - RequestID: accepts or generates X-Request-ID and carries it, plus a fresh
    correlation id, in the logging context
  - PrometheusMetrics: request counts, durations and in-flight gauge labelled
    by the chi route pattern so path parameters do not explode cardinality
  - AccessLog: one structured log line per request

Typical stack:

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
