// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/cftracker/internal/logging"
)

// AccessLog writes one log line per request. 5xx responses log at error
// level, 4xx at warn and the rest at debug.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rec, r)

		log := logging.Ctx(r.Context())
		event := log.Debug()
		switch {
		case rec.statusCode >= 500:
			event = log.Error()
		case rec.statusCode >= 400:
			event = log.Warn()
		}
		event.Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", routePattern(r)).
			Int("status", rec.statusCode).
			Int("bytes", rec.bytes).
			Str("remote_addr", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}
