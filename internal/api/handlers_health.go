// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package api

import (
	"context"
	"net/http"
	"time"
)

// readyTimeout bounds the database ping of the readiness probe.
const readyTimeout = 2 * time.Second

// HealthLive reports that the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady reports whether the database answers. It returns 503 when not.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if h.db == nil || h.db.Ping(ctx) != nil {
		NewResponseWriter(w, r).ServiceUnavailable("Database not ready")
		return
	}

	data := map[string]interface{}{
		"ready":        true,
		"database":     true,
		"sync_running": h.syncer != nil && h.syncer.Running(),
	}
	if h.syncer != nil {
		if last := h.syncer.LastCycle(); !last.IsZero() {
			data["last_cycle"] = last.UTC()
		}
	}
	WriteSuccess(w, r, data)
}
