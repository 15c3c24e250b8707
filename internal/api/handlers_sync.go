// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/cftracker/internal/logging"
	"github.com/tomtom215/cftracker/internal/sync"
)

// SyncStatus is the body of GET /api/v1/sync/status.
type SyncStatus struct {
	Running   bool       `json:"running"`
	LastCycle *time.Time `json:"last_cycle,omitempty"`
}

// TriggerSync starts a full cycle in the background and returns 202. It
// returns 409 when a cycle is already running.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if h.syncer.Running() {
		NewResponseWriter(w, r).Conflict(msgSyncInProgress)
		return
	}

	requestID := logging.RequestIDFromContext(r.Context())
	h.bg.Add(1)
	go func() {
		defer h.bg.Done()
		ctx := logging.ContextWithRequestID(h.bgCtx, requestID)
		err := h.syncer.RunCycle(ctx)
		switch {
		case errors.Is(err, sync.ErrSyncInProgress):
			logging.Ctx(ctx).Warn().Msg("Manual sync skipped, cycle already running")
			return
		case err != nil:
			logging.Ctx(ctx).Error().Err(err).Msg("Manual sync failed")
		}
		h.InvalidateAll()
	}()

	NewResponseWriter(w, r).Accepted(map[string]string{"message": "Sync started"})
}

// SyncStatusHandler reports whether a cycle is running and when the last
// one finished.
func (h *Handler) SyncStatusHandler(w http.ResponseWriter, r *http.Request) {
	status := SyncStatus{Running: h.syncer.Running()}
	if last := h.syncer.LastCycle(); !last.IsZero() {
		last = last.UTC()
		status.LastCycle = &last
	}
	WriteSuccess(w, r, status)
}
