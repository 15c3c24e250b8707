// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/cftracker/internal/logging"
)

// CronRequest is the body of PUT /api/v1/settings/cron.
type CronRequest struct {
	CronTime string `json:"cron_time" validate:"required,cron"`
}

// GetCron returns the armed cron expression and its next fire time.
func (h *Handler) GetCron(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.schedule.Status())
}

// UpdateCron validates, persists and re-arms the schedule.
func (h *Handler) UpdateCron(w http.ResponseWriter, r *http.Request) {
	var req CronRequest
	if !decodeBody(w, r, &req) {
		return
	}
	expr := strings.TrimSpace(req.CronTime)

	if _, err := h.schedule.Update(r.Context(), expr); err != nil {
		respondError(w, r, err, "Setting not found")
		return
	}
	logging.Ctx(r.Context()).Info().Str("cron", sanitizeLogValue(expr)).Msg("Schedule updated")
	WriteSuccess(w, r, h.schedule.Status())
}
