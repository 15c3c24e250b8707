// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/cftracker/internal/analytics"
	"github.com/tomtom215/cftracker/internal/cache"
	"github.com/tomtom215/cftracker/internal/models"
)

const (
	defaultHistoryDays    = 90
	defaultSubmissionDays = 7
	maxWindowDays         = 3650
)

func windowStart(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// ContestHistory returns the contests of a student rated within the last
// days days, oldest first.
func (h *Handler) ContestHistory(w http.ResponseWriter, r *http.Request) {
	days, err := getIntParam(r, "days", defaultHistoryDays, maxWindowDays)
	if err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}

	id := studentID(r)
	if _, err := h.db.GetStudent(r.Context(), id); err != nil {
		respondError(w, r, err, msgStudentNotFound)
		return
	}

	key := cache.Key(id, "contests", days)
	if entries, ok := h.histories.Get(key); ok {
		WriteSuccess(w, r, entries)
		return
	}

	contests, err := h.db.ContestsSince(r.Context(), id, windowStart(h.now(), days))
	if err != nil {
		NewResponseWriter(w, r).DatabaseError(err)
		return
	}
	entries := make([]models.ContestHistoryEntry, 0, len(contests))
	for i := range contests {
		entries = append(entries, contests[i].HistoryEntry())
	}

	h.histories.Set(key, entries)
	WriteSuccess(w, r, entries)
}

// SubmissionData returns the problem-solving report of a student over the
// last days days.
func (h *Handler) SubmissionData(w http.ResponseWriter, r *http.Request) {
	days, err := getIntParam(r, "days", defaultSubmissionDays, maxWindowDays)
	if err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}

	id := studentID(r)
	if _, err := h.db.GetStudent(r.Context(), id); err != nil {
		respondError(w, r, err, msgStudentNotFound)
		return
	}

	key := cache.Key(id, "submissions", days)
	if report, ok := h.reports.Get(key); ok {
		WriteSuccess(w, r, report)
		return
	}

	now := h.now()
	subs, err := h.db.AcceptedSubmissionsSince(r.Context(), id, windowStart(now, days))
	if err != nil {
		NewResponseWriter(w, r).DatabaseError(err)
		return
	}
	report := analytics.BuildReport(subs, days, now)

	h.reports.Set(key, report)
	WriteSuccess(w, r, report)
}
