// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package api

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/cftracker/internal/logging"
	"github.com/tomtom215/cftracker/internal/models"
)

var studentCSVHeader = []string{
	"id", "name", "email", "phone", "cf_handle",
	"current_rating", "max_rating", "rank", "max_rank",
	"reminder_count", "allow_email", "last_synced_at", "created_at",
}

// DownloadStudents streams every student as CSV.
func (h *Handler) DownloadStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.db.ListStudents(r.Context())
	if err != nil {
		NewResponseWriter(w, r).DatabaseError(err)
		return
	}

	filename := "students-" + h.now().UTC().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	if err := cw.Write(studentCSVHeader); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to write CSV header")
		return
	}
	for i := range students {
		if err := cw.Write(studentRecord(&students[i])); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to write CSV row")
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to flush CSV export")
	}
}

func studentRecord(s *models.Student) []string {
	lastSynced := ""
	if s.LastSyncedAt != nil {
		lastSynced = s.LastSyncedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		s.ID,
		csvSafe(s.Name),
		csvSafe(deref(s.Email)),
		csvSafe(deref(s.Phone)),
		csvSafe(s.Handle),
		strconv.Itoa(s.CurrentRating),
		strconv.Itoa(s.MaxRating),
		csvSafe(s.Rank),
		csvSafe(s.MaxRank),
		strconv.Itoa(s.ReminderCount),
		strconv.FormatBool(s.AllowEmail),
		lastSynced,
		s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// csvSafe prefixes cells that a spreadsheet would evaluate as a formula.
// Names and ranks come from Codeforces profiles and are user controlled.
func csvSafe(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + v
	}
	return v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
