// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/cftracker/internal/logging"
	"github.com/tomtom215/cftracker/internal/models"
	"github.com/tomtom215/cftracker/internal/sync"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	maxPage          = 1_000_000
)

// StudentResponse is a student with the outcome of the sync the request
// triggered, if any.
type StudentResponse struct {
	*models.Student
	Sync *sync.Outcome `json:"sync,omitempty"`
}

// EmailPreferenceRequest is the body of PATCH /students/{id}/email.
type EmailPreferenceRequest struct {
	AllowEmail *bool `json:"allow_email" validate:"required"`
}

// ListStudents returns one page of students with pagination metadata.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	page, err := getIntParam(r, "page", 1, maxPage)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	limit, err := getIntParam(r, "limit", defaultPageLimit, maxPageLimit)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	total, err := h.db.CountStudents(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	students, err := h.db.ListStudentsPage(r.Context(), (page-1)*limit, limit)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if students == nil {
		students = []models.Student{}
	}

	rw.SuccessWithPagination(students, &PaginationMeta{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	})
}

// GetStudent returns one student.
func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	student, err := h.db.GetStudent(r.Context(), studentID(r))
	if err != nil {
		respondError(w, r, err, msgStudentNotFound)
		return
	}
	WriteSuccess(w, r, student)
}

// CreateStudent registers a student and runs the first sync before
// responding. A failed sync still returns 201; its outcome is in the body.
func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var input models.StudentInput
	if !decodeBody(w, r, &input) {
		return
	}
	input.Handle = strings.TrimSpace(input.Handle)

	student, err := h.db.CreateStudent(r.Context(), &input)
	if err != nil {
		respondError(w, r, err, msgStudentNotFound)
		return
	}
	logging.Ctx(r.Context()).Info().Str("student_id", student.ID).
		Str("handle", sanitizeLogValue(student.Handle)).Msg("Student created")

	outcome := h.syncer.SyncOne(r.Context(), student)
	h.InvalidateStudent(student.ID)

	synced, err := h.db.GetStudent(r.Context(), student.ID)
	if err != nil {
		respondError(w, r, err, msgStudentNotFound)
		return
	}
	NewResponseWriter(w, r).Created(StudentResponse{Student: synced, Sync: &outcome})
}

// UpdateStudent edits a student. Changing the handle wipes the stored
// contests and submissions and resyncs from the new handle.
func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id := studentID(r)
	existing, err := h.db.GetStudent(r.Context(), id)
	if err != nil {
		respondError(w, r, err, msgStudentNotFound)
		return
	}

	var input models.StudentInput
	if !decodeBody(w, r, &input) {
		return
	}
	input.Handle = strings.TrimSpace(input.Handle)

	if err := h.db.UpdateStudent(r.Context(), id, &input); err != nil {
		respondError(w, r, err, msgStudentNotFound)
		return
	}

	var outcome *sync.Outcome
	if input.Handle != existing.Handle {
		logging.Ctx(r.Context()).Info().Str("student_id", id).
			Str("old_handle", sanitizeLogValue(existing.Handle)).
			Str("new_handle", sanitizeLogValue(input.Handle)).
			Msg("Handle changed, resetting history")

		if err := h.db.DeleteStudentHistory(r.Context(), id); err != nil {
			respondError(w, r, err, msgStudentNotFound)
			return
		}
		updated, err := h.db.GetStudent(r.Context(), id)
		if err != nil {
			respondError(w, r, err, msgStudentNotFound)
			return
		}
		o := h.syncer.SyncOne(r.Context(), updated)
		outcome = &o
	}
	h.InvalidateStudent(id)

	student, err := h.db.GetStudent(r.Context(), id)
	if err != nil {
		respondError(w, r, err, msgStudentNotFound)
		return
	}
	WriteSuccess(w, r, StudentResponse{Student: student, Sync: outcome})
}

// UpdateStudentEmail sets the reminder opt-in flag.
func (h *Handler) UpdateStudentEmail(w http.ResponseWriter, r *http.Request) {
	var req EmailPreferenceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id := studentID(r)
	if err := h.db.SetAllowEmail(r.Context(), id, *req.AllowEmail); err != nil {
		respondError(w, r, err, msgStudentNotFound)
		return
	}
	student, err := h.db.GetStudent(r.Context(), id)
	if err != nil {
		respondError(w, r, err, msgStudentNotFound)
		return
	}
	WriteSuccess(w, r, student)
}

// DeleteStudent removes a student with its contests and submissions.
func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id := studentID(r)
	if err := h.db.DeleteStudentCascade(r.Context(), id); err != nil {
		respondError(w, r, err, msgStudentNotFound)
		return
	}
	h.InvalidateStudent(id)
	logging.Ctx(r.Context()).Info().Str("student_id", id).Msg("Student deleted")
	WriteSuccess(w, r, map[string]string{"message": "Student deleted successfully"})
}

// SyncStudent runs SyncOne for one student and returns the outcome. A failed
// sync is reported in the body with status 200.
func (h *Handler) SyncStudent(w http.ResponseWriter, r *http.Request) {
	student, err := h.db.GetStudent(r.Context(), studentID(r))
	if err != nil {
		respondError(w, r, err, msgStudentNotFound)
		return
	}

	outcome := h.syncer.SyncOne(r.Context(), student)
	h.InvalidateStudent(student.ID)

	synced, err := h.db.GetStudent(r.Context(), student.ID)
	if err != nil {
		respondError(w, r, err, msgStudentNotFound)
		return
	}
	WriteSuccess(w, r, StudentResponse{Student: synced, Sync: &outcome})
}
