// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/cftracker/internal/database"
	"github.com/tomtom215/cftracker/internal/scheduler"
	"github.com/tomtom215/cftracker/internal/sync"
	"github.com/tomtom215/cftracker/internal/validation"
)

// Messages returned to clients.
const (
	msgStudentNotFound = "Student not found"
	msgDuplicateHandle = "CF Handle already exists"
	msgDuplicateEmail  = "Email already exists"
	msgInvalidBody     = "Invalid request body"
	msgInternal        = "Internal server error"
	msgSyncInProgress  = "A sync is already in progress"
)

// respondError maps a domain error to a status code. Anything it does not
// recognise is logged and reported as a generic 500.
func respondError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	rw := NewResponseWriter(w, r)
	switch {
	case errors.Is(err, database.ErrNotFound):
		rw.NotFound(notFound)
	case errors.Is(err, database.ErrDuplicateHandle):
		rw.BadRequest(msgDuplicateHandle)
	case errors.Is(err, database.ErrDuplicateEmail):
		rw.BadRequest(msgDuplicateEmail)
	case errors.Is(err, scheduler.ErrInvalidExpression):
		rw.ValidationError(err.Error(), map[string]interface{}{"field": "cron_time"})
	case errors.Is(err, sync.ErrSyncInProgress):
		rw.Conflict(msgSyncInProgress)
	default:
		rw.DatabaseError(err)
	}
}

// respondValidation writes a 400 for a failed struct validation.
func respondValidation(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	NewResponseWriter(w, r).ValidationError(apiErr.Message, apiErr.Details)
}
