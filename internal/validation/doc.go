// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

// Package validation provides struct validation using go-playground/validator v10.
//
// A thread-safe singleton validator reports fields by their JSON names and
// adds three tags:
//   - cfhandle: a Codeforces handle (3 to 24 of [A-Za-z0-9_.-])
//   - cron: an expression the scheduler accepts
//   - role: admin or user
//
// Usage:
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
package validation
