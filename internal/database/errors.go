// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package database

import (
	"errors"
	"io"
	"strings"
)

// Store errors.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateHandle   = errors.New("cf handle already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")
)

// closeQuietly closes a resource on an error path where the Close error is
// not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// isUniqueConstraintError matches DuckDB's "Duplicate key ... violates unique
// constraint" errors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// studentConstraintError maps a unique violation on the students table to the
// matching sentinel.
func studentConstraintError(err error) error {
	if !isUniqueConstraintError(err) {
		return err
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "cf_handle") && strings.Contains(msg, "email") {
		return ErrDuplicateEmail
	}
	return ErrDuplicateHandle
}

func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Transaction conflict") ||
		strings.Contains(msg, "Conflict on update")
}
