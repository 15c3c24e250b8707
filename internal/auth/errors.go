// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package auth

import "errors"

var (
	// ErrMissingToken means neither the cookie nor a Bearer header was sent.
	ErrMissingToken = errors.New("missing token")

	// ErrInvalidToken covers bad signatures, wrong algorithms and expiry.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenRevoked means the token id was revoked by logout.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrInvalidCredentials is returned for an unknown user or wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUserNotFound means the token names a user that no longer exists.
	ErrUserNotFound = errors.New("user not found")

	// ErrAuthBackend wraps revocation or user store failures. These are
	// server errors, not bad credentials.
	ErrAuthBackend = errors.New("authentication backend unavailable")

	// ErrRevocationStoreClosed indicates the store has been closed.
	ErrRevocationStoreClosed = errors.New("revocation store is closed")
)
