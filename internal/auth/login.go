// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/cftracker/internal/database"
	"github.com/tomtom215/cftracker/internal/logging"
	"github.com/tomtom215/cftracker/internal/metrics"
	"github.com/tomtom215/cftracker/internal/models"
)

// CredentialStore finds users by login name. *database.DB implements it.
type CredentialStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Session is the result of a successful login.
type Session struct {
	Token  string
	Claims *Claims
	User   *models.User
}

// Login checks username and password and issues a token. Unknown users and
// wrong passwords both return ErrInvalidCredentials.
func Login(ctx context.Context, store CredentialStore, jwtManager *JWTManager, username, password string) (*Session, error) {
	user, err := store.GetUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("load user: %w", err)
	}

	hash := ""
	if user != nil {
		hash = user.PasswordHash
	}
	if !CheckPassword(hash, password) {
		metrics.RecordAuthAttempt(false)
		logging.Ctx(ctx).Warn().Str("username", username).Msg("Login failed")
		return nil, ErrInvalidCredentials
	}

	token, claims, err := jwtManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	metrics.RecordAuthAttempt(true)
	logging.Ctx(ctx).Info().Str("username", user.Username).Str("role", user.Role).Msg("User logged in")
	return &Session{Token: token, Claims: claims, User: user}, nil
}
