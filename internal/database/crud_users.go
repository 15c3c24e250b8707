// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/cftracker/internal/models"
)

// CreateUser inserts a dashboard user. passwordHash must already be a bcrypt
// hash.
func (db *DB) CreateUser(ctx context.Context, username, passwordHash, role string) (user *models.User, err error) {
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("insert", "users", start, err) }()

	u := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	_, err = db.conn.ExecContext(ctx, `INSERT INTO users (id, username, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?)`, u.ID, u.Username, u.PasswordHash, u.Role, u.CreatedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (db *DB) getUserWhere(ctx context.Context, where string, arg any) (user *models.User, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("select", "users", start, err) }()

	var u models.User
	err = db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE `+where, arg).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

// GetUserByUsername returns the user or ErrNotFound.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return db.getUserWhere(ctx, "username = ?", username)
}

// GetUserByID returns the user or ErrNotFound.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return db.getUserWhere(ctx, "id = ?", id)
}
