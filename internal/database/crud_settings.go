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

	"github.com/tomtom215/cftracker/internal/models"
)

// settingsRowID is the primary key of the singleton settings row.
const settingsRowID = 1

// GetSetting returns the schedule setting or ErrNotFound when it was never
// written.
func (db *DB) GetSetting(ctx context.Context) (setting *models.Setting, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("select", "settings", start, err) }()

	var s models.Setting
	err = db.conn.QueryRowContext(ctx, `SELECT cron_time, updated_at FROM settings WHERE id = ?`, settingsRowID).
		Scan(&s.CronTime, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}

// EnsureSetting returns the stored setting, creating it with defaultCron
// when absent.
func (db *DB) EnsureSetting(ctx context.Context, defaultCron string) (*models.Setting, error) {
	s, err := db.GetSetting(ctx)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	_, err = db.conn.ExecContext(ctx, `INSERT INTO settings (id, cron_time, updated_at)
		VALUES (?, ?, ?) ON CONFLICT DO NOTHING`, settingsRowID, defaultCron, time.Now().UTC())
	observe("insert", "settings", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to create default setting: %w", err)
	}
	return db.GetSetting(ctx)
}

// SaveSetting persists a new cron expression. Callers validate it first.
func (db *DB) SaveSetting(ctx context.Context, cronTime string) (setting *models.Setting, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("upsert", "settings", start, err) }()

	_, err = db.conn.ExecContext(ctx, `INSERT INTO settings (id, cron_time, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET cron_time = excluded.cron_time, updated_at = excluded.updated_at`,
		settingsRowID, cronTime, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to save setting: %w", err)
	}
	return db.GetSetting(ctx)
}
