// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

/*
database_schema.go - Schema

Tables:
  - students: tracked accounts, unique cf_handle, optional unique email
  - contests: rating change events, unique (student_id, contest_id)
  - submissions: submissions, unique (student_id, submission_id)
  - settings: single row (id = 1) with the cron expression
  - users: dashboard logins, unique username

Timestamps are stored as TIMESTAMP in UTC.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, q := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS students (
			id VARCHAR PRIMARY KEY,
			cf_handle VARCHAR NOT NULL UNIQUE,
			name VARCHAR NOT NULL DEFAULT '',
			email VARCHAR UNIQUE,
			phone VARCHAR,
			current_rating INTEGER NOT NULL DEFAULT 0,
			max_rating INTEGER NOT NULL DEFAULT 0,
			rank VARCHAR NOT NULL DEFAULT '',
			max_rank VARCHAR NOT NULL DEFAULT '',
			avatar VARCHAR NOT NULL DEFAULT '',
			reminder_count INTEGER NOT NULL DEFAULT 0,
			allow_email BOOLEAN NOT NULL DEFAULT true,
			last_synced_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS contests (
			id VARCHAR PRIMARY KEY,
			student_id VARCHAR NOT NULL,
			contest_id INTEGER NOT NULL,
			contest_name VARCHAR NOT NULL DEFAULT '',
			rank INTEGER NOT NULL DEFAULT 0,
			old_rating INTEGER NOT NULL DEFAULT 0,
			new_rating INTEGER NOT NULL DEFAULT 0,
			rating_updated_at TIMESTAMP NOT NULL,
			unsolved_problems INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (student_id, contest_id)
		)`,
		`CREATE TABLE IF NOT EXISTS submissions (
			id VARCHAR PRIMARY KEY,
			student_id VARCHAR NOT NULL,
			submission_id BIGINT NOT NULL,
			contest_id INTEGER NOT NULL DEFAULT 0,
			problem_index VARCHAR NOT NULL DEFAULT '',
			problem_name VARCHAR NOT NULL DEFAULT '',
			problem_rating INTEGER NOT NULL DEFAULT 0,
			verdict VARCHAR NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			UNIQUE (student_id, submission_id)
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY,
			cron_time VARCHAR NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR PRIMARY KEY,
			username VARCHAR NOT NULL UNIQUE,
			password_hash VARCHAR NOT NULL,
			role VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_created_at ON submissions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_contests_rating_updated_at ON contests(rating_updated_at)`,
	}
}
