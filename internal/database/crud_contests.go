// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/cftracker/internal/models"
)

const contestColumns = `id, student_id, contest_id, contest_name, rank, old_rating, new_rating,
	rating_updated_at, unsolved_problems, created_at`

// ContestIDs returns the set of contest ids already stored for a student.
func (db *DB) ContestIDs(ctx context.Context, studentID string) (ids map[int]struct{}, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("select", "contests", start, err) }()

	rows, err := db.conn.QueryContext(ctx, `SELECT contest_id FROM contests WHERE student_id = ?`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contest ids: %w", err)
	}
	defer closeQuietly(rows)

	ids = make(map[int]struct{})
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan contest id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contest ids: %w", err)
	}
	return ids, nil
}

// InsertContests appends contests in one transaction and returns how many
// rows were new. Rows whose (student_id, contest_id) already exists are
// skipped.
func (db *DB) InsertContests(ctx context.Context, contests []models.Contest) (inserted int, err error) {
	if len(contests) == 0 {
		return 0, nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("insert", "contests", start, err) }()

	now := time.Now().UTC()
	err = db.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO contests
			(id, student_id, contest_id, contest_name, rank, old_rating, new_rating,
			 rating_updated_at, unsolved_problems, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING`)
		if err != nil {
			return fmt.Errorf("failed to prepare contest insert: %w", err)
		}
		defer closeQuietly(stmt)

		for i := range contests {
			c := &contests[i]
			if c.ID == "" {
				c.ID = uuid.New().String()
			}
			res, err := stmt.ExecContext(ctx, c.ID, c.StudentID, c.ContestID, c.ContestName, c.Rank,
				c.OldRating, c.NewRating, c.RatingUpdatedAt.UTC(), c.UnsolvedProblems, now)
			if err != nil {
				return fmt.Errorf("failed to insert contest %d: %w", c.ContestID, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (db *DB) queryContests(ctx context.Context, query string, args ...any) (contests []models.Contest, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("select", "contests", start, err) }()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contests: %w", err)
	}
	defer closeQuietly(rows)

	contests = make([]models.Contest, 0)
	for rows.Next() {
		var c models.Contest
		if err := rows.Scan(&c.ID, &c.StudentID, &c.ContestID, &c.ContestName, &c.Rank, &c.OldRating,
			&c.NewRating, &c.RatingUpdatedAt, &c.UnsolvedProblems, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contest: %w", err)
		}
		c.RatingUpdatedAt = c.RatingUpdatedAt.UTC()
		c.CreatedAt = c.CreatedAt.UTC()
		contests = append(contests, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contests: %w", err)
	}
	return contests, nil
}

// ListContests returns all contests of a student, oldest first.
func (db *DB) ListContests(ctx context.Context, studentID string) ([]models.Contest, error) {
	return db.queryContests(ctx, `SELECT `+contestColumns+` FROM contests
		WHERE student_id = ? ORDER BY rating_updated_at, contest_id`, studentID)
}

// ContestsSince returns contests rated at or after since, oldest first.
func (db *DB) ContestsSince(ctx context.Context, studentID string, since time.Time) ([]models.Contest, error) {
	return db.queryContests(ctx, `SELECT `+contestColumns+` FROM contests
		WHERE student_id = ? AND rating_updated_at >= ? ORDER BY rating_updated_at, contest_id`,
		studentID, since.UTC())
}

// BulkUpdateUnsolved writes unsolved counts keyed by contest id in a single
// transaction. Contests missing from counts keep their value.
func (db *DB) BulkUpdateUnsolved(ctx context.Context, studentID string, counts map[int]int) (err error) {
	if len(counts) == 0 {
		return nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("update", "contests", start, err) }()

	ids := make([]int, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	return db.withConflictRetry(ctx, func() error {
		return db.withTx(ctx, func(tx *sql.Tx) error {
			stmt, err := tx.PrepareContext(ctx, `UPDATE contests SET unsolved_problems = ?
				WHERE student_id = ? AND contest_id = ? AND unsolved_problems <> ?`)
			if err != nil {
				return fmt.Errorf("failed to prepare unsolved update: %w", err)
			}
			defer closeQuietly(stmt)

			for _, id := range ids {
				n := counts[id]
				if _, err := stmt.ExecContext(ctx, n, studentID, id, n); err != nil {
					return fmt.Errorf("failed to update unsolved for contest %d: %w", id, err)
				}
			}
			return nil
		})
	})
}
