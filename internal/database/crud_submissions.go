// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/cftracker/internal/models"
)

const submissionColumns = `id, student_id, submission_id, contest_id, problem_index, problem_name,
	problem_rating, verdict, created_at`

// SubmissionIDs returns the set of submission ids already stored for a
// student.
func (db *DB) SubmissionIDs(ctx context.Context, studentID string) (ids map[int64]struct{}, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("select", "submissions", start, err) }()

	rows, err := db.conn.QueryContext(ctx, `SELECT submission_id FROM submissions WHERE student_id = ?`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submission ids: %w", err)
	}
	defer closeQuietly(rows)

	ids = make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan submission id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submission ids: %w", err)
	}
	return ids, nil
}

// InsertSubmissions appends submissions in one transaction and returns how
// many rows were new.
func (db *DB) InsertSubmissions(ctx context.Context, subs []models.Submission) (inserted int, err error) {
	if len(subs) == 0 {
		return 0, nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("insert", "submissions", start, err) }()

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO submissions
			(id, student_id, submission_id, contest_id, problem_index, problem_name,
			 problem_rating, verdict, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING`)
		if err != nil {
			return fmt.Errorf("failed to prepare submission insert: %w", err)
		}
		defer closeQuietly(stmt)

		for i := range subs {
			s := &subs[i]
			if s.ID == "" {
				s.ID = uuid.New().String()
			}
			res, err := stmt.ExecContext(ctx, s.ID, s.StudentID, s.SubmissionID, s.ContestID, s.ProblemIndex,
				s.ProblemName, s.ProblemRating, s.Verdict, s.CreatedAt.UTC())
			if err != nil {
				return fmt.Errorf("failed to insert submission %d: %w", s.SubmissionID, err)
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

func (db *DB) querySubmissions(ctx context.Context, query string, args ...any) (subs []models.Submission, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("select", "submissions", start, err) }()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer closeQuietly(rows)

	subs = make([]models.Submission, 0)
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.StudentID, &s.SubmissionID, &s.ContestID, &s.ProblemIndex,
			&s.ProblemName, &s.ProblemRating, &s.Verdict, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		s.CreatedAt = s.CreatedAt.UTC()
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}
	return subs, nil
}

// ListSubmissions returns every stored submission of a student, oldest first.
func (db *DB) ListSubmissions(ctx context.Context, studentID string) ([]models.Submission, error) {
	return db.querySubmissions(ctx, `SELECT `+submissionColumns+` FROM submissions
		WHERE student_id = ? ORDER BY created_at, submission_id`, studentID)
}

// AcceptedSubmissionsSince returns accepted submissions created at or after
// since, oldest first.
func (db *DB) AcceptedSubmissionsSince(ctx context.Context, studentID string, since time.Time) ([]models.Submission, error) {
	return db.querySubmissions(ctx, `SELECT `+submissionColumns+` FROM submissions
		WHERE student_id = ? AND verdict = ? AND created_at >= ?
		ORDER BY created_at, submission_id`, studentID, models.VerdictAccepted, since.UTC())
}

// ActiveStudentIDs returns the ids of students with at least one submission
// created at or after since.
func (db *DB) ActiveStudentIDs(ctx context.Context, since time.Time) (ids map[string]struct{}, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("select", "submissions", start, err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT student_id FROM submissions WHERE created_at >= ?`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query active students: %w", err)
	}
	defer closeQuietly(rows)

	ids = make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan student id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active students: %w", err)
	}
	return ids, nil
}
