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
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/cftracker/internal/models"
)

const studentColumns = `id, cf_handle, name, email, phone, current_rating, max_rating,
	rank, max_rank, avatar, reminder_count, allow_email, last_synced_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (*models.Student, error) {
	var s models.Student
	var email, phone sql.NullString
	var lastSynced sql.NullTime
	if err := row.Scan(&s.ID, &s.Handle, &s.Name, &email, &phone, &s.CurrentRating, &s.MaxRating,
		&s.Rank, &s.MaxRank, &s.Avatar, &s.ReminderCount, &s.AllowEmail, &lastSynced,
		&s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if email.Valid {
		s.Email = &email.String
	}
	if phone.Valid {
		s.Phone = &phone.String
	}
	if lastSynced.Valid {
		t := lastSynced.Time.UTC()
		s.LastSyncedAt = &t
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}

func (db *DB) queryStudents(ctx context.Context, query string, args ...any) (students []models.Student, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("select", "students", start, err) }()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer closeQuietly(rows)

	students = make([]models.Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating students: %w", err)
	}
	return students, nil
}

// ListStudents returns every tracked student in creation order.
func (db *DB) ListStudents(ctx context.Context) ([]models.Student, error) {
	return db.queryStudents(ctx, `SELECT `+studentColumns+` FROM students ORDER BY created_at, cf_handle`)
}

// ListStudentsPage returns one page of students in creation order.
func (db *DB) ListStudentsPage(ctx context.Context, offset, limit int) ([]models.Student, error) {
	if offset < 0 {
		offset = 0
	}
	return db.queryStudents(ctx,
		`SELECT `+studentColumns+` FROM students ORDER BY created_at, cf_handle LIMIT ? OFFSET ?`,
		limit, offset)
}

// ListOptedInStudents returns students with a non-empty email and
// allow_email set.
func (db *DB) ListOptedInStudents(ctx context.Context) ([]models.Student, error) {
	return db.queryStudents(ctx, `SELECT `+studentColumns+` FROM students
		WHERE allow_email AND email IS NOT NULL AND trim(email) <> ''
		ORDER BY created_at, cf_handle`)
}

// CountStudents returns the number of tracked students.
func (db *DB) CountStudents(ctx context.Context) (count int, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("select", "students", start, err) }()

	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}

func (db *DB) getStudentWhere(ctx context.Context, where string, arg any) (student *models.Student, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("select", "students", start, err) }()

	row := db.conn.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students WHERE `+where, arg)
	student, err = scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return student, nil
}

// GetStudent returns the student with id or ErrNotFound.
func (db *DB) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	return db.getStudentWhere(ctx, "id = ?", id)
}

// GetStudentByHandle returns the student tracking handle or ErrNotFound.
func (db *DB) GetStudentByHandle(ctx context.Context, handle string) (*models.Student, error) {
	return db.getStudentWhere(ctx, "cf_handle = ?", handle)
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return v
}

// CreateStudent inserts a new student from input. allow_email defaults to
// true and the profile fields stay empty until the first sync.
func (db *DB) CreateStudent(ctx context.Context, input *models.StudentInput) (student *models.Student, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("insert", "students", start, err) }()

	now := time.Now().UTC()
	name := ""
	if input.Name != nil {
		name = strings.TrimSpace(*input.Name)
	}
	id := uuid.New().String()

	_, err = db.conn.ExecContext(ctx, `INSERT INTO students
		(id, cf_handle, name, email, phone, allow_email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, true, ?, ?)`,
		id, strings.TrimSpace(input.Handle), name, nullableString(input.Email), nullableString(input.Phone), now, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, studentConstraintError(err)
		}
		return nil, fmt.Errorf("failed to create student: %w", err)
	}
	return db.GetStudent(ctx, id)
}

// UpdateStudent overwrites the editable fields of a student. A nil Name,
// Email or Phone leaves the column untouched.
func (db *DB) UpdateStudent(ctx context.Context, id string, input *models.StudentInput) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("update", "students", start, err) }()

	sets := []string{"cf_handle = ?", "updated_at = ?"}
	args := []any{strings.TrimSpace(input.Handle), time.Now().UTC()}
	if input.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*input.Name))
	}
	if input.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, nullableString(input.Email))
	}
	if input.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, nullableString(input.Phone))
	}
	args = append(args, id)

	res, err := db.conn.ExecContext(ctx,
		`UPDATE students SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if isUniqueConstraintError(err) {
			return studentConstraintError(err)
		}
		return fmt.Errorf("failed to update student: %w", err)
	}
	return requireAffected(res)
}

// UpdateStudentProfile replaces the upstream-derived fields with profile.
// Empty values overwrite non-empty ones.
func (db *DB) UpdateStudentProfile(ctx context.Context, id string, profile *models.Profile) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("update", "students", start, err) }()

	err = db.withConflictRetry(ctx, func() error {
		res, execErr := db.conn.ExecContext(ctx, `UPDATE students SET
			name = ?, current_rating = ?, max_rating = ?, rank = ?, max_rank = ?, avatar = ?, updated_at = ?
			WHERE id = ?`,
			profile.Name, profile.CurrentRating, profile.MaxRating, profile.Rank, profile.MaxRank,
			profile.Avatar, time.Now().UTC(), id)
		if execErr != nil {
			return fmt.Errorf("failed to update student profile: %w", execErr)
		}
		return requireAffected(res)
	})
	return err
}

// SetLastSynced stamps the last successful sync time.
func (db *DB) SetLastSynced(ctx context.Context, id string, t time.Time) (err error) {
	return db.updateStudentColumn(ctx, id, "last_synced_at = ?", t.UTC())
}

// SetAllowEmail toggles inactivity reminders for a student.
func (db *DB) SetAllowEmail(ctx context.Context, id string, allow bool) error {
	return db.updateStudentColumn(ctx, id, "allow_email = ?", allow)
}

// IncrementReminderCount adds one to the reminder counter.
func (db *DB) IncrementReminderCount(ctx context.Context, id string) error {
	return db.updateStudentColumn(ctx, id, "reminder_count = reminder_count + 1, updated_at = ?", time.Now().UTC())
}

func (db *DB) updateStudentColumn(ctx context.Context, id, set string, value any) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("update", "students", start, err) }()

	return db.withConflictRetry(ctx, func() error {
		res, execErr := db.conn.ExecContext(ctx, `UPDATE students SET `+set+` WHERE id = ?`, value, id)
		if execErr != nil {
			return fmt.Errorf("failed to update student: %w", execErr)
		}
		return requireAffected(res)
	})
}

// DeleteStudentCascade removes a student with its contests and submissions
// in one transaction.
func (db *DB) DeleteStudentCascade(ctx context.Context, id string) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("delete", "students", start, err) }()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM submissions WHERE student_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete submissions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM contests WHERE student_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete contests: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete student: %w", err)
		}
		return requireAffected(res)
	})
}

// DeleteStudentHistory removes a student's contests and submissions. Used
// when the handle changes and history must be pulled again.
func (db *DB) DeleteStudentHistory(ctx context.Context, id string) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()
	defer func() { observe("delete", "contests", start, err) }()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM submissions WHERE student_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete submissions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM contests WHERE student_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete contests: %w", err)
		}
		return nil
	})
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
