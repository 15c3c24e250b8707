// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/cftracker/internal/models"
)

func TestCreateStudent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	s, err := db.CreateStudent(ctx, &models.StudentInput{
		Handle: "  tourist ",
		Name:   strPtr("Gennady"),
		Email:  strPtr("g@example.com"),
	})
	if err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}
	if s.ID == "" {
		t.Error("expected generated id")
	}
	if s.Handle != "tourist" {
		t.Errorf("Handle = %q, want trimmed", s.Handle)
	}
	if !s.AllowEmail {
		t.Error("allow_email should default to true")
	}
	if s.ReminderCount != 0 {
		t.Errorf("ReminderCount = %d, want 0", s.ReminderCount)
	}
	if s.LastSyncedAt != nil {
		t.Error("LastSyncedAt should be nil before first sync")
	}
	if s.Email == nil || *s.Email != "g@example.com" {
		t.Errorf("Email = %v", s.Email)
	}

	got, err := db.GetStudentByHandle(ctx, "tourist")
	if err != nil {
		t.Fatalf("GetStudentByHandle: %v", err)
	}
	if got.ID != s.ID {
		t.Errorf("GetStudentByHandle id = %s, want %s", got.ID, s.ID)
	}
}

func TestCreateStudent_Duplicates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	createTestStudent(t, db, "petr", strPtr("petr@example.com"))

	tests := []struct {
		name    string
		input   models.StudentInput
		wantErr error
	}{
		{"duplicate handle", models.StudentInput{Handle: "petr"}, ErrDuplicateHandle},
		{"duplicate email", models.StudentInput{Handle: "other", Email: strPtr("petr@example.com")}, ErrDuplicateEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.CreateStudent(ctx, &tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Students without email do not collide on NULL.
	createTestStudent(t, db, "a", nil)
	createTestStudent(t, db, "b", strPtr(""))
}

func TestGetStudent_NotFound(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.GetStudent(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateStudentProfile_OverwritesWithEmpty(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	s := createTestStudent(t, db, "jiangly", nil)

	full := &models.Profile{Name: "Jiang Ly", CurrentRating: 3800, MaxRating: 3900, Rank: "legendary grandmaster",
		MaxRank: "legendary grandmaster", Avatar: "https://example.com/a.png"}
	if err := db.UpdateStudentProfile(ctx, s.ID, full); err != nil {
		t.Fatalf("UpdateStudentProfile: %v", err)
	}

	if err := db.UpdateStudentProfile(ctx, s.ID, &models.Profile{}); err != nil {
		t.Fatalf("UpdateStudentProfile(empty): %v", err)
	}
	got, err := db.GetStudent(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetStudent: %v", err)
	}
	if got.Name != "" || got.CurrentRating != 0 || got.MaxRating != 0 || got.Rank != "" || got.Avatar != "" {
		t.Errorf("profile not overwritten: %+v", got)
	}

	if err := db.UpdateStudentProfile(ctx, "missing", full); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing student err = %v, want ErrNotFound", err)
	}
}

func TestUpdateStudent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	s := createTestStudent(t, db, "old", strPtr("x@example.com"))
	createTestStudent(t, db, "taken", nil)

	err := db.UpdateStudent(ctx, s.ID, &models.StudentInput{Handle: "new", Phone: strPtr("123")})
	if err != nil {
		t.Fatalf("UpdateStudent: %v", err)
	}
	got, _ := db.GetStudent(ctx, s.ID)
	if got.Handle != "new" {
		t.Errorf("Handle = %q, want new", got.Handle)
	}
	if got.Phone == nil || *got.Phone != "123" {
		t.Errorf("Phone = %v, want 123", got.Phone)
	}
	if got.Email == nil || *got.Email != "x@example.com" {
		t.Errorf("Email should be untouched, got %v", got.Email)
	}

	if err := db.UpdateStudent(ctx, s.ID, &models.StudentInput{Handle: "taken"}); !errors.Is(err, ErrDuplicateHandle) {
		t.Errorf("duplicate err = %v, want ErrDuplicateHandle", err)
	}
	if err := db.UpdateStudent(ctx, "missing", &models.StudentInput{Handle: "zzz"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v, want ErrNotFound", err)
	}
}

func TestListStudentsPage(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	for _, h := range []string{"a", "b", "c", "d", "e"} {
		createTestStudent(t, db, h, nil)
	}

	count, err := db.CountStudents(ctx)
	if err != nil || count != 5 {
		t.Fatalf("CountStudents = %d, %v", count, err)
	}
	page, err := db.ListStudentsPage(ctx, 2, 2)
	if err != nil {
		t.Fatalf("ListStudentsPage: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page len = %d, want 2", len(page))
	}
	all, err := db.ListStudents(ctx)
	if err != nil {
		t.Fatalf("ListStudents: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("ListStudents len = %d, want 5", len(all))
	}
}

func TestListOptedInStudents(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	withEmail := createTestStudent(t, db, "p", strPtr("p@example.com"))
	optedOut := createTestStudent(t, db, "q", strPtr("q@example.com"))
	createTestStudent(t, db, "r", nil)
	if err := db.SetAllowEmail(ctx, optedOut.ID, false); err != nil {
		t.Fatalf("SetAllowEmail: %v", err)
	}

	got, err := db.ListOptedInStudents(ctx)
	if err != nil {
		t.Fatalf("ListOptedInStudents: %v", err)
	}
	if len(got) != 1 || got[0].ID != withEmail.ID {
		t.Errorf("opted in = %+v, want only %s", got, withEmail.Handle)
	}
}

func TestReminderAndLastSynced(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	s := createTestStudent(t, db, "counter", nil)

	for i := 0; i < 3; i++ {
		if err := db.IncrementReminderCount(ctx, s.ID); err != nil {
			t.Fatalf("IncrementReminderCount: %v", err)
		}
	}
	synced := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := db.SetLastSynced(ctx, s.ID, synced); err != nil {
		t.Fatalf("SetLastSynced: %v", err)
	}

	got, _ := db.GetStudent(ctx, s.ID)
	if got.ReminderCount != 3 {
		t.Errorf("ReminderCount = %d, want 3", got.ReminderCount)
	}
	if got.LastSyncedAt == nil || !got.LastSyncedAt.Equal(synced) {
		t.Errorf("LastSyncedAt = %v, want %v", got.LastSyncedAt, synced)
	}
	if err := db.IncrementReminderCount(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v, want ErrNotFound", err)
	}
}

func TestDeleteStudentCascade(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	s := createTestStudent(t, db, "gone", nil)
	keep := createTestStudent(t, db, "keep", nil)

	now := time.Now().UTC()
	for _, id := range []string{s.ID, keep.ID} {
		if _, err := db.InsertContests(ctx, []models.Contest{{StudentID: id, ContestID: 1, RatingUpdatedAt: now}}); err != nil {
			t.Fatalf("InsertContests: %v", err)
		}
		if _, err := db.InsertSubmissions(ctx, []models.Submission{{StudentID: id, SubmissionID: 10, CreatedAt: now}}); err != nil {
			t.Fatalf("InsertSubmissions: %v", err)
		}
	}

	if err := db.DeleteStudentCascade(ctx, s.ID); err != nil {
		t.Fatalf("DeleteStudentCascade: %v", err)
	}
	if _, err := db.GetStudent(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("student still present: %v", err)
	}
	if ids, _ := db.ContestIDs(ctx, s.ID); len(ids) != 0 {
		t.Errorf("contests left behind: %v", ids)
	}
	if ids, _ := db.SubmissionIDs(ctx, s.ID); len(ids) != 0 {
		t.Errorf("submissions left behind: %v", ids)
	}
	if ids, _ := db.ContestIDs(ctx, keep.ID); len(ids) != 1 {
		t.Errorf("other student's contests touched: %v", ids)
	}

	if err := db.DeleteStudentCascade(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestDeleteStudentHistory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	s := createTestStudent(t, db, "renamed", nil)
	now := time.Now().UTC()

	if _, err := db.InsertContests(ctx, []models.Contest{{StudentID: s.ID, ContestID: 5, RatingUpdatedAt: now}}); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteStudentHistory(ctx, s.ID); err != nil {
		t.Fatalf("DeleteStudentHistory: %v", err)
	}
	if ids, _ := db.ContestIDs(ctx, s.ID); len(ids) != 0 {
		t.Errorf("contests left behind: %v", ids)
	}
	if _, err := db.GetStudent(ctx, s.ID); err != nil {
		t.Errorf("student should remain: %v", err)
	}
}
