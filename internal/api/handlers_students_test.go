// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package api

import (
	"context"
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/tomtom215/cftracker/internal/models"
)

func TestCreateStudent(t *testing.T) {
	env := newTestEnv(t)

	s := env.createStudent("alice")
	if s.ID == "" || s.Handle != "alice" {
		t.Fatalf("student = %+v", s.Student)
	}
	if s.Sync == nil || !s.Sync.Success {
		t.Fatalf("expected a successful initial sync, got %+v", s.Sync)
	}
	if s.CurrentRating != 1500 || s.Name != "Alice A" || s.LastSyncedAt == nil {
		t.Errorf("profile not applied: %+v", s.Student)
	}

	contests, err := env.db.ListContests(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("ListContests: %v", err)
	}
	if len(contests) != 2 {
		t.Errorf("contests = %d, want 2", len(contests))
	}
}

func TestCreateStudent_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.createStudent("alice")

	w := env.do(http.MethodPost, "/api/v1/students", env.adminToken, map[string]string{"cf_handle": "alice"})
	assertErrorCode(t, w, http.StatusBadRequest, ErrCodeBadRequest)
	if resp := decodeResponse(t, w); resp.Error.Message != msgDuplicateHandle {
		t.Errorf("message = %q", resp.Error.Message)
	}

	assertErrorCode(t, env.do(http.MethodPost, "/api/v1/students", env.adminToken, map[string]string{"name": "No Handle"}),
		http.StatusBadRequest, ErrCodeValidationFailed)
	assertErrorCode(t, env.do(http.MethodPost, "/api/v1/students", env.adminToken, nil),
		http.StatusBadRequest, ErrCodeBadRequest)
}

func TestCreateStudent_UpstreamFailureStillCreates(t *testing.T) {
	env := newTestEnv(t)

	s := env.createStudent("ghost")
	if s.Sync == nil || s.Sync.Success {
		t.Fatalf("expected failed sync outcome, got %+v", s.Sync)
	}
	if s.LastSyncedAt != nil {
		t.Error("last_synced_at must stay unset after a failed sync")
	}
	if _, err := env.db.GetStudentByHandle(context.Background(), "ghost"); err != nil {
		t.Errorf("student not persisted: %v", err)
	}
}

func TestListStudents_Pagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, h := range []string{"h1", "h2", "h3"} {
		if _, err := env.db.CreateStudent(ctx, &models.StudentInput{Handle: h}); err != nil {
			t.Fatalf("CreateStudent: %v", err)
		}
	}

	w := env.do(http.MethodGet, "/api/v1/students?page=2&limit=2", env.userToken, nil)
	assertStatusCode(t, w.Code, http.StatusOK, "page 2")
	resp := decodeResponse(t, w)
	var students []models.Student
	decodeData(t, resp, &students)
	if len(students) != 1 {
		t.Errorf("page 2 has %d students, want 1", len(students))
	}
	p := resp.Meta.Pagination
	if p == nil || p.Total != 3 || p.Page != 2 || p.Limit != 2 || p.TotalPages != 2 {
		t.Errorf("pagination = %+v", p)
	}

	w = env.do(http.MethodGet, "/api/v1/students", env.userToken, nil)
	resp = decodeResponse(t, w)
	if p := resp.Meta.Pagination; p.Page != 1 || p.Limit != 10 || p.TotalPages != 1 {
		t.Errorf("default pagination = %+v", p)
	}

	for _, q := range []string{"limit=0", "limit=101", "page=abc", "page=-1"} {
		assertErrorCode(t, env.do(http.MethodGet, "/api/v1/students?"+q, env.userToken, nil),
			http.StatusBadRequest, ErrCodeBadRequest)
	}
}

func TestListStudents_EmptyIsArray(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/students", env.userToken, nil)
	resp := decodeResponse(t, w)
	if string(resp.Data) != "[]" {
		t.Errorf("data = %s, want []", resp.Data)
	}
	if resp.Meta.Pagination.TotalPages != 0 {
		t.Errorf("totalPages = %d, want 0", resp.Meta.Pagination.TotalPages)
	}
}

func TestGetStudent(t *testing.T) {
	env := newTestEnv(t)
	s := env.createStudent("alice")

	w := env.do(http.MethodGet, "/api/v1/students/"+s.ID, env.userToken, nil)
	assertStatusCode(t, w.Code, http.StatusOK, "get")
	var got models.Student
	decodeData(t, decodeResponse(t, w), &got)
	if got.ID != s.ID || got.Handle != "alice" {
		t.Errorf("student = %+v", got)
	}

	assertErrorCode(t, env.do(http.MethodGet, "/api/v1/students/missing", env.userToken, nil),
		http.StatusNotFound, ErrCodeNotFound)
}

func TestUpdateStudent_SameHandleDoesNotResync(t *testing.T) {
	env := newTestEnv(t)
	s := env.createStudent("alice")

	w := env.do(http.MethodPatch, "/api/v1/students/"+s.ID, env.adminToken,
		map[string]string{"cf_handle": "alice", "email": "alice@example.com"})
	assertStatusCode(t, w.Code, http.StatusOK, "update")
	var got studentBody
	decodeData(t, decodeResponse(t, w), &got)
	if got.Sync != nil {
		t.Error("unchanged handle must not resync")
	}
	if got.Email == nil || *got.Email != "alice@example.com" {
		t.Errorf("email = %v", got.Email)
	}
}

func TestUpdateStudent_HandleChangeResetsHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s := env.createStudent("alice")

	w := env.do(http.MethodPatch, "/api/v1/students/"+s.ID, env.adminToken, map[string]string{"cf_handle": "bob"})
	assertStatusCode(t, w.Code, http.StatusOK, "update handle")
	var got studentBody
	decodeData(t, decodeResponse(t, w), &got)
	if got.Sync == nil || !got.Sync.Success {
		t.Fatalf("expected resync, got %+v", got.Sync)
	}
	if got.Handle != "bob" || got.CurrentRating != 1200 {
		t.Errorf("student = %+v", got.Student)
	}

	contests, _ := env.db.ListContests(ctx, s.ID)
	if len(contests) != 1 || contests[0].ContestID != 300 {
		t.Errorf("contests after handle change = %+v", contests)
	}
	subs, _ := env.db.ListSubmissions(ctx, s.ID)
	if len(subs) != 1 || subs[0].SubmissionID != 10 {
		t.Errorf("submissions after handle change = %+v", subs)
	}
}

func TestUpdateStudent_Errors(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createStudent("alice")
	env.createStudent("bob")

	assertErrorCode(t, env.do(http.MethodPatch, "/api/v1/students/missing", env.adminToken, map[string]string{"cf_handle": "x"}),
		http.StatusNotFound, ErrCodeNotFound)
	assertErrorCode(t, env.do(http.MethodPatch, "/api/v1/students/"+alice.ID, env.adminToken, map[string]string{"name": "x"}),
		http.StatusBadRequest, ErrCodeValidationFailed)
	assertErrorCode(t, env.do(http.MethodPatch, "/api/v1/students/"+alice.ID, env.adminToken, map[string]string{"cf_handle": "bob"}),
		http.StatusBadRequest, ErrCodeBadRequest)
}

func TestUpdateStudentEmail(t *testing.T) {
	env := newTestEnv(t)
	s := env.createStudent("alice")
	if !s.AllowEmail {
		t.Fatal("allow_email should default to true")
	}

	w := env.do(http.MethodPatch, "/api/v1/students/"+s.ID+"/email", env.adminToken, map[string]bool{"allow_email": false})
	assertStatusCode(t, w.Code, http.StatusOK, "email")
	var got models.Student
	decodeData(t, decodeResponse(t, w), &got)
	if got.AllowEmail {
		t.Error("allow_email not cleared")
	}

	assertErrorCode(t, env.do(http.MethodPatch, "/api/v1/students/"+s.ID+"/email", env.adminToken, map[string]string{}),
		http.StatusBadRequest, ErrCodeValidationFailed)
	assertErrorCode(t, env.do(http.MethodPatch, "/api/v1/students/missing/email", env.adminToken, map[string]bool{"allow_email": true}),
		http.StatusNotFound, ErrCodeNotFound)
}

func TestDeleteStudent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	s := env.createStudent("alice")

	w := env.do(http.MethodDelete, "/api/v1/students/"+s.ID, env.adminToken, nil)
	assertStatusCode(t, w.Code, http.StatusOK, "delete")

	assertErrorCode(t, env.do(http.MethodGet, "/api/v1/students/"+s.ID, env.userToken, nil), http.StatusNotFound, ErrCodeNotFound)
	if contests, _ := env.db.ListContests(ctx, s.ID); len(contests) != 0 {
		t.Errorf("contests left after delete: %d", len(contests))
	}
	if subs, _ := env.db.ListSubmissions(ctx, s.ID); len(subs) != 0 {
		t.Errorf("submissions left after delete: %d", len(subs))
	}

	assertErrorCode(t, env.do(http.MethodDelete, "/api/v1/students/"+s.ID, env.adminToken, nil), http.StatusNotFound, ErrCodeNotFound)
}

func TestSyncStudent(t *testing.T) {
	env := newTestEnv(t)
	s := env.createStudent("alice")

	env.upstream.addSubmission("alice", submission(4, 200, "B", "OK", 1200, daysAgo(0)))

	w := env.do(http.MethodPost, "/api/v1/students/"+s.ID+"/sync", env.adminToken, nil)
	assertStatusCode(t, w.Code, http.StatusOK, "sync")
	var got studentBody
	decodeData(t, decodeResponse(t, w), &got)
	if got.Sync == nil || !got.Sync.Success || got.Sync.NewSubmissions != 1 {
		t.Errorf("outcome = %+v", got.Sync)
	}

	assertErrorCode(t, env.do(http.MethodPost, "/api/v1/students/missing/sync", env.adminToken, nil),
		http.StatusNotFound, ErrCodeNotFound)
}

func TestDownloadStudents(t *testing.T) {
	env := newTestEnv(t)
	env.createStudent("alice")

	w := env.do(http.MethodGet, "/api/v1/students/download", env.userToken, nil)
	assertStatusCode(t, w.Code, http.StatusOK, "download")
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want header + 1", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(studentCSVHeader, ",") {
		t.Errorf("header = %v", records[0])
	}
	if records[1][4] != "alice" || records[1][5] != "1500" {
		t.Errorf("row = %v", records[1])
	}
}
