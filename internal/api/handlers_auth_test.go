// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/cftracker/internal/auth"
	"github.com/tomtom215/cftracker/internal/models"
)

func TestLoginLogoutFlow(t *testing.T) {
	env := newTestEnv(t)

	hash, err := auth.HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if _, err := env.db.CreateUser(context.Background(), "coach", hash, models.RoleAdmin); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	w := env.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Username: "coach", Password: "wrong password"})
	assertErrorCode(t, w, http.StatusUnauthorized, ErrCodeUnauthorized)

	w = env.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Username: "coach", Password: "correct horse battery"})
	assertStatusCode(t, w.Code, http.StatusOK, "login")

	var login LoginResponse
	decodeData(t, decodeResponse(t, w), &login)
	if login.Token == "" || login.User == nil || login.User.Username != "coach" {
		t.Fatalf("login response = %+v", login)
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("login did not set the token cookie")
	}
	if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteNoneMode {
		t.Errorf("cookie flags = httpOnly:%v secure:%v samesite:%v", cookie.HttpOnly, cookie.Secure, cookie.SameSite)
	}

	withCookie := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, req)
		return rec
	}

	w = withCookie(http.MethodGet, "/api/v1/auth/user")
	assertStatusCode(t, w.Code, http.StatusOK, "current user")
	var body struct {
		User models.User `json:"user"`
	}
	decodeData(t, decodeResponse(t, w), &body)
	if body.User.Username != "coach" || body.User.Role != models.RoleAdmin {
		t.Errorf("user = %+v", body.User)
	}

	w = withCookie(http.MethodPost, "/api/v1/auth/logout")
	assertStatusCode(t, w.Code, http.StatusOK, "logout")

	// The same token is revoked now.
	assertErrorCode(t, withCookie(http.MethodGet, "/api/v1/auth/user"), http.StatusUnauthorized, ErrCodeUnauthorized)
}

func TestLogin_Validation(t *testing.T) {
	env := newTestEnv(t)

	assertErrorCode(t, env.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Username: "x"}),
		http.StatusBadRequest, ErrCodeValidationFailed)
	assertErrorCode(t, env.do(http.MethodPost, "/api/v1/auth/login", "", "{not json"),
		http.StatusBadRequest, ErrCodeBadRequest)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/students"},
		{http.MethodGet, "/api/v1/students/download"},
		{http.MethodGet, "/api/v1/settings/cron"},
		{http.MethodPost, "/api/v1/sync"},
		{http.MethodGet, "/api/v1/auth/user"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			assertErrorCode(t, env.do(p.method, p.path, "", nil), http.StatusUnauthorized, ErrCodeUnauthorized)
			assertErrorCode(t, env.do(p.method, p.path, "garbage", nil), http.StatusUnauthorized, ErrCodeUnauthorized)
		})
	}
}

func TestRoles_UserIsReadOnly(t *testing.T) {
	env := newTestEnv(t)
	s := env.createStudent("alice")

	tests := []struct {
		method string
		path   string
		body   interface{}
		want   int
	}{
		{http.MethodGet, "/api/v1/students", nil, http.StatusOK},
		{http.MethodGet, "/api/v1/students/" + s.ID, nil, http.StatusOK},
		{http.MethodPost, "/api/v1/students", map[string]string{"cf_handle": "bob"}, http.StatusForbidden},
		{http.MethodPatch, "/api/v1/students/" + s.ID, map[string]string{"cf_handle": "bob"}, http.StatusForbidden},
		{http.MethodDelete, "/api/v1/students/" + s.ID, nil, http.StatusForbidden},
		{http.MethodPost, "/api/v1/students/" + s.ID + "/sync", nil, http.StatusForbidden},
		{http.MethodPut, "/api/v1/settings/cron", CronRequest{CronTime: "0 * * * *"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := env.do(tt.method, tt.path, env.userToken, tt.body)
			assertStatusCode(t, w.Code, tt.want, tt.path)
		})
	}
}
