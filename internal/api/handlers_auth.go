// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/cftracker/internal/auth"
	"github.com/tomtom215/cftracker/internal/logging"
	"github.com/tomtom215/cftracker/internal/models"
)

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginResponse is returned on successful login. The token is also set as
// an HttpOnly cookie.
type LoginResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Login checks credentials and sets the token cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := auth.Login(r.Context(), h.db, h.jwt, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			NewResponseWriter(w, r).Unauthorized("Invalid username or password")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Str("username", sanitizeLogValue(req.Username)).Msg("Login error")
		NewResponseWriter(w, r).InternalError(msgInternal)
		return
	}

	expires := session.Claims.ExpiresAt.Time
	h.auth.SetTokenCookie(w, session.Token, expires)
	WriteSuccess(w, r, LoginResponse{
		Message:   "Login successful",
		Token:     session.Token,
		ExpiresAt: expires.UTC(),
		User:      session.User,
	})
}

// Logout revokes the current token and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		NewResponseWriter(w, r).Unauthorized("Authentication required")
		return
	}
	if err := h.auth.Revoke(r.Context(), claims); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to revoke token")
		NewResponseWriter(w, r).InternalError(msgInternal)
		return
	}
	h.auth.ClearTokenCookie(w)
	WriteSuccess(w, r, map[string]string{"message": "Logout successful"})
}

// CurrentUser returns the authenticated user.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		NewResponseWriter(w, r).Unauthorized("Authentication required")
		return
	}
	WriteSuccess(w, r, map[string]interface{}{"user": user})
}
