// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package authz

import (
	"net/http"

	"github.com/tomtom215/cftracker/internal/auth"
	"github.com/tomtom215/cftracker/internal/logging"
)

// Middleware provides authorization middleware using Casbin.
type Middleware struct {
	enforcer   *Enforcer
	writeError auth.ErrorWriter
}

// NewMiddleware creates a new authorization middleware. writeError formats
// 403 and 500 responses.
func NewMiddleware(enforcer *Enforcer, writeError auth.ErrorWriter) *Middleware {
	return &Middleware{enforcer: enforcer, writeError: writeError}
}

// Authorize returns middleware that requires the authenticated user's role
// to allow action on object. It must run after auth.Middleware.Authenticate.
func (m *Middleware) Authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok {
				m.writeError(w, r, http.StatusForbidden, "FORBIDDEN", "Forbidden: no authentication context")
				return
			}

			allowed, err := m.enforcer.Enforce(user.Role, object, action)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
				m.writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
				return
			}
			if !allowed {
				logging.Ctx(r.Context()).Warn().Str("username", user.Username).Str("role", user.Role).
					Str("object", object).Str("action", action).Msg("Access denied")
				m.writeError(w, r, http.StatusForbidden, "FORBIDDEN", "Forbidden: insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
