// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cftracker/internal/config"
	"github.com/tomtom215/cftracker/internal/database"
	"github.com/tomtom215/cftracker/internal/logging"
	"github.com/tomtom215/cftracker/internal/models"
)

type contextKey string

const (
	ClaimsContextKey contextKey = "claims"
	UserContextKey   contextKey = "user"
)

// UserStore loads the user a token belongs to. *database.DB implements it.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// ErrorWriter writes an authentication failure response.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, code, message string)

// Middleware authenticates requests and manages the token cookie.
type Middleware struct {
	jwt          *JWTManager
	revocations  *RevocationStore
	users        UserStore
	cookieName   string
	cookieSecure bool
	writeError   ErrorWriter
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(jwtManager *JWTManager, revocations *RevocationStore, users UserStore, cfg *config.SecurityConfig) *Middleware {
	name := cfg.CookieName
	if name == "" {
		name = "token"
	}
	return &Middleware{
		jwt:          jwtManager,
		revocations:  revocations,
		users:        users,
		cookieName:   name,
		cookieSecure: cfg.CookieSecure,
		writeError:   defaultErrorWriter,
	}
}

// SetErrorWriter replaces the JSON error writer used for 401 responses.
func (m *Middleware) SetErrorWriter(fn ErrorWriter) {
	if fn != nil {
		m.writeError = fn
	}
}

// Authenticate is middleware that enforces authentication. On success the
// request context carries the claims and the loaded user.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, user, err := m.authenticate(r)
		if errors.Is(err, ErrAuthBackend) {
			logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Authentication backend error")
			m.writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			return
		}
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("Authentication failed")
			m.writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", unauthorizedMessage(err))
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		ctx = context.WithValue(ctx, UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) authenticate(r *http.Request) (*Claims, *models.User, error) {
	token, err := m.extractToken(r)
	if err != nil {
		return nil, nil, err
	}

	claims, err := m.jwt.ValidateToken(token)
	if err != nil {
		return nil, nil, err
	}

	if m.revocations != nil {
		revoked, err := m.revocations.IsRevoked(r.Context(), claims.TokenID())
		if err != nil {
			return nil, nil, fmt.Errorf("%w: check revocation: %w", ErrAuthBackend, err)
		}
		if revoked {
			return nil, nil, ErrTokenRevoked
		}
	}

	user, err := m.users.GetUserByID(r.Context(), claims.UserID())
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: %s", ErrUserNotFound, claims.UserID())
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: load user %s: %w", ErrAuthBackend, claims.UserID(), err)
	}
	return claims, user, nil
}

// extractToken reads the token from the Authorization header or the cookie.
// The header wins when both are present.
func (m *Middleware) extractToken(r *http.Request) (string, error) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", fmt.Errorf("%w: invalid authorization header", ErrMissingToken)
		}
		return parts[1], nil
	}

	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return "", ErrMissingToken
	}
	return cookie.Value, nil
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return "Unauthorized: missing token"
	case errors.Is(err, ErrTokenRevoked):
		return "Unauthorized: token revoked"
	case errors.Is(err, ErrInvalidToken):
		return "Unauthorized: invalid token"
	default:
		return "Unauthorized"
	}
}

// SetTokenCookie writes the login cookie. Secure cookies use SameSite=None so
// a dashboard on another origin can send them; insecure ones fall back to Lax.
func (m *Middleware) SetTokenCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, m.cookie(token, expires, int(time.Until(expires).Seconds())))
}

// ClearTokenCookie expires the login cookie.
func (m *Middleware) ClearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie("", time.Unix(0, 0), -1))
}

func (m *Middleware) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	sameSite := http.SameSiteNoneMode
	if !m.cookieSecure {
		sameSite = http.SameSiteLaxMode
	}
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: sameSite,
	}
}

// Revoke revokes the token described by claims.
func (m *Middleware) Revoke(ctx context.Context, claims *Claims) error {
	if m.revocations == nil {
		return nil
	}
	return m.revocations.Revoke(ctx, claims)
}

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

// UserFromContext returns the user stored by Authenticate.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}

// ContextWithUser stores user and claims the way Authenticate does. Used by
// tests of handlers behind the middleware.
func ContextWithUser(ctx context.Context, user *models.User, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, UserContextKey, user)
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

func defaultErrorWriter(w http.ResponseWriter, _ *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   map[string]string{"code": code, "message": message},
	})
}
