// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/cftracker/internal/config"
)

// ChiMiddlewareConfig holds CORS and rate limiting settings.
type ChiMiddlewareConfig struct {
	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSExposedHeaders   []string
	CORSAllowCredentials bool
	CORSMaxAge           int // seconds

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
}

// DefaultChiMiddlewareConfig returns defaults. CORS origins are empty and
// must be configured explicitly.
func DefaultChiMiddlewareConfig() *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{},
		CORSAllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		CORSExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		// The dashboard authenticates with a cookie, so credentials must be allowed.
		CORSAllowCredentials: true,
		CORSMaxAge:           86400,

		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	}
}

// NewChiMiddlewareConfig builds the middleware config from security settings.
func NewChiMiddlewareConfig(cfg *config.SecurityConfig) *ChiMiddlewareConfig {
	c := DefaultChiMiddlewareConfig()
	if cfg == nil {
		return c
	}
	c.CORSAllowedOrigins = cfg.CORSOrigins
	if cfg.RateLimitRequests > 0 {
		c.RateLimitRequests = cfg.RateLimitRequests
	}
	if cfg.RateLimitWindow > 0 {
		c.RateLimitWindow = cfg.RateLimitWindow
	}
	c.RateLimitDisabled = cfg.RateLimitDisabled
	return c
}

// ChiMiddleware wraps go-chi/cors and go-chi/httprate.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware creates the middleware set. A nil config uses defaults.
func NewChiMiddleware(config *ChiMiddlewareConfig) *ChiMiddleware {
	if config == nil {
		config = DefaultChiMiddlewareConfig()
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   config.CORSAllowedOrigins,
		AllowedMethods:   config.CORSAllowedMethods,
		AllowedHeaders:   config.CORSAllowedHeaders,
		ExposedHeaders:   config.CORSExposedHeaders,
		AllowCredentials: config.CORSAllowCredentials,
		MaxAge:           config.CORSMaxAge,
	})

	return &ChiMiddleware{config: config, cors: corsHandler}
}

// CORS returns the CORS middleware. It must be global so preflight requests
// reach it.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimitConfig is a per-route-group limit.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

var (
	// RateLimitLogin slows password guessing.
	RateLimitLogin = RateLimitConfig{Requests: 5, Window: 5 * time.Minute}

	// RateLimitSync bounds manual sync triggers, each of which hits Codeforces.
	RateLimitSync = RateLimitConfig{Requests: 10, Window: time.Minute}

	// RateLimitExport bounds CSV downloads.
	RateLimitExport = RateLimitConfig{Requests: 10, Window: time.Minute}

	// RateLimitHealth is permissive for probes.
	RateLimitHealth = RateLimitConfig{Requests: 1000, Window: time.Minute}
)

func passthrough(next http.Handler) http.Handler { return next }

// RateLimit applies the configured default limit per client IP.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.RateLimitCustom(RateLimitConfig{
		Requests: m.config.RateLimitRequests,
		Window:   m.config.RateLimitWindow,
	})
}

// RateLimitCustom applies a specific limit per client IP. It is a no-op when
// rate limiting is disabled.
func (m *ChiMiddleware) RateLimitCustom(limit RateLimitConfig) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return passthrough
	}
	return httprate.Limit(
		limit.Requests,
		limit.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, r, http.StatusTooManyRequests, ErrCodeTooManyRequests, "Too many requests")
		}),
	)
}

// RateLimitLogin applies RateLimitLogin.
func (m *ChiMiddleware) RateLimitLogin() func(http.Handler) http.Handler {
	return m.RateLimitCustom(RateLimitLogin)
}

// RateLimitSync applies RateLimitSync.
func (m *ChiMiddleware) RateLimitSync() func(http.Handler) http.Handler {
	return m.RateLimitCustom(RateLimitSync)
}

// RateLimitExport applies RateLimitExport.
func (m *ChiMiddleware) RateLimitExport() func(http.Handler) http.Handler {
	return m.RateLimitCustom(RateLimitExport)
}

// RateLimitHealth applies RateLimitHealth.
func (m *ChiMiddleware) RateLimitHealth() func(http.Handler) http.Handler {
	return m.RateLimitCustom(RateLimitHealth)
}
