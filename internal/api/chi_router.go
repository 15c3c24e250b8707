// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/cftracker/internal/auth"
	"github.com/tomtom215/cftracker/internal/authz"
	"github.com/tomtom215/cftracker/internal/middleware"
)

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	authz         *authz.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. The auth middleware's error writer is set to
// the API envelope.
func NewRouter(handler *Handler, authMW *auth.Middleware, authzMW *authz.Middleware, chiMW *ChiMiddleware) *Router {
	authMW.SetErrorWriter(WriteError)
	return &Router{
		handler:       handler,
		auth:          authMW,
		authz:         authzMW,
		chiMiddleware: chiMW,
	}
}

// SetupChi builds the route tree.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	h := router.handler
	can := router.authz.Authorize

	// Global middleware, applied in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Compress(5, "application/json", "text/csv"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(router.auth.Authenticate)
			r.With(can(authz.ObjectSession, authz.ActionRead)).Post("/logout", h.Logout)
			r.With(can(authz.ObjectSession, authz.ActionRead)).Get("/user", h.CurrentUser)
		})
	})

	r.Route("/api/v1/students", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(router.auth.Authenticate)

		read := can(authz.ObjectStudents, authz.ActionRead)
		write := can(authz.ObjectStudents, authz.ActionWrite)

		r.With(read).Get("/", h.ListStudents)
		r.With(write).Post("/", h.CreateStudent)
		r.With(read, router.chiMiddleware.RateLimitExport()).Get("/download", h.DownloadStudents)

		r.Route("/{id}", func(r chi.Router) {
			r.With(read).Get("/", h.GetStudent)
			r.With(write).Patch("/", h.UpdateStudent)
			r.With(write).Patch("/email", h.UpdateStudentEmail)
			r.With(can(authz.ObjectStudents, authz.ActionDelete)).Delete("/", h.DeleteStudent)
			r.With(read).Get("/contest-history", h.ContestHistory)
			r.With(read).Get("/submission-data", h.SubmissionData)
			r.With(can(authz.ObjectSync, authz.ActionWrite), router.chiMiddleware.RateLimitSync()).
				Post("/sync", h.SyncStudent)
		})
	})

	r.Route("/api/v1/settings", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(router.auth.Authenticate)
		r.With(can(authz.ObjectSettings, authz.ActionRead)).Get("/cron", h.GetCron)
		r.With(can(authz.ObjectSettings, authz.ActionWrite)).Put("/cron", h.UpdateCron)
	})

	r.Route("/api/v1/sync", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitSync())
		r.Use(router.auth.Authenticate)
		r.With(can(authz.ObjectSync, authz.ActionWrite)).Post("/", h.TriggerSync)
		r.With(can(authz.ObjectStudents, authz.ActionRead)).Get("/status", h.SyncStatusHandler)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
