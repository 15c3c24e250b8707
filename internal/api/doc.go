// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

/*
Package api provides the HTTP surface of the tracker.

Routing uses go-chi/chi with go-chi/cors and go-chi/httprate. Every JSON
endpoint returns the envelope defined in response.go.

# Endpoints

Public:
  - GET  /api/v1/health/live, /api/v1/health/ready
  - POST /api/v1/auth/login
  - GET  /metrics

Authenticated (role user or admin):
  - POST /api/v1/auth/logout, GET /api/v1/auth/user
  - GET  /api/v1/students?page=1&limit=10
  - GET  /api/v1/students/download
  - GET  /api/v1/students/{id}
  - GET  /api/v1/students/{id}/contest-history?days=90
  - GET  /api/v1/students/{id}/submission-data?days=7
  - GET  /api/v1/settings/cron
  - GET  /api/v1/sync/status

Admin only:
  - POST   /api/v1/students
  - PATCH  /api/v1/students/{id}, /api/v1/students/{id}/email
  - DELETE /api/v1/students/{id}
  - POST   /api/v1/students/{id}/sync
  - PUT    /api/v1/settings/cron
  - POST   /api/v1/sync

Roles are enforced by internal/authz. Authentication reads the token cookie
or an Authorization: Bearer header (see internal/auth).

Contest histories and submission reports are cached per student for a short
TTL and dropped whenever that student is synced, edited or deleted.
*/
package api
