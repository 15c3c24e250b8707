// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package api

import (
	"context"
	gosync "sync"
	"time"

	"github.com/tomtom215/cftracker/internal/auth"
	"github.com/tomtom215/cftracker/internal/cache"
	"github.com/tomtom215/cftracker/internal/config"
	"github.com/tomtom215/cftracker/internal/database"
	"github.com/tomtom215/cftracker/internal/models"
	"github.com/tomtom215/cftracker/internal/sync"
)

// reportTTL bounds how stale a cached report can be. Sync and edits drop
// entries explicitly, so this only matters for the sliding day window.
const reportTTL = time.Minute

// Syncer runs student syncs. *sync.Engine implements it.
type Syncer interface {
	SyncOne(ctx context.Context, student *models.Student) sync.Outcome
	RunCycle(ctx context.Context) error
	Running() bool
	LastCycle() time.Time
}

// Schedule exposes the live cron trigger. *scheduler.Scheduler implements it.
type Schedule interface {
	Status() models.ScheduleStatus
	Update(ctx context.Context, expr string) (*models.Setting, error)
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	db        *database.DB
	syncer    Syncer
	schedule  Schedule
	auth      *auth.Middleware
	jwt       *auth.JWTManager
	config    *config.Config
	startTime time.Time
	now       func() time.Time

	reports   *cache.Cache[models.SubmissionReport]
	histories *cache.Cache[[]models.ContestHistoryEntry]

	// background cycles started by POST /api/v1/sync
	bgCtx    context.Context
	bgCancel context.CancelFunc
	bg       gosync.WaitGroup
}

// NewHandler creates a Handler. Call Close on shutdown to stop background
// cycles and cache cleanup.
func NewHandler(db *database.DB, syncer Syncer, schedule Schedule, authMW *auth.Middleware, jwtManager *auth.JWTManager, cfg *config.Config) *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		db:        db,
		syncer:    syncer,
		schedule:  schedule,
		auth:      authMW,
		jwt:       jwtManager,
		config:    cfg,
		startTime: time.Now(),
		now:       time.Now,
		reports:   cache.NewNamed[models.SubmissionReport]("submission_reports", reportTTL),
		histories: cache.NewNamed[[]models.ContestHistoryEntry]("contest_histories", reportTTL),
		bgCtx:     ctx,
		bgCancel:  cancel,
	}
}

// InvalidateStudent drops cached reports of one student.
func (h *Handler) InvalidateStudent(id string) {
	h.reports.InvalidateOwner(id)
	h.histories.InvalidateOwner(id)
}

// InvalidateAll drops every cached report. Called after a full sync cycle.
func (h *Handler) InvalidateAll() {
	h.reports.Clear()
	h.histories.Clear()
}

// Close cancels background cycles, waits for them and stops the caches.
func (h *Handler) Close() {
	h.bgCancel()
	h.bg.Wait()
	h.reports.Close()
	h.histories.Close()
}
