// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

// Package scheduler runs the sync cycle on a persisted cron expression.
//
// The scheduler owns exactly one trigger. Arm validates a new expression
// before touching the live trigger, so a rejected expression leaves the
// previous schedule running. Fire times are computed in UTC. A tick that
// fires while the previous job is still running is skipped.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cftracker/internal/logging"
	"github.com/tomtom215/cftracker/internal/metrics"
	"github.com/tomtom215/cftracker/internal/models"
)

// ErrInvalidExpression is returned for cron expressions that do not parse.
var ErrInvalidExpression = errors.New("invalid cron expression")

// parser accepts standard 5-field expressions, an optional leading seconds
// field and descriptors such as @daily.
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Store persists the schedule setting. *database.DB implements it.
type Store interface {
	EnsureSetting(ctx context.Context, defaultCron string) (*models.Setting, error)
	SaveSetting(ctx context.Context, cronTime string) (*models.Setting, error)
}

// Job is the work run on every tick.
type Job func(ctx context.Context) error

// Scheduler fires Job on the armed cron expression.
type Scheduler struct {
	store       Store
	job         Job
	defaultCron string
	logger      zerolog.Logger

	mu       sync.Mutex
	cron     *cron.Cron
	entry    cron.EntryID
	schedule cron.Schedule
	expr     string
	ctx      context.Context
	started  bool

	busy atomic.Bool
}

// New creates a scheduler. An empty defaultCron means models.DefaultCronExpression.
func New(store Store, job Job, defaultCron string) *Scheduler {
	if defaultCron == "" {
		defaultCron = models.DefaultCronExpression
	}
	return &Scheduler{
		store:       store,
		job:         job,
		defaultCron: defaultCron,
		logger:      logging.WithComponent("scheduler"),
		ctx:         context.Background(),
	}
}

// Validate parses expr without arming it.
func Validate(expr string) error {
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidExpression, expr, err)
	}
	return nil
}

// Start loads the persisted expression, creating the default when none is
// stored, and arms it. ctx is passed to every job run; cancelling it aborts
// an in-flight cycle.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.mu.Unlock()

	setting, err := s.store.EnsureSetting(ctx, s.defaultCron)
	if err != nil {
		return fmt.Errorf("failed to load schedule setting: %w", err)
	}

	s.mu.Lock()
	s.ctx = ctx
	s.cron = cron.New(cron.WithLocation(time.UTC), cron.WithParser(parser))
	s.cron.Start()
	s.started = true
	s.mu.Unlock()

	if err := s.Arm(setting.CronTime); err != nil {
		// A corrupt stored value must not leave the process unscheduled.
		s.logger.Error().Err(err).Str("fallback", s.defaultCron).Msg("Stored cron expression rejected")
		if err := s.Arm(s.defaultCron); err != nil {
			return err
		}
	}

	s.logger.Info().Str("cron", s.Current()).Msg("Scheduler started")
	return nil
}

// Arm replaces the live trigger with expr. An invalid expression returns
// ErrInvalidExpression and the current trigger keeps running.
func (s *Scheduler) Arm(expr string) error {
	sched, err := parser.Parse(expr)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidExpression, expr, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.expr
	if s.cron != nil {
		if s.entry != 0 {
			s.cron.Remove(s.entry)
		}
		s.entry = s.cron.Schedule(sched, cron.FuncJob(s.tick))
	}
	s.schedule = sched
	s.expr = expr

	next := sched.Next(time.Now().UTC())
	metrics.SetNextRun(next)
	s.logger.Info().Str("cron", expr).Str("previous", previous).Time("next_run", next).Msg("Schedule armed")
	return nil
}

// Update validates expr, persists it and re-arms the trigger. Nothing is
// written when expr is invalid.
func (s *Scheduler) Update(ctx context.Context, expr string) (*models.Setting, error) {
	if err := Validate(expr); err != nil {
		return nil, err
	}
	setting, err := s.store.SaveSetting(ctx, expr)
	if err != nil {
		return nil, fmt.Errorf("failed to save schedule: %w", err)
	}
	if err := s.Arm(expr); err != nil {
		return nil, err
	}
	return setting, nil
}

// Stop cancels the trigger and waits for a running job to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	c := s.cron
	s.started = false
	s.entry = 0
	s.mu.Unlock()

	s.logger.Info().Msg("Stopping scheduler...")
	<-c.Stop().Done()
	metrics.SetNextRun(time.Time{})
	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// Current returns the armed expression, empty before the first Arm.
func (s *Scheduler) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expr
}

// NextRun returns the next fire time in UTC, zero when nothing is armed.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schedule == nil {
		return time.Time{}
	}
	return s.schedule.Next(time.Now().UTC())
}

// Status returns the API view of the live schedule.
func (s *Scheduler) Status() models.ScheduleStatus {
	status := models.ScheduleStatus{CronTime: s.Current()}
	if next := s.NextRun(); !next.IsZero() {
		status.NextRun = &next
	}
	return status
}

func (s *Scheduler) tick() {
	if !s.busy.CompareAndSwap(false, true) {
		metrics.RecordSchedulerRun(true)
		s.logger.Warn().Msg("Previous cycle still running, skipping tick")
		return
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	start := time.Now()
	s.logger.Info().Msg("Scheduled cycle starting")
	if err := s.job(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled cycle failed")
	} else {
		s.logger.Info().Dur("duration", time.Since(start)).Msg("Scheduled cycle completed")
	}
	metrics.RecordSchedulerRun(false)
	metrics.SetNextRun(s.NextRun())
}
