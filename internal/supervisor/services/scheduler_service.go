// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package services

import (
	"context"
	"fmt"
)

// CronScheduler is the lifecycle subset of *scheduler.Scheduler.
type CronScheduler interface {
	Start(ctx context.Context) error
	Stop() error
}

// SchedulerService adapts the Start/Stop cron scheduler to suture's blocking
// Serve. Start loads the stored expression and arms the cron; Serve then
// blocks until cancellation and stops it.
type SchedulerService struct {
	scheduler CronScheduler
	name      string
}

// NewSchedulerService wraps a cron scheduler.
func NewSchedulerService(s CronScheduler) *SchedulerService {
	return &SchedulerService{
		scheduler: s,
		name:      "sync-scheduler",
	}
}

// Serve implements suture.Service.
func (s *SchedulerService) Serve(ctx context.Context) error {
	if err := s.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start sync scheduler: %w", err)
	}

	<-ctx.Done()

	if err := s.scheduler.Stop(); err != nil {
		return fmt.Errorf("failed to stop sync scheduler: %w", err)
	}
	return ctx.Err()
}

func (s *SchedulerService) String() string {
	return s.name
}
