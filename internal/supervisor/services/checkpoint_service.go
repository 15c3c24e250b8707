// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package services

import (
	"context"
	"time"

	"github.com/tomtom215/cftracker/internal/logging"
)

// Checkpointer flushes the database WAL into the main file.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// CheckpointService runs a DuckDB CHECKPOINT on a fixed interval and once
// more on shutdown. Checkpoint failures are logged, not returned, so a busy
// database does not make the supervisor restart the service.
type CheckpointService struct {
	db       Checkpointer
	interval time.Duration
	timeout  time.Duration
	name     string
}

// NewCheckpointService creates the service. A non-positive interval becomes
// five minutes.
func NewCheckpointService(db Checkpointer, interval time.Duration) *CheckpointService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CheckpointService{
		db:       db,
		interval: interval,
		timeout:  30 * time.Second,
		name:     "duckdb-checkpoint",
	}
}

// Serve implements suture.Service.
func (c *CheckpointService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.checkpoint(context.Background())
			return ctx.Err()
		case <-ticker.C:
			c.checkpoint(ctx)
		}
	}
}

func (c *CheckpointService) checkpoint(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	if err := c.db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Str("service", c.name).Msg("Database checkpoint failed")
		return
	}
	logging.Debug().Str("service", c.name).Msg("Database checkpoint complete")
}

func (c *CheckpointService) String() string {
	return c.name
}
