// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package models

import "time"

// DefaultCronExpression runs the sync cycle daily at midnight UTC.
const DefaultCronExpression = "0 0 * * *"

// Setting is the singleton schedule configuration.
type Setting struct {
	CronTime  string    `json:"cron_time"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScheduleStatus is the API view of the live schedule.
type ScheduleStatus struct {
	CronTime string     `json:"cron_time"`
	NextRun  *time.Time `json:"next_run,omitempty"`
}
