// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package models

import (
	"strings"
	"time"
)

// Student is a tracked Codeforces account.
//
// Handle is unique across students. Rating, rank, name and avatar fields are
// owned by the sync engine and overwritten on every successful profile fetch.
// ReminderCount only ever grows, once per delivered inactivity email.
type Student struct {
	ID            string     `json:"id"`
	Handle        string     `json:"cf_handle"`
	Name          string     `json:"name"`
	Email         *string    `json:"email,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	CurrentRating int        `json:"current_rating"`
	MaxRating     int        `json:"max_rating"`
	Rank          string     `json:"rank"`
	MaxRank       string     `json:"max_rank"`
	Avatar        string     `json:"avatar"`
	ReminderCount int        `json:"reminder_count"`
	AllowEmail    bool       `json:"allow_email"`
	LastSyncedAt  *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// HasEmail reports whether a non-blank contact address is stored.
func (s *Student) HasEmail() bool {
	return s.Email != nil && strings.TrimSpace(*s.Email) != ""
}

// OptedIn reports whether the student may receive reminder emails.
func (s *Student) OptedIn() bool {
	return s.AllowEmail && s.HasEmail()
}

// DisplayName is the name used to greet the student, falling back to the handle.
func (s *Student) DisplayName() string {
	if n := strings.TrimSpace(s.Name); n != "" {
		return n
	}
	return s.Handle
}

// Profile is the set of student fields refreshed from the upstream profile.
// Applying it replaces every field, including with zero values.
type Profile struct {
	Name          string
	CurrentRating int
	MaxRating     int
	Rank          string
	MaxRank       string
	Avatar        string
}

// StudentInput carries user-editable student fields for create and update.
// Nil pointers mean "not provided".
type StudentInput struct {
	Handle string  `json:"cf_handle" validate:"required,min=1,max=64"`
	Name   *string `json:"name,omitempty" validate:"omitempty,max=128"`
	Email  *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone  *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}
