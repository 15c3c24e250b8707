// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package models

import (
	"strconv"
	"time"
)

// VerdictAccepted is the upstream verdict of an accepted submission.
const VerdictAccepted = "OK"

// Submission is one stored submission. Rows are never updated.
type Submission struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"student_id"`
	SubmissionID  int64     `json:"submission_id"`
	ContestID     int       `json:"contest_id"`
	ProblemIndex  string    `json:"index"`
	ProblemName   string    `json:"name"`
	ProblemRating int       `json:"rating"` // 0 when upstream has no difficulty
	Verdict       string    `json:"verdict"`
	CreatedAt     time.Time `json:"creation_time"`
}

// Accepted reports whether the verdict is OK.
func (s *Submission) Accepted() bool {
	return s.Verdict == VerdictAccepted
}

// ProblemKey identifies a problem as "contestId-index".
func (s *Submission) ProblemKey() string {
	return strconv.Itoa(s.ContestID) + "-" + s.ProblemIndex
}
