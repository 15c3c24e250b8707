// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package models

import "time"

// Contest is a snapshot of one rating change event. Only UnsolvedProblems
// changes after insertion.
type Contest struct {
	ID               string    `json:"id"`
	StudentID        string    `json:"student_id"`
	ContestID        int       `json:"contest_id"`
	ContestName      string    `json:"contest_name"`
	Rank             int       `json:"rank"`
	OldRating        int       `json:"old_rating"`
	NewRating        int       `json:"new_rating"`
	RatingUpdatedAt  time.Time `json:"rating_updated_at"`
	UnsolvedProblems int       `json:"unsolved_problems"`
	CreatedAt        time.Time `json:"created_at"`
}

// ContestHistoryEntry is the API view of a contest row.
type ContestHistoryEntry struct {
	ContestID        int       `json:"contestId"`
	ContestName      string    `json:"contestName"`
	Date             time.Time `json:"date"`
	OldRating        int       `json:"oldRating"`
	NewRating        int       `json:"newRating"`
	Rank             int       `json:"rank"`
	UnsolvedProblems int       `json:"unsolvedProblems"`
}

// HistoryEntry converts c to its API view.
func (c *Contest) HistoryEntry() ContestHistoryEntry {
	return ContestHistoryEntry{
		ContestID:        c.ContestID,
		ContestName:      c.ContestName,
		Date:             c.RatingUpdatedAt,
		OldRating:        c.OldRating,
		NewRating:        c.NewRating,
		Rank:             c.Rank,
		UnsolvedProblems: c.UnsolvedProblems,
	}
}
