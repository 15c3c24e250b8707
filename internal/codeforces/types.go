// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package codeforces

import (
	"strings"
	"time"

	"github.com/tomtom215/cftracker/internal/models"
)

// Fallback failure messages used when the API gives no comment.
const (
	MsgProfileFailed     = "Could not fetch the profile."
	MsgRatingsFailed     = "Could not fetch users ratings"
	MsgSubmissionsFailed = "Could not fetch users contests"
)

const statusOK = "OK"

// envelope is the wrapper every API method responds with.
type envelope[T any] struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
	Result  T      `json:"result"`
}

// User is the subset of user.info the tracker stores. Absent fields decode to
// zero values.
type User struct {
	Handle     string `json:"handle"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Rating     int    `json:"rating"`
	MaxRating  int    `json:"maxRating"`
	Rank       string `json:"rank"`
	MaxRank    string `json:"maxRank"`
	Avatar     string `json:"avatar"`
	TitlePhoto string `json:"titlePhoto"`
}

// Profile converts the user record to the stored profile fields.
func (u *User) Profile() models.Profile {
	avatar := u.TitlePhoto
	if avatar == "" {
		avatar = u.Avatar
	}
	return models.Profile{
		Name:          strings.TrimSpace(u.FirstName + " " + u.LastName),
		CurrentRating: u.Rating,
		MaxRating:     u.MaxRating,
		Rank:          u.Rank,
		MaxRank:       u.MaxRank,
		Avatar:        avatar,
	}
}

// RatingChange is one entry of user.rating.
type RatingChange struct {
	ContestID               int    `json:"contestId"`
	ContestName             string `json:"contestName"`
	Handle                  string `json:"handle"`
	Rank                    int    `json:"rank"`
	RatingUpdateTimeSeconds int64  `json:"ratingUpdateTimeSeconds"`
	OldRating               int    `json:"oldRating"`
	NewRating               int    `json:"newRating"`
}

// Contest converts the rating change to a contest row owned by studentID.
func (r *RatingChange) Contest(studentID string) models.Contest {
	return models.Contest{
		StudentID:       studentID,
		ContestID:       r.ContestID,
		ContestName:     r.ContestName,
		Rank:            r.Rank,
		OldRating:       r.OldRating,
		NewRating:       r.NewRating,
		RatingUpdatedAt: time.Unix(r.RatingUpdateTimeSeconds, 0).UTC(),
	}
}

// Problem identifies a problem. Rating is zero when unrated.
type Problem struct {
	ContestID int      `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Rating    int      `json:"rating"`
	Tags      []string `json:"tags"`
}

// Submission is one entry of user.status.
type Submission struct {
	ID                  int64   `json:"id"`
	ContestID           int     `json:"contestId"`
	CreationTimeSeconds int64   `json:"creationTimeSeconds"`
	Problem             Problem `json:"problem"`
	ProgrammingLanguage string  `json:"programmingLanguage"`
	Verdict             string  `json:"verdict"`
}

// Model converts the submission to a stored row owned by studentID.
func (s *Submission) Model(studentID string) models.Submission {
	contestID := s.ContestID
	if contestID == 0 {
		contestID = s.Problem.ContestID
	}
	return models.Submission{
		StudentID:     studentID,
		SubmissionID:  s.ID,
		ContestID:     contestID,
		ProblemIndex:  s.Problem.Index,
		ProblemName:   s.Problem.Name,
		ProblemRating: s.Problem.Rating,
		Verdict:       s.Verdict,
		CreatedAt:     time.Unix(s.CreationTimeSeconds, 0).UTC(),
	}
}
