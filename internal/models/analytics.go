// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package models

// HeatmapDay is the number of accepted submissions on one UTC day (YYYY-MM-DD).
type HeatmapDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// RatingBucket counts accepted submissions whose problem rating falls in a
// 200-wide band labelled "start-end".
type RatingBucket struct {
	Rating string `json:"rating"`
	Count  int    `json:"count"`
}

// SubmissionReport is the analytics summary for a student over a window.
type SubmissionReport struct {
	MostDifficultProblem *Submission    `json:"mostDifficultProblem"`
	TotalSolvedProblems  int            `json:"totalSolvedProblems"`
	AverageRating        float64        `json:"averageRating"`
	AverageProblemPerDay int            `json:"averageProblemPerDay"`
	RatingBucketData     []RatingBucket `json:"ratingBucketData"`
	Heatmap              []HeatmapDay   `json:"heatmap"`
}
