// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

// Package analytics turns stored submissions into report figures: solved
// counts, rating buckets, heatmaps and per-contest unsolved counts.
//
// All functions are pure. Dates are bucketed by UTC day.
package analytics

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/tomtom215/cftracker/internal/models"
)

// BucketWidth is the rating span of one RatingBuckets entry.
const BucketWidth = 200

const dayLayout = "2006-01-02"

// earlier orders submissions by creation time, then by submission id.
func earlier(a, b *models.Submission) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.SubmissionID < b.SubmissionID
}

// FirstAccepted returns the earliest accepted submission of each solved
// problem, ordered by creation time.
func FirstAccepted(subs []models.Submission) []models.Submission {
	first := make(map[string]int)
	for i := range subs {
		if !subs[i].Accepted() {
			continue
		}
		key := subs[i].ProblemKey()
		if j, ok := first[key]; !ok || earlier(&subs[i], &subs[j]) {
			first[key] = i
		}
	}

	out := make([]models.Submission, 0, len(first))
	for _, i := range first {
		out = append(out, subs[i])
	}
	sort.Slice(out, func(a, b int) bool { return earlier(&out[a], &out[b]) })
	return out
}

// TotalSolved counts distinct (contest, index) pairs with an accepted verdict.
func TotalSolved(subs []models.Submission) int {
	seen := make(map[string]struct{})
	for i := range subs {
		if subs[i].Accepted() {
			seen[subs[i].ProblemKey()] = struct{}{}
		}
	}
	return len(seen)
}

// AverageRating is the mean difficulty of the solved problems that have a
// rating, counting each problem once. Zero when none is rated.
func AverageRating(subs []models.Submission) float64 {
	var sum, n int
	for _, s := range FirstAccepted(subs) {
		if s.ProblemRating > 0 {
			sum += s.ProblemRating
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// AveragePerDay is totalSolved divided by the number of distinct UTC days
// with an accepted submission, rounded up.
func AveragePerDay(subs []models.Submission, totalSolved int) int {
	days := make(map[string]struct{})
	for i := range subs {
		if subs[i].Accepted() {
			days[subs[i].CreatedAt.UTC().Format(dayLayout)] = struct{}{}
		}
	}
	if len(days) == 0 {
		return 0
	}
	return int(math.Ceil(float64(totalSolved) / float64(len(days))))
}

// MostDifficult returns the highest rated solved problem. Ties go to the
// earliest submission, then the lowest id. Nil when nothing solved is rated.
func MostDifficult(subs []models.Submission) *models.Submission {
	var best *models.Submission
	for i := range subs {
		s := &subs[i]
		if !s.Accepted() || s.ProblemRating <= 0 {
			continue
		}
		if best == nil || s.ProblemRating > best.ProblemRating ||
			(s.ProblemRating == best.ProblemRating && earlier(s, best)) {
			best = s
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}

// RatingBuckets groups solved problems into BucketWidth-wide ranges labelled
// "start-end". Unrated problems are skipped.
func RatingBuckets(subs []models.Submission) []models.RatingBucket {
	counts := make(map[int]int)
	for _, s := range FirstAccepted(subs) {
		if s.ProblemRating <= 0 {
			continue
		}
		counts[(s.ProblemRating/BucketWidth)*BucketWidth]++
	}

	starts := make([]int, 0, len(counts))
	for start := range counts {
		starts = append(starts, start)
	}
	sort.Ints(starts)

	out := make([]models.RatingBucket, 0, len(starts))
	for _, start := range starts {
		out = append(out, models.RatingBucket{
			Rating: strconv.Itoa(start) + "-" + strconv.Itoa(start+BucketWidth-1),
			Count:  counts[start],
		})
	}
	return out
}

// Heatmap returns one entry per UTC day for the last days days ending at now,
// oldest first, with the number of accepted submissions on each day.
func Heatmap(subs []models.Submission, days int, now time.Time) []models.HeatmapDay {
	if days <= 0 {
		return []models.HeatmapDay{}
	}
	perDay := make(map[string]int)
	for i := range subs {
		if subs[i].Accepted() {
			perDay[subs[i].CreatedAt.UTC().Format(dayLayout)]++
		}
	}

	now = now.UTC()
	out := make([]models.HeatmapDay, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format(dayLayout)
		out = append(out, models.HeatmapDay{Date: date, Count: perDay[date]})
	}
	return out
}

// UnsolvedByContest counts, per contest id, problems attempted but never
// accepted.
func UnsolvedByContest(subs []models.Submission) map[int]int {
	attempted := make(map[int]map[string]struct{})
	solved := make(map[string]struct{})
	for i := range subs {
		s := &subs[i]
		if attempted[s.ContestID] == nil {
			attempted[s.ContestID] = make(map[string]struct{})
		}
		attempted[s.ContestID][s.ProblemKey()] = struct{}{}
		if s.Accepted() {
			solved[s.ProblemKey()] = struct{}{}
		}
	}

	out := make(map[int]int, len(attempted))
	for contestID, keys := range attempted {
		n := 0
		for key := range keys {
			if _, ok := solved[key]; !ok {
				n++
			}
		}
		out[contestID] = n
	}
	return out
}

// BuildReport assembles the submission report for accepted submissions in a
// trailing window of days ending at now.
func BuildReport(subs []models.Submission, days int, now time.Time) models.SubmissionReport {
	total := TotalSolved(subs)
	return models.SubmissionReport{
		MostDifficultProblem: MostDifficult(subs),
		TotalSolvedProblems:  total,
		AverageRating:        AverageRating(subs),
		AverageProblemPerDay: AveragePerDay(subs, total),
		RatingBucketData:     RatingBuckets(subs),
		Heatmap:              Heatmap(subs, days, now),
	}
}
