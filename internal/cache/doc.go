// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

/*
Package cache provides a small thread-safe TTL cache for computed read models.

The API uses it to hold submission reports and contest histories keyed by
student and window. Entries are grouped by an owner prefix so that a sync or
an edit of one student can drop everything derived from that student without
touching other entries:

	reports := cache.New[models.SubmissionReport](time.Minute)
	defer reports.Close()

	key := cache.Key(studentID, "submissions", days)
	if r, ok := reports.Get(key); ok {
	    return r
	}
	r := analytics.BuildReport(subs, days, now)
	reports.Set(key, r)

	// after the student is re-synced
	reports.InvalidateOwner(studentID)

Hits and misses are exported as cache_requests_total.
*/
package cache
