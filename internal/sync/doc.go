// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

/*
Package sync reconciles each tracked student's Codeforces history with the
local store.

# Pipeline

SyncOne runs five sequential stages for one student:

 1. Profile: user.info overwrites rating, rank, name and avatar. A failure
    aborts the pipeline.
 2. Contests: user.rating rows whose contest id is not stored yet are
    appended. A failure aborts the pipeline.
 3. Submissions: user.status rows whose submission id is not stored yet are
    appended. A failure is recorded and the pipeline continues.
 4. Unsolved: for every stored contest, the number of attempted but never
    accepted problems is recomputed from all stored submissions and written
    in one transaction.
 5. Timestamp: last_synced_at is set when no stage failed.

Stored contests and submissions are never modified, except the
unsolved_problems column. Running SyncOne twice against unchanged upstream
data leaves the store unchanged.

# Fan-out

SyncAll runs SyncOne for every student with bounded concurrency (default 2)
and a courtesy delay before each student (default 500ms). One student's
failure never affects another. RunCycle is SyncAll followed by the
inactivity notifier and is the scheduler's job.
*/
package sync
