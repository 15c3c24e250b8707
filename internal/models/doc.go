// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

/*
Package models defines the records CFTracker persists and serves.

Database Models:
  - Student: a tracked Codeforces account, root of the ownership tree
  - Contest: one rating change event of a student (append-only)
  - Submission: one submission of a student (append-only)
  - Setting: the process-wide schedule configuration
  - User: a login account for the dashboard

Contest and Submission rows belong to exactly one Student and are removed
together with it by the store. Their natural keys, (student, contest id) and
(student, submission id), are unique.
*/
package models
