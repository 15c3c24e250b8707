// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

/*
Package database is the DuckDB-backed store for students, their contest and
submission history, the schedule setting and dashboard users.

The store is the only shared mutable resource of the sync engine. Every write
is a single statement or a single transaction; there are no multi-call
transactions spanning a sync pipeline, so a crash between stages leaves a
partial but valid state that the next sync repairs.

Natural keys are enforced twice: the engine filters already-known ids before
inserting, and the tables carry UNIQUE constraints with inserts written as
INSERT ... ON CONFLICT DO NOTHING.

Contests and submissions are not tied to students with foreign keys.
DeleteStudentCascade removes all three in one transaction instead.

# Testing

Tests open ":memory:" databases. DuckDB CGO calls are serialized through a
package-level semaphore held for the whole test.
*/
package database
