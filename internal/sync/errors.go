// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package sync

import "errors"

// ErrSyncInProgress is returned when SyncAll is called while another pass is
// still running.
var ErrSyncInProgress = errors.New("sync already in progress")
