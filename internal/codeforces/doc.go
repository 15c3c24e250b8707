// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

/*
Package codeforces is the read-only client for the public Codeforces API.

Three calls are used: user.info, user.rating and user.status. Each returns a
Result, a tagged value holding either the decoded data or a human-readable
failure message. Transport errors, non-OK envelopes, malformed JSON and an open
circuit breaker all collapse to the failure variant; callers never receive a
Go error from this package.

# Resilience

  - A process-wide token bucket (golang.org/x/time/rate) spaces requests.
  - HTTP 429 and 503 are retried with exponential backoff, honoring
    Retry-After.
  - A sony/gobreaker circuit breaker trips after consecutive transport or
    5xx failures. FAILED envelopes (unknown handle, etc.) do not count.

# Usage

	client := codeforces.NewClient(&cfg.Codeforces)
	res := client.FetchProfile(ctx, "tourist")
	if !res.OK() {
	    log.Println(res.Message())
	}
*/
package codeforces
