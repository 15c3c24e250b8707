// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package codeforces

// Result is either a successful value or a failure message.
type Result[T any] struct {
	data    T
	message string
	ok      bool
}

// Ok wraps data in the success variant.
func Ok[T any](data T) Result[T] {
	return Result[T]{data: data, ok: true}
}

// Fail builds the failure variant.
func Fail[T any](message string) Result[T] {
	return Result[T]{message: message}
}

// OK reports whether r is the success variant.
func (r Result[T]) OK() bool { return r.ok }

// Data returns the payload. It is the zero value for failures.
func (r Result[T]) Data() T { return r.data }

// Message returns the failure message, empty on success.
func (r Result[T]) Message() string { return r.message }
