// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService blocks until cancelled, optionally failing its first few runs.
type mockService struct {
	name      string
	starts    atomic.Int32
	failures  atomic.Int32
	failTimes int32
}

func newMockService(name string) *mockService {
	return &mockService{name: name}
}

func (m *mockService) Serve(ctx context.Context) error {
	m.starts.Add(1)
	if m.failTimes > 0 && m.failures.Add(1) <= m.failTimes {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) StartCount() int32 { return m.starts.Load() }

func (m *mockService) String() string { return m.name }
