// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSupervisorTreeConstruction(t *testing.T) {
	t.Run("applies default values for zero config", func(t *testing.T) {
		tree, err := NewSupervisorTree(testLogger(), TreeConfig{})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if tree.Root() == nil {
			t.Fatal("root supervisor should not be nil")
		}
		if tree.config != DefaultTreeConfig() {
			t.Errorf("config = %+v, want %+v", tree.config, DefaultTreeConfig())
		}
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		tree, err := NewSupervisorTree(testLogger(), TreeConfig{FailureThreshold: 2, FailureBackoff: time.Second})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if tree.config.FailureThreshold != 2 || tree.config.FailureBackoff != time.Second {
			t.Errorf("explicit values overwritten: %+v", tree.config)
		}
		if tree.config.FailureDecay != 30 {
			t.Errorf("FailureDecay = %v, want 30", tree.config.FailureDecay)
		}
	})
}

func TestSupervisorTreeLifecycle(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), TreeConfig{
		FailureBackoff:  100 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}

	data := newMockService("mock-data")
	sched := newMockService("mock-scheduling")
	api := newMockService("mock-api")
	tree.AddDataService(data)
	tree.AddSchedulingService(sched)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if data.StartCount() > 0 && sched.StartCount() > 0 && api.StartCount() > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	for _, svc := range []*mockService{data, sched, api} {
		if svc.StartCount() < 1 {
			t.Errorf("%s was not started", svc)
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down in time")
	}
}

func TestSupervisorTreeFailureHandling(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failing := newMockService("failing")
	failing.failTimes = 2
	stable := newMockService("stable")

	tree.AddSchedulingService(failing)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	errCh := tree.ServeBackground(ctx)
	time.Sleep(200 * time.Millisecond)

	if failing.StartCount() < 3 {
		t.Errorf("expected at least 3 starts for failing service, got %d", failing.StartCount())
	}
	if stable.StartCount() != 1 {
		t.Errorf("stable service starts = %d, want 1", stable.StartCount())
	}

	cancel()
	<-errCh
}
