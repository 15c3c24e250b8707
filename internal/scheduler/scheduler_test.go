// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/cftracker/internal/models"
)

// mockStore implements Store for testing.
type mockStore struct {
	mu      sync.Mutex
	setting *models.Setting
	saves   int
}

func (m *mockStore) EnsureSetting(_ context.Context, defaultCron string) (*models.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setting == nil {
		m.setting = &models.Setting{CronTime: defaultCron, UpdatedAt: time.Now()}
	}
	s := *m.setting
	return &s, nil
}

func (m *mockStore) SaveSetting(_ context.Context, cronTime string) (*models.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.setting = &models.Setting{CronTime: cronTime, UpdatedAt: time.Now()}
	s := *m.setting
	return &s, nil
}

func noopJob(context.Context) error { return nil }

func TestValidate(t *testing.T) {
	tests := []struct {
		expr  string
		valid bool
	}{
		{"0 0 * * *", true},
		{"*/5 * * * *", true},
		{"30 0 0 * * *", true},
		{"@daily", true},
		{"@every 1h", true},
		{"", false},
		{"not a cron", false},
		{"61 * * * *", false},
		{"* * * *", false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			err := Validate(tt.expr)
			if tt.valid && err != nil {
				t.Errorf("Validate(%q) = %v", tt.expr, err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidExpression) {
				t.Errorf("Validate(%q) = %v, want ErrInvalidExpression", tt.expr, err)
			}
		})
	}
}

func TestStart_CreatesDefaultSetting(t *testing.T) {
	store := &mockStore{}
	s := New(store, noopJob, "")
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	if got := s.Current(); got != models.DefaultCronExpression {
		t.Errorf("Current() = %q", got)
	}
	if store.setting == nil || store.setting.CronTime != models.DefaultCronExpression {
		t.Errorf("default setting not persisted: %+v", store.setting)
	}
}

func TestStart_UsesStoredExpression(t *testing.T) {
	store := &mockStore{setting: &models.Setting{CronTime: "0 6 * * 1"}}
	s := New(store, noopJob, "")
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	if got := s.Current(); got != "0 6 * * 1" {
		t.Errorf("Current() = %q", got)
	}
}

func TestStart_CorruptStoredExpressionFallsBack(t *testing.T) {
	store := &mockStore{setting: &models.Setting{CronTime: "garbage"}}
	s := New(store, noopJob, "")
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	if got := s.Current(); got != models.DefaultCronExpression {
		t.Errorf("Current() = %q, want default", got)
	}
}

func TestArm_InvalidKeepsPrevious(t *testing.T) {
	s := New(&mockStore{}, noopJob, "")
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	before := s.NextRun()
	if err := s.Arm("every tuesday"); !errors.Is(err, ErrInvalidExpression) {
		t.Fatalf("Arm = %v, want ErrInvalidExpression", err)
	}
	if got := s.Current(); got != models.DefaultCronExpression {
		t.Errorf("Current() = %q after rejected Arm", got)
	}
	if !s.NextRun().Equal(before) {
		t.Errorf("NextRun changed: %v -> %v", before, s.NextRun())
	}
}

func TestNextRun_IsUTC(t *testing.T) {
	s := New(&mockStore{}, noopJob, "")
	if err := s.Arm("0 0 * * *"); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	next := s.NextRun()
	if next.Location() != time.UTC {
		t.Errorf("location = %v, want UTC", next.Location())
	}
	if next.Hour() != 0 || next.Minute() != 0 {
		t.Errorf("next = %v, want midnight UTC", next)
	}
	if !next.After(time.Now()) {
		t.Errorf("next = %v is not in the future", next)
	}
}

func TestNextRun_ZeroWhenUnarmed(t *testing.T) {
	s := New(&mockStore{}, noopJob, "")
	if !s.NextRun().IsZero() {
		t.Error("expected zero NextRun before Arm")
	}
	if s.Status().NextRun != nil {
		t.Error("expected nil NextRun in status")
	}
}

func TestUpdate(t *testing.T) {
	store := &mockStore{}
	s := New(store, noopJob, "")
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	if _, err := s.Update(context.Background(), "bad"); !errors.Is(err, ErrInvalidExpression) {
		t.Errorf("Update(bad) = %v", err)
	}
	if store.saves != 0 {
		t.Errorf("invalid expression persisted")
	}

	setting, err := s.Update(context.Background(), "*/15 * * * *")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if setting.CronTime != "*/15 * * * *" || s.Current() != "*/15 * * * *" {
		t.Errorf("setting = %+v current = %q", setting, s.Current())
	}
}

func TestTick_FiresJob(t *testing.T) {
	fired := make(chan struct{}, 1)
	job := func(context.Context) error {
		select {
		case fired <- struct{}{}:
		default:
		}
		return nil
	}
	store := &mockStore{setting: &models.Setting{CronTime: "@every 1s"}}
	s := New(store, job, "")
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("job never fired")
	}
}

func TestTick_SkipsWhileRunning(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	job := func(context.Context) error {
		calls.Add(1)
		<-release
		return nil
	}
	s := New(&mockStore{}, job, "")

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.tick()
	}()

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first tick never started")
		}
		time.Sleep(time.Millisecond)
	}

	s.tick()
	if got := calls.Load(); got != 1 {
		t.Errorf("job calls = %d, want 1", got)
	}
	close(release)
	<-done
}

func TestTick_JobErrorDoesNotPanic(t *testing.T) {
	s := New(&mockStore{}, func(context.Context) error { return errors.New("boom") }, "")
	s.tick()
	if s.busy.Load() {
		t.Error("busy flag not cleared")
	}
}

func TestStop_Idempotent(t *testing.T) {
	s := New(&mockStore{}, noopJob, "")
	if err := s.Stop(); err != nil {
		t.Errorf("Stop before Start: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Error("second Start should fail")
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}
