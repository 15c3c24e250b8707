// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cftracker/internal/analytics"
	"github.com/tomtom215/cftracker/internal/codeforces"
	"github.com/tomtom215/cftracker/internal/config"
	"github.com/tomtom215/cftracker/internal/logging"
	"github.com/tomtom215/cftracker/internal/metrics"
	"github.com/tomtom215/cftracker/internal/models"
	"github.com/tomtom215/cftracker/internal/notifier"
)

// Store is the persistence the engine needs. *database.DB implements it.
type Store interface {
	ListStudents(ctx context.Context) ([]models.Student, error)
	UpdateStudentProfile(ctx context.Context, id string, profile *models.Profile) error
	ContestIDs(ctx context.Context, studentID string) (map[int]struct{}, error)
	InsertContests(ctx context.Context, contests []models.Contest) (int, error)
	ListContests(ctx context.Context, studentID string) ([]models.Contest, error)
	SubmissionIDs(ctx context.Context, studentID string) (map[int64]struct{}, error)
	InsertSubmissions(ctx context.Context, subs []models.Submission) (int, error)
	ListSubmissions(ctx context.Context, studentID string) ([]models.Submission, error)
	BulkUpdateUnsolved(ctx context.Context, studentID string, counts map[int]int) error
	SetLastSynced(ctx context.Context, id string, t time.Time) error
}

// Upstream is the Codeforces API. *codeforces.Client implements it.
type Upstream interface {
	FetchProfile(ctx context.Context, handle string) codeforces.Result[models.Profile]
	FetchRatingHistory(ctx context.Context, handle string) codeforces.Result[[]codeforces.RatingChange]
	FetchSubmissionHistory(ctx context.Context, handle string) codeforces.Result[[]codeforces.Submission]
}

// Notifier sends inactivity reminders after a sync pass.
type Notifier interface {
	NotifyInactive(ctx context.Context, windowDays int) notifier.Report
}

// Outcome is the result of one SyncOne call.
type Outcome struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	NewContests    int    `json:"new_contests"`
	NewSubmissions int    `json:"new_submissions"`
}

// Summary is the result of one SyncAll pass.
type Summary struct {
	SuccessCount int           `json:"success_count"`
	FailureCount int           `json:"failure_count"`
	Duration     time.Duration `json:"duration"`
}

// Engine runs the per-student pipeline and the fan-out over all students.
type Engine struct {
	store        Store
	upstream     Upstream
	notifier     Notifier
	concurrency  int
	delay        time.Duration
	notifyWindow int

	running   atomic.Bool
	mu        gosync.RWMutex
	lastCycle time.Time
	now       func() time.Time
}

// NewEngine builds an engine. notifyWindow is the inactivity window in days
// used by RunCycle.
func NewEngine(store Store, upstream Upstream, cfg *config.SyncConfig, notifyWindow int) *Engine {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}
	if notifyWindow <= 0 {
		notifyWindow = 7
	}
	return &Engine{
		store:        store,
		upstream:     upstream,
		concurrency:  concurrency,
		delay:        cfg.Delay,
		notifyWindow: notifyWindow,
		now:          time.Now,
	}
}

// SetNotifier attaches the notifier RunCycle calls after SyncAll.
func (e *Engine) SetNotifier(n Notifier) {
	e.notifier = n
}

// LastCycle returns when the last RunCycle finished. Zero before the first.
func (e *Engine) LastCycle() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastCycle
}

// Running reports whether a SyncAll pass is in progress.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// SyncOne runs the five-stage pipeline for student.
func (e *Engine) SyncOne(ctx context.Context, student *models.Student) Outcome {
	start := e.now()
	log := logging.Ctx(ctx).With().Str("handle", student.Handle).Str("student_id", student.ID).Logger()

	out := e.syncOne(ctx, student)

	metrics.RecordStudentSync(time.Since(start), out.Success, out.NewContests, out.NewSubmissions)
	if out.Success {
		log.Debug().Int("new_contests", out.NewContests).Int("new_submissions", out.NewSubmissions).
			Dur("duration", time.Since(start)).Msg("Student synced")
	} else {
		log.Warn().Str("reason", out.Message).Msg("Student sync incomplete")
	}
	return out
}

func (e *Engine) syncOne(ctx context.Context, student *models.Student) Outcome {
	var out Outcome

	// Stage 1: profile overwrite.
	profile := e.upstream.FetchProfile(ctx, student.Handle)
	if !profile.OK() {
		metrics.RecordStageFailure("profile")
		return Outcome{Message: profile.Message()}
	}
	p := profile.Data()
	if err := e.store.UpdateStudentProfile(ctx, student.ID, &p); err != nil {
		metrics.RecordStageFailure("profile")
		return Outcome{Message: fmt.Sprintf("failed to save profile: %v", err)}
	}

	// Stage 2: contests, append-only.
	n, err := e.syncContests(ctx, student)
	if err != nil {
		metrics.RecordStageFailure("contests")
		return Outcome{Message: err.Error()}
	}
	out.NewContests = n

	var failure string

	// Stage 3: submissions, append-only. Failures do not abort.
	n, err = e.syncSubmissions(ctx, student)
	if err != nil {
		metrics.RecordStageFailure("submissions")
		failure = err.Error()
	}
	out.NewSubmissions = n

	// Stage 4: unsolved recompute over everything stored so far.
	if err := e.recomputeUnsolved(ctx, student.ID); err != nil {
		metrics.RecordStageFailure("unsolved")
		if failure == "" {
			failure = err.Error()
		}
	}

	if failure != "" {
		out.Message = failure
		return out
	}

	// Stage 5: last sync timestamp.
	if err := e.store.SetLastSynced(ctx, student.ID, e.now().UTC()); err != nil {
		metrics.RecordStageFailure("timestamp")
		out.Message = fmt.Sprintf("failed to record sync time: %v", err)
		return out
	}

	out.Success = true
	out.Message = "Student synced successfully"
	return out
}

func (e *Engine) syncContests(ctx context.Context, student *models.Student) (int, error) {
	res := e.upstream.FetchRatingHistory(ctx, student.Handle)
	if !res.OK() {
		return 0, errors.New(res.Message())
	}

	known, err := e.store.ContestIDs(ctx, student.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to load stored contests: %w", err)
	}

	data := res.Data()
	fresh := make([]models.Contest, 0)
	for i := range data {
		rc := &data[i]
		if _, ok := known[rc.ContestID]; ok {
			continue
		}
		known[rc.ContestID] = struct{}{}
		fresh = append(fresh, rc.Contest(student.ID))
	}

	n, err := e.store.InsertContests(ctx, fresh)
	if err != nil {
		return 0, fmt.Errorf("failed to save contests: %w", err)
	}
	return n, nil
}

func (e *Engine) syncSubmissions(ctx context.Context, student *models.Student) (int, error) {
	res := e.upstream.FetchSubmissionHistory(ctx, student.Handle)
	if !res.OK() {
		return 0, errors.New(res.Message())
	}

	known, err := e.store.SubmissionIDs(ctx, student.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to load stored submissions: %w", err)
	}

	data := res.Data()
	fresh := make([]models.Submission, 0)
	for i := range data {
		if _, ok := known[data[i].ID]; ok {
			continue
		}
		known[data[i].ID] = struct{}{}
		fresh = append(fresh, data[i].Model(student.ID))
	}

	n, err := e.store.InsertSubmissions(ctx, fresh)
	if err != nil {
		return 0, fmt.Errorf("failed to save submissions: %w", err)
	}
	return n, nil
}

// recomputeUnsolved sets unsolved_problems for every stored contest of the
// student, including zero for contests without submissions.
func (e *Engine) recomputeUnsolved(ctx context.Context, studentID string) error {
	contests, err := e.store.ListContests(ctx, studentID)
	if err != nil {
		return fmt.Errorf("failed to load contests: %w", err)
	}
	if len(contests) == 0 {
		return nil
	}
	subs, err := e.store.ListSubmissions(ctx, studentID)
	if err != nil {
		return fmt.Errorf("failed to load submissions: %w", err)
	}

	unsolved := analytics.UnsolvedByContest(subs)
	counts := make(map[int]int, len(contests))
	for _, c := range contests {
		counts[c.ContestID] = unsolved[c.ContestID]
	}
	if err := e.store.BulkUpdateUnsolved(ctx, studentID, counts); err != nil {
		return fmt.Errorf("failed to update unsolved counts: %w", err)
	}
	return nil
}

// SyncAll syncs every student with bounded concurrency. It returns
// ErrSyncInProgress if another pass is running.
func (e *Engine) SyncAll(ctx context.Context) (Summary, error) {
	if !e.running.CompareAndSwap(false, true) {
		return Summary{}, ErrSyncInProgress
	}
	defer e.running.Store(false)

	start := e.now()
	students, err := e.store.ListStudents(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list students: %w", err)
	}

	logging.Info().Int("students", len(students)).Int("concurrency", e.concurrency).Msg("Starting sync of all students")

	var succeeded, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range students {
		student := &students[i]
		g.Go(func() error {
			if err := sleepCtx(gctx, e.delay); err != nil {
				failed.Add(1)
				return nil
			}
			if e.SyncOne(gctx, student).Success {
				succeeded.Add(1)
			} else {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := Summary{
		SuccessCount: int(succeeded.Load()),
		FailureCount: int(failed.Load()),
		Duration:     time.Since(start),
	}
	metrics.RecordSyncCycle()
	logging.Info().Int("success", summary.SuccessCount).Int("failed", summary.FailureCount).
		Dur("duration", summary.Duration).Msg("Sync of all students completed")
	return summary, nil
}

// RunCycle syncs all students and then notifies inactive ones. The notifier
// still runs when some students failed to sync.
func (e *Engine) RunCycle(ctx context.Context) error {
	ctx = logging.ContextWithNewCorrelationID(ctx)

	if _, err := e.SyncAll(ctx); err != nil {
		return err
	}

	if e.notifier != nil {
		report := e.notifier.NotifyInactive(ctx, e.notifyWindow)
		logging.Info().Int("candidates", report.Candidates).Int("sent", report.Sent).
			Int("failed", report.Failed).Msg("Inactivity notifications dispatched")
	}

	e.mu.Lock()
	e.lastCycle = e.now()
	e.mu.Unlock()
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
