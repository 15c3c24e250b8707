// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

// Package notifier emails students who have not submitted anything within a
// trailing window.
//
// A student is a candidate when they are opted in (email present and
// allow_email set) and have no stored submission created inside the window.
// Reminders are best effort: each candidate gets at most one attempt per run,
// and reminder_count is only incremented after the channel accepted the
// message.
package notifier

import (
	"context"
	"fmt"
	"html"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cftracker/internal/config"
	"github.com/tomtom215/cftracker/internal/logging"
	"github.com/tomtom215/cftracker/internal/metrics"
	"github.com/tomtom215/cftracker/internal/models"
	"github.com/tomtom215/cftracker/internal/notifier/delivery"
)

// DefaultSubject is the reminder subject line.
const DefaultSubject = "Codeforces misses you!"

// Store is the persistence the notifier needs. *database.DB implements it.
type Store interface {
	ActiveStudentIDs(ctx context.Context, since time.Time) (map[string]struct{}, error)
	ListOptedInStudents(ctx context.Context) ([]models.Student, error)
	IncrementReminderCount(ctx context.Context, id string) error
}

// Report summarizes one NotifyInactive run.
type Report struct {
	Candidates int `json:"candidates"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
}

// Notifier selects inactive students and dispatches reminders.
type Notifier struct {
	store       Store
	channel     delivery.Channel
	concurrency int
	subject     string
	now         func() time.Time
}

// New builds a notifier that sends through channel.
func New(store Store, channel delivery.Channel, cfg *config.NotifierConfig) *Notifier {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 3
	}
	subject := cfg.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	return &Notifier{
		store:       store,
		channel:     channel,
		concurrency: concurrency,
		subject:     subject,
		now:         time.Now,
	}
}

// Inactive returns opted-in students without a submission since
// now - windowDays.
func (n *Notifier) Inactive(ctx context.Context, windowDays int) ([]models.Student, error) {
	since := n.now().UTC().Add(-time.Duration(windowDays) * 24 * time.Hour)

	active, err := n.store.ActiveStudentIDs(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load active students: %w", err)
	}
	optedIn, err := n.store.ListOptedInStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load opted-in students: %w", err)
	}

	inactive := make([]models.Student, 0, len(optedIn))
	for i := range optedIn {
		if !optedIn[i].OptedIn() {
			continue
		}
		if _, ok := active[optedIn[i].ID]; ok {
			continue
		}
		inactive = append(inactive, optedIn[i])
	}
	return inactive, nil
}

// NotifyInactive sends one reminder to every inactive opted-in student.
// Failures are logged and counted; they never stop other sends.
func (n *Notifier) NotifyInactive(ctx context.Context, windowDays int) Report {
	candidates, err := n.Inactive(ctx, windowDays)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to select inactive students")
		return Report{}
	}
	metrics.NotifierCandidates.Set(float64(len(candidates)))

	var sent, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.concurrency)

	for i := range candidates {
		student := &candidates[i]
		g.Go(func() error {
			if err := n.remind(gctx, student); err != nil {
				failed.Add(1)
				logging.Warn().Err(err).Str("handle", student.Handle).Msg("Failed to send inactivity reminder")
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return Report{
		Candidates: len(candidates),
		Sent:       int(sent.Load()),
		Failed:     int(failed.Load()),
	}
}

func (n *Notifier) remind(ctx context.Context, student *models.Student) error {
	msg := &delivery.Message{
		To:      *student.Email,
		Subject: n.subject,
		HTML:    ReminderHTML(student.DisplayName()),
	}
	err := n.channel.Send(ctx, msg)
	metrics.RecordNotification(n.channel.Name(), err)
	if err != nil {
		return err
	}

	if err := n.store.IncrementReminderCount(ctx, student.ID); err != nil {
		// The email went out; the counter is best effort.
		logging.Error().Err(err).Str("student_id", student.ID).Msg("Failed to increment reminder count")
		return nil
	}
	logging.Info().Str("handle", student.Handle).Msg("Inactivity reminder sent")
	return nil
}

// ReminderHTML renders the reminder body for name.
func ReminderHTML(name string) string {
	return "<p>Hi " + html.EscapeString(name) + ",</p>" +
		"<p>We noticed you haven't submitted anything recently. We'd love to see you back!</p>"
}
