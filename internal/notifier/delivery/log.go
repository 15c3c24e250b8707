// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package delivery

import (
	"context"

	"github.com/tomtom215/cftracker/internal/logging"
)

// LogChannel logs messages instead of sending them.
type LogChannel struct{}

// NewLogChannel returns a LogChannel.
func NewLogChannel() *LogChannel { return &LogChannel{} }

// Name implements Channel.
func (c *LogChannel) Name() string { return "log" }

// Validate implements Channel.
func (c *LogChannel) Validate() error { return nil }

// Send implements Channel.
func (c *LogChannel) Send(ctx context.Context, msg *Message) error {
	if err := ValidateEmail(msg.To); err != nil {
		return newError(ErrorCodeInvalidRecipient, err)
	}
	logging.Ctx(ctx).Info().Str("to", msg.To).Str("subject", msg.Subject).Int("html_bytes", len(msg.HTML)).
		Msg("Email delivery skipped (log channel)")
	return nil
}
