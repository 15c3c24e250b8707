// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

// Package delivery provides the outbound email channels used for inactivity
// reminders.
//
// Three channels implement Channel:
//   - Resend: transactional email over the Resend HTTP API
//   - SMTP: any SMTP relay, with optional STARTTLS
//   - Log: writes the message to the log only, for development
//
// Credentials are never logged. Failures are returned as *Error carrying a
// machine-readable code and whether a retry could succeed.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/cftracker/internal/config"
)

// Channel delivers a single message.
type Channel interface {
	// Name returns the channel identifier (resend, smtp, log).
	Name() string

	// Validate checks the channel configuration.
	Validate() error

	// Send delivers msg. It returns *Error on failure.
	Send(ctx context.Context, msg *Message) error
}

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Error codes for delivery failures.
const (
	ErrorCodeInvalidConfig     = "INVALID_CONFIG"
	ErrorCodeInvalidRecipient  = "INVALID_RECIPIENT"
	ErrorCodeConnectionFailed  = "CONNECTION_FAILED"
	ErrorCodeAuthFailed        = "AUTH_FAILED"
	ErrorCodeRateLimited       = "RATE_LIMITED"
	ErrorCodeRecipientNotFound = "RECIPIENT_NOT_FOUND"
	ErrorCodeServerError       = "SERVER_ERROR"
	ErrorCodeTimeout           = "TIMEOUT"
	ErrorCodeUnknown           = "UNKNOWN"
)

// Error is a classified delivery failure.
type Error struct {
	Code       string
	Message    string
	StatusCode int
	Transient  bool
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code string, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Transient: isTransient(code), Err: err}
}

// IsTransient reports whether err is a delivery failure worth retrying.
func IsTransient(err error) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Transient
	}
	return false
}

func isTransient(code string) bool {
	switch code {
	case ErrorCodeConnectionFailed, ErrorCodeTimeout, ErrorCodeRateLimited, ErrorCodeServerError:
		return true
	default:
		return false
	}
}

// ValidateEmail performs a cheap structural check of an address.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email address is required")
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid email address format: %s", email)
	}
	if !strings.Contains(parts[1], ".") {
		return fmt.Errorf("invalid email domain: %s", parts[1])
	}
	return nil
}

// New returns the channel selected by cfg.Provider.
func New(cfg *config.EmailConfig) (Channel, error) {
	var ch Channel
	switch strings.ToLower(cfg.Provider) {
	case "resend":
		ch = NewResendChannel(cfg)
	case "smtp":
		ch = NewSMTPChannel(cfg)
	case "", "log":
		ch = NewLogChannel()
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Provider)
	}
	if err := ch.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s configuration: %w", ch.Name(), err)
	}
	return ch, nil
}
