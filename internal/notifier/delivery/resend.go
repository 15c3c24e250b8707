// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cftracker/internal/config"
)

// ResendChannel sends through the Resend transactional email API.
type ResendChannel struct {
	endpoint string
	apiKey   string
	sender   string
	client   *http.Client
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// NewResendChannel builds a Resend channel from cfg.
func NewResendChannel(cfg *config.EmailConfig) *ResendChannel {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	endpoint := cfg.ResendEndpoint
	if endpoint == "" {
		endpoint = "https://api.resend.com"
	}
	return &ResendChannel{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   cfg.ResendAPIKey,
		sender:   cfg.Sender,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name implements Channel.
func (c *ResendChannel) Name() string { return "resend" }

// Validate implements Channel.
func (c *ResendChannel) Validate() error {
	if c.apiKey == "" {
		return fmt.Errorf("resend API key is required")
	}
	if c.sender == "" {
		return fmt.Errorf("sender address is required")
	}
	return nil
}

// Send implements Channel.
func (c *ResendChannel) Send(ctx context.Context, msg *Message) error {
	if err := ValidateEmail(msg.To); err != nil {
		return newError(ErrorCodeInvalidRecipient, err)
	}

	payload, err := json.Marshal(resendRequest{
		From:    c.sender,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return newError(ErrorCodeUnknown, fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/emails", bytes.NewReader(payload))
	if err != nil {
		return newError(ErrorCodeInvalidConfig, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return newError(classifyTransportError(err), fmt.Errorf("resend request failed: %w", err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	message := strings.TrimSpace(string(body))
	var re resendError
	if json.Unmarshal(body, &re) == nil && re.Message != "" {
		message = re.Message
	}
	code := classifyHTTPStatusCode(resp.StatusCode)
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: resp.StatusCode,
		Transient:  isTransient(code),
	}
}

func classifyHTTPStatusCode(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorCodeAuthFailed
	case status == http.StatusTooManyRequests:
		return ErrorCodeRateLimited
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		return ErrorCodeInvalidRecipient
	case status == http.StatusNotFound:
		return ErrorCodeInvalidConfig
	case status >= 500:
		return ErrorCodeServerError
	default:
		return ErrorCodeUnknown
	}
}

func classifyTransportError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "timeout") {
		return ErrorCodeTimeout
	}
	return ErrorCodeConnectionFailed
}
