// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package codeforces

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cftracker/internal/config"
	"github.com/tomtom215/cftracker/internal/logging"
	"github.com/tomtom215/cftracker/internal/metrics"
	"github.com/tomtom215/cftracker/internal/models"
)

// maxBodySize caps how much of a response body is read. user.status for a
// prolific account is a few MB.
const maxBodySize = 64 << 20

const breakerName = "codeforces-api"

// Client calls the Codeforces API. Safe for concurrent use; the limiter and
// breaker are shared by all callers.
type Client struct {
	baseURL        string
	client         *http.Client
	limiter        *rate.Limiter
	breaker        *gobreaker.CircuitBreaker[[]byte]
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient builds a client from cfg.
func NewClient(cfg *config.CodeforcesConfig) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= failures
			if trip {
				logging.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("from", from.String()).Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.RecordBreakerTransition(name, from.String(), to.String())
		},
	})

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		client:         &http.Client{Timeout: cfg.Timeout},
		limiter:        rate.NewLimiter(limit, 1),
		breaker:        breaker,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
	}
}

// FetchProfile returns the first user.info record for handle.
func (c *Client) FetchProfile(ctx context.Context, handle string) Result[models.Profile] {
	var env envelope[[]User]
	if msg, ok := c.call(ctx, "user.info", url.Values{"handles": {handle}}, &env, MsgProfileFailed); !ok {
		return Fail[models.Profile](msg)
	}
	if len(env.Result) == 0 {
		return Fail[models.Profile](MsgProfileFailed)
	}
	return Ok(env.Result[0].Profile())
}

// FetchRatingHistory returns every rated contest of handle. An empty list is
// a success.
func (c *Client) FetchRatingHistory(ctx context.Context, handle string) Result[[]RatingChange] {
	var env envelope[[]RatingChange]
	if msg, ok := c.call(ctx, "user.rating", url.Values{"handle": {handle}}, &env, MsgRatingsFailed); !ok {
		return Fail[[]RatingChange](msg)
	}
	if env.Result == nil {
		env.Result = []RatingChange{}
	}
	return Ok(env.Result)
}

// FetchSubmissionHistory returns all submissions of handle in the order the
// API sends them.
func (c *Client) FetchSubmissionHistory(ctx context.Context, handle string) Result[[]Submission] {
	var env envelope[[]Submission]
	if msg, ok := c.call(ctx, "user.status", url.Values{"handle": {handle}}, &env, MsgSubmissionsFailed); !ok {
		return Fail[[]Submission](msg)
	}
	if env.Result == nil {
		env.Result = []Submission{}
	}
	return Ok(env.Result)
}

// statusHolder lets call read the envelope status without knowing T.
type statusHolder interface {
	status() (string, string)
}

func (e *envelope[T]) status() (string, string) { return e.Status, e.Comment }

// call performs method and decodes the body into out. On failure it returns
// the message to surface: the API comment when present, fallback otherwise.
func (c *Client) call(ctx context.Context, method string, params url.Values, out statusHolder, fallback string) (string, bool) {
	start := time.Now()
	body, err := c.fetch(ctx, method, params)
	metrics.RecordUpstreamCall(method, time.Since(start), err)
	if err != nil {
		logging.Warn().Err(err).Str("method", method).Str("params", params.Encode()).Msg("Codeforces request failed")
		return fallback, false
	}

	if err := json.Unmarshal(body, out); err != nil {
		logging.Warn().Err(err).Str("method", method).Msg("Failed to decode Codeforces response")
		return fallback, false
	}
	status, comment := out.status()
	if status != statusOK {
		if comment != "" {
			return comment, false
		}
		return fallback, false
	}
	return "", true
}

// fetch waits for the limiter and runs the request through the breaker.
func (c *Client) fetch(ctx context.Context, method string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, method, params.Encode())
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doRequestWithRetry(ctx, reqURL)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("circuit breaker rejected request: %w", err)
	}
	return body, err
}

// doRequestWithRetry performs a GET, retrying 429 and 503 with exponential
// backoff. 4xx bodies are returned as-is since the API reports unknown
// handles as HTTP 400 with a FAILED envelope.
func (c *Client) doRequestWithRetry(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
			body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
			_ = resp.Body.Close()
			if readErr != nil {
				return nil, fmt.Errorf("failed to read response: %w", readErr)
			}
			if resp.StatusCode >= http.StatusInternalServerError {
				return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
			}
			return body, nil
		}

		_ = resp.Body.Close()
		lastErr = fmt.Errorf("upstream returned status %d after %d retries", resp.StatusCode, c.maxRetries)
		if attempt == c.maxRetries {
			break
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = seconds
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}
