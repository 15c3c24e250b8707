// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package delivery

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cftracker/internal/config"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantErr bool
	}{
		{"student@example.com", false},
		{"", true},
		{"no-at-sign", true},
		{"@example.com", true},
		{"a@nodot", true},
		{"a@b@c.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if err := ValidateEmail(tt.email); (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) err = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.EmailConfig
		wantName string
		wantErr  bool
	}{
		{"default is log", config.EmailConfig{}, "log", false},
		{"resend", config.EmailConfig{Provider: "resend", ResendAPIKey: "re_x", Sender: "a@b.co"}, "resend", false},
		{"resend without key", config.EmailConfig{Provider: "resend", Sender: "a@b.co"}, "", true},
		{"smtp", config.EmailConfig{Provider: "SMTP", SMTPHost: "mail", SMTPPort: 25, Sender: "a@b.co"}, "smtp", false},
		{"smtp bad port", config.EmailConfig{Provider: "smtp", SMTPHost: "mail", Sender: "a@b.co"}, "", true},
		{"unknown", config.EmailConfig{Provider: "pigeon"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch, err := New(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && ch.Name() != tt.wantName {
				t.Errorf("Name = %q, want %q", ch.Name(), tt.wantName)
			}
		})
	}
}

func TestResendChannel_Send(t *testing.T) {
	var got resendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer re_test" {
			t.Errorf("Authorization = %q", auth)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("bad body: %v", err)
		}
		_, _ = w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer server.Close()

	ch := NewResendChannel(&config.EmailConfig{ResendAPIKey: "re_test", Sender: "bot@cf.dev", ResendEndpoint: server.URL})
	err := ch.Send(context.Background(), &Message{To: "s@example.com", Subject: "Hi", HTML: "<p>x</p>"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.From != "bot@cf.dev" || len(got.To) != 1 || got.To[0] != "s@example.com" || got.HTML != "<p>x</p>" {
		t.Errorf("request = %+v", got)
	}
}

func TestResendChannel_Errors(t *testing.T) {
	tests := []struct {
		status    int
		wantCode  string
		transient bool
	}{
		{http.StatusUnauthorized, ErrorCodeAuthFailed, false},
		{http.StatusUnprocessableEntity, ErrorCodeInvalidRecipient, false},
		{http.StatusTooManyRequests, ErrorCodeRateLimited, true},
		{http.StatusBadGateway, ErrorCodeServerError, true},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"name":"error","message":"nope"}`))
			}))
			defer server.Close()

			ch := NewResendChannel(&config.EmailConfig{ResendAPIKey: "k", Sender: "a@b.co", ResendEndpoint: server.URL})
			err := ch.Send(context.Background(), &Message{To: "s@example.com"})

			var de *Error
			if !errors.As(err, &de) {
				t.Fatalf("err = %v, want *Error", err)
			}
			if de.Code != tt.wantCode || de.StatusCode != tt.status || de.Message != "nope" {
				t.Errorf("error = %+v", de)
			}
			if IsTransient(err) != tt.transient {
				t.Errorf("IsTransient = %v, want %v", IsTransient(err), tt.transient)
			}
		})
	}
}

func TestResendChannel_InvalidRecipient(t *testing.T) {
	ch := NewResendChannel(&config.EmailConfig{ResendAPIKey: "k", Sender: "a@b.co", ResendEndpoint: "http://127.0.0.1:1"})
	err := ch.Send(context.Background(), &Message{To: "bogus"})
	var de *Error
	if !errors.As(err, &de) || de.Code != ErrorCodeInvalidRecipient {
		t.Errorf("err = %v, want INVALID_RECIPIENT", err)
	}
}

func TestSMTPChannel_ConnectionFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	_ = ln.Close()

	ch := NewSMTPChannel(&config.EmailConfig{
		SMTPHost: "127.0.0.1",
		SMTPPort: addr.Port,
		Sender:   "bot@cf.dev",
		Timeout:  time.Second,
	})
	err = ch.Send(context.Background(), &Message{To: "s@example.com", Subject: "x", HTML: "y"})
	var de *Error
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if de.Code != ErrorCodeConnectionFailed {
		t.Errorf("Code = %s, want %s", de.Code, ErrorCodeConnectionFailed)
	}
}

func TestSMTPChannel_BuildMessage(t *testing.T) {
	ch := NewSMTPChannel(&config.EmailConfig{Sender: "bot@cf.dev"})
	msg := ch.buildMessage(&Message{To: "s@example.com", Subject: "Codeforces misses you!", HTML: "<p>Hi</p>"})

	for _, want := range []string{
		"From: bot@cf.dev\r\n",
		"To: s@example.com\r\n",
		"Subject: Codeforces misses you!\r\n",
		"Content-Type: text/html; charset=UTF-8\r\n",
		"\r\n\r\n<p>Hi</p>",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestLogChannel(t *testing.T) {
	ch := NewLogChannel()
	if err := ch.Send(context.Background(), &Message{To: "s@example.com"}); err != nil {
		t.Errorf("Send: %v", err)
	}
	if err := ch.Send(context.Background(), &Message{To: ""}); err == nil {
		t.Error("expected error for empty recipient")
	}
}
