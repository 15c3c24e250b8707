// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package delivery

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/tomtom215/cftracker/internal/config"
)

// SMTPChannel sends through an SMTP relay.
type SMTPChannel struct {
	host     string
	port     int
	username string
	password string
	sender   string
	useTLS   bool
	timeout  time.Duration
}

// NewSMTPChannel builds an SMTP channel from cfg.
func NewSMTPChannel(cfg *config.EmailConfig) *SMTPChannel {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SMTPChannel{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		sender:   cfg.Sender,
		useTLS:   cfg.SMTPTLS,
		timeout:  timeout,
	}
}

// Name implements Channel.
func (c *SMTPChannel) Name() string { return "smtp" }

// Validate implements Channel.
func (c *SMTPChannel) Validate() error {
	if c.host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if c.port <= 0 || c.port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", c.port)
	}
	if c.sender == "" {
		return fmt.Errorf("sender address is required")
	}
	return nil
}

// Send implements Channel.
func (c *SMTPChannel) Send(ctx context.Context, msg *Message) error {
	if err := ValidateEmail(msg.To); err != nil {
		return newError(ErrorCodeInvalidRecipient, err)
	}
	if err := c.send(ctx, msg.To, c.buildMessage(msg)); err != nil {
		return newError(classifySMTPError(err), err)
	}
	return nil
}

func (c *SMTPChannel) buildMessage(msg *Message) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", c.sender))
	b.WriteString(fmt.Sprintf("To: %s\r\n", msg.To))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	b.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return b.String()
}

func (c *SMTPChannel) send(ctx context.Context, to, msg string) error {
	addr := net.JoinHostPort(c.host, fmt.Sprintf("%d", c.port))

	dialer := &net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(c.timeout))
	}

	client, err := smtp.NewClient(conn, c.host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if c.useTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			tlsConfig := &tls.Config{
				ServerName: c.host,
				MinVersion: tls.VersionTLS12,
			}
			if err := client.StartTLS(tlsConfig); err != nil {
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}

	if c.username != "" && c.password != "" {
		auth := smtp.PlainAuth("", c.username, c.password, c.host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(c.sender); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}
	if _, err := writer.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	// The message is accepted once Data is closed; a failed QUIT is ignored.
	_ = client.Quit()
	return nil
}

func classifySMTPError(err error) string {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "authentication"):
		return ErrorCodeAuthFailed
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline"):
		return ErrorCodeTimeout
	case strings.Contains(errStr, "connect"):
		return ErrorCodeConnectionFailed
	case strings.Contains(errStr, "recipient") || strings.Contains(errStr, "mailbox"):
		return ErrorCodeRecipientNotFound
	default:
		return ErrorCodeUnknown
	}
}
