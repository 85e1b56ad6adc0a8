// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// sendMail delivers a composed message over SMTP. Package-level var for
// test substitution.
var sendMail = smtp.SendMail

// EmailNotifier sends the full digest as a plain-text email.
type EmailNotifier struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       []string
}

// Name implements Notifier.
func (e *EmailNotifier) Name() string {
	return "email"
}

// Send composes and delivers the digest email. Authentication is used
// only when a user is configured, so unauthenticated relays work too.
func (e *EmailNotifier) Send(ctx context.Context, d Digest) error {
	if e.Host == "" {
		return fmt.Errorf("SMTP host not configured")
	}
	if e.From == "" || len(e.To) == 0 {
		return fmt.Errorf("email sender and recipients not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	port := e.Port
	if port == 0 {
		port = 587
	}
	addr := fmt.Sprintf("%s:%d", e.Host, port)

	var auth smtp.Auth
	if e.User != "" {
		auth = smtp.PlainAuth("", e.User, e.Password, e.Host)
	}

	msg := composeMessage(e.From, e.To, fmt.Sprintf("Weekly Digest — %s", d.Date), d.Markdown)
	if err := sendMail(addr, auth, e.From, e.To, msg); err != nil {
		return fmt.Errorf("sending digest email: %w", err)
	}
	return nil
}

// composeMessage builds an RFC 5322 message with CRLF line endings.
func composeMessage(from string, to []string, subject, body string) []byte {
	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(sb.String())
}
