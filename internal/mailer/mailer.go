// Package mailer delivers outbound email.  The registration flow is its only
// caller; delivery is attempted once and failures are returned, never retried.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Message is a single plain-text + HTML email.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender dispatches a message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SMTPSender sends through an SMTP relay.  Port 465 uses implicit TLS;
// other ports negotiate STARTTLS when the server offers it.
type SMTPSender struct {
	dialer *gomail.Dialer
}

func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	return &SMTPSender{dialer: gomail.NewDialer(host, port, username, password)}
}

// Send builds a multipart/alternative message and delivers it.  The SMTP
// exchange itself cannot be interrupted; ctx only bounds how long the
// caller waits for it.
func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	msg := buildMessage(m)
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(msg) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", m.To, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMessage(m Message) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", sanitizeHeader(m.From))
	msg.SetHeader("To", sanitizeHeader(m.To))
	msg.SetHeader("Subject", sanitizeHeader(m.Subject))
	msg.SetBody("text/plain", m.Text)
	if m.HTML != "" {
		msg.AddAlternative("text/html", m.HTML)
	}
	return msg
}

func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(strings.TrimSpace(s))
}

// LogSender writes messages to the log instead of sending them.  It is used
// when no SMTP relay is configured.
type LogSender struct {
	Log *zap.Logger
}

func (s LogSender) Send(_ context.Context, m Message) error {
	s.Log.Info("mock email", zap.String("to", m.To), zap.String("subject", m.Subject), zap.String("body", m.Text))
	return nil
}
