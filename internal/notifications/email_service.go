package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"turfbook/pkg/logger"

	"gopkg.in/gomail.v2"
)

// EmailSender delivers a single plain-text email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

func (c *SMTPConfig) validate() error {
	if c == nil {
		return fmt.Errorf("SMTP config is nil")
	}
	if c.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("SMTP port must be between 1 and 65535")
	}
	if c.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPEmailSender sends mail through gomail.
type SMTPEmailSender struct {
	config *SMTPConfig
	dialer dialer
}

func NewSMTPEmailSender(config *SMTPConfig) (*SMTPEmailSender, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &SMTPEmailSender{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}, nil
}

func (s *SMTPEmailSender) Send(ctx context.Context, to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.config.FromEmail, s.config.FromName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	// gomail has no context support; the send keeps running if we give up on it.
	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sending email to %s: %w", to, ctx.Err())
	}
}

// SentEmail is one message captured by MockEmailSender.
type SentEmail struct {
	To      string
	Subject string
	Body    string
}

// MockEmailSender logs instead of sending. Used for local development and tests.
type MockEmailSender struct {
	mu   sync.Mutex
	sent []SentEmail
	Fail error
}

func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{}
}

func (m *MockEmailSender) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.sent = append(m.sent, SentEmail{To: to, Subject: subject, Body: body})
	logger.GetDefault().DebugWithContext(ctx, "Mock email sent", map[string]interface{}{
		"to":      to,
		"subject": subject,
	})
	return nil
}

func (m *MockEmailSender) Sent() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentEmail, len(m.sent))
	copy(out, m.sent)
	return out
}
