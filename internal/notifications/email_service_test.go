package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	messages []*gomail.Message
	err      error
	delay    time.Duration
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.messages = append(f.messages, m...)
	return f.err
}

func TestNewSMTPEmailSenderValidates(t *testing.T) {
	_, err := NewSMTPEmailSender(&SMTPConfig{Port: 587, FromEmail: "noreply@turfbook.app"})
	assert.Error(t, err)

	sender, err := NewSMTPEmailSender(&SMTPConfig{Host: "smtp.example.com", Port: 587, FromEmail: "noreply@turfbook.app"})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, sender.config.Timeout)
}

func TestSMTPEmailSenderSend(t *testing.T) {
	d := &fakeDialer{}
	sender := &SMTPEmailSender{
		config: &SMTPConfig{Host: "smtp.example.com", Port: 587, FromEmail: "noreply@turfbook.app", FromName: "Turfbook", Timeout: time.Second},
		dialer: d,
	}

	require.NoError(t, sender.Send(context.Background(), "captain@example.com", "Booking approved", "See you on the pitch"))
	require.Len(t, d.messages, 1)
	assert.Equal(t, []string{"captain@example.com"}, d.messages[0].GetHeader("To"))
	assert.Equal(t, []string{"Booking approved"}, d.messages[0].GetHeader("Subject"))
}

func TestSMTPEmailSenderErrors(t *testing.T) {
	d := &fakeDialer{err: errors.New("535 auth failed")}
	sender := &SMTPEmailSender{
		config: &SMTPConfig{FromEmail: "noreply@turfbook.app", Timeout: time.Second},
		dialer: d,
	}
	assert.Error(t, sender.Send(context.Background(), "a@b.c", "s", "b"))

	slow := &SMTPEmailSender{
		config: &SMTPConfig{FromEmail: "noreply@turfbook.app", Timeout: 10 * time.Millisecond},
		dialer: &fakeDialer{delay: 200 * time.Millisecond},
	}
	err := slow.Send(context.Background(), "a@b.c", "s", "b")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
