package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turfbook/internal/shared/apperror"
)

type flakySender struct {
	failures int
	calls    int
}

func (f *flakySender) Send(_ context.Context, _, _, _ string) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("smtp: 421 try again later")
	}
	return nil
}

func testEmail() *EmailNotification {
	return NewNotificationBuilder().
		WithType(NotificationTypeBookingCancelled).
		WithRecipient(5, "captain@example.com", "Captain").
		WithContent("Booking cancelled", "Your booking was cancelled").
		WithBookingContext(42).
		Build()
}

func TestDirectOutboxRetriesUntilSent(t *testing.T) {
	sender := &flakySender{failures: 2}
	outbox := NewDirectOutbox(sender, RetryPolicy{MaxRetries: 2, Backoff: time.Millisecond})
	email := testEmail()

	require.NoError(t, outbox.Enqueue(context.Background(), email))
	assert.Equal(t, 3, sender.calls)
	assert.Equal(t, NotificationStatusSent, email.Status)
	assert.NotNil(t, email.SentAt)
}

func TestDirectOutboxGivesUp(t *testing.T) {
	sender := &flakySender{failures: 10}
	outbox := NewDirectOutbox(sender, RetryPolicy{MaxRetries: 1, Backoff: time.Millisecond})
	email := testEmail()

	err := outbox.Enqueue(context.Background(), email)
	require.Error(t, err)
	assert.Equal(t, 2, sender.calls)
	assert.Equal(t, NotificationStatusFailed, email.Status)
	require.NotNil(t, email.LastError)
}

func TestDirectOutboxRejectsMissingRecipient(t *testing.T) {
	sender := &flakySender{}
	outbox := NewDirectOutbox(sender, DefaultRetryPolicy())
	email := NewNotificationBuilder().WithContent("Hi", "there").Build()

	err := outbox.Enqueue(context.Background(), email)
	assert.ErrorIs(t, err, ErrMissingRecipient)
	assert.Zero(t, sender.calls)
}

func TestDeliverSwallowsFailure(t *testing.T) {
	mock := NewMockEmailSender()
	mock.Fail = errors.New("connection refused")
	outbox := NewDirectOutbox(mock, RetryPolicy{MaxRetries: 0})

	err := Deliver(context.Background(), outbox, testEmail())
	assert.True(t, errors.Is(err, apperror.ErrNotificationFailed))

	mock.Fail = nil
	require.NoError(t, Deliver(context.Background(), outbox, testEmail()))
	sent := mock.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "captain@example.com", sent[0].To)
}

func TestDeliverNilOutbox(t *testing.T) {
	assert.NoError(t, Deliver(context.Background(), nil, testEmail()))
}
