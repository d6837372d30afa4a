package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turfbook/internal/shared/apperror"
	"turfbook/internal/users"
)

type staticDirectory map[int64]*users.User

func (d staticDirectory) GetUser(_ context.Context, id int64) (*users.User, error) {
	if u, ok := d[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

func TestMailerNotify(t *testing.T) {
	sender := NewMockEmailSender()
	mailer := NewMailer(staticDirectory{
		3: {ID: 3, Name: "Ravi", Email: "ravi@example.com"},
	}, NewDirectOutbox(sender, RetryPolicy{}))

	err := mailer.Notify(context.Background(), 3, NotificationTypeBookingApproved, 11, "Booking approved", "See you on the pitch")
	require.NoError(t, err)

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ravi@example.com", sent[0].To)
	assert.Equal(t, "Booking approved", sent[0].Subject)
}

func TestMailerUnknownUser(t *testing.T) {
	sender := NewMockEmailSender()
	mailer := NewMailer(staticDirectory{}, NewDirectOutbox(sender, RetryPolicy{}))

	err := mailer.Notify(context.Background(), 99, NotificationTypeBookingApproved, 1, "s", "b")
	assert.ErrorIs(t, err, apperror.ErrNotificationFailed)
	assert.Empty(t, sender.Sent())
}

func TestNilMailerIsSilent(t *testing.T) {
	var mailer *Mailer
	assert.NoError(t, mailer.Notify(context.Background(), 1, NotificationTypeBookingApproved, 1, "s", "b"))
}

func TestNewInApp(t *testing.T) {
	n := NewInApp(4, 9, "Your booking was approved")
	require.NotNil(t, n.BookingID)
	assert.Equal(t, int64(9), *n.BookingID)
	assert.False(t, n.IsRead)
}
