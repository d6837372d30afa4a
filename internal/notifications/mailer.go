package notifications

import (
	"context"

	"turfbook/internal/shared/apperror"
	"turfbook/internal/users"
	"turfbook/pkg/logger"
)

// UserDirectory resolves the address an email goes to.
type UserDirectory interface {
	GetUser(ctx context.Context, id int64) (*users.User, error)
}

// Mailer addresses emails by user id and hands them to the outbox. It is
// only called after the data an email describes has been committed.
type Mailer struct {
	users  UserDirectory
	outbox Outbox
}

func NewMailer(directory UserDirectory, outbox Outbox) *Mailer {
	return &Mailer{users: directory, outbox: outbox}
}

// Notify emails userID about bookingID. A failure is logged and returned as
// NotificationFailed; callers must not undo committed work because of it.
func (m *Mailer) Notify(ctx context.Context, userID int64, notificationType NotificationType, bookingID int64, subject, body string) error {
	if m == nil || m.outbox == nil {
		return nil
	}

	user, err := m.users.GetUser(ctx, userID)
	if err != nil {
		logger.GetDefault().LogNotificationFailed(ctx, "", subject, err)
		return apperror.Wrap(apperror.KindNotificationFailed, "Notification email could not be sent", err)
	}

	email := NewNotificationBuilder().
		WithType(notificationType).
		WithRecipient(user.ID, user.Email, user.Name).
		WithContent(subject, body).
		WithBookingContext(bookingID).
		Build()

	return Deliver(ctx, m.outbox, email)
}

// NewInApp builds the notification row written inside a booking transaction.
func NewInApp(userID, bookingID int64, message string) *Notification {
	return &Notification{UserID: userID, BookingID: &bookingID, Message: message}
}
