package notifications

import (
	"context"
	"fmt"
	"time"

	"turfbook/internal/shared/apperror"
	"turfbook/pkg/logger"
)

// Outbox accepts emails once the data they describe has been committed.
// Delivery is best-effort and never feeds back into the committed state.
type Outbox interface {
	Enqueue(ctx context.Context, email *EmailNotification) error
}

// RetryPolicy controls how many times a send is attempted.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, Backoff: 500 * time.Millisecond}
}

// DirectOutbox sends through an EmailSender on the caller's goroutine.
type DirectOutbox struct {
	sender EmailSender
	policy RetryPolicy
}

func NewDirectOutbox(sender EmailSender, policy RetryPolicy) *DirectOutbox {
	return &DirectOutbox{sender: sender, policy: policy}
}

func (o *DirectOutbox) Enqueue(ctx context.Context, email *EmailNotification) error {
	if err := email.Validate(); err != nil {
		return err
	}
	email.Status = NotificationStatusSending
	if err := sendWithRetry(ctx, o.sender, email, o.policy); err != nil {
		email.MarkFailed(err)
		return err
	}
	email.MarkSent()
	return nil
}

// sendWithRetry retries with exponential backoff
func sendWithRetry(ctx context.Context, sender EmailSender, email *EmailNotification, policy RetryPolicy) error {
	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		lastErr = sender.Send(ctx, email.RecipientEmail, email.Subject, email.Body)
		if lastErr == nil {
			return nil
		}
		email.RetryCount = attempt + 1
		if attempt == policy.MaxRetries {
			break
		}

		delay := policy.Backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("email delivery failed after %d attempts: %w", policy.MaxRetries+1, lastErr)
}

// Deliver hands an email to the outbox and swallows the failure after logging
// it. The returned error is NotificationFailed so callers can surface a note
// without treating the operation as failed.
func Deliver(ctx context.Context, outbox Outbox, email *EmailNotification) error {
	if outbox == nil || email == nil {
		return nil
	}
	if err := outbox.Enqueue(ctx, email); err != nil {
		logger.GetDefault().LogNotificationFailed(ctx, email.RecipientEmail, email.Subject, err)
		return apperror.Wrap(apperror.KindNotificationFailed, "Notification email could not be sent", err)
	}
	return nil
}
