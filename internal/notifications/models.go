package notifications

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Notification is the in-app message shown to a user. Rows are append-only
// apart from the read flag.
type Notification struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;index:idx_notifications_user_read"`
	BookingID *int64    `json:"booking_id,omitempty" gorm:"index"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	IsRead    bool      `json:"is_read" gorm:"not null;default:false;index:idx_notifications_user_read"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationType string

const (
	NotificationTypeBookingRequested NotificationType = "BOOKING_REQUESTED"
	NotificationTypeBookingApproved  NotificationType = "BOOKING_APPROVED"
	NotificationTypeBookingRejected  NotificationType = "BOOKING_REJECTED"
	NotificationTypeBookingConfirmed NotificationType = "BOOKING_CONFIRMED"
	NotificationTypeBookingCancelled NotificationType = "BOOKING_CANCELLED"
	NotificationTypeBookingExpired   NotificationType = "BOOKING_EXPIRED"
	NotificationTypePaymentReceived  NotificationType = "PAYMENT_RECEIVED"
	NotificationTypeRatingReceived   NotificationType = "RATING_RECEIVED"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusQueued  NotificationStatus = "QUEUED"
	NotificationStatusSending NotificationStatus = "SENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// EmailNotification is one outgoing email travelling through the outbox.
type EmailNotification struct {
	ID   uuid.UUID        `json:"id"`
	Type NotificationType `json:"type"`

	RecipientID    int64  `json:"recipient_id"`
	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name"`

	Subject string `json:"subject"`
	Body    string `json:"body"`

	BookingID *int64 `json:"booking_id,omitempty"`

	Status     NotificationStatus `json:"status"`
	RetryCount int                `json:"retry_count"`
	LastError  *string            `json:"last_error,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	SentAt     *time.Time         `json:"sent_at,omitempty"`
}

var ErrMissingRecipient = errors.New("notification has no recipient email")

type NotificationBuilder struct {
	notification *EmailNotification
}

func NewNotificationBuilder() *NotificationBuilder {
	now := time.Now()
	return &NotificationBuilder{
		notification: &EmailNotification{
			ID:        uuid.New(),
			Status:    NotificationStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func (nb *NotificationBuilder) WithType(notType NotificationType) *NotificationBuilder {
	nb.notification.Type = notType
	return nb
}

func (nb *NotificationBuilder) WithRecipient(userID int64, email, name string) *NotificationBuilder {
	nb.notification.RecipientID = userID
	nb.notification.RecipientEmail = email
	nb.notification.RecipientName = name
	return nb
}

func (nb *NotificationBuilder) WithContent(subject, body string) *NotificationBuilder {
	nb.notification.Subject = subject
	nb.notification.Body = body
	return nb
}

func (nb *NotificationBuilder) WithBookingContext(bookingID int64) *NotificationBuilder {
	nb.notification.BookingID = &bookingID
	return nb
}

func (nb *NotificationBuilder) Build() *EmailNotification {
	return nb.notification
}

func (en *EmailNotification) Validate() error {
	if en.RecipientEmail == "" {
		return ErrMissingRecipient
	}
	if en.Subject == "" {
		return errors.New("notification has no subject")
	}
	return nil
}

// GetPartitionKey keeps every email for one recipient on the same partition.
func (en *EmailNotification) GetPartitionKey() string {
	return strconv.FormatInt(en.RecipientID, 10)
}

func (en *EmailNotification) ToJSON() ([]byte, error) {
	return json.Marshal(en)
}

func (en *EmailNotification) MarkSent() {
	now := time.Now()
	en.Status = NotificationStatusSent
	en.SentAt = &now
	en.UpdatedAt = now
}

func (en *EmailNotification) MarkFailed(err error) {
	en.Status = NotificationStatusFailed
	en.UpdatedAt = time.Now()

	errorStr := err.Error()
	en.LastError = &errorStr
}
