package bookings

import (
	"math"
	"strings"
	"time"

	"turfbook/internal/shared/apperror"
)

// MaxReasonLength bounds stored cancellation and rejection reasons.
const MaxReasonLength = 1000

// Booking is one reservation of a turf for a time range on a date. Rows are
// never deleted; cancellation and rejection are status changes.
type Booking struct {
	ID                 int64         `json:"id" gorm:"primaryKey"`
	TurfID             int64         `json:"turf_id" gorm:"not null;index:idx_bookings_turf_date"`
	OrganizerID        int64         `json:"organizer_id" gorm:"not null;index"`
	Date               time.Time     `json:"date" gorm:"type:date;not null;index:idx_bookings_turf_date"`
	StartTime          time.Time     `json:"start_time" gorm:"not null"`
	EndTime            time.Time     `json:"end_time" gorm:"not null"`
	TotalCost          float64       `json:"total_cost" gorm:"type:decimal(10,2);not null"`
	Status             Status        `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentStatus      PaymentStatus `json:"payment_status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CancellationReason *string       `json:"cancellation_reason,omitempty" gorm:"type:text"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`

	Payments []Payment `json:"payments,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:RESTRICT;"`
}

// Payment is one payment attempt. The row with the highest id is the
// authoritative one for its booking.
type Payment struct {
	ID             int64               `json:"id" gorm:"primaryKey"`
	BookingID      int64               `json:"booking_id" gorm:"not null;index"`
	Amount         float64             `json:"amount" gorm:"type:decimal(10,2);not null"`
	Status         PaymentRecordStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	Method         string              `json:"payment_method" gorm:"type:varchar(50);not null"`
	Reference      *string             `json:"reference,omitempty" gorm:"type:varchar(100);uniqueIndex:idx_payments_reference"`
	TransactionID  *string             `json:"transaction_id,omitempty" gorm:"type:varchar(100);uniqueIndex:idx_payments_transaction_id"`
	IdempotencyKey *string             `json:"-" gorm:"type:varchar(100);uniqueIndex"`
	ProcessedAt    *time.Time          `json:"processed_at,omitempty"`
	RefundedAt     *time.Time          `json:"refunded_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// Cancellation is the audit record written next to every cancellation.
type Cancellation struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	BookingID   int64     `json:"booking_id" gorm:"not null;uniqueIndex"`
	CancelledBy *int64    `json:"cancelled_by,omitempty"`
	Source      string    `json:"source" gorm:"type:varchar(20);not null"` // owner or expiry
	Reason      string    `json:"reason" gorm:"type:text;not null"`
	Refund      string    `json:"refund" gorm:"type:varchar(30);not null"`
	CreatedAt   time.Time `json:"created_at"`
}

const (
	CancellationSourceOwner  = "owner"
	CancellationSourceExpiry = "expiry"
)

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// TableName sets the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

func (Cancellation) TableName() string {
	return "booking_cancellations"
}

// Approve moves a pending request to approved; payment is due from here on.
func (b *Booking) Approve() error {
	if err := b.Status.checkTransition(StatusApproved); err != nil {
		return err
	}
	b.Status = StatusApproved
	return nil
}

func (b *Booking) Reject(reason string) error {
	if err := b.Status.checkTransition(StatusRejected); err != nil {
		return err
	}
	b.Status = StatusRejected
	b.setReason(reason)
	return nil
}

func (b *Booking) Cancel(reason string) error {
	if err := b.Status.checkTransition(StatusCancelled); err != nil {
		return err
	}
	b.Status = StatusCancelled
	b.setReason(reason)
	return nil
}

// AwaitingPayment reports whether a gateway or cash payment may be accepted.
func (b *Booking) AwaitingPayment() bool {
	return b.Status == StatusApproved && b.PaymentStatus == PaymentStatusPending
}

// ConfirmPaid records a verified online payment.
func (b *Booking) ConfirmPaid() error {
	if !b.AwaitingPayment() {
		return apperror.New(apperror.KindInvalidOrAlreadyPaid, "Booking is not awaiting payment")
	}
	b.Status = StatusConfirmed
	b.PaymentStatus = PaymentStatusPaid
	return nil
}

// ConfirmCash confirms the booking on a promise of cash at the venue. The
// payment status stays pending until settled offline.
func (b *Booking) ConfirmCash() error {
	if !b.AwaitingPayment() {
		return apperror.New(apperror.KindInvalidOrAlreadyPaid, "Booking is not awaiting payment")
	}
	b.Status = StatusConfirmed
	return nil
}

// PaymentDeadline is the earlier of the start time and created_at + window.
func (b *Booking) PaymentDeadline(window time.Duration) time.Time {
	deadline := b.CreatedAt.Add(window)
	if b.StartTime.Before(deadline) {
		return b.StartTime
	}
	return deadline
}

// IsPaymentOverdue reports whether the sweeper should cancel this booking.
func (b *Booking) IsPaymentOverdue(now time.Time, window time.Duration) bool {
	return b.AwaitingPayment() && !now.Before(b.PaymentDeadline(window))
}

func (b *Booking) HasStarted(now time.Time) bool {
	return !now.Before(b.StartTime)
}

// Overlaps uses half-open ranges: touching bookings do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return start.Before(b.EndTime) && end.After(b.StartTime)
}

func (b *Booking) setReason(reason string) {
	r := TruncateReason(reason)
	b.CancellationReason = &r
}

// TruncateReason trims whitespace and caps the reason at MaxReasonLength characters.
func TruncateReason(reason string) string {
	r := strings.TrimSpace(reason)
	runes := []rune(r)
	if len(runes) > MaxReasonLength {
		r = string(runes[:MaxReasonLength])
	}
	return r
}

// IsCash reports whether the payment was promised in cash
func (p *Payment) IsCash() bool {
	return strings.EqualFold(p.Method, PaymentMethodCash)
}

// MarkCompleted records a verified gateway payment on this row
func (p *Payment) MarkCompleted(method, reference, transactionID string, at time.Time) {
	p.Status = PaymentRecordCompleted
	p.Method = method
	p.Reference = &reference
	p.TransactionID = &transactionID
	p.ProcessedAt = &at
}

func (p *Payment) MarkRefunded(at time.Time) {
	p.Status = PaymentRecordRefunded
	p.RefundedAt = &at
}

// RoundMoney rounds to whole cents.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// AmountsMatch compares money within one cent.
func AmountsMatch(a, b float64) bool {
	return math.Abs(a-b) <= 0.01+1e-9
}
