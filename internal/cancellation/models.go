package cancellation

import (
	"fmt"

	"turfbook/internal/bookings"
)

// RefundOutcome records what happened to the money when a booking was cancelled.
type RefundOutcome string

const (
	// RefundPerformed: a completed online payment was marked refunded.
	RefundPerformed RefundOutcome = "refund_performed"
	// RefundCashOffline: cash is settled at the venue, the payment row is untouched.
	RefundCashOffline RefundOutcome = "cash_offline"
	// RefundNoPayment: nothing was captured, nothing to refund.
	RefundNoPayment RefundOutcome = "no_payment"
	// RefundManual: the payment looks settled but no refund was recorded.
	RefundManual RefundOutcome = "manual_review"
)

// DecideRefund picks the refund action from the latest payment row, which
// may be nil when the booking was never paid.
func DecideRefund(latest *bookings.Payment) RefundOutcome {
	switch {
	case latest == nil:
		return RefundNoPayment
	case latest.IsCash():
		return RefundCashOffline
	case latest.Status == bookings.PaymentRecordCompleted:
		return RefundPerformed
	case latest.Status == bookings.PaymentRecordPending:
		return RefundNoPayment
	default:
		return RefundManual
	}
}

// Refunded reports whether the payment row was moved to refunded.
func (o RefundOutcome) Refunded() bool {
	return o == RefundPerformed
}

// EmailLine is the refund sentence of the cancellation email.
func (o RefundOutcome) EmailLine(amount float64) string {
	switch o {
	case RefundPerformed:
		return fmt.Sprintf("Your payment of %.2f has been refunded to your original payment method.", amount)
	case RefundCashOffline:
		return "You chose to pay in cash, so no online refund applies. Please settle any amount paid directly with the turf owner."
	case RefundNoPayment:
		return "No payment was captured for this booking, so there is nothing to refund."
	default:
		return "Our team will review your payment and contact you about a refund."
	}
}

// Result is returned to the owner after a successful cancellation.
type Result struct {
	Booking   bookings.Booking `json:"booking"`
	Refund    RefundOutcome    `json:"refund"`
	Refunded  bool             `json:"refunded"`
	EmailSent bool             `json:"email_sent"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}
