package cancellation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"turfbook/internal/bookings"
)

func TestDecideRefund(t *testing.T) {
	tests := []struct {
		name    string
		payment *bookings.Payment
		want    RefundOutcome
	}{
		{"no payment row", nil, RefundNoPayment},
		{"completed card", &bookings.Payment{Status: bookings.PaymentRecordCompleted, Method: "credit_card"}, RefundPerformed},
		{"completed cash", &bookings.Payment{Status: bookings.PaymentRecordCompleted, Method: "cash"}, RefundCashOffline},
		// cash is checked before status: money may have changed hands at the ground
		{"pending cash", &bookings.Payment{Status: bookings.PaymentRecordPending, Method: "Cash"}, RefundCashOffline},
		{"pending card", &bookings.Payment{Status: bookings.PaymentRecordPending, Method: "credit_card"}, RefundNoPayment},
		{"already refunded", &bookings.Payment{Status: bookings.PaymentRecordRefunded, Method: "gopay"}, RefundManual},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecideRefund(tt.payment)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want == RefundPerformed, got.Refunded())
		})
	}
}

func TestEmailLineWording(t *testing.T) {
	assert.Contains(t, RefundPerformed.EmailLine(1500), "1500.00 has been refunded")
	assert.Contains(t, RefundCashOffline.EmailLine(0), "cash")
	assert.Contains(t, RefundNoPayment.EmailLine(0), "No payment was captured")
	assert.Contains(t, RefundManual.EmailLine(0), "contact you")
}
