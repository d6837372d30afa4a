package payments

import "turfbook/internal/bookings"

type ReconcileRequest struct {
	Reference      string `json:"reference" binding:"required,max=100"`
	IdempotencyKey string `json:"-"`
}

// Receipt is returned after a successful reconciliation.
type Receipt struct {
	Booking   bookings.Booking `json:"booking"`
	Payment   bookings.Payment `json:"payment"`
	EmailSent bool             `json:"email_sent"`
}
