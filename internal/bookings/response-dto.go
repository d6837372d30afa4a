package bookings

import "time"

type BookingListResponse struct {
	Bookings   []Booking `json:"bookings"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}

// BookingDetail adds the payment deadline while the booking awaits payment.
type BookingDetail struct {
	Booking
	PaymentDeadline *time.Time `json:"payment_deadline,omitempty"`
}
