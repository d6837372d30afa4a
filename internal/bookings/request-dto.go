package bookings

import "time"

type CreateBookingRequest struct {
	TurfID    int64  `json:"turf_id" binding:"required,min=1"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" binding:"required,datetime=15:04"`
	EndTime   string `json:"end_time" binding:"required,datetime=15:04"`
}

type RejectBookingRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=2000"`
}

type AvailabilityQuery struct {
	Date string `form:"date" binding:"required"`
}

// BookingListQuery filters booking listings. From and To are resolved by
// the service from Date.
type BookingListQuery struct {
	Status        Status        `form:"status" binding:"omitempty,oneof=pending approved confirmed cancelled rejected"`
	PaymentStatus PaymentStatus `form:"payment_status" binding:"omitempty,oneof=pending paid refunded"`
	Date          string        `form:"date" binding:"omitempty,datetime=2006-01-02"`
	TurfID        int64         `form:"turf_id" binding:"omitempty,min=1"`
	Page          int           `form:"page,default=1" binding:"min=1"`
	Limit         int           `form:"limit,default=10" binding:"min=1,max=100"`

	From time.Time `form:"-" json:"-"`
	To   time.Time `form:"-" json:"-"`
}

func (q *BookingListQuery) normalize() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
}
