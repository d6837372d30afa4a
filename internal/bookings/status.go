package bookings

import (
	"fmt"

	"turfbook/internal/shared/apperror"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
)

// allowedTransitions lists every legal status move. Cancelled and rejected
// have no entry: they are terminal.
var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:  {StatusConfirmed, StatusCancelled, StatusRejected},
	StatusConfirmed: {StatusCancelled},
}

// IsValid checks if the booking status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusConfirmed, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsFinal reports whether no further transition is possible
func (s Status) IsFinal() bool {
	return s == StatusCancelled || s == StatusRejected
}

// Occupies reports whether the booking holds its time range against others
func (s Status) Occupies() bool {
	return s == StatusApproved || s == StatusConfirmed
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// checkTransition returns AlreadyFinalized for terminal states and Conflict
// for any other illegal move.
func (s Status) checkTransition(next Status) error {
	if s.IsFinal() {
		return apperror.New(apperror.KindAlreadyFinalized, fmt.Sprintf("Booking is already %s", s))
	}
	if !s.CanTransitionTo(next) {
		return apperror.New(apperror.KindConflict, fmt.Sprintf("Booking cannot move from %s to %s", s, next))
	}
	return nil
}

// PaymentStatus is the payment state recorded on the booking itself.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

// PaymentRecordStatus is the state of one payment row.
type PaymentRecordStatus string

const (
	PaymentRecordPending   PaymentRecordStatus = "pending"
	PaymentRecordCompleted PaymentRecordStatus = "completed"
	PaymentRecordRefunded  PaymentRecordStatus = "refunded"
)

const PaymentMethodCash = "cash"
