// Package apperror defines the error taxonomy shared by the booking services.
// Services return *Error values; controllers translate the kind into an HTTP
// status and expose only the human-readable message.
package apperror

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindInvalidInput         Kind = "INVALID_INPUT"
	KindUnauthorized         Kind = "UNAUTHORIZED"
	KindNotFound             Kind = "NOT_FOUND"
	KindAlreadyFinalized     Kind = "ALREADY_FINALIZED"
	KindPastDeadline         Kind = "PAST_DEADLINE"
	KindMissingReason        Kind = "MISSING_REASON"
	KindVerificationFailed   Kind = "VERIFICATION_FAILED"
	KindTransactionFailed    Kind = "TRANSACTION_FAILED"
	KindNotificationFailed   Kind = "NOTIFICATION_FAILED"
	KindInvalidOrAlreadyPaid Kind = "INVALID_OR_ALREADY_PAID"
	KindInvalidRating        Kind = "INVALID_RATING"
	KindConflict             Kind = "CONFLICT"
	KindInternal             Kind = "INTERNAL"
)

// Error is a classified failure. Message is safe to show to the caller, Err
// carries the internal cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Sentinels for errors.Is checks. Matching compares the kind only.
var (
	ErrInvalidInput         = &Error{Kind: KindInvalidInput}
	ErrUnauthorized         = &Error{Kind: KindUnauthorized}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrAlreadyFinalized     = &Error{Kind: KindAlreadyFinalized}
	ErrPastDeadline         = &Error{Kind: KindPastDeadline}
	ErrMissingReason        = &Error{Kind: KindMissingReason}
	ErrVerificationFailed   = &Error{Kind: KindVerificationFailed}
	ErrTransactionFailed    = &Error{Kind: KindTransactionFailed}
	ErrNotificationFailed   = &Error{Kind: KindNotificationFailed}
	ErrInvalidOrAlreadyPaid = &Error{Kind: KindInvalidOrAlreadyPaid}
	ErrInvalidRating        = &Error{Kind: KindInvalidRating}
	ErrConflict             = &Error{Kind: KindConflict}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// PublicMessage returns a message that may be shown to end users.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "Something went wrong, please try again"
}

// HTTPStatus maps a kind onto the response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidInput, KindMissingReason, KindInvalidRating:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindAlreadyFinalized, KindConflict, KindInvalidOrAlreadyPaid:
		return http.StatusConflict
	case KindPastDeadline:
		return http.StatusUnprocessableEntity
	case KindVerificationFailed:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}
