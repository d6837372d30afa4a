package cancellation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"turfbook/internal/bookings"
	"turfbook/internal/notifications"
	"turfbook/internal/shared/apperror"
	"turfbook/internal/shared/identity"
	"turfbook/internal/users"
	"turfbook/pkg/logger"
)

// Service interface defines the contract for cancellation business logic
type Service interface {
	// CancelByOwner cancels a booking on one of the caller's turfs before it starts.
	CancelByOwner(ctx context.Context, caller identity.Identity, bookingID int64, reason string) (*Result, error)
	// GetCancellation returns the audit record to the organizer or the turf owner.
	GetCancellation(ctx context.Context, caller identity.Identity, bookingID int64) (*bookings.Cancellation, error)
	ListOwnerCancellations(ctx context.Context, caller identity.Identity, limit int) ([]bookings.Cancellation, error)
}

type service struct {
	uow          bookings.UnitOfWork
	bookings     bookings.Repository
	repo         Repository
	turfs        bookings.TurfLookup
	mailer       *notifications.Mailer
	availability *bookings.AvailabilityCache
	loc          *time.Location
	now          func() time.Time
}

// NewService creates a new cancellation service instance
func NewService(uow bookings.UnitOfWork, bookingRepo bookings.Repository, repo Repository, turfLookup bookings.TurfLookup,
	mailer *notifications.Mailer, availability *bookings.AvailabilityCache, rules bookings.Rules) Service {
	s := &service{
		uow:          uow,
		bookings:     bookingRepo,
		repo:         repo,
		turfs:        turfLookup,
		mailer:       mailer,
		availability: availability,
		loc:          rules.Location,
		now:          rules.Now,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) CancelByOwner(ctx context.Context, caller identity.Identity, bookingID int64, reason string) (*Result, error) {
	if err := caller.RequireRole(users.RoleTurfOwner); err != nil {
		return nil, err
	}
	if bookingID <= 0 {
		return nil, apperror.New(apperror.KindNotFound, "Booking not found")
	}

	var (
		booking *bookings.Booking
		from    bookings.Status
		refund  RefundOutcome
		amount  float64
	)
	err := s.uow.Do(ctx, func(ctx context.Context, tx bookings.Tx) error {
		b, err := tx.Bookings.GetForOwner(ctx, bookingID, caller.UserID)
		if err != nil {
			if errors.Is(err, bookings.ErrBookingNotFound) {
				return apperror.New(apperror.KindNotFound, "Booking not found")
			}
			return err
		}
		if b.Status.IsFinal() {
			return apperror.New(apperror.KindAlreadyFinalized, fmt.Sprintf("Booking is already %s", b.Status))
		}
		if b.HasStarted(s.now()) {
			return apperror.New(apperror.KindPastDeadline, "Bookings can only be cancelled before they start")
		}
		trimmed := bookings.TruncateReason(reason)
		if trimmed == "" {
			return apperror.New(apperror.KindMissingReason, "A cancellation reason is required")
		}

		from = b.Status
		fromPayment := b.PaymentStatus
		if err := b.Cancel(trimmed); err != nil {
			return err
		}

		latest, err := tx.Bookings.LatestPayment(ctx, b.ID)
		switch {
		case errors.Is(err, bookings.ErrPaymentNotFound):
			latest = nil
		case err != nil:
			return err
		}
		refund = DecideRefund(latest)
		if refund.Refunded() {
			latest.MarkRefunded(s.now())
			if err := tx.Bookings.UpdatePayment(ctx, latest); err != nil {
				return err
			}
			b.PaymentStatus = bookings.PaymentStatusRefunded
			amount = latest.Amount
		}

		if err := tx.Bookings.SaveTransition(ctx, b, from, fromPayment); err != nil {
			return err
		}
		cancelledBy := caller.UserID
		if err := tx.Bookings.CreateCancellation(ctx, &bookings.Cancellation{
			BookingID:   b.ID,
			CancelledBy: &cancelledBy,
			Source:      bookings.CancellationSourceOwner,
			Reason:      trimmed,
			Refund:      string(refund),
		}); err != nil {
			return err
		}
		booking = b
		return tx.Notifications.Create(ctx, notifications.NewInApp(b.OrganizerID, b.ID,
			fmt.Sprintf("Your booking for %s was cancelled by the turf owner: %s", bookings.DescribeRange(b, s.loc), trimmed)))
	})
	if err != nil {
		return nil, bookings.TxError(err, "Could not cancel booking")
	}

	s.availability.Invalidate(ctx, booking)
	log := logger.GetDefault()
	log.LogBookingTransition(ctx, booking.ID, string(from), string(booking.Status))
	log.LogBookingCancelled(ctx, booking.ID, booking.TurfID, strconv.FormatInt(caller.UserID, 10), string(refund))

	emailErr := s.mailer.Notify(ctx, booking.OrganizerID, notifications.NotificationTypeBookingCancelled, booking.ID,
		"Booking cancelled by the turf owner",
		fmt.Sprintf("Your booking for %s has been cancelled.\nReason: %s\n\n%s",
			bookings.DescribeRange(booking, s.loc), *booking.CancellationReason, refund.EmailLine(amount)))

	return &Result{
		Booking:   *booking,
		Refund:    refund,
		Refunded:  refund.Refunded(),
		EmailSent: emailErr == nil,
	}, nil
}

func (s *service) GetCancellation(ctx context.Context, caller identity.Identity, bookingID int64) (*bookings.Cancellation, error) {
	if !caller.Valid() {
		return nil, apperror.New(apperror.KindUnauthorized, "You must be signed in")
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "Booking not found")
		}
		return nil, apperror.Wrap(apperror.KindInternal, "Could not load booking", err)
	}
	if !caller.IsAdmin() && b.OrganizerID != caller.UserID {
		turf, err := s.turfs.GetByID(ctx, b.TurfID)
		if err != nil || !turf.IsOwnedBy(caller.UserID) {
			return nil, apperror.New(apperror.KindNotFound, "Booking not found")
		}
	}

	c, err := s.repo.GetCancellationByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookings.ErrCancellationNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "Booking has not been cancelled")
		}
		return nil, apperror.Wrap(apperror.KindInternal, "Could not load cancellation", err)
	}
	return c, nil
}

func (s *service) ListOwnerCancellations(ctx context.Context, caller identity.Identity, limit int) ([]bookings.Cancellation, error) {
	if err := caller.RequireRole(users.RoleTurfOwner); err != nil {
		return nil, err
	}
	list, err := s.repo.ListCancellationsForOwner(ctx, caller.UserID, limit)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "Could not list cancellations", err)
	}
	if list == nil {
		list = []bookings.Cancellation{}
	}
	return list, nil
}
