package ratings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"turfbook/internal/bookings"
	"turfbook/internal/notifications"
	"turfbook/internal/shared/apperror"
	"turfbook/internal/shared/identity"
	"turfbook/internal/turfs"
	"turfbook/internal/users"
	"turfbook/pkg/logger"
)

// BookingLookup is the part of the booking store the ledger reads.
type BookingLookup interface {
	GetByID(ctx context.Context, id int64) (*bookings.Booking, error)
}

type Service interface {
	Rate(ctx context.Context, caller identity.Identity, turfID int64, req RateRequest) (*Rating, error)
	Summary(ctx context.Context, turfID int64) (*Summary, error)
	ListForTurf(ctx context.Context, turfID int64, limit int) ([]Rating, error)
}

type service struct {
	repo     Repository
	turfs    bookings.TurfLookup
	bookings BookingLookup
	mailer   *notifications.Mailer
}

func NewService(repo Repository, turfLookup bookings.TurfLookup, bookingLookup BookingLookup, mailer *notifications.Mailer) Service {
	return &service{repo: repo, turfs: turfLookup, bookings: bookingLookup, mailer: mailer}
}

func (s *service) Rate(ctx context.Context, caller identity.Identity, turfID int64, req RateRequest) (*Rating, error) {
	if err := caller.RequireRole(users.RoleOrganizer); err != nil {
		return nil, err
	}
	score, ok := WholeRating(req.Rating)
	if !ok {
		return nil, apperror.New(apperror.KindInvalidRating,
			fmt.Sprintf("Rating must be a whole number between %d and %d", MinRating, MaxRating))
	}

	turf, err := s.loadTurf(ctx, turfID)
	if err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "Booking not found")
		}
		return nil, apperror.Wrap(apperror.KindInternal, "Could not load booking", err)
	}
	if booking.OrganizerID != caller.UserID {
		return nil, apperror.New(apperror.KindNotFound, "Booking not found")
	}
	if booking.TurfID != turf.ID {
		return nil, apperror.New(apperror.KindInvalidInput, "Booking is not for this turf")
	}
	if booking.PaymentStatus != bookings.PaymentStatusPaid {
		return nil, apperror.New(apperror.KindInvalidInput, "Only paid bookings can be rated")
	}

	rating := &Rating{
		TurfID:    turf.ID,
		UserID:    caller.UserID,
		BookingID: booking.ID,
		Rating:    score,
		Feedback:  strings.TrimSpace(req.Feedback),
	}
	if err := s.repo.Upsert(ctx, rating); err != nil {
		return nil, apperror.Wrap(apperror.KindTransactionFailed, "Could not save rating", err)
	}

	logger.GetDefault().InfoWithContext(ctx, "Turf Rated", map[string]interface{}{
		"turf_id":    turf.ID,
		"booking_id": booking.ID,
		"rating":     rating.Rating,
	})
	_ = s.mailer.Notify(ctx, turf.OwnerID, notifications.NotificationTypeRatingReceived, booking.ID,
		"New rating for "+turf.Name,
		fmt.Sprintf("%s received a %d/%d rating.\n%s", turf.Name, rating.Rating, MaxRating, rating.Feedback))

	return rating, nil
}

func (s *service) Summary(ctx context.Context, turfID int64) (*Summary, error) {
	if _, err := s.loadTurf(ctx, turfID); err != nil {
		return nil, err
	}
	summary, err := s.repo.Summary(ctx, turfID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "Could not load ratings", err)
	}
	return summary, nil
}

func (s *service) ListForTurf(ctx context.Context, turfID int64, limit int) ([]Rating, error) {
	if _, err := s.loadTurf(ctx, turfID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListForTurf(ctx, turfID, limit)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "Could not load ratings", err)
	}
	if list == nil {
		list = []Rating{}
	}
	return list, nil
}

// loadTurf requires the turf to exist and to be linked to an owner.
func (s *service) loadTurf(ctx context.Context, turfID int64) (*turfs.Turf, error) {
	if turfID <= 0 {
		return nil, apperror.New(apperror.KindInvalidInput, "Invalid turf id")
	}
	turf, err := s.turfs.GetByID(ctx, turfID)
	if err != nil {
		if errors.Is(err, turfs.ErrTurfNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "Turf not found")
		}
		return nil, apperror.Wrap(apperror.KindInternal, "Could not load turf", err)
	}
	if turf.OwnerID <= 0 {
		return nil, apperror.New(apperror.KindNotFound, "Turf not found")
	}
	return turf, nil
}
