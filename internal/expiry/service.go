// Package expiry cancels approved bookings whose payment deadline has passed.
package expiry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"turfbook/internal/bookings"
	"turfbook/internal/cancellation"
	"turfbook/internal/notifications"
	"turfbook/internal/shared/apperror"
	"turfbook/internal/shared/constants"
	"turfbook/pkg/lock"
	"turfbook/pkg/logger"
)

// Reason is stored on every booking the sweeper cancels.
const Reason = "Automatically cancelled: payment was not completed before the deadline"

// ErrSweepInProgress is returned when another instance holds the sweep lock.
var ErrSweepInProgress = apperror.New(apperror.KindConflict, "An expiry sweep is already running")

// errNoLongerDue aborts one booking's transaction without counting as a failure.
var errNoLongerDue = errors.New("booking no longer overdue")

type Sweeper interface {
	// Sweep cancels every booking overdue at now and returns their ids in
	// the order they were cancelled.
	Sweep(ctx context.Context, now time.Time) ([]int64, error)
}

type Options struct {
	PaymentWindow time.Duration
	BatchSize     int
	LockTTL       time.Duration
	Location      *time.Location
}

type sweeper struct {
	uow          bookings.UnitOfWork
	repo         bookings.Repository
	locker       lock.Locker
	mailer       *notifications.Mailer
	availability *bookings.AvailabilityCache
	opts         Options
}

func NewSweeper(uow bookings.UnitOfWork, repo bookings.Repository, locker lock.Locker, mailer *notifications.Mailer,
	availability *bookings.AvailabilityCache, opts Options) Sweeper {
	if opts.PaymentWindow <= 0 {
		opts.PaymentWindow = 24 * time.Hour
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 200
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = constants.TTL_SWEEP_LOCK
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &sweeper{
		uow:          uow,
		repo:         repo,
		locker:       locker,
		mailer:       mailer,
		availability: availability,
		opts:         opts,
	}
}

func (s *sweeper) Sweep(ctx context.Context, now time.Time) ([]int64, error) {
	claim, ok, err := s.locker.Acquire(ctx, constants.KEY_SWEEP_LOCK, s.opts.LockTTL)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "Could not acquire sweep lock", err)
	}
	if !ok {
		return nil, ErrSweepInProgress
	}
	defer func() {
		if err := claim.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, lock.ErrNotHeld) {
			logger.GetDefault().ErrorWithContext(ctx, "Failed to release sweep lock", err, nil)
		}
	}()

	started := time.Now()
	cancelled := []int64{}
	var lastID int64

	for {
		batch, err := s.repo.ListOverdue(ctx, now, s.opts.PaymentWindow, lastID, s.opts.BatchSize)
		if err != nil {
			return cancelled, apperror.Wrap(apperror.KindInternal, "Could not list overdue bookings", err)
		}

		for i := range batch {
			b := batch[i]
			lastID = b.ID

			if err := ctx.Err(); err != nil {
				return cancelled, err
			}
			if !b.IsPaymentOverdue(now, s.opts.PaymentWindow) {
				continue
			}

			expired, err := s.expire(ctx, b.ID, now)
			if err != nil {
				if !errors.Is(err, errNoLongerDue) {
					logger.GetDefault().ErrorWithContext(ctx, "Failed to expire booking", err, map[string]interface{}{
						"booking_id": b.ID,
					})
				}
				continue
			}
			cancelled = append(cancelled, expired.ID)
			s.afterExpire(ctx, expired)
		}

		if len(batch) < s.opts.BatchSize {
			break
		}
	}

	logger.GetDefault().LogSweepCompleted(ctx, cancelled, time.Since(started))
	return cancelled, nil
}

// expire cancels one booking. The row is re-read under lock so a payment
// that landed after the listing wins.
func (s *sweeper) expire(ctx context.Context, bookingID int64, now time.Time) (*bookings.Booking, error) {
	var expired *bookings.Booking
	err := s.uow.Do(ctx, func(ctx context.Context, tx bookings.Tx) error {
		b, err := tx.Bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if !b.IsPaymentOverdue(now, s.opts.PaymentWindow) {
			return errNoLongerDue
		}

		from, fromPayment := b.Status, b.PaymentStatus
		if err := b.Cancel(Reason); err != nil {
			return err
		}
		if err := tx.Bookings.SaveTransition(ctx, b, from, fromPayment); err != nil {
			if errors.Is(err, bookings.ErrStaleBooking) {
				return errNoLongerDue
			}
			return err
		}
		if err := tx.Bookings.CreateCancellation(ctx, &bookings.Cancellation{
			BookingID: b.ID,
			Source:    bookings.CancellationSourceExpiry,
			Reason:    Reason,
			Refund:    string(cancellation.RefundNoPayment),
		}); err != nil {
			return err
		}
		expired = b
		return tx.Notifications.Create(ctx, notifications.NewInApp(b.OrganizerID, b.ID,
			fmt.Sprintf("Your booking for %s was cancelled because payment was not completed in time.",
				bookings.DescribeRange(b, s.opts.Location))))
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}

func (s *sweeper) afterExpire(ctx context.Context, b *bookings.Booking) {
	s.availability.Invalidate(ctx, b)
	logger.GetDefault().LogBookingTransition(ctx, b.ID, string(bookings.StatusApproved), string(b.Status))

	deadline := b.PaymentDeadline(s.opts.PaymentWindow).In(s.opts.Location)
	_ = s.mailer.Notify(ctx, b.OrganizerID, notifications.NotificationTypeBookingExpired, b.ID,
		"Booking cancelled - payment not received",
		fmt.Sprintf("Your booking for %s was cancelled because payment was not completed by %s.\nYou can request the slot again if it is still free.",
			bookings.DescribeRange(b, s.opts.Location), deadline.Format("2006-01-02 15:04")))
}
