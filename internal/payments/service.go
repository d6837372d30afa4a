package payments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"turfbook/internal/bookings"
	"turfbook/internal/notifications"
	"turfbook/internal/shared/apperror"
	"turfbook/internal/shared/constants"
	"turfbook/internal/shared/identity"
	"turfbook/internal/users"
	"turfbook/pkg/lock"
	"turfbook/pkg/logger"
)

type Service interface {
	// Reconcile verifies reference at the gateway and, when the money
	// matches the booking, marks the booking paid and confirmed.
	Reconcile(ctx context.Context, caller identity.Identity, bookingID int64, req ReconcileRequest) (*Receipt, error)
}

type Options struct {
	Location       *time.Location
	IdempotencyTTL time.Duration
	Now            func() time.Time
}

type service struct {
	uow          bookings.UnitOfWork
	repo         bookings.Repository
	gateway      Gateway
	locker       lock.Locker
	mailer       *notifications.Mailer
	availability *bookings.AvailabilityCache
	opts         Options
}

func NewService(uow bookings.UnitOfWork, repo bookings.Repository, gateway Gateway, locker lock.Locker,
	mailer *notifications.Mailer, availability *bookings.AvailabilityCache, opts Options) Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = constants.TTL_IDEMPOTENCY
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &service{
		uow:          uow,
		repo:         repo,
		gateway:      gateway,
		locker:       locker,
		mailer:       mailer,
		availability: availability,
		opts:         opts,
	}
}

func invalidOrPaid() error {
	return apperror.New(apperror.KindInvalidOrAlreadyPaid, "Invalid booking or already paid")
}

func (s *service) Reconcile(ctx context.Context, caller identity.Identity, bookingID int64, req ReconcileRequest) (*Receipt, error) {
	if err := caller.RequireRole(users.RoleOrganizer); err != nil {
		return nil, err
	}
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		return nil, apperror.New(apperror.KindInvalidInput, "Payment reference is required")
	}

	// Cheap pre-check so a stale or foreign booking never reaches the gateway.
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) {
			return nil, invalidOrPaid()
		}
		return nil, apperror.Wrap(apperror.KindInternal, "Could not load booking", err)
	}
	if booking.OrganizerID != caller.UserID || !booking.AwaitingPayment() {
		return nil, invalidOrPaid()
	}

	if err := referenceFree(ctx, s.repo, bookingID, reference); err != nil {
		return nil, err
	}

	key := idempotencyKey(caller.UserID, bookingID, req.IdempotencyKey, reference)
	claim, ok, err := s.locker.Acquire(ctx, constants.BuildIdempotencyKey(key), s.opts.IdempotencyTTL)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "Could not start payment verification", err)
	}
	if !ok {
		return nil, apperror.New(apperror.KindConflict, "This payment is already being processed")
	}

	receipt, err := s.reconcile(ctx, booking, reference, key)
	if err != nil {
		// let the caller retry with the same key
		_ = claim.Release(context.WithoutCancel(ctx))
		return nil, err
	}
	return receipt, nil
}

func (s *service) reconcile(ctx context.Context, booking *bookings.Booking, reference, key string) (*Receipt, error) {
	paid, err := s.gateway.FetchPayment(ctx, reference)
	if err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "Gateway lookup failed", err, map[string]interface{}{
			"booking_id": booking.ID,
			"reference":  reference,
		})
		return nil, apperror.Wrap(apperror.KindVerificationFailed, "Payment could not be verified", err)
	}
	if !paid.Status.Accepted() {
		return nil, apperror.New(apperror.KindVerificationFailed,
			fmt.Sprintf("Payment is %s at the gateway", paid.Status))
	}
	if !bookings.AmountsMatch(paid.Amount, booking.TotalCost) {
		return nil, apperror.New(apperror.KindVerificationFailed,
			fmt.Sprintf("Paid amount %.2f does not match booking total %.2f", paid.Amount, booking.TotalCost))
	}

	now := s.opts.Now()
	var (
		confirmed *bookings.Booking
		payment   *bookings.Payment
	)
	err = s.uow.Do(ctx, func(ctx context.Context, tx bookings.Tx) error {
		b, err := tx.Bookings.GetByIDForUpdate(ctx, booking.ID)
		if err != nil {
			if errors.Is(err, bookings.ErrBookingNotFound) {
				return invalidOrPaid()
			}
			return err
		}
		if b.OrganizerID != booking.OrganizerID {
			return invalidOrPaid()
		}

		from, fromPayment := b.Status, b.PaymentStatus
		if err := b.ConfirmPaid(); err != nil {
			return err
		}
		if err := referenceFree(ctx, tx.Bookings, b.ID, reference, transactionRef(paid)); err != nil {
			return err
		}

		p, err := tx.Bookings.LatestPayment(ctx, b.ID)
		switch {
		case errors.Is(err, bookings.ErrPaymentNotFound):
			p = nil
		case err != nil:
			return err
		}

		method := paid.Method
		if method == "" {
			method = "online"
		}
		if p == nil || p.Status != bookings.PaymentRecordPending || p.IsCash() {
			p = &bookings.Payment{BookingID: b.ID}
		}
		p.Amount = bookings.RoundMoney(paid.Amount)
		p.IdempotencyKey = &key
		p.MarkCompleted(method, reference, transactionRef(paid), now)
		if p.ID == 0 {
			err = tx.Bookings.CreatePayment(ctx, p)
		} else {
			err = tx.Bookings.UpdatePayment(ctx, p)
		}
		if err != nil {
			return err
		}

		if err := tx.Bookings.SaveTransition(ctx, b, from, fromPayment); err != nil {
			return err
		}
		confirmed, payment = b, p
		return tx.Notifications.Create(ctx, notifications.NewInApp(b.OrganizerID, b.ID,
			fmt.Sprintf("Payment of %.2f received. Your booking for %s is confirmed.",
				p.Amount, bookings.DescribeRange(b, s.opts.Location))))
	})
	if err != nil {
		return nil, bookings.TxError(err, "Could not record payment")
	}

	s.availability.Invalidate(ctx, confirmed)
	log := logger.GetDefault()
	log.LogBookingTransition(ctx, confirmed.ID, string(bookings.StatusApproved), string(confirmed.Status))
	log.LogPaymentReconciled(ctx, confirmed.ID, reference, payment.Method, payment.Amount)

	emailErr := s.mailer.Notify(ctx, confirmed.OrganizerID, notifications.NotificationTypePaymentReceived, confirmed.ID,
		"Payment received - booking confirmed",
		fmt.Sprintf("We received %.2f via %s (transaction %s).\nYour booking for %s is confirmed.",
			payment.Amount, payment.Method, transactionRef(paid), bookings.DescribeRange(confirmed, s.opts.Location)))

	return &Receipt{Booking: *confirmed, Payment: *payment, EmailSent: emailErr == nil}, nil
}

func transactionRef(p *GatewayPayment) string {
	if p.TransactionID != "" {
		return p.TransactionID
	}
	return p.Reference
}

// referenceFree rejects a gateway reference or transaction id that is
// already recorded against a different booking.
func referenceFree(ctx context.Context, repo bookings.Repository, bookingID int64, refs ...string) error {
	p, err := repo.PaymentByReference(ctx, refs...)
	switch {
	case errors.Is(err, bookings.ErrPaymentNotFound):
		return nil
	case err != nil:
		return apperror.Wrap(apperror.KindInternal, "Could not check payment reference", err)
	}
	if p.BookingID != bookingID {
		logger.GetDefault().WarnWithContext(ctx, "Payment reference reused across bookings", map[string]interface{}{
			"booking_id":      bookingID,
			"paid_booking_id": p.BookingID,
			"payment_id":      p.ID,
		})
		return apperror.New(apperror.KindInvalidOrAlreadyPaid, "Payment reference was already used for another booking")
	}
	return nil
}

// idempotencyKey scopes the client's key to caller and booking; without one,
// retries of the same reference for the same booking collapse onto one key.
func idempotencyKey(callerID, bookingID int64, clientKey, reference string) string {
	seed := fmt.Sprintf("%d:%d:ref:%s", callerID, bookingID, reference)
	if k := strings.TrimSpace(clientKey); k != "" {
		seed = fmt.Sprintf("%d:%d:key:%s", callerID, bookingID, k)
	}
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:16])
}
