package bookings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"turfbook/internal/notifications"
	"turfbook/internal/shared/apperror"
	"turfbook/internal/shared/identity"
	"turfbook/internal/turfs"
	"turfbook/internal/users"
	"turfbook/pkg/logger"
)

// TurfLookup resolves the turf a booking is for (to avoid depending on the turfs service)
type TurfLookup interface {
	GetByID(ctx context.Context, id int64) (*turfs.Turf, error)
}

// Rules are the booking policies that vary by deployment.
type Rules struct {
	Location      *time.Location
	PaymentWindow time.Duration
	Now           func() time.Time
}

func (r Rules) withDefaults() Rules {
	if r.Location == nil {
		r.Location = time.UTC
	}
	if r.PaymentWindow <= 0 {
		r.PaymentWindow = 24 * time.Hour
	}
	if r.Now == nil {
		r.Now = time.Now
	}
	return r
}

// Service interface defines the contract for booking business logic
type Service interface {
	GetAvailability(ctx context.Context, turfID int64, date string) (*Availability, error)
	CreateBooking(ctx context.Context, caller identity.Identity, req CreateBookingRequest) (*Booking, error)
	GetBooking(ctx context.Context, caller identity.Identity, bookingID int64) (*BookingDetail, error)
	ListMyBookings(ctx context.Context, caller identity.Identity, query BookingListQuery) (*BookingListResponse, error)
	ListOwnerBookings(ctx context.Context, caller identity.Identity, query BookingListQuery) (*BookingListResponse, error)

	// Owner decisions
	ApproveBooking(ctx context.Context, caller identity.Identity, bookingID int64) (*Booking, error)
	RejectBooking(ctx context.Context, caller identity.Identity, bookingID int64, reason string) (*Booking, error)

	// AcceptCashPayment confirms an approved booking on the organizer's
	// promise to pay at the venue.
	AcceptCashPayment(ctx context.Context, caller identity.Identity, bookingID int64) (*Booking, error)
}

type service struct {
	uow          UnitOfWork
	repo         Repository
	turfs        TurfLookup
	mailer       *notifications.Mailer
	availability *AvailabilityCache
	calc         *Calculator
	rules        Rules
}

func NewService(uow UnitOfWork, repo Repository, turfLookup TurfLookup, mailer *notifications.Mailer, availability *AvailabilityCache, rules Rules) Service {
	rules = rules.withDefaults()
	return &service{
		uow:          uow,
		repo:         repo,
		turfs:        turfLookup,
		mailer:       mailer,
		availability: availability,
		calc:         NewCalculator(rules.Location),
		rules:        rules,
	}
}

func (s *service) GetAvailability(ctx context.Context, turfID int64, date string) (*Availability, error) {
	if turfID <= 0 {
		return nil, apperror.New(apperror.KindInvalidInput, "Invalid turf id")
	}
	day, err := s.calc.ParseDate(date)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.availability.Get(ctx, turfID, date); ok {
		return cached, nil
	}

	list, err := s.repo.ListForTurfDay(ctx, turfID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "Could not load availability", err)
	}

	availability, err := s.calc.Calculate(turfID, date, list)
	if err != nil {
		return nil, err
	}
	s.availability.Put(ctx, availability)
	return availability, nil
}

func (s *service) CreateBooking(ctx context.Context, caller identity.Identity, req CreateBookingRequest) (*Booking, error) {
	if err := caller.RequireRole(users.RoleOrganizer); err != nil {
		return nil, err
	}

	turf, err := s.loadTurf(ctx, req.TurfID)
	if err != nil {
		return nil, err
	}

	day, start, end, err := s.calc.ParseRange(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if !start.After(s.rules.Now()) {
		return nil, apperror.New(apperror.KindInvalidInput, "Cannot book a slot in the past")
	}

	booking := &Booking{
		TurfID:        turf.ID,
		OrganizerID:   caller.UserID,
		Date:          civilDate(day),
		StartTime:     start,
		EndTime:       end,
		TotalCost:     RoundMoney(turf.HourlyRate * end.Sub(start).Hours()),
		Status:        StatusPending,
		PaymentStatus: PaymentStatusPending,
	}

	err = s.uow.Do(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.Bookings.LockTurf(ctx, turf.ID); err != nil {
			return err
		}
		taken, err := tx.Bookings.HasBookedOverlap(ctx, turf.ID, start, end, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperror.New(apperror.KindConflict, "The selected time overlaps an existing booking")
		}
		if err := tx.Bookings.Create(ctx, booking); err != nil {
			return err
		}
		return tx.Notifications.Create(ctx, notifications.NewInApp(turf.OwnerID, booking.ID,
			fmt.Sprintf("New booking request for %s on %s", turf.Name, s.describeRange(booking))))
	})
	if err != nil {
		return nil, TxError(err, "Could not create booking")
	}

	s.availability.Invalidate(ctx, booking)
	logger.GetDefault().LogBookingCreated(ctx, booking.ID, booking.TurfID, booking.OrganizerID)

	_ = s.mailer.Notify(ctx, turf.OwnerID, notifications.NotificationTypeBookingRequested, booking.ID,
		"New booking request",
		fmt.Sprintf("A team has requested %s on %s. Total: %.2f.", turf.Name, s.describeRange(booking), booking.TotalCost))

	return booking, nil
}

func (s *service) GetBooking(ctx context.Context, caller identity.Identity, bookingID int64) (*BookingDetail, error) {
	if bookingID <= 0 {
		return nil, apperror.New(apperror.KindInvalidInput, "Invalid booking id")
	}
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "Booking not found")
		}
		return nil, apperror.Wrap(apperror.KindInternal, "Could not load booking", err)
	}

	if !caller.IsAdmin() && booking.OrganizerID != caller.UserID {
		turf, err := s.turfs.GetByID(ctx, booking.TurfID)
		if err != nil || !turf.IsOwnedBy(caller.UserID) {
			return nil, apperror.New(apperror.KindNotFound, "Booking not found")
		}
	}

	detail := &BookingDetail{Booking: *booking}
	if booking.AwaitingPayment() {
		deadline := booking.PaymentDeadline(s.rules.PaymentWindow)
		detail.PaymentDeadline = &deadline
	}
	return detail, nil
}

func (s *service) ListMyBookings(ctx context.Context, caller identity.Identity, query BookingListQuery) (*BookingListResponse, error) {
	if err := caller.RequireRole(users.RoleOrganizer); err != nil {
		return nil, err
	}
	if err := s.resolveDate(&query); err != nil {
		return nil, err
	}
	list, total, err := s.repo.ListByOrganizer(ctx, caller.UserID, query)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "Could not list bookings", err)
	}
	return listResponse(list, total, query), nil
}

func (s *service) ListOwnerBookings(ctx context.Context, caller identity.Identity, query BookingListQuery) (*BookingListResponse, error) {
	if err := caller.RequireRole(users.RoleTurfOwner); err != nil {
		return nil, err
	}
	if err := s.resolveDate(&query); err != nil {
		return nil, err
	}
	list, total, err := s.repo.ListForOwner(ctx, caller.UserID, query)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "Could not list bookings", err)
	}
	return listResponse(list, total, query), nil
}

func (s *service) ApproveBooking(ctx context.Context, caller identity.Identity, bookingID int64) (*Booking, error) {
	if err := caller.RequireRole(users.RoleTurfOwner); err != nil {
		return nil, err
	}

	var booking *Booking
	err := s.uow.Do(ctx, func(ctx context.Context, tx Tx) error {
		b, err := s.ownedForUpdate(ctx, tx, bookingID, caller.UserID)
		if err != nil {
			return err
		}
		from, fromPayment := b.Status, b.PaymentStatus
		if err := b.Approve(); err != nil {
			return err
		}
		if b.HasStarted(s.rules.Now()) {
			return apperror.New(apperror.KindPastDeadline, "This booking has already started")
		}
		if err := tx.Bookings.LockTurf(ctx, b.TurfID); err != nil {
			return err
		}
		taken, err := tx.Bookings.HasBookedOverlap(ctx, b.TurfID, b.StartTime, b.EndTime, b.ID)
		if err != nil {
			return err
		}
		if taken {
			return apperror.New(apperror.KindConflict, "Another booking already holds this time")
		}
		if err := tx.Bookings.SaveTransition(ctx, b, from, fromPayment); err != nil {
			return err
		}
		booking = b
		return tx.Notifications.Create(ctx, notifications.NewInApp(b.OrganizerID, b.ID,
			fmt.Sprintf("Your booking for %s was approved. Please complete payment.", s.describeRange(b))))
	})
	if err != nil {
		return nil, TxError(err, "Could not approve booking")
	}

	s.afterTransition(ctx, booking, StatusPending)
	deadline := booking.PaymentDeadline(s.rules.PaymentWindow).In(s.rules.Location)
	_ = s.mailer.Notify(ctx, booking.OrganizerID, notifications.NotificationTypeBookingApproved, booking.ID,
		"Booking approved",
		fmt.Sprintf("Your booking for %s was approved. Pay online or choose cash before %s or it will be cancelled automatically.",
			s.describeRange(booking), deadline.Format("2006-01-02 15:04")))

	return booking, nil
}

func (s *service) RejectBooking(ctx context.Context, caller identity.Identity, bookingID int64, reason string) (*Booking, error) {
	if err := caller.RequireRole(users.RoleTurfOwner); err != nil {
		return nil, err
	}
	reason = TruncateReason(reason)
	if reason == "" {
		reason = "Rejected by the turf owner"
	}

	var (
		booking *Booking
		from    Status
	)
	err := s.uow.Do(ctx, func(ctx context.Context, tx Tx) error {
		b, err := s.ownedForUpdate(ctx, tx, bookingID, caller.UserID)
		if err != nil {
			return err
		}
		from = b.Status
		fromPayment := b.PaymentStatus
		if err := b.Reject(reason); err != nil {
			return err
		}
		if err := tx.Bookings.SaveTransition(ctx, b, from, fromPayment); err != nil {
			return err
		}
		booking = b
		return tx.Notifications.Create(ctx, notifications.NewInApp(b.OrganizerID, b.ID,
			fmt.Sprintf("Your booking for %s was rejected: %s", s.describeRange(b), reason)))
	})
	if err != nil {
		return nil, TxError(err, "Could not reject booking")
	}

	s.afterTransition(ctx, booking, from)
	_ = s.mailer.Notify(ctx, booking.OrganizerID, notifications.NotificationTypeBookingRejected, booking.ID,
		"Booking rejected",
		fmt.Sprintf("Your booking for %s was rejected.\nReason: %s", s.describeRange(booking), reason))

	return booking, nil
}

func (s *service) AcceptCashPayment(ctx context.Context, caller identity.Identity, bookingID int64) (*Booking, error) {
	if err := caller.RequireRole(users.RoleOrganizer); err != nil {
		return nil, err
	}

	var booking *Booking
	err := s.uow.Do(ctx, func(ctx context.Context, tx Tx) error {
		b, err := tx.Bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			if errors.Is(err, ErrBookingNotFound) {
				return apperror.New(apperror.KindInvalidOrAlreadyPaid, "Invalid booking or already paid")
			}
			return err
		}
		if b.OrganizerID != caller.UserID {
			return apperror.New(apperror.KindInvalidOrAlreadyPaid, "Invalid booking or already paid")
		}

		from, fromPayment := b.Status, b.PaymentStatus
		if err := b.ConfirmCash(); err != nil {
			return err
		}
		if err := tx.Bookings.SaveTransition(ctx, b, from, fromPayment); err != nil {
			return err
		}
		if err := tx.Bookings.CreatePayment(ctx, &Payment{
			BookingID: b.ID,
			Amount:    b.TotalCost,
			Status:    PaymentRecordPending,
			Method:    PaymentMethodCash,
		}); err != nil {
			return err
		}
		booking = b
		return tx.Notifications.Create(ctx, notifications.NewInApp(b.OrganizerID, b.ID,
			fmt.Sprintf("Your booking for %s is confirmed. Please pay %.2f in cash at the venue.", s.describeRange(b), b.TotalCost)))
	})
	if err != nil {
		return nil, TxError(err, "Could not confirm cash payment")
	}

	s.afterTransition(ctx, booking, StatusApproved)
	_ = s.mailer.Notify(ctx, booking.OrganizerID, notifications.NotificationTypeBookingConfirmed, booking.ID,
		"Booking confirmed - pay at venue",
		fmt.Sprintf("Your booking for %s is confirmed. Please pay %.2f in cash at the venue.", s.describeRange(booking), booking.TotalCost))

	return booking, nil
}

// ownedForUpdate hides bookings on other owners' turfs behind NotFound.
func (s *service) ownedForUpdate(ctx context.Context, tx Tx, bookingID, ownerID int64) (*Booking, error) {
	b, err := tx.Bookings.GetForOwner(ctx, bookingID, ownerID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "Booking not found")
		}
		return nil, err
	}
	return b, nil
}

func (s *service) afterTransition(ctx context.Context, b *Booking, from Status) {
	s.availability.Invalidate(ctx, b)
	logger.GetDefault().LogBookingTransition(ctx, b.ID, string(from), string(b.Status))
}

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
	return turf, nil
}

func (s *service) resolveDate(query *BookingListQuery) error {
	if query.Date == "" {
		return nil
	}
	day, err := s.calc.ParseDate(query.Date)
	if err != nil {
		return err
	}
	query.From, query.To = day, day.AddDate(0, 0, 1)
	return nil
}

func (s *service) describeRange(b *Booking) string {
	return DescribeRange(b, s.rules.Location)
}

// TxError maps an error from a UnitOfWork: typed errors pass through, a
// stale write becomes Conflict and anything else TransactionFailed.
func TxError(err error, message string) error {
	var appErr *apperror.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, ErrStaleBooking):
		return apperror.Wrap(apperror.KindConflict, "Booking was changed by someone else, please retry", err)
	case errors.Is(err, ErrTurfNotFound):
		return apperror.New(apperror.KindNotFound, "Turf not found")
	default:
		return apperror.Wrap(apperror.KindTransactionFailed, message, err)
	}
}

// DescribeRange renders "2025-06-01 18:00-19:30" in loc.
func DescribeRange(b *Booking, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	start := b.StartTime.In(loc)
	return fmt.Sprintf("%s %s-%s", start.Format(DateLayout), start.Format(ClockLayout), b.EndTime.In(loc).Format(ClockLayout))
}

func listResponse(list []Booking, total int64, query BookingListQuery) *BookingListResponse {
	query.normalize()
	if list == nil {
		list = []Booking{}
	}
	return &BookingListResponse{
		Bookings:   list,
		Total:      total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(query.Limit))),
	}
}

// civilDate keeps the calendar day but drops the zone so the date column
// stores the same day whatever the session time zone is.
func civilDate(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}
