package bookings_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turfbook/internal/bookings"
	"turfbook/internal/bookings/bookingstest"
	"turfbook/internal/notifications"
	"turfbook/internal/shared/apperror"
	"turfbook/internal/shared/identity"
	"turfbook/internal/turfs"
	"turfbook/internal/users"
	"turfbook/pkg/cache"
)

const (
	ownerID     int64 = 1
	organizerID int64 = 2
	strangerID  int64 = 3
)

var (
	owner     = identity.Identity{UserID: ownerID, Role: users.RoleTurfOwner}
	organizer = identity.Identity{UserID: organizerID, Role: users.RoleOrganizer}
	stranger  = identity.Identity{UserID: strangerID, Role: users.RoleOrganizer}
)

type fixture struct {
	store  *bookingstest.Store
	sender *notifications.MockEmailSender
	svc    bookings.Service
	turf   turfs.Turf
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	store := bookingstest.NewStore()
	store.Now = func() time.Time { return now }
	turf := store.AddTurf(turfs.Turf{OwnerID: ownerID, Name: "Green Arena", HourlyRate: 1200})

	mailer, sender := bookingstest.NewMailer(bookingstest.Directory{
		ownerID:     {ID: ownerID, Name: "Owner", Email: "owner@example.com"},
		organizerID: {ID: organizerID, Name: "Captain", Email: "captain@example.com"},
	})

	svc := bookings.NewService(store, store, store.TurfLookup(), mailer,
		bookings.NewAvailabilityCache(cache.Nop{}, time.Minute, time.UTC),
		bookings.Rules{Location: time.UTC, PaymentWindow: 24 * time.Hour, Now: func() time.Time { return now }})

	return &fixture{store: store, sender: sender, svc: svc, turf: turf, now: now}
}

func (f *fixture) request(start, end string) bookings.CreateBookingRequest {
	return bookings.CreateBookingRequest{TurfID: f.turf.ID, Date: "2025-06-01", StartTime: start, EndTime: end}
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)

	b, err := f.svc.CreateBooking(context.Background(), organizer, f.request("18:00", "19:30"))
	require.NoError(t, err)

	assert.Equal(t, bookings.StatusPending, b.Status)
	assert.Equal(t, bookings.PaymentStatusPending, b.PaymentStatus)
	assert.Equal(t, 1800.0, b.TotalCost)
	assert.Equal(t, organizerID, b.OrganizerID)

	assert.Len(t, f.store.NotificationsFor(ownerID), 1)
	require.Len(t, f.sender.Sent(), 1)
	assert.Equal(t, "owner@example.com", f.sender.Sent()[0].To)
}

func TestCreateBookingRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateBooking(ctx, owner, f.request("18:00", "19:00"))
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))

	_, err = f.svc.CreateBooking(ctx, organizer, f.request("07:00", "07:30"))
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput), "start before now")

	_, err = f.svc.CreateBooking(ctx, organizer, bookings.CreateBookingRequest{TurfID: 999, Date: "2025-06-01", StartTime: "18:00", EndTime: "19:00"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = f.svc.CreateBooking(ctx, organizer, f.request("18:10", "19:00"))
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}

func TestCreateBookingConflictsWithBookedRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateBooking(ctx, organizer, f.request("18:00", "19:00"))
	require.NoError(t, err)

	// pending requests may overlap
	_, err = f.svc.CreateBooking(ctx, organizer, f.request("18:30", "19:30"))
	require.NoError(t, err)

	_, err = f.svc.ApproveBooking(ctx, owner, first.ID)
	require.NoError(t, err)

	_, err = f.svc.CreateBooking(ctx, organizer, f.request("18:30", "19:30"))
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	_, err = f.svc.CreateBooking(ctx, organizer, f.request("19:00", "20:00"))
	assert.NoError(t, err, "touching ranges do not overlap")
}

func TestApproveBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.CreateBooking(ctx, organizer, f.request("18:00", "19:00"))
	require.NoError(t, err)
	rival, err := f.svc.CreateBooking(ctx, organizer, f.request("18:30", "19:30"))
	require.NoError(t, err)

	_, err = f.svc.ApproveBooking(ctx, identity.Identity{UserID: 77, Role: users.RoleTurfOwner}, b.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "other owners cannot see the booking")

	approved, err := f.svc.ApproveBooking(ctx, owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusApproved, approved.Status)
	assert.Len(t, f.store.NotificationsFor(organizerID), 1)

	_, err = f.svc.ApproveBooking(ctx, owner, rival.ID)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
	assert.Equal(t, bookings.StatusPending, f.store.Booking(rival.ID).Status)

	_, err = f.svc.ApproveBooking(ctx, owner, b.ID)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestRejectBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.CreateBooking(ctx, organizer, f.request("18:00", "19:00"))
	require.NoError(t, err)

	rejected, err := f.svc.RejectBooking(ctx, owner, b.ID, "  pitch under maintenance ")
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.CancellationReason)
	assert.Equal(t, "pitch under maintenance", *rejected.CancellationReason)

	_, err = f.svc.RejectBooking(ctx, owner, b.ID, "again")
	assert.True(t, errors.Is(err, apperror.ErrAlreadyFinalized))
	assert.Equal(t, "pitch under maintenance", *f.store.Booking(b.ID).CancellationReason)
}

func TestAcceptCashPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.CreateBooking(ctx, organizer, f.request("18:00", "19:00"))
	require.NoError(t, err)

	_, err = f.svc.AcceptCashPayment(ctx, organizer, b.ID)
	assert.True(t, errors.Is(err, apperror.ErrInvalidOrAlreadyPaid), "pending bookings cannot be paid")

	_, err = f.svc.ApproveBooking(ctx, owner, b.ID)
	require.NoError(t, err)

	_, err = f.svc.AcceptCashPayment(ctx, stranger, b.ID)
	assert.True(t, errors.Is(err, apperror.ErrInvalidOrAlreadyPaid))

	confirmed, err := f.svc.AcceptCashPayment(ctx, organizer, b.ID)
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusConfirmed, confirmed.Status)
	assert.Equal(t, bookings.PaymentStatusPending, confirmed.PaymentStatus)

	payments := f.store.PaymentsFor(b.ID)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].IsCash())
	assert.Equal(t, bookings.PaymentRecordPending, payments[0].Status)

	_, err = f.svc.AcceptCashPayment(ctx, organizer, b.ID)
	assert.True(t, errors.Is(err, apperror.ErrInvalidOrAlreadyPaid))
}

func TestAcceptCashPaymentRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.CreateBooking(ctx, organizer, f.request("18:00", "19:00"))
	require.NoError(t, err)
	_, err = f.svc.ApproveBooking(ctx, owner, b.ID)
	require.NoError(t, err)

	f.store.FailOn["CreatePayment"] = nil
	_, err = f.svc.AcceptCashPayment(ctx, organizer, b.ID)
	assert.True(t, errors.Is(err, apperror.ErrTransactionFailed))

	stored := f.store.Booking(b.ID)
	assert.Equal(t, bookings.StatusApproved, stored.Status)
	assert.Empty(t, f.store.PaymentsFor(b.ID))
}

func TestGetAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.CreateBooking(ctx, organizer, f.request("18:00", "19:00"))
	require.NoError(t, err)

	a, err := f.svc.GetAvailability(ctx, f.turf.ID, "2025-06-01")
	require.NoError(t, err)
	require.Len(t, a.Slots, bookings.SlotsPerDay)
	assert.Equal(t, bookings.SlotPartial, a.Slots[24].Status) // 18:00

	_, err = f.svc.ApproveBooking(ctx, owner, b.ID)
	require.NoError(t, err)

	a, err = f.svc.GetAvailability(ctx, f.turf.ID, "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, bookings.SlotBooked, a.Slots[24].Status)

	_, err = f.svc.GetAvailability(ctx, 0, "2025-06-01")
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
	_, err = f.svc.GetAvailability(ctx, f.turf.ID, "01-06-2025")
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
}

func TestGetBookingVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.CreateBooking(ctx, organizer, f.request("18:00", "19:00"))
	require.NoError(t, err)
	_, err = f.svc.ApproveBooking(ctx, owner, b.ID)
	require.NoError(t, err)

	detail, err := f.svc.GetBooking(ctx, organizer, b.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.PaymentDeadline)
	assert.Equal(t, b.StartTime, *detail.PaymentDeadline)

	_, err = f.svc.GetBooking(ctx, owner, b.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetBooking(ctx, stranger, b.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestListBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, r := range [][2]string{{"09:00", "10:00"}, {"10:00", "11:00"}, {"11:00", "12:00"}} {
		_, err := f.svc.CreateBooking(ctx, organizer, f.request(r[0], r[1]))
		require.NoError(t, err)
	}

	mine, err := f.svc.ListMyBookings(ctx, organizer, bookings.BookingListQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), mine.Total)
	assert.Len(t, mine.Bookings, 2)
	assert.Equal(t, 2, mine.TotalPages)

	theirs, err := f.svc.ListOwnerBookings(ctx, owner, bookings.BookingListQuery{Status: bookings.StatusPending, Date: "2025-06-01"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), theirs.Total)

	other, err := f.svc.ListOwnerBookings(ctx, owner, bookings.BookingListQuery{Date: "2025-06-02"})
	require.NoError(t, err)
	assert.Zero(t, other.Total)
	assert.NotNil(t, other.Bookings)
}
