package expiry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turfbook/internal/bookings"
	"turfbook/internal/bookings/bookingstest"
	"turfbook/internal/expiry"
	"turfbook/internal/notifications"
	"turfbook/internal/shared/constants"
	"turfbook/internal/turfs"
	"turfbook/internal/users"
	"turfbook/pkg/cache"
	"turfbook/pkg/lock"
)

const organizerID int64 = 2

type fixture struct {
	store   *bookingstest.Store
	sender  *notifications.MockEmailSender
	locker  *lock.MemoryLocker
	sweeper expiry.Sweeper
	turf    turfs.Turf
	now     time.Time
}

func newFixture(t *testing.T, batchSize int) *fixture {
	t.Helper()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	store := bookingstest.NewStore()
	store.Now = func() time.Time { return now }
	turf := store.AddTurf(turfs.Turf{OwnerID: 1, Name: "Green Arena", HourlyRate: 1000})

	mailer, sender := bookingstest.NewMailer(bookingstest.Directory{
		organizerID: users.User{ID: organizerID, Name: "Captain", Email: "captain@example.com"},
	})
	locker := lock.NewMemoryLocker()
	sweeper := expiry.NewSweeper(store, store, locker, mailer,
		bookings.NewAvailabilityCache(cache.Nop{}, time.Minute, time.UTC),
		expiry.Options{PaymentWindow: 24 * time.Hour, BatchSize: batchSize})

	return &fixture{store: store, sender: sender, locker: locker, sweeper: sweeper, turf: turf, now: now}
}

// add seeds a booking created createdAgo before now that starts startsIn after now.
func (f *fixture) add(status bookings.Status, payment bookings.PaymentStatus, createdAgo, startsIn time.Duration) bookings.Booking {
	start := f.now.Add(startsIn)
	return f.store.AddBooking(bookings.Booking{
		TurfID:        f.turf.ID,
		OrganizerID:   organizerID,
		StartTime:     start,
		EndTime:       start.Add(time.Hour),
		TotalCost:     1000,
		Status:        status,
		PaymentStatus: payment,
		CreatedAt:     f.now.Add(-createdAgo),
	})
}

func TestSweepCancelsOverdueBookings(t *testing.T) {
	f := newFixture(t, 0)

	windowPassed := f.add(bookings.StatusApproved, bookings.PaymentStatusPending, 25*time.Hour, 72*time.Hour)
	started := f.add(bookings.StatusApproved, bookings.PaymentStatusPending, 2*time.Hour, 0)
	stillDue := f.add(bookings.StatusApproved, bookings.PaymentStatusPending, 2*time.Hour, 3*time.Hour)
	pending := f.add(bookings.StatusPending, bookings.PaymentStatusPending, 48*time.Hour, 72*time.Hour)
	cash := f.add(bookings.StatusConfirmed, bookings.PaymentStatusPending, 48*time.Hour, 72*time.Hour)
	paid := f.add(bookings.StatusConfirmed, bookings.PaymentStatusPaid, 48*time.Hour, -time.Hour)

	cancelled, err := f.sweeper.Sweep(context.Background(), f.now)
	require.NoError(t, err)
	assert.Equal(t, []int64{windowPassed.ID, started.ID}, cancelled)

	for _, id := range cancelled {
		b := f.store.Booking(id)
		assert.Equal(t, bookings.StatusCancelled, b.Status)
		require.NotNil(t, b.CancellationReason)
		assert.Equal(t, expiry.Reason, *b.CancellationReason)
	}
	for _, b := range []bookings.Booking{stillDue, pending, cash, paid} {
		assert.Equal(t, b.Status, f.store.Booking(b.ID).Status, "booking %d untouched", b.ID)
	}

	assert.Len(t, f.store.NotificationsFor(organizerID), 2)
	require.Len(t, f.store.Cancellations, 2)
	assert.Equal(t, bookings.CancellationSourceExpiry, f.store.Cancellations[0].Source)
	assert.Nil(t, f.store.Cancellations[0].CancelledBy)
	assert.Len(t, f.sender.Sent(), 2)
}

func TestSweepDeadlineFormula(t *testing.T) {
	tests := []struct {
		name       string
		createdAgo time.Duration
		startsIn   time.Duration
		want       bool
	}{
		// created T-2h: deadline collapses to the start time
		{"start reached, created 2h before", 2 * time.Hour, 0, true},
		{"start one second away", 2 * time.Hour, time.Second, false},
		// created T-48h: deadline is created+24h, well before start
		{"window over, start far", 48 * time.Hour, 24 * time.Hour, true},
		{"window exactly over", 24 * time.Hour, 10 * time.Hour, true},
		{"window not over", 23 * time.Hour, 10 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 0)
			b := f.add(bookings.StatusApproved, bookings.PaymentStatusPending, tt.createdAgo, tt.startsIn)

			cancelled, err := f.sweeper.Sweep(context.Background(), f.now)
			require.NoError(t, err)
			if tt.want {
				assert.Equal(t, []int64{b.ID}, cancelled)
			} else {
				assert.Empty(t, cancelled)
			}
		})
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	f := newFixture(t, 0)
	b := f.add(bookings.StatusApproved, bookings.PaymentStatusPending, 30*time.Hour, 48*time.Hour)

	first, err := f.sweeper.Sweep(context.Background(), f.now)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, first)

	second, err := f.sweeper.Sweep(context.Background(), f.now)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.NotNil(t, second)

	assert.Len(t, f.store.NotificationsFor(organizerID), 1)
	assert.Len(t, f.sender.Sent(), 1)
	assert.Len(t, f.store.Cancellations, 1)
}

func TestSweepWalksAllBatches(t *testing.T) {
	f := newFixture(t, 2)
	var want []int64
	for i := 0; i < 5; i++ {
		want = append(want, f.add(bookings.StatusApproved, bookings.PaymentStatusPending, 30*time.Hour, 48*time.Hour).ID)
	}

	cancelled, err := f.sweeper.Sweep(context.Background(), f.now)
	require.NoError(t, err)
	assert.Equal(t, want, cancelled)
}

func TestSweepSkipsWhenLockHeld(t *testing.T) {
	f := newFixture(t, 0)
	b := f.add(bookings.StatusApproved, bookings.PaymentStatusPending, 30*time.Hour, 48*time.Hour)

	claim, ok, err := f.locker.Acquire(context.Background(), constants.KEY_SWEEP_LOCK, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.sweeper.Sweep(context.Background(), f.now)
	assert.True(t, errors.Is(err, expiry.ErrSweepInProgress))
	assert.Equal(t, bookings.StatusApproved, f.store.Booking(b.ID).Status)

	require.NoError(t, claim.Release(context.Background()))
	cancelled, err := f.sweeper.Sweep(context.Background(), f.now)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, cancelled)
	assert.False(t, f.locker.Held(constants.KEY_SWEEP_LOCK), "lock released after the run")
}

func TestSweepEmailFailureDoesNotBlock(t *testing.T) {
	f := newFixture(t, 0)
	b := f.add(bookings.StatusApproved, bookings.PaymentStatusPending, 30*time.Hour, 48*time.Hour)
	f.sender.Fail = errors.New("smtp down")

	cancelled, err := f.sweeper.Sweep(context.Background(), f.now)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, cancelled)
	assert.Equal(t, bookings.StatusCancelled, f.store.Booking(b.ID).Status)
	assert.Len(t, f.store.NotificationsFor(organizerID), 1)
}

func TestSweepContinuesPastFailedBooking(t *testing.T) {
	f := newFixture(t, 0)
	f.add(bookings.StatusApproved, bookings.PaymentStatusPending, 30*time.Hour, 48*time.Hour)
	f.store.FailOn["CreateNotification"] = nil

	cancelled, err := f.sweeper.Sweep(context.Background(), f.now)
	require.NoError(t, err)
	assert.Empty(t, cancelled)
	assert.Empty(t, f.store.Cancellations, "failed booking rolled back")
	assert.Empty(t, f.sender.Sent())
}

func TestSweepPagesPastRowsThatKeepFailing(t *testing.T) {
	f := newFixture(t, 2)
	var ids []int64
	for i := 0; i < 5; i++ {
		ids = append(ids, f.add(bookings.StatusApproved, bookings.PaymentStatusPending, 30*time.Hour, 48*time.Hour).ID)
	}
	// the first three stay overdue after the sweep, so they would be listed again
	for _, id := range ids[:3] {
		f.store.FailTransition[id] = nil
	}

	cancelled, err := f.sweeper.Sweep(context.Background(), f.now)
	require.NoError(t, err)
	assert.Equal(t, ids[3:], cancelled)
	for _, id := range ids[:3] {
		assert.Equal(t, bookings.StatusApproved, f.store.Booking(id).Status)
	}
}
