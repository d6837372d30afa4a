package bookings

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turfbook/internal/shared/apperror"
)

func TestTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		apply   func(b *Booking) error
		want    Status
		wantErr error
	}{
		{"approve pending", StatusPending, (*Booking).Approve, StatusApproved, nil},
		{"reject pending", StatusPending, func(b *Booking) error { return b.Reject("full") }, StatusRejected, nil},
		{"reject approved", StatusApproved, func(b *Booking) error { return b.Reject("full") }, StatusRejected, nil},
		{"cancel approved", StatusApproved, func(b *Booking) error { return b.Cancel("rain") }, StatusCancelled, nil},
		{"approve approved", StatusApproved, (*Booking).Approve, StatusApproved, apperror.ErrConflict},
		{"reject confirmed", StatusConfirmed, func(b *Booking) error { return b.Reject("x") }, StatusConfirmed, apperror.ErrConflict},
		{"cancel cancelled", StatusCancelled, func(b *Booking) error { return b.Cancel("again") }, StatusCancelled, apperror.ErrAlreadyFinalized},
		{"reject rejected", StatusRejected, func(b *Booking) error { return b.Reject("again") }, StatusRejected, apperror.ErrAlreadyFinalized},
		{"approve cancelled", StatusCancelled, (*Booking).Approve, StatusCancelled, apperror.ErrAlreadyFinalized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{Status: tt.from, PaymentStatus: PaymentStatusPending}
			err := tt.apply(b)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Nil(t, b.CancellationReason, "failed transition must not mutate")
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, b.Status)
		})
	}
}

func TestConfirmPayment(t *testing.T) {
	b := &Booking{Status: StatusApproved, PaymentStatus: PaymentStatusPending}
	require.NoError(t, b.ConfirmPaid())
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, PaymentStatusPaid, b.PaymentStatus)

	err := b.ConfirmPaid()
	assert.True(t, errors.Is(err, apperror.ErrInvalidOrAlreadyPaid))

	cash := &Booking{Status: StatusApproved, PaymentStatus: PaymentStatusPending}
	require.NoError(t, cash.ConfirmCash())
	assert.Equal(t, StatusConfirmed, cash.Status)
	assert.Equal(t, PaymentStatusPending, cash.PaymentStatus, "cash stays pending until settled offline")

	pending := &Booking{Status: StatusPending, PaymentStatus: PaymentStatusPending}
	assert.True(t, errors.Is(pending.ConfirmCash(), apperror.ErrInvalidOrAlreadyPaid))
}

func TestPaymentDeadline(t *testing.T) {
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	far := &Booking{CreatedAt: created, StartTime: created.Add(72 * time.Hour), Status: StatusApproved, PaymentStatus: PaymentStatusPending}
	assert.Equal(t, created.Add(24*time.Hour), far.PaymentDeadline(24*time.Hour))

	soon := &Booking{CreatedAt: created, StartTime: created.Add(3 * time.Hour), Status: StatusApproved, PaymentStatus: PaymentStatusPending}
	assert.Equal(t, soon.StartTime, soon.PaymentDeadline(24*time.Hour))

	assert.False(t, soon.IsPaymentOverdue(soon.StartTime.Add(-time.Second), 24*time.Hour))
	assert.True(t, soon.IsPaymentOverdue(soon.StartTime, 24*time.Hour))

	soon.PaymentStatus = PaymentStatusPaid
	assert.False(t, soon.IsPaymentOverdue(soon.StartTime.Add(time.Hour), 24*time.Hour))
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	base := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	b := &Booking{StartTime: base, EndTime: base.Add(time.Hour)}

	assert.True(t, b.Overlaps(base.Add(30*time.Minute), base.Add(90*time.Minute)))
	assert.False(t, b.Overlaps(base.Add(time.Hour), base.Add(2*time.Hour)))
	assert.False(t, b.Overlaps(base.Add(-time.Hour), base))
}

func TestTruncateReason(t *testing.T) {
	assert.Equal(t, "", TruncateReason("   \n\t"))
	assert.Equal(t, "rain", TruncateReason("  rain "))

	long := strings.Repeat("é", 1500)
	assert.Equal(t, MaxReasonLength, len([]rune(TruncateReason(long))))
}

func TestAmountsMatch(t *testing.T) {
	assert.True(t, AmountsMatch(1500, 1500.005))
	assert.True(t, AmountsMatch(1500, 1500.01))
	assert.False(t, AmountsMatch(1500, 1500.02))
	assert.Equal(t, 12.35, RoundMoney(12.345000001))
}
