package bookings

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turfbook/internal/shared/apperror"
)

func at(t *testing.T, loc *time.Location, date, clock string) time.Time {
	t.Helper()
	v, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
	require.NoError(t, err)
	return v
}

func booking(t *testing.T, turfID int64, status Status, start, end string) Booking {
	return Booking{
		TurfID:    turfID,
		Status:    status,
		StartTime: at(t, time.UTC, "2025-06-01", start),
		EndTime:   at(t, time.UTC, "2025-06-01", end),
	}
}

func slotAt(t *testing.T, a *Availability, start string) Slot {
	t.Helper()
	for _, s := range a.Slots {
		if s.Start == start {
			return s
		}
	}
	t.Fatalf("no slot starting at %s", start)
	return Slot{}
}

func TestCalculateEmptyDay(t *testing.T) {
	a, err := NewCalculator(time.UTC).Calculate(1, "2025-06-01", nil)
	require.NoError(t, err)

	require.Len(t, a.Slots, 34)
	assert.Equal(t, Slot{Start: "06:00", End: "06:30", Status: SlotAvailable}, a.Slots[0])
	assert.Equal(t, Slot{Start: "22:30", End: "23:00", Status: SlotAvailable}, a.Slots[33])
	for _, s := range a.Slots {
		assert.Equal(t, SlotAvailable, s.Status)
	}
}

func TestCalculateStatuses(t *testing.T) {
	list := []Booking{
		booking(t, 1, StatusConfirmed, "18:00", "19:00"),
		booking(t, 1, StatusPending, "18:30", "20:00"),
		booking(t, 1, StatusApproved, "07:00", "07:30"),
		booking(t, 1, StatusCancelled, "09:00", "10:00"),
		booking(t, 1, StatusRejected, "10:00", "11:00"),
		booking(t, 2, StatusConfirmed, "12:00", "13:00"),
	}

	a, err := NewCalculator(time.UTC).Calculate(1, "2025-06-01", list)
	require.NoError(t, err)

	tests := []struct {
		start string
		want  SlotStatus
	}{
		{"18:00", SlotBooked},
		{"18:30", SlotBooked}, // booked wins over the pending overlap
		{"19:00", SlotPartial},
		{"19:30", SlotPartial},
		{"20:00", SlotAvailable}, // half-open: pending ends at 20:00
		{"07:00", SlotBooked},
		{"06:30", SlotAvailable},
		{"07:30", SlotAvailable},
		{"09:00", SlotAvailable}, // cancelled never occupies
		{"10:30", SlotAvailable}, // rejected never occupies
		{"12:00", SlotAvailable}, // other turf
	}
	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			assert.Equal(t, tt.want, slotAt(t, a, tt.start).Status)
		})
	}
}

func TestCalculateInvalidInput(t *testing.T) {
	calc := NewCalculator(time.UTC)

	tests := []struct {
		name   string
		turfID int64
		date   string
	}{
		{"zero turf", 0, "2025-06-01"},
		{"negative turf", -4, "2025-06-01"},
		{"slashes", 1, "2025/06/01"},
		{"short", 1, "2025-6-1"},
		{"not a day", 1, "2025-02-30"},
		{"empty", 1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Calculate(tt.turfID, tt.date, nil)
			assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
		})
	}
}

func TestCalculateUsesLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	b := Booking{
		TurfID:    1,
		Status:    StatusApproved,
		StartTime: at(t, loc, "2025-06-01", "06:00"),
		EndTime:   at(t, loc, "2025-06-01", "07:00"),
	}

	a, err := NewCalculator(loc).Calculate(1, "2025-06-01", []Booking{b})
	require.NoError(t, err)
	assert.Equal(t, SlotBooked, a.Slots[0].Status)
	assert.Equal(t, SlotBooked, a.Slots[1].Status)
	assert.Equal(t, SlotAvailable, a.Slots[2].Status)
}

func TestParseRange(t *testing.T) {
	calc := NewCalculator(time.UTC)

	_, start, end, err := calc.ParseRange("2025-06-01", "18:00", "19:30")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, end.Sub(start))

	bad := [][2]string{
		{"19:00", "18:00"},
		{"18:00", "18:00"},
		{"05:30", "07:00"},
		{"22:00", "23:30"},
		{"18:15", "19:00"},
		{"6pm", "7pm"},
	}
	for _, r := range bad {
		_, _, _, err := calc.ParseRange("2025-06-01", r[0], r[1])
		assert.True(t, errors.Is(err, apperror.ErrInvalidInput), "%s-%s", r[0], r[1])
	}
}
