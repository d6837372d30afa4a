package bookings

import (
	"time"

	"turfbook/internal/shared/apperror"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"

	SlotDuration = 30 * time.Minute
	DayOpensAt   = 6 * time.Hour
	DayClosesAt  = 23 * time.Hour
	SlotsPerDay  = int((DayClosesAt - DayOpensAt) / SlotDuration)
)

type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotPartial   SlotStatus = "partial"
	SlotBooked    SlotStatus = "booked"
)

type Slot struct {
	Start  string     `json:"start"`
	End    string     `json:"end"`
	Status SlotStatus `json:"status"`
}

type Availability struct {
	TurfID int64  `json:"turf_id"`
	Date   string `json:"date"`
	Slots  []Slot `json:"slots"`
}

// Calculator lays the fixed slot grid over a day's bookings. Slot edges are
// wall-clock times in loc.
type Calculator struct {
	loc *time.Location
}

func NewCalculator(loc *time.Location) *Calculator {
	if loc == nil {
		loc = time.UTC
	}
	return &Calculator{loc: loc}
}

// ParseDate accepts only YYYY-MM-DD and returns local midnight.
func (c *Calculator) ParseDate(date string) (time.Time, error) {
	if len(date) != len(DateLayout) {
		return time.Time{}, apperror.New(apperror.KindInvalidInput, "Date must be in YYYY-MM-DD format")
	}
	day, err := time.ParseInLocation(DateLayout, date, c.loc)
	if err != nil {
		return time.Time{}, apperror.New(apperror.KindInvalidInput, "Date must be in YYYY-MM-DD format")
	}
	return day, nil
}

// Calculate returns the SlotsPerDay slots for the date. Bookings of other
// turfs or in a final state never occupy a slot.
func (c *Calculator) Calculate(turfID int64, date string, bookings []Booking) (*Availability, error) {
	if turfID <= 0 {
		return nil, apperror.New(apperror.KindInvalidInput, "Invalid turf id")
	}
	day, err := c.ParseDate(date)
	if err != nil {
		return nil, err
	}

	slots := make([]Slot, 0, SlotsPerDay)
	for i := 0; i < SlotsPerDay; i++ {
		offset := DayOpensAt + time.Duration(i)*SlotDuration
		start := wallClock(day, offset)
		end := wallClock(day, offset+SlotDuration)
		slots = append(slots, Slot{
			Start:  start.Format(ClockLayout),
			End:    end.Format(ClockLayout),
			Status: slotStatus(turfID, start, end, bookings),
		})
	}

	return &Availability{TurfID: turfID, Date: date, Slots: slots}, nil
}

func slotStatus(turfID int64, start, end time.Time, bookings []Booking) SlotStatus {
	status := SlotAvailable
	for i := range bookings {
		b := &bookings[i]
		if b.TurfID != turfID || !b.Overlaps(start, end) {
			continue
		}
		if b.Status.Occupies() {
			return SlotBooked
		}
		if b.Status == StatusPending {
			status = SlotPartial
		}
	}
	return status
}

// wallClock adds a clock offset to local midnight without drifting across
// DST changes.
func wallClock(day time.Time, offset time.Duration) time.Time {
	h := int(offset / time.Hour)
	m := int((offset % time.Hour) / time.Minute)
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location())
}

// ParseRange resolves HH:MM start and end on date into absolute times and
// checks they fit the bookable grid.
func (c *Calculator) ParseRange(date, startClock, endClock string) (day, start, end time.Time, err error) {
	day, err = c.ParseDate(date)
	if err != nil {
		return
	}
	startOffset, err := parseClock(startClock)
	if err != nil {
		return
	}
	endOffset, err := parseClock(endClock)
	if err != nil {
		return
	}

	switch {
	case endOffset <= startOffset:
		err = apperror.New(apperror.KindInvalidInput, "End time must be after start time")
	case startOffset < DayOpensAt || endOffset > DayClosesAt:
		err = apperror.New(apperror.KindInvalidInput, "Bookings must fall between 06:00 and 23:00")
	case startOffset%SlotDuration != 0 || endOffset%SlotDuration != 0:
		err = apperror.New(apperror.KindInvalidInput, "Bookings must start and end on the half hour")
	}
	if err != nil {
		return
	}

	return day, wallClock(day, startOffset), wallClock(day, endOffset), nil
}

func parseClock(v string) (time.Duration, error) {
	if len(v) != len(ClockLayout) {
		return 0, apperror.New(apperror.KindInvalidInput, "Time must be in HH:MM format")
	}
	t, err := time.Parse(ClockLayout, v)
	if err != nil {
		return 0, apperror.New(apperror.KindInvalidInput, "Time must be in HH:MM format")
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
