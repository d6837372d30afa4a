package ratings

import (
	"math"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Rating is one organizer's score for a turf, tied to the paid booking it
// was earned with. (turf, user, booking) is unique: rating again updates it.
type Rating struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	TurfID    int64     `json:"turf_id" gorm:"not null;uniqueIndex:idx_turf_ratings_unique,priority:1;index"`
	UserID    int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_turf_ratings_unique,priority:2"`
	BookingID int64     `json:"booking_id" gorm:"not null;uniqueIndex:idx_turf_ratings_unique,priority:3"`
	Rating    int       `json:"rating" gorm:"not null;check:chk_turf_ratings_range,rating BETWEEN 1 AND 5"`
	Feedback  string    `json:"feedback,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Rating) TableName() string {
	return "turf_ratings"
}

// Summary is computed on read; nothing is aggregated on write.
type Summary struct {
	TurfID  int64   `json:"turf_id"`
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// WholeRating accepts only whole stars in range.
func WholeRating(v float64) (int, bool) {
	if v < MinRating || v > MaxRating || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

// RateRequest.Rating is decoded as a number so a fractional score reaches
// validation instead of failing the bind.
type RateRequest struct {
	BookingID int64   `json:"booking_id" binding:"required,gt=0"`
	Rating    float64 `json:"rating"`
	Feedback  string  `json:"feedback" binding:"max=2000"`
}
