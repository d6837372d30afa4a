package cancellation

import (
	"context"
	"errors"
	"fmt"

	"turfbook/internal/bookings"

	"gorm.io/gorm"
)

// Repository reads the cancellation audit trail. Rows are written by the
// booking transactions through bookings.Repository.CreateCancellation.
type Repository interface {
	GetCancellationByBookingID(ctx context.Context, bookingID int64) (*bookings.Cancellation, error)
	ListCancellationsForOwner(ctx context.Context, ownerID int64, limit int) ([]bookings.Cancellation, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new cancellation repository instance
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetCancellationByBookingID(ctx context.Context, bookingID int64) (*bookings.Cancellation, error) {
	var c bookings.Cancellation
	err := r.db.WithContext(ctx).First(&c, "booking_id = ?", bookingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bookings.ErrCancellationNotFound
		}
		return nil, fmt.Errorf("failed to get cancellation: %w", err)
	}
	return &c, nil
}

func (r *repository) ListCancellationsForOwner(ctx context.Context, ownerID int64, limit int) ([]bookings.Cancellation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var list []bookings.Cancellation
	err := r.db.WithContext(ctx).
		Joins("JOIN bookings ON bookings.id = booking_cancellations.booking_id").
		Joins("JOIN turfs ON turfs.id = bookings.turf_id").
		Where("turfs.owner_id = ?", ownerID).
		Order("booking_cancellations.created_at DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cancellations: %w", err)
	}
	return list, nil
}
