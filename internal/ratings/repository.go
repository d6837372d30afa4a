package ratings

import (
	"context"
	"fmt"
	"math"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Upsert inserts r or overwrites rating and feedback of the existing row
	// for the same turf, user and booking. r is refreshed from the database.
	Upsert(ctx context.Context, r *Rating) error
	Summary(ctx context.Context, turfID int64) (*Summary, error)
	ListForTurf(ctx context.Context, turfID int64, limit int) ([]Rating, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// upsertConflict targets idx_turf_ratings_unique.
var upsertConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "turf_id"}, {Name: "user_id"}, {Name: "booking_id"}},
	DoUpdates: clause.AssignmentColumns([]string{"rating", "feedback", "updated_at"}),
}

func (r *repository) Upsert(ctx context.Context, rating *Rating) error {
	err := r.db.WithContext(ctx).
		Clauses(upsertConflict).
		Create(rating).Error
	if err != nil {
		return fmt.Errorf("failed to upsert rating: %w", err)
	}

	// On conflict Postgres returns the existing id, but created_at is ours.
	err = r.db.WithContext(ctx).
		Where("turf_id = ? AND user_id = ? AND booking_id = ?", rating.TurfID, rating.UserID, rating.BookingID).
		First(rating).Error
	if err != nil {
		return fmt.Errorf("failed to reload rating: %w", err)
	}
	return nil
}

func (r *repository) Summary(ctx context.Context, turfID int64) (*Summary, error) {
	var row struct {
		Average float64
		Count   int64
	}
	err := r.db.WithContext(ctx).
		Model(&Rating{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("turf_id = ?", turfID).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarise ratings: %w", err)
	}
	return &Summary{TurfID: turfID, Average: math.Round(row.Average*100) / 100, Count: row.Count}, nil
}

func (r *repository) ListForTurf(ctx context.Context, turfID int64, limit int) ([]Rating, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var list []Rating
	err := r.db.WithContext(ctx).
		Where("turf_id = ?", turfID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	return list, nil
}
