package turfs

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrTurfNotFound = errors.New("turf not found")

type Repository interface {
	Create(ctx context.Context, turf *Turf) error
	Update(ctx context.Context, turf *Turf) error
	GetByID(ctx context.Context, id int64) (*Turf, error)
	List(ctx context.Context, filters TurfFilters) ([]Turf, int64, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Turf, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, turf *Turf) error {
	if err := r.db.WithContext(ctx).Create(turf).Error; err != nil {
		return fmt.Errorf("failed to create turf: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, turf *Turf) error {
	if err := r.db.WithContext(ctx).Save(turf).Error; err != nil {
		return fmt.Errorf("failed to update turf: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Turf, error) {
	var turf Turf
	err := r.db.WithContext(ctx).First(&turf, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTurfNotFound
		}
		return nil, fmt.Errorf("failed to get turf: %w", err)
	}
	return &turf, nil
}

func (r *repository) List(ctx context.Context, filters TurfFilters) ([]Turf, int64, error) {
	var (
		list  []Turf
		total int64
	)

	query := r.db.WithContext(ctx).Model(&Turf{})
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("name ILIKE ? OR address ILIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count turfs: %w", err)
	}

	offset := (filters.Page - 1) * filters.Limit
	if err := query.Order("name ASC").Offset(offset).Limit(filters.Limit).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list turfs: %w", err)
	}
	return list, total, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID int64) ([]Turf, error) {
	var list []Turf
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list owner turfs: %w", err)
	}
	return list, nil
}
