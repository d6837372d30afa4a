package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrBookingNotFound      = errors.New("booking not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrTurfNotFound         = errors.New("turf not found")
	ErrCancellationNotFound = errors.New("cancellation not found")
	// ErrStaleBooking means the row changed between read and conditional write.
	ErrStaleBooking = errors.New("booking was modified concurrently")
)

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id int64) (*Booking, error)
	// GetByIDForUpdate row-locks the booking until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*Booking, error)
	// GetForOwner locks a booking only if it belongs to a turf owned by ownerID.
	GetForOwner(ctx context.Context, id, ownerID int64) (*Booking, error)
	ListForTurfDay(ctx context.Context, turfID int64, dayStart, dayEnd time.Time) ([]Booking, error)
	ListByOrganizer(ctx context.Context, organizerID int64, query BookingListQuery) ([]Booking, int64, error)
	ListForOwner(ctx context.Context, ownerID int64, query BookingListQuery) ([]Booking, int64, error)
	ListOverdue(ctx context.Context, now time.Time, window time.Duration, afterID int64, limit int) ([]Booking, error)
	HasBookedOverlap(ctx context.Context, turfID int64, start, end time.Time, excludeID int64) (bool, error)
	LockTurf(ctx context.Context, turfID int64) error
	SaveTransition(ctx context.Context, booking *Booking, from Status, fromPayment PaymentStatus) error

	LatestPayment(ctx context.Context, bookingID int64) (*Payment, error)
	// PaymentByReference finds a payment whose gateway reference or
	// transaction id is any of refs.
	PaymentByReference(ctx context.Context, refs ...string) (*Payment, error)
	CreatePayment(ctx context.Context, payment *Payment) error
	UpdatePayment(ctx context.Context, payment *Payment) error
	CreateCancellation(ctx context.Context, cancellation *Cancellation) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to db, which may be a transaction handle.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *repository) GetByIDForUpdate(ctx context.Context, id int64) (*Booking, error) {
	return r.first(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

func (r *repository) GetForOwner(ctx context.Context, id, ownerID int64) (*Booking, error) {
	return r.first(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "bookings"}}).
		Joins("JOIN turfs ON turfs.id = bookings.turf_id").
		Where("bookings.id = ? AND turfs.owner_id = ?", id, ownerID).
		Select("bookings.*"))
}

func (r *repository) first(query *gorm.DB) (*Booking, error) {
	var booking Booking
	if err := query.First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// ListForTurfDay returns every booking starting inside the day, whatever its status.
func (r *repository) ListForTurfDay(ctx context.Context, turfID int64, dayStart, dayEnd time.Time) ([]Booking, error) {
	var list []Booking
	err := r.db.WithContext(ctx).
		Where("turf_id = ? AND start_time >= ? AND start_time < ?", turfID, dayStart, dayEnd).
		Order("start_time ASC, id ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for turf: %w", err)
	}
	return list, nil
}

func (r *repository) ListByOrganizer(ctx context.Context, organizerID int64, query BookingListQuery) ([]Booking, int64, error) {
	base := r.db.WithContext(ctx).Model(&Booking{}).Where("bookings.organizer_id = ?", organizerID)
	return r.paginate(base, query)
}

func (r *repository) ListForOwner(ctx context.Context, ownerID int64, query BookingListQuery) ([]Booking, int64, error) {
	base := r.db.WithContext(ctx).Model(&Booking{}).
		Joins("JOIN turfs ON turfs.id = bookings.turf_id").
		Where("turfs.owner_id = ?", ownerID)
	if query.TurfID > 0 {
		base = base.Where("bookings.turf_id = ?", query.TurfID)
	}
	return r.paginate(base, query)
}

func (r *repository) paginate(base *gorm.DB, query BookingListQuery) ([]Booking, int64, error) {
	query.normalize()
	base = r.applyFilters(base, query)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var list []Booking
	err := base.Select("bookings.*").
		Order("bookings.start_time DESC, bookings.id DESC").
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return list, total, nil
}

func (r *repository) applyFilters(query *gorm.DB, q BookingListQuery) *gorm.DB {
	if q.Status != "" {
		query = query.Where("bookings.status = ?", q.Status)
	}
	if q.PaymentStatus != "" {
		query = query.Where("bookings.payment_status = ?", q.PaymentStatus)
	}
	if !q.From.IsZero() {
		query = query.Where("bookings.start_time >= ?", q.From)
	}
	if !q.To.IsZero() {
		query = query.Where("bookings.start_time < ?", q.To)
	}
	return query
}

// ListOverdue returns approved, unpaid bookings whose payment deadline has
// passed, in id order starting after afterID.
func (r *repository) ListOverdue(ctx context.Context, now time.Time, window time.Duration, afterID int64, limit int) ([]Booking, error) {
	var list []Booking
	err := r.db.WithContext(ctx).
		Where("id > ?", afterID).
		Where("status = ? AND payment_status = ?", StatusApproved, PaymentStatusPending).
		Where("start_time <= ? OR created_at <= ?", now, now.Add(-window)).
		Order("id ASC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue bookings: %w", err)
	}
	return list, nil
}

func (r *repository) HasBookedOverlap(ctx context.Context, turfID int64, start, end time.Time, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Booking{}).
		Where("turf_id = ? AND id <> ?", turfID, excludeID).
		Where("status IN ?", []Status{StatusApproved, StatusConfirmed}).
		Where("start_time < ? AND end_time > ?", end, start).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping bookings: %w", err)
	}
	return count > 0, nil
}

// LockTurf serializes booking writes per turf for the rest of the transaction.
func (r *repository) LockTurf(ctx context.Context, turfID int64) error {
	var turf struct {
		ID int64 `gorm:"column:id"`
	}
	err := r.db.WithContext(ctx).
		Table("turfs").
		Select("id").
		Where("id = ?", turfID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&turf).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTurfNotFound
		}
		return fmt.Errorf("failed to lock turf: %w", err)
	}
	return nil
}

// SaveTransition writes the booking's status fields only if they still hold
// the values it was read with.
func (r *repository) SaveTransition(ctx context.Context, booking *Booking, from Status, fromPayment PaymentStatus) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND status = ? AND payment_status = ?", booking.ID, from, fromPayment).
		Updates(map[string]interface{}{
			"status":              booking.Status,
			"payment_status":      booking.PaymentStatus,
			"cancellation_reason": booking.CancellationReason,
			"updated_at":          now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStaleBooking
	}
	booking.UpdatedAt = now
	return nil
}

func (r *repository) LatestPayment(ctx context.Context, bookingID int64) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("id DESC").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *repository) PaymentByReference(ctx context.Context, refs ...string) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).
		Where("reference IN ? OR transaction_id IN ?", refs, refs).
		Order("id ASC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to look up payment reference: %w", err)
	}
	return &payment, nil
}

func (r *repository) CreatePayment(ctx context.Context, payment *Payment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *repository) UpdatePayment(ctx context.Context, payment *Payment) error {
	if err := r.db.WithContext(ctx).Save(payment).Error; err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}

func (r *repository) CreateCancellation(ctx context.Context, cancellation *Cancellation) error {
	if err := r.db.WithContext(ctx).Create(cancellation).Error; err != nil {
		return fmt.Errorf("failed to record cancellation: %w", err)
	}
	return nil
}
