package bookings

import (
	"context"

	"turfbook/internal/notifications"

	"gorm.io/gorm"
)

// Tx is the set of repositories bound to one database transaction.
type Tx struct {
	Bookings      Repository
	Notifications notifications.Repository
}

// UnitOfWork runs fn atomically. Any error returned by fn rolls back every
// write made through the Tx.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, Tx{
			Bookings:      NewRepository(tx),
			Notifications: notifications.NewRepository(tx),
		})
	})
}
