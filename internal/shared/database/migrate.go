package database

import (
	"turfbook/internal/bookings"
	"turfbook/internal/notifications"
	"turfbook/internal/ratings"
	"turfbook/internal/turfs"
	"turfbook/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&users.User{},
		&turfs.Turf{},
		&bookings.Booking{},
		&bookings.Payment{},
		&bookings.Cancellation{},
		&notifications.Notification{},
		&ratings.Rating{},
	); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
