package database

import (
	"fmt"

	"gorm.io/gorm"
)

type tableConstraint struct {
	table      string
	name       string
	definition string
}

// Value checks mirror the enums in the bookings package. The exclusion
// constraint stops two approved or confirmed bookings from holding
// overlapping time on the same turf even if two owners approve at once.
var constraints = []tableConstraint{
	{"bookings", "chk_bookings_status",
		"CHECK (status IN ('pending','approved','confirmed','cancelled','rejected'))"},
	{"bookings", "chk_bookings_payment_status",
		"CHECK (payment_status IN ('pending','paid','refunded'))"},
	{"bookings", "chk_bookings_time_order",
		"CHECK (end_time > start_time)"},
	{"bookings", "excl_bookings_turf_overlap",
		"EXCLUDE USING gist (turf_id WITH =, tstzrange(start_time, end_time, '[)') WITH &&) WHERE (status IN ('approved','confirmed'))"},
	{"payments", "chk_payments_status",
		"CHECK (status IN ('pending','completed','refunded'))"},
	{"payments", "chk_payments_amount",
		"CHECK (amount >= 0)"},
	{"booking_cancellations", "chk_booking_cancellations_source",
		"CHECK (source IN ('owner','expiry'))"},
}

var indexes = []string{
	// Serves the expiry sweep, which only ever looks at approved unpaid rows.
	`CREATE INDEX IF NOT EXISTS idx_bookings_awaiting_payment
		ON bookings (created_at, start_time)
		WHERE status = 'approved' AND payment_status = 'pending'`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_turf_start
		ON bookings (turf_id, start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_booking_latest
		ON payments (booking_id, created_at DESC, id DESC)`,
}

// MigrateConstraints adds the constraints AutoMigrate cannot express.
// Postgres has no ADD CONSTRAINT IF NOT EXISTS, so each one is checked in
// pg_constraint first.
func MigrateConstraints(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return fmt.Errorf("enable btree_gist: %w", err)
	}

	for _, c := range constraints {
		var exists bool
		err := db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, c.name).Scan(&exists).Error
		if err != nil {
			return fmt.Errorf("check constraint %s: %w", c.name, err)
		}
		if exists {
			continue
		}
		stmt := fmt.Sprintf(`ALTER TABLE %s ADD CONSTRAINT %s %s`, c.table, c.name, c.definition)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("add constraint %s: %w", c.name, err)
		}
	}

	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
