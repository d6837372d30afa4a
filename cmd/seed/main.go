package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"turfbook/internal/bookings"
	"turfbook/internal/ratings"
	"turfbook/internal/shared/config"
	"turfbook/internal/shared/database"
	"turfbook/internal/turfs"
	"turfbook/internal/users"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Seeder struct {
	db  *database.DB
	loc *time.Location
	now time.Time
}

func main() {
	fmt.Println("🌱 Starting Turfbook Database Seeder...")

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db, loc: cfg.Location(), now: time.Now().In(cfg.Location())}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Every account uses the password \"qwerty\".")
}

// CleanDatabase truncates all tables, children first
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"turf_ratings",
		"notifications",
		"booking_cancellations",
		"payments",
		"bookings",
		"turfs",
		"users",
	}

	return s.db.PostgreSQL.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Printf("  Truncating table: %s\n", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	userIDs, err := s.SeedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	turfIDs, err := s.SeedTurfs(userIDs)
	if err != nil {
		return fmt.Errorf("failed to seed turfs: %w", err)
	}

	if err := s.SeedBookings(userIDs, turfIDs); err != nil {
		return fmt.Errorf("failed to seed bookings: %w", err)
	}

	// Cached availability grids would describe the old rows
	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}

	return nil
}

// SeedUsers creates an admin, two turf owners and two team organizers
func (s *Seeder) SeedUsers() (map[string]int64, error) {
	fmt.Println("  👤 Seeding users...")

	userIDs := make(map[string]int64)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		key     string
		name    string
		email   string
		contact string
		role    users.Role
	}{
		{"admin", "Admin", "admin@turfbook.app", "", users.RoleAdmin},
		{"owner1", "Ravi Patel", "ravi.owner@turfbook.app", "9800000001", users.RoleTurfOwner},
		{"owner2", "Sara Khan", "sara.owner@turfbook.app", "9800000002", users.RoleTurfOwner},
		{"organizer1", "Arjun Mehta", "arjun@turfbook.app", "9800000011", users.RoleOrganizer},
		{"organizer2", "Nisha Rao", "nisha@turfbook.app", "9800000012", users.RoleOrganizer},
	}

	for _, userData := range usersData {
		user := users.User{
			Name:     userData.name,
			Email:    userData.email,
			Contact:  userData.contact,
			Password: string(hashedPassword),
			Role:     userData.role,
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return userIDs, nil
}

// SeedTurfs creates turfs for both owners
func (s *Seeder) SeedTurfs(userIDs map[string]int64) ([]int64, error) {
	fmt.Println("  🏟️ Seeding turfs...")

	turfsData := []turfs.Turf{
		{OwnerID: userIDs["owner1"], Name: "Green Arena", Address: "12 Lake Road", Capacity: 14, HourlyRate: 1200, Facilities: "floodlights,parking,showers"},
		{OwnerID: userIDs["owner1"], Name: "Green Arena Mini", Address: "12 Lake Road", Capacity: 10, HourlyRate: 800, Facilities: "floodlights"},
		{OwnerID: userIDs["owner2"], Name: "Riverside Kickoff", Address: "4 Mill Street", Capacity: 12, HourlyRate: 1000, Facilities: "parking,cafe"},
	}

	var ids []int64
	for i := range turfsData {
		turf := turfsData[i]
		if err := s.db.PostgreSQL.Create(&turf).Error; err != nil {
			return nil, fmt.Errorf("failed to create turf %s: %w", turf.Name, err)
		}
		ids = append(ids, turf.ID)
		fmt.Printf("    ✅ Created turf: %s (%.0f/hour)\n", turf.Name, turf.HourlyRate)
	}

	return ids, nil
}

// slot returns [start, end) on the day offset days from today.
func (s *Seeder) slot(days, hour, minute int, length time.Duration) (time.Time, time.Time, time.Time) {
	day := time.Date(s.now.Year(), s.now.Month(), s.now.Day(), 0, 0, 0, 0, s.loc).AddDate(0, 0, days)
	start := day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return date, start, start.Add(length)
}

// SeedBookings creates one booking per lifecycle state so every screen has data
func (s *Seeder) SeedBookings(userIDs map[string]int64, turfIDs []int64) error {
	fmt.Println("  📅 Seeding bookings...")

	type seed struct {
		label     string
		organizer string
		turf      int64
		days      int
		hour      int
		status    bookings.Status
		payment   bookings.PaymentStatus
		method    string // empty means no payment row
		record    bookings.PaymentRecordStatus
		rating    int
	}

	seeds := []seed{
		{"pending request", "organizer1", turfIDs[0], 2, 18, bookings.StatusPending, bookings.PaymentStatusPending, "", "", 0},
		{"awaiting payment", "organizer2", turfIDs[0], 3, 19, bookings.StatusApproved, bookings.PaymentStatusPending, "", "", 0},
		{"paid online", "organizer1", turfIDs[2], 1, 7, bookings.StatusConfirmed, bookings.PaymentStatusPaid, "midtrans", bookings.PaymentRecordCompleted, 0},
		{"cash at venue", "organizer2", turfIDs[1], 4, 20, bookings.StatusConfirmed, bookings.PaymentStatusPending, bookings.PaymentMethodCash, bookings.PaymentRecordPending, 0},
		{"played and rated", "organizer1", turfIDs[0], -2, 17, bookings.StatusConfirmed, bookings.PaymentStatusPaid, "midtrans", bookings.PaymentRecordCompleted, 5},
	}

	for _, sd := range seeds {
		date, start, end := s.slot(sd.days, sd.hour, 0, time.Hour)
		var turf turfs.Turf
		if err := s.db.PostgreSQL.First(&turf, sd.turf).Error; err != nil {
			return fmt.Errorf("failed to load turf %d: %w", sd.turf, err)
		}

		b := bookings.Booking{
			TurfID:        sd.turf,
			OrganizerID:   userIDs[sd.organizer],
			Date:          date,
			StartTime:     start,
			EndTime:       end,
			TotalCost:     bookings.RoundMoney(turf.HourlyRate),
			Status:        sd.status,
			PaymentStatus: sd.payment,
		}

		err := s.db.PostgreSQL.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&b).Error; err != nil {
				return err
			}
			if sd.method != "" {
				p := bookings.Payment{
					BookingID: b.ID,
					Amount:    b.TotalCost,
					Status:    sd.record,
					Method:    sd.method,
				}
				if sd.record == bookings.PaymentRecordCompleted {
					txID := "SEED-" + uuid.NewString()[:8]
					processed := s.now
					p.TransactionID = &txID
					p.ProcessedAt = &processed
				}
				if err := tx.Create(&p).Error; err != nil {
					return err
				}
			}
			if sd.rating > 0 {
				return tx.Create(&ratings.Rating{
					TurfID:    b.TurfID,
					UserID:    b.OrganizerID,
					BookingID: b.ID,
					Rating:    sd.rating,
					Feedback:  "Great surface, lights were on time.",
				}).Error
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to create %s booking: %w", sd.label, err)
		}
		fmt.Printf("    ✅ Created booking #%d: %s (%s, %s)\n", b.ID, sd.label, b.Status, start.Format("Jan 2 15:04"))
	}

	return nil
}
