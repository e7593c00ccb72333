package database

import (
	"fmt"

	"gorm.io/gorm"

	"hotelbooking/internal/domain"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Hotel{},
		&domain.Room{},
		&domain.Booking{},
		&domain.Payment{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.Dialector.Name() == DialectPostgres {
		return migratePostgresOverlapGuard(db)
	}
	return nil
}

// migratePostgresOverlapGuard makes the database reject a second non-cancelled
// booking whose [check_in, check_out) range intersects an existing one.
func migratePostgresOverlapGuard(db *gorm.DB) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS btree_gist`,
		`DO $$
BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap') THEN
    ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
      EXCLUDE USING gist (
        room_id WITH =,
        tstzrange(check_in_date, check_out_date, '[)') WITH &&
      ) WHERE (status <> 'cancelled');
  END IF;
END $$`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("overlap guard: %w", err)
		}
	}
	return nil
}
