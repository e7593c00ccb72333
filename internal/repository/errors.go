package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"hotelbooking/internal/domain"
)

// ErrRangeTaken is returned when the database itself refuses an overlapping
// booking (postgres exclusion or unique violation). Serialization failures
// are left to the transactor, which retries them.
var ErrRangeTaken = errors.New("room range already taken")

const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func mapBookingWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgExclusionViolation, pgUniqueViolation:
			return ErrRangeTaken
		}
	}
	return err
}
