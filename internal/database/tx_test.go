package database_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbooking/internal/database"
	"hotelbooking/internal/database/dbtest"
	"hotelbooking/internal/domain"
)

func TestWithinTransaction_RollsBackOnError(t *testing.T) {
	db := dbtest.Open(t)
	tx := database.NewTransactor(db)
	boom := errors.New("boom")

	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		u := &domain.User{Email: "a@example.com", IsActive: true}
		if err := database.Conn(ctx, db).Create(u).Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&domain.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestWithinTransaction_NestedReusesOuter(t *testing.T) {
	db := dbtest.Open(t)
	tx := database.NewTransactor(db)

	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		outer := database.Conn(ctx, db)
		return tx.WithinTransaction(ctx, func(ctx context.Context) error {
			assert.Same(t, outer, database.Conn(ctx, db))
			return database.Conn(ctx, db).Create(&domain.User{Email: "b@example.com", IsActive: true}).Error
		})
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&domain.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWithinTransaction_RetriesSerializationFailure(t *testing.T) {
	db := dbtest.Open(t)
	tx := database.NewTransactor(db)

	attempts := 0
	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		attempts++
		u := &domain.User{Email: "retry@example.com", IsActive: true}
		if err := database.Conn(ctx, db).Create(u).Error; err != nil {
			return err
		}
		if attempts < 2 {
			return &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	var count int64
	require.NoError(t, db.Model(&domain.User{}).Where("email = ?", "retry@example.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWithinTransaction_GivesUpAsConflict(t *testing.T) {
	db := dbtest.Open(t)
	tx := database.NewTransactor(db)

	attempts := 0
	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		attempts++
		return fmt.Errorf("lock payment: %w", &pgconn.PgError{Code: "40P01", Message: "deadlock detected"})
	})
	assert.Equal(t, 3, attempts)
	assert.ErrorIs(t, err, database.ErrTxConflict)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestWithinTransaction_OtherErrorsNotRetried(t *testing.T) {
	db := dbtest.Open(t)
	tx := database.NewTransactor(db)

	attempts := 0
	unique := &pgconn.PgError{Code: "23505"}
	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		attempts++
		return unique
	})
	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, unique)
	assert.NotErrorIs(t, err, domain.ErrConflict)
}

func TestWithinTransaction_NestedCallLeavesRetryToOuter(t *testing.T) {
	db := dbtest.Open(t)
	tx := database.NewTransactor(db)

	inner := 0
	outer := 0
	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		outer++
		return tx.WithinTransaction(ctx, func(ctx context.Context) error {
			inner++
			if outer == 1 {
				return &pgconn.PgError{Code: "40001"}
			}
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, outer)
	assert.Equal(t, 2, inner)
}
