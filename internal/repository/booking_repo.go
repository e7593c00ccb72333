package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotelbooking/internal/database"
	"hotelbooking/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// UserBookingStats backs the customer dashboard.
type UserBookingStats struct {
	UpcomingBookings  int64   `json:"upcoming_bookings"`
	CompletedBookings int64   `json:"completed_bookings"`
	TotalSpent        float64 `json:"total_spent"`
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	err := database.Conn(ctx, r.db).Omit(clause.Associations).Create(b).Error
	return mapBookingWriteError(err)
}

func (r *BookingRepository) Save(ctx context.Context, b *domain.Booking) error {
	err := database.Conn(ctx, r.db).Omit(clause.Associations).Save(b).Error
	return mapBookingWriteError(err)
}

// GetByID loads a booking with room, hotel, customer and payment.
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := database.Conn(ctx, r.db).
		Preload("Room.Hotel").
		Preload("User").
		Preload("Payment").
		First(&b, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	var out []domain.Booking
	err := database.Conn(ctx, r.db).
		Preload("Room.Hotel").
		Preload("Payment").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *BookingRepository) ListAll(ctx context.Context) ([]domain.Booking, error) {
	var out []domain.Booking
	err := database.Conn(ctx, r.db).
		Preload("Room.Hotel").
		Preload("User").
		Preload("Payment").
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// Delete removes the booking and its payment row. It reports false when no
// booking with that id existed.
func (r *BookingRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := database.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", id).Delete(&domain.Payment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Booking{}, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// HasOverlap reports whether a non-cancelled booking on the room intersects
// [checkIn, checkOut). excludeID 0 excludes nothing.
func (r *BookingRepository) HasOverlap(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID int64) (bool, error) {
	q := database.Conn(ctx, r.db).
		Model(&domain.Booking{}).
		Where("room_id = ?", roomID).
		Where("status <> ?", domain.BookingCancelled).
		Where("NOT (check_out_date <= ? OR check_in_date >= ?)", checkIn, checkOut)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var cnt int64
	if err := q.Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// ConfirmIfPending flips a pending booking to confirmed. It reports false when
// the booking had already left the pending state.
func (r *BookingRepository) ConfirmIfPending(ctx context.Context, id int64) (bool, error) {
	res := database.Conn(ctx, r.db).
		Model(&domain.Booking{}).
		Where("id = ? AND status = ?", id, domain.BookingPending).
		Updates(map[string]interface{}{
			"status":     domain.BookingConfirmed,
			"updated_at": domain.NormalizeTime(time.Now()),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *BookingRepository) StatsForUser(ctx context.Context, userID int64, now time.Time) (*UserBookingStats, error) {
	conn := database.Conn(ctx, r.db)
	var stats UserBookingStats

	err := conn.Model(&domain.Booking{}).
		Where("user_id = ? AND status IN ? AND check_in_date > ?", userID,
			[]domain.BookingStatus{domain.BookingPending, domain.BookingConfirmed}, now).
		Count(&stats.UpcomingBookings).Error
	if err != nil {
		return nil, err
	}

	err = conn.Model(&domain.Booking{}).
		Where("user_id = ? AND status = ?", userID, domain.BookingCompleted).
		Count(&stats.CompletedBookings).Error
	if err != nil {
		return nil, err
	}

	err = conn.Model(&domain.Payment{}).
		Select("COALESCE(SUM(payments.amount), 0)").
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Where("bookings.user_id = ? AND payments.status = ?", userID, domain.PaymentSuccess).
		Scan(&stats.TotalSpent).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
