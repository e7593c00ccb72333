package booking

import (
	"context"
	"time"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/repository"
)

// BookingRepository is the booking store the lifecycle manager writes through.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	Save(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
	Delete(ctx context.Context, id int64) (bool, error)
	HasOverlap(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID int64) (bool, error)
	StatsForUser(ctx context.Context, userID int64, now time.Time) (*repository.UserBookingStats, error)
}

// RoomRepository is the Room Directory.
type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	ListAvailableByHotel(ctx context.Context, hotelID int64) ([]domain.Room, error)
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// StatusNotifier is told about every status change a customer should see.
type StatusNotifier interface {
	NotifyBookingStatus(userID, bookingID int64, status domain.BookingStatus)
}
