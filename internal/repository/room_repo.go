package repository

import (
	"context"

	"gorm.io/gorm"

	"hotelbooking/internal/database"
	"hotelbooking/internal/domain"
)

// RoomRepository is the Room Directory: read-only access to rooms.
type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// GetByID returns an active room with its hotel. Inactive rooms are reported
// as not found.
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var room domain.Room
	err := database.Conn(ctx, r.db).
		Preload("Hotel").
		Where("id = ? AND is_active = ?", id, true).
		First(&room).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

// ListAvailableByHotel is the coarse room-level filter: active rooms whose
// housekeeping flag is available. Date ranges are not considered.
func (r *RoomRepository) ListAvailableByHotel(ctx context.Context, hotelID int64) ([]domain.Room, error) {
	var rooms []domain.Room
	err := database.Conn(ctx, r.db).
		Where("hotel_id = ? AND is_active = ? AND status = ?", hotelID, true, domain.RoomAvailable).
		Order("price_per_night ASC, id ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}
