package domain

import (
	"time"

	"gorm.io/datatypes"
)

type RoomType string

const (
	RoomSingle RoomType = "single"
	RoomDouble RoomType = "double"
	RoomDeluxe RoomType = "deluxe"
	RoomSuite  RoomType = "suite"
	RoomFamily RoomType = "family"
)

// RoomStatus is the housekeeping flag of a room. It says nothing about
// date-range occupancy; that is derived from bookings.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
	RoomOutOfOrder  RoomStatus = "out_of_order"
)

type Room struct {
	ID            int64          `gorm:"primaryKey" json:"id"`
	HotelID       int64          `gorm:"index;not null" json:"hotel_id"`
	RoomNumber    string         `gorm:"type:varchar(20);not null" json:"room_number"`
	Type          RoomType       `gorm:"type:varchar(20);not null" json:"type"`
	Description   string         `gorm:"type:text" json:"description,omitempty"`
	PricePerNight float64        `gorm:"type:decimal(10,2);not null" json:"price_per_night"`
	Capacity      int            `gorm:"not null" json:"capacity"`
	Size          int            `json:"size"`
	Status        RoomStatus     `gorm:"type:varchar(20);default:'available';index" json:"status"`
	Amenities     datatypes.JSON `json:"amenities,omitempty"`
	IsActive      bool           `gorm:"not null;index" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	Hotel *Hotel `gorm:"foreignKey:HotelID" json:"hotel,omitempty"`
}
