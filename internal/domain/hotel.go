package domain

import "time"

type Hotel struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description,omitempty"`
	Address      string    `gorm:"type:varchar(255)" json:"address"`
	City         string    `gorm:"type:varchar(100);index" json:"city"`
	Country      string    `gorm:"type:varchar(100)" json:"country"`
	Phone        string    `gorm:"type:varchar(32)" json:"phone,omitempty"`
	Email        string    `gorm:"type:varchar(255)" json:"email,omitempty"`
	Rating       float64   `json:"rating"`
	CheckInTime  string    `gorm:"type:varchar(5)" json:"check_in_time,omitempty"`
	CheckOutTime string    `gorm:"type:varchar(5)" json:"check_out_time,omitempty"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Rooms []Room `gorm:"foreignKey:HotelID" json:"rooms,omitempty"`
}
