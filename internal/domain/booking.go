package domain

import (
	"math"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCancelled, BookingCompleted},
	BookingCancelled: {},
	BookingCompleted: {},
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsEditable reports whether dates, guests and requests may still change.
func (s BookingStatus) IsEditable() bool {
	return s == BookingPending
}

type Booking struct {
	ID                 int64         `gorm:"primaryKey" json:"id"`
	RoomID             int64         `gorm:"not null;index:idx_bookings_room_dates,priority:1" json:"room_id"`
	UserID             int64         `gorm:"not null;index" json:"user_id"`
	CheckInDate        time.Time     `gorm:"not null;index:idx_bookings_room_dates,priority:2" json:"check_in_date"`
	CheckOutDate       time.Time     `gorm:"not null;index:idx_bookings_room_dates,priority:3" json:"check_out_date"`
	NumberOfGuests     int           `gorm:"not null" json:"number_of_guests"`
	TotalAmount        float64       `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status             BookingStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	SpecialRequests    string        `gorm:"type:text" json:"special_requests,omitempty"`
	Notes              string        `gorm:"type:text" json:"notes,omitempty"`
	CancellationReason string        `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CancellationDate   *time.Time    `json:"cancellation_date,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`

	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Room    *Room    `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Payment *Payment `gorm:"foreignKey:BookingID" json:"payment,omitempty"`
}

// StayNights counts started 24h periods between check-in and check-out, at least one.
func StayNights(checkIn, checkOut time.Time) int {
	nights := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	if nights < 1 {
		return 1
	}
	return nights
}

// StayTotal returns nights × rate rounded to cents.
func StayTotal(nights int, pricePerNight float64) float64 {
	return math.Round(float64(nights)*pricePerNight*100) / 100
}

// NormalizeTime stores instants in UTC at second precision so that text-based
// datetime columns compare in chronological order.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
