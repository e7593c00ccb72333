package booking

import (
	"context"
	"time"
)

type overlapFinder interface {
	HasOverlap(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID int64) (bool, error)
}

// AvailabilityChecker answers whether a room is free for [checkIn, checkOut).
// Cancelled bookings never block; excludeID skips the booking being edited.
type AvailabilityChecker struct {
	bookings overlapFinder
}

func NewAvailabilityChecker(bookings overlapFinder) *AvailabilityChecker {
	return &AvailabilityChecker{bookings: bookings}
}

func (a *AvailabilityChecker) IsAvailable(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID int64) (bool, error) {
	taken, err := a.bookings.HasOverlap(ctx, roomID, checkIn, checkOut, excludeID)
	if err != nil {
		return false, err
	}
	return !taken, nil
}
