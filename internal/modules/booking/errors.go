package booking

import (
	"fmt"

	"hotelbooking/internal/domain"
)

var (
	ErrInvalidDates          = fmt.Errorf("%w: check-out date must be after check-in date", domain.ErrValidation)
	ErrTooManyGuests         = fmt.Errorf("%w: number of guests exceeds room capacity", domain.ErrValidation)
	ErrReasonRequired        = fmt.Errorf("%w: cancellation reason is required", domain.ErrValidation)
	ErrRoomNotAvailable      = fmt.Errorf("%w: room is not available for the selected dates", domain.ErrConflict)
	ErrNotEditable           = fmt.Errorf("%w: only pending bookings can be updated", domain.ErrConflict)
	ErrAlreadyCancelled      = fmt.Errorf("%w: booking is already cancelled", domain.ErrConflict)
	ErrCannotCancelCompleted = fmt.Errorf("%w: cannot cancel completed booking", domain.ErrConflict)
	ErrNotCompletable        = fmt.Errorf("%w: only confirmed bookings can be completed", domain.ErrConflict)
)

func bookingNotFound(id int64) error {
	return fmt.Errorf("%w: booking with ID %d not found", domain.ErrNotFound, id)
}

func roomNotFound(id int64) error {
	return fmt.Errorf("%w: room with ID %d not found", domain.ErrNotFound, id)
}
