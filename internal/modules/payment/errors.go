package payment

import (
	"errors"
	"fmt"

	"hotelbooking/internal/domain"
)

var (
	ErrBookingNotPending = fmt.Errorf("%w: booking is not in pending status", domain.ErrConflict)
	ErrAlreadyPaid       = fmt.Errorf("%w: payment already completed for this booking", domain.ErrConflict)
	ErrLinkIDRequired    = fmt.Errorf("%w: link_id is required", domain.ErrValidation)
	ErrOrderIDRequired   = fmt.Errorf("%w: orderId is required", domain.ErrValidation)
	ErrInvalidSignature  = errors.New("invalid webhook signature")
)

func upstream(err error) error {
	return fmt.Errorf("%w: payment operation failed: %v", domain.ErrUpstream, err)
}
