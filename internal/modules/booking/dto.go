package booking

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hotelbooking/internal/domain"
)

type CreateBookingRequest struct {
	RoomID          int64     `json:"room_id" validate:"required,gt=0"`
	CheckInDate     time.Time `json:"check_in_date" validate:"required"`
	CheckOutDate    time.Time `json:"check_out_date" validate:"required"`
	NumberOfGuests  int       `json:"number_of_guests" validate:"required,min=1"`
	SpecialRequests string    `json:"special_requests" validate:"max=1000"`
}

// UpdateBookingRequest is a patch: nil fields are left untouched.
type UpdateBookingRequest struct {
	CheckInDate     *time.Time `json:"check_in_date"`
	CheckOutDate    *time.Time `json:"check_out_date"`
	NumberOfGuests  *int       `json:"number_of_guests" validate:"omitempty,min=1"`
	SpecialRequests *string    `json:"special_requests" validate:"omitempty,max=1000"`
	Notes           *string    `json:"notes" validate:"omitempty,max=1000"`
}

type CancelBookingRequest struct {
	CancellationReason string `json:"cancellation_reason"`
}

// UnmarshalJSON accepts check-in and check-out as RFC3339 timestamps or
// YYYY-MM-DD dates.
func (r *CreateBookingRequest) UnmarshalJSON(data []byte) error {
	type plain CreateBookingRequest
	aux := struct {
		*plain
		CheckInDate  string `json:"check_in_date"`
		CheckOutDate string `json:"check_out_date"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if r.CheckInDate, err = parseOptionalDate("check_in_date", aux.CheckInDate); err != nil {
		return err
	}
	r.CheckOutDate, err = parseOptionalDate("check_out_date", aux.CheckOutDate)
	return err
}

func (r *UpdateBookingRequest) UnmarshalJSON(data []byte) error {
	type plain UpdateBookingRequest
	aux := struct {
		*plain
		CheckInDate  *string `json:"check_in_date"`
		CheckOutDate *string `json:"check_out_date"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.CheckInDate, r.CheckOutDate = nil, nil
	if aux.CheckInDate != nil {
		t, err := parseDate(strings.TrimSpace(*aux.CheckInDate))
		if err != nil {
			return dateFormatError("check_in_date")
		}
		r.CheckInDate = &t
	}
	if aux.CheckOutDate != nil {
		t, err := parseDate(strings.TrimSpace(*aux.CheckOutDate))
		if err != nil {
			return dateFormatError("check_out_date")
		}
		r.CheckOutDate = &t
	}
	return nil
}

// parseOptionalDate leaves an empty value as the zero time so that the
// required rule reports it.
func parseOptionalDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := parseDate(raw)
	if err != nil {
		return time.Time{}, dateFormatError(field)
	}
	return t, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}

func dateFormatError(field string) error {
	return fmt.Errorf("%w: %s must be an RFC3339 timestamp or a YYYY-MM-DD date", domain.ErrValidation, field)
}
