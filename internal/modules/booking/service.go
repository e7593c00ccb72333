package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/pkg/validator"
	"hotelbooking/internal/repository"
)

type Service struct {
	bookings     BookingRepository
	rooms        RoomRepository
	tx           Transactor
	availability *AvailabilityChecker
	notifier     StatusNotifier
	logger       *slog.Logger
	now          func() time.Time
}

func NewService(bookings BookingRepository, rooms RoomRepository, tx Transactor, notifier StatusNotifier, logger *slog.Logger) *Service {
	if tx == nil {
		tx = inlineTx{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		bookings:     bookings,
		rooms:        rooms,
		tx:           tx,
		availability: NewAvailabilityChecker(bookings),
		notifier:     notifier,
		logger:       logger,
		now:          func() time.Time { return domain.NormalizeTime(time.Now()) },
	}
}

type inlineTx struct{}

func (inlineTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// CreateBooking validates the stay, prices it and stores it as pending. The
// availability check and the insert share one transaction.
func (s *Service) CreateBooking(ctx context.Context, userID int64, req CreateBookingRequest) (*domain.Booking, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	checkIn := domain.NormalizeTime(req.CheckInDate)
	checkOut := domain.NormalizeTime(req.CheckOutDate)
	if !checkOut.After(checkIn) {
		return nil, ErrInvalidDates
	}

	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, roomNotFound(req.RoomID)
		}
		return nil, err
	}
	if req.NumberOfGuests > room.Capacity {
		return nil, ErrTooManyGuests
	}

	b := &domain.Booking{
		RoomID:          room.ID,
		UserID:          userID,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		NumberOfGuests:  req.NumberOfGuests,
		TotalAmount:     domain.StayTotal(domain.StayNights(checkIn, checkOut), room.PricePerNight),
		Status:          domain.BookingPending,
		SpecialRequests: strings.TrimSpace(req.SpecialRequests),
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		b.ID = 0
		ok, err := s.availability.IsAvailable(ctx, room.ID, checkIn, checkOut, 0)
		if err != nil {
			return err
		}
		if !ok {
			return ErrRoomNotAvailable
		}
		return s.bookings.Create(ctx, b)
	})
	if err != nil {
		if errors.Is(err, repository.ErrRangeTaken) {
			return nil, ErrRoomNotAvailable
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "booking created",
		"booking_id", b.ID, "room_id", b.RoomID, "user_id", userID, "total_amount", b.TotalAmount)
	return s.bookings.GetByID(ctx, b.ID)
}

func (s *Service) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, bookingNotFound(id)
		}
		return nil, err
	}
	return b, nil
}

// ListForCustomer returns the customer's bookings, newest first.
func (s *Service) ListForCustomer(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.ListAll(ctx)
}

// UpdateBooking applies a patch to a pending booking. New dates are checked
// against every other booking on the room and reprice the stay at the
// current room rate.
func (s *Service) UpdateBooking(ctx context.Context, id int64, req UpdateBookingRequest) (*domain.Booking, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		b, err := s.GetBooking(ctx, id)
		if err != nil {
			return err
		}
		if !b.Status.IsEditable() {
			return ErrNotEditable
		}

		room := b.Room
		if room == nil {
			return roomNotFound(b.RoomID)
		}

		if req.CheckInDate != nil || req.CheckOutDate != nil {
			checkIn, checkOut := b.CheckInDate, b.CheckOutDate
			if req.CheckInDate != nil {
				checkIn = domain.NormalizeTime(*req.CheckInDate)
			}
			if req.CheckOutDate != nil {
				checkOut = domain.NormalizeTime(*req.CheckOutDate)
			}
			if !checkOut.After(checkIn) {
				return ErrInvalidDates
			}

			ok, err := s.availability.IsAvailable(ctx, b.RoomID, checkIn, checkOut, b.ID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrRoomNotAvailable
			}

			b.CheckInDate, b.CheckOutDate = checkIn, checkOut
			b.TotalAmount = domain.StayTotal(domain.StayNights(checkIn, checkOut), room.PricePerNight)
		}

		if req.NumberOfGuests != nil {
			if *req.NumberOfGuests > room.Capacity {
				return ErrTooManyGuests
			}
			b.NumberOfGuests = *req.NumberOfGuests
		}
		if req.SpecialRequests != nil {
			b.SpecialRequests = strings.TrimSpace(*req.SpecialRequests)
		}
		if req.Notes != nil {
			b.Notes = strings.TrimSpace(*req.Notes)
		}

		return s.bookings.Save(ctx, b)
	})
	if err != nil {
		if errors.Is(err, repository.ErrRangeTaken) {
			return nil, ErrRoomNotAvailable
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "booking updated", "booking_id", id)
	return s.GetBooking(ctx, id)
}

func (s *Service) CancelBooking(ctx context.Context, id int64, reason string) (*domain.Booking, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	var b *domain.Booking
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.GetBooking(ctx, id)
		if err != nil {
			return err
		}

		switch b.Status {
		case domain.BookingCancelled:
			return ErrAlreadyCancelled
		case domain.BookingCompleted:
			return ErrCannotCancelCompleted
		}

		now := s.now()
		b.Status = domain.BookingCancelled
		b.CancellationReason = reason
		b.CancellationDate = &now
		return s.bookings.Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "booking cancelled", "booking_id", id, "reason", reason)
	s.notify(b)
	return b, nil
}

// CompleteBooking closes a confirmed stay.
func (s *Service) CompleteBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	var b *domain.Booking
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.GetBooking(ctx, id)
		if err != nil {
			return err
		}
		if !b.Status.CanTransitionTo(domain.BookingCompleted) {
			return ErrNotCompletable
		}
		b.Status = domain.BookingCompleted
		return s.bookings.Save(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "booking completed", "booking_id", id)
	s.notify(b)
	return b, nil
}

// DeleteBooking hard-deletes a booking in any status, together with its payment.
func (s *Service) DeleteBooking(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.bookings.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, bookingNotFound(id)
	}
	s.logger.InfoContext(ctx, "booking deleted", "booking_id", id)
	return true, nil
}

// FindAvailableRooms lists the hotel's active rooms flagged available. With
// strict set, rooms that have an overlapping booking for the range are
// dropped as well.
func (s *Service) FindAvailableRooms(ctx context.Context, hotelID int64, checkIn, checkOut time.Time, strict bool) ([]domain.Room, error) {
	checkIn = domain.NormalizeTime(checkIn)
	checkOut = domain.NormalizeTime(checkOut)
	if !checkOut.After(checkIn) {
		return nil, ErrInvalidDates
	}

	rooms, err := s.rooms.ListAvailableByHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if !strict {
		return rooms, nil
	}

	free := make([]domain.Room, 0, len(rooms))
	for _, room := range rooms {
		ok, err := s.availability.IsAvailable(ctx, room.ID, checkIn, checkOut, 0)
		if err != nil {
			return nil, err
		}
		if ok {
			free = append(free, room)
		}
	}
	return free, nil
}

func (s *Service) DashboardStats(ctx context.Context, userID int64) (*repository.UserBookingStats, error) {
	return s.bookings.StatsForUser(ctx, userID, s.now())
}

func (s *Service) notify(b *domain.Booking) {
	if s.notifier == nil || b == nil {
		return
	}
	s.notifier.NotifyBookingStatus(b.UserID, b.ID, b.Status)
}
