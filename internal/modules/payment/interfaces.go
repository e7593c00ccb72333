package payment

import (
	"context"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/pkg/cashfree"
)

type bookingStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ConfirmIfPending(ctx context.Context, id int64) (bool, error)
}

type paymentStore interface {
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error)
	GetByProviderLinkIDForUpdate(ctx context.Context, linkID string) (*domain.Payment, error)
	Save(ctx context.Context, p *domain.Payment) error
	List(ctx context.Context) ([]domain.Payment, error)
}

// ProviderClient is the external payment-link API.
type ProviderClient interface {
	CreatePaymentLink(ctx context.Context, req cashfree.CreateLinkRequest) (*cashfree.Link, error)
	GetLinkOrders(ctx context.Context, linkID string) ([]cashfree.Order, error)
}

type transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type statusNotifier interface {
	NotifyBookingStatus(userID, bookingID int64, status domain.BookingStatus)
}
