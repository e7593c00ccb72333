package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/datatypes"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/pkg/cashfree"
)

const (
	defaultCustomerPhone = "9999999999"
	linkPurpose          = "Payment for Hotel Booking"
)

type Config struct {
	Currency        string
	FrontendURL     string
	BackendURL      string
	WebhookSecret   string
	VerifySignature bool
}

type Service struct {
	payments paymentStore
	bookings bookingStore
	provider ProviderClient
	tx       transactor
	notifier statusNotifier
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(payments paymentStore, bookings bookingStore, provider ProviderClient, tx transactor, notifier statusNotifier, cfg Config, logger *slog.Logger) *Service {
	if tx == nil {
		tx = inlineTx{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")
	return &Service{
		payments: payments,
		bookings: bookings,
		provider: provider,
		tx:       tx,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return domain.NormalizeTime(time.Now()) },
	}
}

type inlineTx struct{}

func (inlineTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// InitiatePayment creates a provider payment link for a pending booking and
// records it on the booking's payment row. customerID 0 skips the ownership
// check. Nothing is written when the provider call fails.
func (s *Service) InitiatePayment(ctx context.Context, bookingID, customerID int64) (*InitiatePaymentResponse, error) {
	b, err := s.loadBooking(ctx, bookingID, customerID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingPending {
		return nil, ErrBookingNotPending
	}

	existing, err := s.payments.GetByBookingID(ctx, b.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status == domain.PaymentSuccess {
		return nil, ErrAlreadyPaid
	}
	if b.User == nil {
		return nil, fmt.Errorf("%w: customer with ID %d not found", domain.ErrNotFound, b.UserID)
	}

	linkID := fmt.Sprintf("%d_%d", b.ID, s.now().UnixMilli())
	phone := b.User.Phone
	if phone == "" {
		phone = defaultCustomerPhone
	}
	link, err := s.provider.CreatePaymentLink(ctx, cashfree.CreateLinkRequest{
		Customer: cashfree.CustomerDetails{
			Email: b.User.Email,
			Name:  b.User.FullName(),
			Phone: phone,
		},
		Amount:   b.TotalAmount,
		Currency: s.cfg.Currency,
		Purpose:  linkPurpose,
		LinkID:   linkID,
		Meta: cashfree.LinkMeta{
			ReturnURL: s.cfg.FrontendURL + "/payment/callback?link_id=" + linkID,
			NotifyURL: s.cfg.BackendURL + "/api/v1/payments/webhook",
		},
		AutoReminders: true,
		Notify:        cashfree.LinkNotify{SendEmail: true},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "payment link creation failed", "booking_id", b.ID, "error", err)
		return nil, upstream(err)
	}

	p := existing
	if p == nil {
		p = &domain.Payment{BookingID: b.ID}
	}
	p.Amount = b.TotalAmount
	p.Status = domain.PaymentPending
	p.ProviderLinkID = link.LinkID
	if p.ProviderLinkID == "" {
		p.ProviderLinkID = linkID
	}
	p.ProviderPaymentID = link.CFLinkID.String()
	p.ProviderResponse = datatypes.JSON(link.Raw)
	p.FailureReason = ""

	if err := s.payments.Save(ctx, p); err != nil {
		s.logger.ErrorContext(ctx, "payment link created but not recorded",
			"booking_id", b.ID, "link_id", p.ProviderLinkID, "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "payment initiated", "booking_id", b.ID, "payment_id", p.ID, "link_id", p.ProviderLinkID)
	return &InitiatePaymentResponse{PaymentLink: link.LinkURL, LinkID: p.ProviderLinkID}, nil
}

// VerifyPayment asks the provider for the orders made against linkID and
// applies the outcome locally. It reports whether the order was paid.
func (s *Service) VerifyPayment(ctx context.Context, linkID string) (bool, error) {
	linkID = strings.TrimSpace(linkID)
	if linkID == "" {
		return false, ErrLinkIDRequired
	}

	orders, err := s.provider.GetLinkOrders(ctx, linkID)
	if err != nil {
		s.logger.ErrorContext(ctx, "payment verification failed", "link_id", linkID, "error", err)
		return false, upstream(err)
	}

	var order cashfree.Order
	if len(orders) > 0 {
		order = orders[0]
	}
	outcome := cashfree.OrderOutcome(order.OrderStatus)

	err = s.applyOutcome(ctx, linkID, outcome, attemptDetails{
		providerPaymentID: order.CFOrderID.String(),
		failureReason:     order.OrderNote,
	})
	if err != nil {
		return false, err
	}
	return outcome == cashfree.OutcomePaid, nil
}

// HandleWebhook applies a provider push notification keyed by the link id.
func (s *Service) HandleWebhook(ctx context.Context, payload WebhookPayload) error {
	orderID := strings.TrimSpace(payload.OrderID)
	if orderID == "" {
		return ErrOrderIDRequired
	}
	return s.applyOutcome(ctx, orderID, cashfree.WebhookOutcome(payload.TxStatus), attemptDetails{
		transactionID: payload.ReferenceID,
		failureReason: payload.TxMsg,
	})
}

// VerifyWebhookSignature is a no-op unless signature checks are enabled.
func (s *Service) VerifyWebhookSignature(timestamp string, body []byte, signature string) error {
	if !s.cfg.VerifySignature {
		return nil
	}
	if !cashfree.VerifyWebhookSignature(s.cfg.WebhookSecret, timestamp, body, signature) {
		return ErrInvalidSignature
	}
	return nil
}

// GetPaymentByBooking returns the payment of a booking. customerID 0 skips
// the ownership check.
func (s *Service) GetPaymentByBooking(ctx context.Context, bookingID, customerID int64) (*domain.Payment, error) {
	b, err := s.loadBooking(ctx, bookingID, customerID)
	if err != nil {
		return nil, err
	}
	if b.Payment == nil {
		return nil, fmt.Errorf("%w: payment for booking %d not found", domain.ErrNotFound, bookingID)
	}
	return b.Payment, nil
}

func (s *Service) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	return s.payments.List(ctx)
}

type attemptDetails struct {
	providerPaymentID string
	transactionID     string
	failureReason     string
}

// applyOutcome moves the payment behind linkID to the observed outcome. A
// successful payment confirms the booking in the same transaction, but only
// while the booking is still pending.
func (s *Service) applyOutcome(ctx context.Context, linkID string, outcome cashfree.Outcome, d attemptDetails) error {
	var confirmedBookingID int64

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		confirmedBookingID = 0
		p, err := s.payments.GetByProviderLinkIDForUpdate(ctx, linkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: payment with link ID %s not found", domain.ErrNotFound, linkID)
			}
			return err
		}

		switch outcome {
		case cashfree.OutcomePaid:
			if !p.Status.CanTransitionTo(domain.PaymentSuccess) {
				s.logger.InfoContext(ctx, "payment already settled", "payment_id", p.ID, "status", p.Status)
				return nil
			}
			paidAt := s.now()
			p.Status = domain.PaymentSuccess
			p.PaymentDate = &paidAt
			p.FailureReason = ""
			if d.providerPaymentID != "" {
				p.ProviderPaymentID = d.providerPaymentID
			}
			if d.transactionID != "" {
				p.TransactionID = d.transactionID
			}
			if err := s.payments.Save(ctx, p); err != nil {
				return err
			}

			confirmed, err := s.bookings.ConfirmIfPending(ctx, p.BookingID)
			if err != nil {
				return err
			}
			if !confirmed {
				s.logger.WarnContext(ctx, "payment succeeded for a booking that is no longer pending",
					"payment_id", p.ID, "booking_id", p.BookingID)
				return nil
			}
			confirmedBookingID = p.BookingID

		case cashfree.OutcomeFailed:
			if !p.Status.CanTransitionTo(domain.PaymentFailed) {
				s.logger.InfoContext(ctx, "ignoring failure for settled payment", "payment_id", p.ID, "status", p.Status)
				return nil
			}
			p.Status = domain.PaymentFailed
			p.FailureReason = d.failureReason
			if p.FailureReason == "" {
				p.FailureReason = "Payment failed"
			}
			if d.transactionID != "" {
				p.TransactionID = d.transactionID
			}
			return s.payments.Save(ctx, p)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "payment outcome applied", "link_id", linkID, "outcome", outcome.String())
	if confirmedBookingID != 0 {
		s.notifyConfirmed(ctx, confirmedBookingID)
	}
	return nil
}

func (s *Service) notifyConfirmed(ctx context.Context, bookingID int64) {
	if s.notifier == nil {
		return
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		s.logger.WarnContext(ctx, "confirmed booking not reloaded for notification", "booking_id", bookingID, "error", err)
		return
	}
	s.notifier.NotifyBookingStatus(b.UserID, b.ID, b.Status)
}

func (s *Service) loadBooking(ctx context.Context, bookingID, customerID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if b == nil || (customerID != 0 && b.UserID != customerID) {
		return nil, fmt.Errorf("%w: booking with ID %d not found", domain.ErrNotFound, bookingID)
	}
	return b, nil
}
