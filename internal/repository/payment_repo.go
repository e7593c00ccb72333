package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotelbooking/internal/database"
	"hotelbooking/internal/domain"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	var p domain.Payment
	if err := database.Conn(ctx, r.db).Where("booking_id = ?", bookingID).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// GetByProviderLinkIDForUpdate locks the payment row for the rest of the
// surrounding transaction. Dialects without row locks ignore the clause.
func (r *PaymentRepository) GetByProviderLinkIDForUpdate(ctx context.Context, linkID string) (*domain.Payment, error) {
	conn := database.Conn(ctx, r.db)
	if conn.Dialector.Name() != database.DialectSQLite {
		conn = conn.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var p domain.Payment
	if err := conn.Where("provider_link_id = ?", linkID).First(&p).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Save inserts or updates the payment. The booking association is never written.
func (r *PaymentRepository) Save(ctx context.Context, p *domain.Payment) error {
	return database.Conn(ctx, r.db).Omit(clause.Associations).Save(p).Error
}

func (r *PaymentRepository) List(ctx context.Context) ([]domain.Payment, error) {
	var out []domain.Payment
	err := database.Conn(ctx, r.db).
		Preload("Booking.Room").
		Preload("Booking.User").
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}
