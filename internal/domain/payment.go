package domain

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentSuccess           PaymentStatus = "success"
	PaymentFailed            PaymentStatus = "failed"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

// A failed attempt can still be followed by a paid one on the same link.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:           {PaymentSuccess, PaymentFailed},
	PaymentFailed:            {PaymentPending, PaymentSuccess},
	PaymentSuccess:           {PaymentRefunded, PaymentPartiallyRefunded},
	PaymentPartiallyRefunded: {PaymentRefunded},
	PaymentRefunded:          {},
}

func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, t := range paymentTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

type Payment struct {
	ID                int64          `gorm:"primaryKey" json:"id"`
	BookingID         int64          `gorm:"uniqueIndex;not null" json:"booking_id"`
	Amount            float64        `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status            PaymentStatus  `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	TransactionID     string         `gorm:"type:varchar(128)" json:"transaction_id,omitempty"`
	ProviderLinkID    string         `gorm:"type:varchar(128);index" json:"provider_link_id,omitempty"`
	ProviderPaymentID string         `gorm:"type:varchar(128)" json:"provider_payment_id,omitempty"`
	ProviderResponse  datatypes.JSON `json:"-"`
	FailureReason     string         `gorm:"type:text" json:"failure_reason,omitempty"`
	RefundID          string         `gorm:"type:varchar(128)" json:"refund_id,omitempty"`
	RefundAmount      *float64       `gorm:"type:decimal(10,2)" json:"refund_amount,omitempty"`
	PaymentDate       *time.Time     `json:"payment_date,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`

	Booking *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
}
