package payment

type InitiatePaymentRequest struct {
	BookingID int64 `json:"booking_id" binding:"required"`
}

type InitiatePaymentResponse struct {
	PaymentLink string `json:"payment_link"`
	LinkID      string `json:"link_id"`
}

// WebhookPayload is the provider's push notification body.
type WebhookPayload struct {
	OrderID     string `json:"orderId"`
	TxStatus    string `json:"txStatus"`
	ReferenceID string `json:"referenceId"`
	TxMsg       string `json:"txMsg"`
}
