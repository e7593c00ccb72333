package cashfree

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Outcome is the provider-independent result of a payment attempt.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomePaid
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePaid:
		return "paid"
	case OutcomeFailed:
		return "failed"
	default:
		return "pending"
	}
}

// OrderOutcome maps an order_status from the link orders endpoint.
// Anything other than PAID or FAILED is still in flight.
func OrderOutcome(orderStatus string) Outcome {
	switch orderStatus {
	case "PAID":
		return OutcomePaid
	case "FAILED":
		return OutcomeFailed
	default:
		return OutcomePending
	}
}

// WebhookOutcome maps the txStatus of a webhook notification. Every status
// other than SUCCESS is a failed attempt.
func WebhookOutcome(txStatus string) Outcome {
	if txStatus == "SUCCESS" {
		return OutcomePaid
	}
	return OutcomeFailed
}

// VerifyWebhookSignature checks base64(HMAC-SHA256(timestamp+body, secret)).
func VerifyWebhookSignature(secret, timestamp string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(SignWebhook(secret, timestamp, body)), []byte(signature))
}

func SignWebhook(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
