package cashfree

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL    = "https://sandbox.cashfree.com/pg"
	DefaultAPIVersion = "2023-08-01"
)

type Config struct {
	BaseURL    string
	AppID      string
	SecretKey  string
	APIVersion string
	Timeout    time.Duration
}

// Client talks to the payment-link API of the provider.
type Client struct {
	http   *http.Client
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		http:   &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		logger: logger,
	}
}

type CustomerDetails struct {
	Email string `json:"customer_email"`
	Name  string `json:"customer_name"`
	Phone string `json:"customer_phone"`
}

type LinkMeta struct {
	ReturnURL string `json:"return_url"`
	NotifyURL string `json:"notify_url"`
}

type LinkNotify struct {
	SendEmail bool `json:"send_email"`
	SendSMS   bool `json:"send_sms"`
}

type CreateLinkRequest struct {
	Customer      CustomerDetails `json:"customer_details"`
	Amount        float64         `json:"link_amount"`
	Currency      string          `json:"link_currency"`
	Purpose       string          `json:"link_purpose"`
	LinkID        string          `json:"link_id"`
	Meta          LinkMeta        `json:"link_meta"`
	AutoReminders bool            `json:"link_auto_reminders"`
	Notify        LinkNotify      `json:"link_notify"`
}

type Link struct {
	LinkID     string      `json:"link_id"`
	LinkURL    string      `json:"link_url"`
	CFLinkID   json.Number `json:"cf_link_id"`
	LinkStatus string      `json:"link_status"`

	Raw json.RawMessage `json:"-"`
}

type Order struct {
	OrderID     string      `json:"order_id"`
	CFOrderID   json.Number `json:"cf_order_id"`
	OrderStatus string      `json:"order_status"`
	OrderNote   string      `json:"order_note"`
	OrderAmount float64     `json:"order_amount"`
}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cashfree returned status %d: %s", e.StatusCode, e.Message)
}

func (c *Client) CreatePaymentLink(ctx context.Context, req CreateLinkRequest) (*Link, error) {
	var link Link
	raw, err := c.do(ctx, http.MethodPost, "/links", req, &link)
	if err != nil {
		return nil, err
	}
	if link.LinkURL == "" {
		return nil, errors.New("cashfree: response has no link_url")
	}
	link.Raw = raw
	return &link, nil
}

// GetLinkOrders lists the orders made against a payment link, newest first
// as returned by the provider.
func (c *Client) GetLinkOrders(ctx context.Context, linkID string) ([]Order, error) {
	var orders []Order
	if _, err := c.do(ctx, http.MethodGet, "/links/"+url.PathEscape(linkID)+"/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) (json.RawMessage, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-client-id", c.cfg.AppID)
	req.Header.Set("x-client-secret", c.cfg.SecretKey)
	req.Header.Set("x-api-version", c.cfg.APIVersion)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("cashfree request failed", "method", method, "path", path, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	c.logger.Debug("cashfree response", "method", method, "path", path, "status", resp.StatusCode, "latency", time.Since(start))

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
		c.logger.Error("cashfree returned error", "method", method, "path", path, "status", resp.StatusCode, "error", apiErr.Message)
		return nil, apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("cashfree: decode response: %w", err)
		}
	}
	return raw, nil
}

func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	snippet := string(raw)
	if len(snippet) > 512 {
		snippet = snippet[:512]
	}
	return strings.TrimSpace(snippet)
}
