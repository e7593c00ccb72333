package payment

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/pkg/response"
)

const (
	conflictCode = "PAYMENT_CONFLICT"

	headerWebhookTimestamp = "x-webhook-timestamp"
	headerWebhookSignature = "x-webhook-signature"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/initiate", h.InitiatePayment)
	rg.GET("/payments/verify", h.VerifyPayment)
	rg.GET("/bookings/:id/payment", h.GetPaymentByBooking)
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/webhook", h.Webhook)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/payments", h.ListPayments)
}

func (h *Handler) InitiatePayment(c *gin.Context) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "booking_id is required")
		return
	}

	resp, err := h.service.InitiatePayment(c.Request.Context(), req.BookingID, customerScope(c))
	if err != nil {
		response.FromError(c, err, conflictCode)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) VerifyPayment(c *gin.Context) {
	paid, err := h.service.VerifyPayment(c.Request.Context(), c.Query("link_id"))
	if err != nil {
		response.FromError(c, err, conflictCode)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"paid": paid})
}

func (h *Handler) GetPaymentByBooking(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || bookingID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	p, err := h.service.GetPaymentByBooking(c.Request.Context(), bookingID, customerScope(c))
	if err != nil {
		response.FromError(c, err, conflictCode)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment": p})
}

func (h *Handler) ListPayments(c *gin.Context) {
	list, err := h.service.ListPayments(c.Request.Context())
	if err != nil {
		response.FromError(c, err, conflictCode)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": list})
}

// Webhook receives provider push notifications. The raw body is kept for the
// signature check before it is decoded.
func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unreadable body")
		return
	}

	err = h.service.VerifyWebhookSignature(c.GetHeader(headerWebhookTimestamp), body, c.GetHeader(headerWebhookSignature))
	if errors.Is(err, ErrInvalidSignature) {
		response.Error(c, http.StatusUnauthorized, "INVALID_SIGNATURE", err.Error())
		return
	}

	var payload WebhookPayload
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&payload); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid webhook payload")
		return
	}

	if err := h.service.HandleWebhook(c.Request.Context(), payload); err != nil {
		response.FromError(c, err, conflictCode)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// customerScope limits lookups to the caller's own bookings unless the caller
// is an admin.
func customerScope(c *gin.Context) int64 {
	if c.GetString("role") == string(domain.RoleAdmin) {
		return 0
	}
	return c.GetInt64("user_id")
}
