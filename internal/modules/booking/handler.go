package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotelbooking/internal/domain"
	"hotelbooking/internal/pkg/response"
)

const conflictCode = "BOOKING_CONFLICT"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/hotels/:id/available-rooms", h.FindAvailableRooms)
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings/me", h.ListMyBookings)
	rg.GET("/bookings/me/stats", h.DashboardStats)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.PATCH("/bookings/:id", h.UpdateBooking)
	rg.POST("/bookings/:id/cancel", h.CancelBooking)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookings", h.ListAllBookings)
	rg.DELETE("/bookings/:id", h.DeleteBooking)
	rg.POST("/bookings/:id/complete", h.CompleteBooking)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		response.FromError(c, err, conflictCode)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) GetBooking(c *gin.Context) {
	b, ok := h.loadOwned(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ListMyBookings(c *gin.Context) {
	list, err := h.service.ListForCustomer(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.FromError(c, err, conflictCode)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *Handler) DashboardStats(c *gin.Context) {
	stats, err := h.service.DashboardStats(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.FromError(c, err, conflictCode)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

func (h *Handler) UpdateBooking(c *gin.Context) {
	b, ok := h.loadOwned(c)
	if !ok {
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	updated, err := h.service.UpdateBooking(c.Request.Context(), b.ID, req)
	if err != nil {
		response.FromError(c, err, conflictCode)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": updated})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	b, ok := h.loadOwned(c)
	if !ok {
		return
	}

	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cancelled, err := h.service.CancelBooking(c.Request.Context(), b.ID, req.CancellationReason)
	if err != nil {
		response.FromError(c, err, conflictCode)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": cancelled})
}

func (h *Handler) ListAllBookings(c *gin.Context) {
	list, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.FromError(c, err, conflictCode)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	deleted, err := h.service.DeleteBooking(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, conflictCode)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": deleted})
}

func (h *Handler) CompleteBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	b, err := h.service.CompleteBooking(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, conflictCode)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) FindAvailableRooms(c *gin.Context) {
	hotelID, ok := parseID(c)
	if !ok {
		return
	}
	checkIn, err1 := parseDate(c.Query("check_in"))
	checkOut, err2 := parseDate(c.Query("check_out"))
	if err1 != nil || err2 != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "check_in and check_out must be RFC3339 timestamps or YYYY-MM-DD dates")
		return
	}
	strict, _ := strconv.ParseBool(c.DefaultQuery("strict", "false"))

	rooms, err := h.service.FindAvailableRooms(c.Request.Context(), hotelID, checkIn, checkOut, strict)
	if err != nil {
		response.FromError(c, err, conflictCode)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rooms": rooms})
}

// loadOwned fetches the booking named in the path. Customers only see their
// own bookings; admins see all.
func (h *Handler) loadOwned(c *gin.Context) (*domain.Booking, bool) {
	id, ok := parseID(c)
	if !ok {
		return nil, false
	}
	b, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, conflictCode)
		return nil, false
	}
	if c.GetString("role") != string(domain.RoleAdmin) && b.UserID != c.GetInt64("user_id") {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't own this booking")
		return nil, false
	}
	return b, true
}

func bindError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrValidation) {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return 0, false
	}
	return id, true
}
