package notification

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"hotelbooking/internal/domain"
)

const (
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"
	TypeBookingCompleted = "booking.completed"

	writeWait = 10 * time.Second
)

// StatusEvent is pushed to a customer when one of their bookings changes state.
type StatusEvent struct {
	Type      string               `json:"type"`
	BookingID int64                `json:"booking_id"`
	Status    domain.BookingStatus `json:"status"`
	At        time.Time            `json:"at"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Hub keeps at most one live connection per user.
type Hub struct {
	connections map[int64]*client
	mutex       sync.RWMutex
	logger      *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		connections: make(map[int64]*client),
		logger:      logger,
	}
}

func (h *Hub) Register(userID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if old, exists := h.connections[userID]; exists {
		_ = old.conn.Close()
	}
	h.connections[userID] = &client{conn: conn}
}

// Unregister drops conn if it is still the user's current connection.
func (h *Hub) Unregister(userID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if c, exists := h.connections[userID]; exists && c.conn == conn {
		_ = c.conn.Close()
		delete(h.connections, userID)
	}
}

func (h *Hub) SendToUser(userID int64, message any) bool {
	h.mutex.RLock()
	c, exists := h.connections[userID]
	h.mutex.RUnlock()

	if !exists {
		return false
	}
	if err := c.writeJSON(message); err != nil {
		h.logger.Warn("websocket write failed", "user_id", userID, "error", err)
		h.Unregister(userID, c.conn)
		return false
	}
	return true
}

// NotifyBookingStatus pushes the new status if the customer is connected.
// Statuses nobody subscribes to are dropped.
func (h *Hub) NotifyBookingStatus(userID, bookingID int64, status domain.BookingStatus) {
	eventType, ok := eventTypes[status]
	if !ok {
		return
	}
	delivered := h.SendToUser(userID, StatusEvent{
		Type:      eventType,
		BookingID: bookingID,
		Status:    status,
		At:        time.Now().UTC(),
	})
	h.logger.Debug("booking status pushed", "user_id", userID, "booking_id", bookingID, "status", status, "delivered", delivered)
}

var eventTypes = map[domain.BookingStatus]string{
	domain.BookingConfirmed: TypeBookingConfirmed,
	domain.BookingCancelled: TypeBookingCancelled,
	domain.BookingCompleted: TypeBookingCompleted,
}

func (h *Hub) isOnline(userID int64) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	_, exists := h.connections[userID]
	return exists
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, c := range h.connections {
		_ = c.conn.Close()
		delete(h.connections, userID)
	}
}
