package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hotelbooking/internal/database"
	"hotelbooking/internal/database/dbtest"
	"hotelbooking/internal/domain"
	"hotelbooking/internal/modules/booking"
	"hotelbooking/internal/modules/notification"
	"hotelbooking/internal/modules/payment"
	"hotelbooking/internal/pkg/cashfree"
	"hotelbooking/internal/pkg/jwt"
	"hotelbooking/internal/repository"
)

const webhookSecret = "provider-secret"

// fakeProvider stands in for the payment-link API.
type fakeProvider struct {
	mu          sync.Mutex
	failCreate  bool
	orderStatus string
}

func (p *fakeProvider) setOrderStatus(status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orderStatus = status
}

func (p *fakeProvider) setFailCreate(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failCreate = fail
}

func (p *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/links":
		if p.failCreate {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"provider down"}`))
			return
		}
		var req cashfree.CreateLinkRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"link_id":     req.LinkID,
			"link_url":    "https://pay.example/" + req.LinkID,
			"cf_link_id":  1001,
			"link_status": "ACTIVE",
		})
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/links/") && strings.HasSuffix(r.URL.Path, "/orders"):
		if p.orderStatus == "" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{{
			"order_id":     "order_1",
			"cf_order_id":  555,
			"order_status": p.orderStatus,
			"order_amount": 200,
		}})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type env struct {
	t        *testing.T
	db       *gorm.DB
	router   *gin.Engine
	provider *fakeProvider
	jwt      *jwt.Service
	customer *domain.User
	other    *domain.User
	admin    *domain.User
	room     *domain.Room
	hotel    *domain.Hotel
}

func setup(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.Open(t)
	provider := &fakeProvider{}
	providerSrv := httptest.NewServer(provider)
	t.Cleanup(providerSrv.Close)

	e := &env{t: t, db: db, provider: provider, jwt: jwt.New("test-secret", time.Hour)}

	e.customer = &domain.User{Email: "asha@example.com", FirstName: "Asha", Role: domain.RoleUser, IsActive: true}
	e.other = &domain.User{Email: "ravi@example.com", FirstName: "Ravi", Role: domain.RoleUser, IsActive: true}
	e.admin = &domain.User{Email: "admin@example.com", FirstName: "Admin", Role: domain.RoleAdmin, IsActive: true}
	for _, u := range []*domain.User{e.customer, e.other, e.admin} {
		require.NoError(t, db.Create(u).Error)
	}
	e.hotel = &domain.Hotel{Name: "Lake View", City: "Udaipur", IsActive: true}
	require.NoError(t, db.Create(e.hotel).Error)
	e.room = &domain.Room{HotelID: e.hotel.ID, RoomNumber: "101", Type: domain.RoomDouble, PricePerNight: 100, Capacity: 2, Status: domain.RoomAvailable, IsActive: true}
	require.NoError(t, db.Create(e.room).Error)

	bookings := repository.NewBookingRepository(db)
	rooms := repository.NewRoomRepository(db)
	payments := repository.NewPaymentRepository(db)
	tx := database.NewTransactor(db)
	hub := notification.NewHub(nil)
	t.Cleanup(hub.Close)

	client := cashfree.New(cashfree.Config{BaseURL: providerSrv.URL, AppID: "app", SecretKey: webhookSecret}, nil)
	bookingSvc := booking.NewService(bookings, rooms, tx, hub, nil)
	paymentSvc := payment.NewService(payments, bookings, client, tx, hub, payment.Config{
		FrontendURL:     "http://front.test",
		BackendURL:      "http://back.test",
		WebhookSecret:   webhookSecret,
		VerifySignature: true,
	}, nil)

	e.router = NewRouter(Options{JWT: e.jwt, DB: db}, Handlers{
		Booking:      booking.NewHandler(bookingSvc),
		Payment:      payment.NewHandler(paymentSvc),
		Notification: notification.NewHandler(hub, e.jwt, nil),
	})
	return e
}

func (e *env) token(u *domain.User) string {
	tok, err := e.jwt.GenerateToken(u.ID, string(u.Role))
	require.NoError(e.t, err)
	return tok
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (e *env) do(method, path string, as *domain.User, body any) (int, envelope) {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+e.token(as))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var out envelope
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func at(day, hour int) time.Time {
	return time.Date(2030, 12, day, hour, 0, 0, 0, time.UTC)
}

func (e *env) createBooking(as *domain.User, in, out time.Time) (int, envelope) {
	return e.do(http.MethodPost, "/api/v1/bookings", as, map[string]any{
		"room_id":          e.room.ID,
		"check_in_date":    in,
		"check_out_date":   out,
		"number_of_guests": 2,
	})
}

func decodeBooking(t *testing.T, resp envelope) domain.Booking {
	t.Helper()
	var data struct {
		Booking domain.Booking `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data.Booking
}

func (e *env) countBookings() int64 {
	var n int64
	require.NoError(e.t, e.db.Model(&domain.Booking{}).Count(&n).Error)
	return n
}

func (e *env) countPayments() int64 {
	var n int64
	require.NoError(e.t, e.db.Model(&domain.Payment{}).Count(&n).Error)
	return n
}

func TestHealthz(t *testing.T) {
	e := setup(t)
	code, _ := e.do(http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestBookAndPay_HappyPath(t *testing.T) {
	e := setup(t)

	code, resp := e.createBooking(e.customer, at(1, 0), at(3, 0))
	require.Equal(t, http.StatusCreated, code, resp.Error.Message)
	b := decodeBooking(t, resp)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.InDelta(t, 200.0, b.TotalAmount, 0.001)
	require.NotNil(t, b.Room)
	require.NotNil(t, b.Room.Hotel)

	code, resp = e.do(http.MethodPost, "/api/v1/payments/initiate", e.customer, map[string]any{"booking_id": b.ID})
	require.Equal(t, http.StatusOK, code, resp.Error.Message)
	var link payment.InitiatePaymentResponse
	require.NoError(t, json.Unmarshal(resp.Data, &link))
	assert.True(t, strings.HasPrefix(link.LinkID, itoa(b.ID)+"_"), link.LinkID)
	assert.Equal(t, "https://pay.example/"+link.LinkID, link.PaymentLink)

	e.provider.setOrderStatus("PAID")
	code, resp = e.do(http.MethodGet, "/api/v1/payments/verify?link_id="+link.LinkID, e.customer, nil)
	require.Equal(t, http.StatusOK, code, resp.Error.Message)
	assert.JSONEq(t, `{"paid":true}`, string(resp.Data))

	code, resp = e.do(http.MethodGet, "/api/v1/bookings/"+itoa(b.ID), e.customer, nil)
	require.Equal(t, http.StatusOK, code)
	got := decodeBooking(t, resp)
	assert.Equal(t, domain.BookingConfirmed, got.Status)
	require.NotNil(t, got.Payment)
	assert.Equal(t, domain.PaymentSuccess, got.Payment.Status)
	assert.NotNil(t, got.Payment.PaymentDate)

	code, resp = e.do(http.MethodGet, "/api/v1/bookings/me/stats", e.customer, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `"total_spent":200`)
}

func TestVerify_PaidAfterFailedAttemptConfirms(t *testing.T) {
	e := setup(t)
	code, resp := e.createBooking(e.customer, at(1, 0), at(3, 0))
	require.Equal(t, http.StatusCreated, code)
	b := decodeBooking(t, resp)

	code, resp = e.do(http.MethodPost, "/api/v1/payments/initiate", e.customer, map[string]any{"booking_id": b.ID})
	require.Equal(t, http.StatusOK, code)
	var link payment.InitiatePaymentResponse
	require.NoError(t, json.Unmarshal(resp.Data, &link))

	e.provider.setOrderStatus("FAILED")
	code, resp = e.do(http.MethodGet, "/api/v1/payments/verify?link_id="+link.LinkID, e.customer, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"paid":false}`, string(resp.Data))

	e.provider.setOrderStatus("PAID")
	code, resp = e.do(http.MethodGet, "/api/v1/payments/verify?link_id="+link.LinkID, e.customer, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"paid":true}`, string(resp.Data))

	var p domain.Payment
	require.NoError(t, e.db.Where("booking_id = ?", b.ID).First(&p).Error)
	assert.Equal(t, domain.PaymentSuccess, p.Status)

	var stored domain.Booking
	require.NoError(t, e.db.First(&stored, b.ID).Error)
	assert.Equal(t, domain.BookingConfirmed, stored.Status)
}

func TestCreateBooking_OverlapRejected(t *testing.T) {
	e := setup(t)

	code, resp := e.createBooking(e.customer, at(1, 0), at(5, 0))
	require.Equal(t, http.StatusCreated, code)
	first := decodeBooking(t, resp)
	require.NoError(t, e.db.Model(&domain.Booking{}).Where("id = ?", first.ID).Update("status", domain.BookingConfirmed).Error)

	code, resp = e.createBooking(e.other, at(3, 0), at(7, 0))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "BOOKING_CONFLICT", resp.Error.Code)
	assert.Equal(t, int64(1), e.countBookings())

	code, _ = e.createBooking(e.other, at(5, 0), at(7, 0))
	assert.Equal(t, http.StatusCreated, code)
}

func TestCreateBooking_Validation(t *testing.T) {
	e := setup(t)

	code, resp := e.createBooking(e.customer, at(5, 0), at(5, 0))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	code, _ = e.createBooking(nil, at(1, 0), at(2, 0))
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, int64(0), e.countBookings())
}

func TestCreateBooking_DateOnlyInput(t *testing.T) {
	e := setup(t)

	code, resp := e.do(http.MethodPost, "/api/v1/bookings", e.customer, map[string]any{
		"room_id":          e.room.ID,
		"check_in_date":    "2030-12-01",
		"check_out_date":   "2030-12-03",
		"number_of_guests": 1,
	})
	require.Equal(t, http.StatusCreated, code, resp.Error.Message)
	b := decodeBooking(t, resp)
	assert.True(t, at(1, 0).Equal(b.CheckInDate))
	assert.InDelta(t, 200.0, b.TotalAmount, 0.001)

	code, resp = e.do(http.MethodPost, "/api/v1/bookings", e.customer, map[string]any{
		"room_id":          e.room.ID,
		"check_in_date":    "12/05/2030",
		"check_out_date":   "2030-12-07",
		"number_of_guests": 1,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "check_in_date")
}

func TestInitiatePayment_ProviderFailure(t *testing.T) {
	e := setup(t)
	code, resp := e.createBooking(e.customer, at(1, 0), at(2, 0))
	require.Equal(t, http.StatusCreated, code)
	b := decodeBooking(t, resp)

	e.provider.setFailCreate(true)
	code, resp = e.do(http.MethodPost, "/api/v1/payments/initiate", e.customer, map[string]any{"booking_id": b.ID})
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, "PAYMENT_PROVIDER_ERROR", resp.Error.Code)
	assert.Equal(t, int64(0), e.countPayments())
}

func TestInitiatePayment_OtherCustomersBooking(t *testing.T) {
	e := setup(t)
	code, resp := e.createBooking(e.customer, at(1, 0), at(2, 0))
	require.Equal(t, http.StatusCreated, code)
	b := decodeBooking(t, resp)

	code, _ = e.do(http.MethodPost, "/api/v1/payments/initiate", e.other, map[string]any{"booking_id": b.ID})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = e.do(http.MethodGet, "/api/v1/bookings/"+itoa(b.ID), e.other, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestWebhook_SignedSuccessConfirms(t *testing.T) {
	e := setup(t)
	code, resp := e.createBooking(e.customer, at(1, 0), at(2, 0))
	require.Equal(t, http.StatusCreated, code)
	b := decodeBooking(t, resp)

	code, resp = e.do(http.MethodPost, "/api/v1/payments/initiate", e.customer, map[string]any{"booking_id": b.ID})
	require.Equal(t, http.StatusOK, code)
	var link payment.InitiatePaymentResponse
	require.NoError(t, json.Unmarshal(resp.Data, &link))

	body := []byte(`{"orderId":"` + link.LinkID + `","txStatus":"SUCCESS","referenceId":"ref-9"}`)
	ts := "1700000000"

	unsigned := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, unsigned)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	signed := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook", bytes.NewReader(body))
	signed.Header.Set("x-webhook-timestamp", ts)
	signed.Header.Set("x-webhook-signature", cashfree.SignWebhook(webhookSecret, ts, body))
	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, signed)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var p domain.Payment
	require.NoError(t, e.db.Where("booking_id = ?", b.ID).First(&p).Error)
	assert.Equal(t, domain.PaymentSuccess, p.Status)
	assert.Equal(t, "ref-9", p.TransactionID)

	var stored domain.Booking
	require.NoError(t, e.db.First(&stored, b.ID).Error)
	assert.Equal(t, domain.BookingConfirmed, stored.Status)
}

func TestCancelAndAdminRoutes(t *testing.T) {
	e := setup(t)
	code, resp := e.createBooking(e.customer, at(1, 0), at(2, 0))
	require.Equal(t, http.StatusCreated, code)
	b := decodeBooking(t, resp)

	code, _ = e.do(http.MethodPost, "/api/v1/bookings/"+itoa(b.ID)+"/cancel", e.customer, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = e.do(http.MethodPost, "/api/v1/bookings/"+itoa(b.ID)+"/cancel", e.customer, map[string]any{"cancellation_reason": "plans changed"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, domain.BookingCancelled, decodeBooking(t, resp).Status)

	code, _ = e.do(http.MethodGet, "/api/v1/admin/bookings", e.customer, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp = e.do(http.MethodGet, "/api/v1/admin/bookings", e.admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), "plans changed")

	code, _ = e.do(http.MethodDelete, "/api/v1/admin/bookings/"+itoa(b.ID), e.admin, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(0), e.countBookings())
}

func TestAvailableRooms(t *testing.T) {
	e := setup(t)
	code, _ := e.createBooking(e.customer, at(1, 0), at(5, 0))
	require.Equal(t, http.StatusCreated, code)

	path := "/api/v1/hotels/" + itoa(e.hotel.ID) + "/available-rooms?check_in=2030-12-02&check_out=2030-12-03"
	code, resp := e.do(http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `"room_number":"101"`)

	code, resp = e.do(http.MethodGet, path+"&strict=true", nil, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"rooms":[]}`, string(resp.Data))
}

func TestTransactorRollsBackFailedCreate(t *testing.T) {
	e := setup(t)
	tx := database.NewTransactor(e.db)
	repo := repository.NewBookingRepository(e.db)

	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		require.NoError(t, repo.Create(ctx, &domain.Booking{
			RoomID: e.room.ID, UserID: e.customer.ID,
			CheckInDate: at(1, 0), CheckOutDate: at(2, 0),
			NumberOfGuests: 1, TotalAmount: 100, Status: domain.BookingPending,
		}))
		return booking.ErrRoomNotAvailable
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, int64(0), e.countBookings())
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
