package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hotelbooking/internal/middleware"
	"hotelbooking/internal/modules/booking"
	"hotelbooking/internal/modules/notification"
	"hotelbooking/internal/modules/payment"
	"hotelbooking/internal/pkg/jwt"
)

type Handlers struct {
	Booking      *booking.Handler
	Payment      *payment.Handler
	Notification *notification.Handler
}

type Options struct {
	Logger         *slog.Logger
	JWT            *jwt.Service
	DB             *gorm.DB
	AllowedOrigins []string
}

// NewRouter builds the gin engine with the middleware chain and every route.
func NewRouter(opts Options, h Handlers) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))

	r.GET("/healthz", healthz(opts.DB))
	if h.Notification != nil {
		h.Notification.RegisterRoutes(r)
	}

	v1 := r.Group("/api/v1")
	{
		h.Booking.RegisterPublicRoutes(v1)
		h.Payment.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(opts.JWT))
		{
			h.Booking.RegisterRoutes(protected)
			h.Payment.RegisterProtectedRoutes(protected)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.JWTAuth(opts.JWT), middleware.AdminOnly())
		{
			h.Booking.RegisterAdminRoutes(admin)
			h.Payment.RegisterAdminRoutes(admin)
		}
	}

	return r
}

func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
