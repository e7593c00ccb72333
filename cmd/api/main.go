package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"hotelbooking/internal/config"
	"hotelbooking/internal/database"
	"hotelbooking/internal/modules/booking"
	"hotelbooking/internal/modules/notification"
	"hotelbooking/internal/modules/payment"
	"hotelbooking/internal/obs"
	"hotelbooking/internal/pkg/cashfree"
	jwtsvc "hotelbooking/internal/pkg/jwt"
	"hotelbooking/internal/repository"
	"hotelbooking/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := obs.NewLogger(cfg.AppEnv)
	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL, database.Options{Logger: logger})
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	bookingRepo := repository.NewBookingRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	tx := database.NewTransactor(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	hub := notification.NewHub(logger.With("component", "notification"))
	defer hub.Close()

	provider := cashfree.New(cashfree.Config{
		BaseURL:    cfg.CashfreeBaseURL,
		AppID:      cfg.CashfreeAppID,
		SecretKey:  cfg.CashfreeSecretKey,
		APIVersion: cfg.CashfreeAPIVersion,
		Timeout:    cfg.CashfreeTimeout,
	}, logger.With("component", "cashfree"))

	bookingService := booking.NewService(bookingRepo, roomRepo, tx, hub, logger.With("component", "booking"))
	paymentService := payment.NewService(paymentRepo, bookingRepo, provider, tx, hub, payment.Config{
		Currency:        cfg.PaymentCurrency,
		FrontendURL:     cfg.FrontendURL,
		BackendURL:      cfg.BackendURL,
		WebhookSecret:   cfg.CashfreeSecretKey,
		VerifySignature: cfg.WebhookVerifySignature,
	}, logger.With("component", "payment"))

	router := server.NewRouter(server.Options{
		Logger:         logger,
		JWT:            j,
		DB:             db,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, server.Handlers{
		Booking:      booking.NewHandler(bookingService),
		Payment:      payment.NewHandler(paymentService),
		Notification: notification.NewHandler(hub, j, cfg.CORSAllowedOrigins),
	})

	srv := server.New(cfg.HTTPAddr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
