package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppEnv            = "dev"
	defaultHTTPAddr          = ":8080"
	defaultJWTSecret         = "change-me-jwt-secret"
	defaultJWTTTL            = "24h"
	defaultCashfreeBaseURL   = "https://sandbox.cashfree.com/pg"
	defaultCashfreeVersion   = "2023-08-01"
	defaultCashfreeTimeout   = "15s"
	defaultPaymentCurrency   = "INR"
	defaultFrontendURL       = "http://localhost:5173"
	defaultBackendURL        = "http://localhost:8080"
	defaultVerifySignature   = "true"
	defaultCORSAllowedOrigin = "http://localhost:3000,http://localhost:5173"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	CashfreeBaseURL    string
	CashfreeAppID      string
	CashfreeSecretKey  string
	CashfreeAPIVersion string
	CashfreeTimeout    time.Duration

	PaymentCurrency        string
	FrontendURL            string
	BackendURL             string
	WebhookVerifySignature bool

	CORSAllowedOrigins []string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = defaultAppEnv
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	cfg.CashfreeBaseURL = strings.TrimSpace(getEnv("CASHFREE_BASE_URL", defaultCashfreeBaseURL))
	cfg.CashfreeAppID = strings.TrimSpace(os.Getenv("CASHFREE_APP_ID"))
	cfg.CashfreeSecretKey = strings.TrimSpace(os.Getenv("CASHFREE_SECRET_KEY"))
	cfg.CashfreeAPIVersion = strings.TrimSpace(getEnv("CASHFREE_API_VERSION", defaultCashfreeVersion))
	cfg.CashfreeTimeout, err = parseDurationEnv("CASHFREE_TIMEOUT", defaultCashfreeTimeout)
	if err != nil {
		return nil, err
	}

	cfg.PaymentCurrency = strings.ToUpper(strings.TrimSpace(getEnv("PAYMENT_CURRENCY", defaultPaymentCurrency)))
	cfg.FrontendURL = strings.TrimSpace(getEnv("FRONTEND_URL", defaultFrontendURL))
	cfg.BackendURL = strings.TrimSpace(getEnv("BACKEND_URL", defaultBackendURL))
	cfg.WebhookVerifySignature = parseBoolEnv("WEBHOOK_VERIFY_SIGNATURE", defaultVerifySignature)
	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", defaultCORSAllowedOrigin))

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.CashfreeTimeout <= 0 {
		return fmt.Errorf("CASHFREE_TIMEOUT must be > 0")
	}
	if len(cfg.PaymentCurrency) != 3 {
		return fmt.Errorf("PAYMENT_CURRENCY must be a 3-letter code")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.CashfreeAppID == "" || cfg.CashfreeSecretKey == "" {
			return fmt.Errorf("in prod/release CASHFREE_APP_ID and CASHFREE_SECRET_KEY must be set")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
