package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultJWTAccessTTL      = "24h"
	defaultJWTSecret         = "change-me-jwt-secret"
	defaultListenAddr        = ":8080"
	defaultFullRefundLead    = "168h" // one week
	defaultPartialRefundLead = "48h"
	defaultPartialRefundBP   = "5000" // half the deposit
	defaultReminderLead      = "24h"
	defaultPaymentTimeout    = "30s"
)

// RuntimeConfig holds every process-level knob; per-studio refund
// settings override the refund defaults when set.
type RuntimeConfig struct {
	AppEnv     string
	ListenAddr string

	DatabaseURL string

	JWTSecret    string
	JWTAccessTTL time.Duration

	FullRefundLead    time.Duration
	PartialRefundLead time.Duration
	PartialRefundBP   int64

	ReminderLead   time.Duration
	PaymentTimeout time.Duration
}

func LoadRuntimeConfig() (*RuntimeConfig, error) {
	cfg := &RuntimeConfig{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.ListenAddr = getEnv("LISTEN_ADDR", defaultListenAddr)
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))

	var err error
	if cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL); err != nil {
		return nil, err
	}
	if cfg.FullRefundLead, err = parseDurationEnv("FULL_REFUND_LEAD", defaultFullRefundLead); err != nil {
		return nil, err
	}
	if cfg.PartialRefundLead, err = parseDurationEnv("PARTIAL_REFUND_LEAD", defaultPartialRefundLead); err != nil {
		return nil, err
	}
	if cfg.PartialRefundBP, err = parseIntEnv("PARTIAL_REFUND_BP", defaultPartialRefundBP); err != nil {
		return nil, err
	}
	if cfg.PartialRefundBP < 0 || cfg.PartialRefundBP > 10000 {
		return nil, fmt.Errorf("PARTIAL_REFUND_BP must be between 0 and 10000, got %d", cfg.PartialRefundBP)
	}
	if cfg.ReminderLead, err = parseDurationEnv("REMINDER_LEAD", defaultReminderLead); err != nil {
		return nil, err
	}
	if cfg.PaymentTimeout, err = parseDurationEnv("PAYMENT_TIMEOUT", defaultPaymentTimeout); err != nil {
		return nil, err
	}

	if cfg.AppEnv == "prod" && cfg.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in prod")
	}

	return cfg, nil
}

func getEnv(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(name, def string) (time.Duration, error) {
	raw := getEnv(name, def)
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q", name, raw)
	}
	return d, nil
}

func parseIntEnv(name, def string) (int64, error) {
	raw := getEnv(name, def)
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %q", name, raw)
	}
	return n, nil
}
