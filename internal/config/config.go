// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/01moynul/storefront-golang/internal/payment"
	"github.com/01moynul/storefront-golang/internal/pricing"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port        string
	DSN         string
	JWTSecret   string
	JWTTTL      time.Duration
	BaseURL     string
	MediaDir    string
	CORSOrigins []string
	LogLevel    slog.Level

	Pricing     pricing.Policy
	Payment     payment.Config
	PageSize    int
	MaxPageSize int
}

// Load reads .env when present and then the process environment. Unset keys
// take their defaults; values that do not parse are an error.
func Load() (*Config, error) {
	// Missing .env is normal outside local development.
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary key lookup.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	var errs []string
	getInt := func(key string, def int) int {
		n, err := strconv.Atoi(get(key, strconv.Itoa(def)))
		if err != nil || n <= 0 {
			errs = append(errs, key+" must be a positive integer")
			return def
		}
		return n
	}
	getDecimal := func(key, def string) decimal.Decimal {
		d, err := decimal.NewFromString(get(key, def))
		if err != nil || d.IsNegative() {
			errs = append(errs, key+" must be a non-negative decimal")
			return decimal.RequireFromString(def)
		}
		return d
	}

	cfg := &Config{
		Port:      get("PORT", "8080"),
		DSN:       get("DB_DSN", "root:password@tcp(127.0.0.1:3306)/storefront?parseTime=true"),
		JWTSecret: get("JWT_SECRET", ""),
		JWTTTL:    time.Duration(getInt("JWT_TTL_HOURS", 72)) * time.Hour,
		BaseURL:   strings.TrimRight(get("BASE_URL", "http://localhost:8080"), "/"),
		MediaDir:  get("MEDIA_DIR", "./uploads"),
		Pricing: pricing.Policy{
			ShippingFlatFee: getDecimal("SHIPPING_FLAT_FEE", "10.00"),
			TaxRate:         getDecimal("TAX_RATE", "0.10"),
		},
		Payment: payment.Config{
			SecretKey:     get("STRIPE_SECRET_KEY", ""),
			WebhookSecret: get("STRIPE_WEBHOOK_SECRET", ""),
			Currency:      strings.ToLower(get("CURRENCY", "usd")),
		},
		PageSize:    getInt("PAGE_SIZE", 12),
		MaxPageSize: getInt("MAX_PAGE_SIZE", 48),
	}

	for _, o := range strings.Split(get("CORS_ORIGINS", "http://localhost:5173"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, "LOG_LEVEL must be one of debug, info, warn, error")
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required")
	}
	if cfg.PageSize > cfg.MaxPageSize {
		errs = append(errs, "PAGE_SIZE cannot exceed MAX_PAGE_SIZE")
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}
