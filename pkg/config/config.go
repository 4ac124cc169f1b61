package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Exchange rate acquisition
	RateSourceURL    string
	RateFetchTimeout time.Duration
	RateCacheTTL     time.Duration
	RateFallback     decimal.Decimal

	// Reconciliation policy
	PaymentToleranceUsd    decimal.Decimal
	SmallChangeThresholdBs decimal.Decimal
	MaxCountedAmount       decimal.Decimal

	// Transport
	RateLimitRPS int64
}

// LoadConfig loads configuration from environment variables and a .env file
// if present. Defaults are production-safe except for the database URL,
// which must always be supplied.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("RATE_SOURCE_URL", "https://api.dolarvenezuela.org/v1/dollar/oficial")
	viper.SetDefault("RATE_FETCH_TIMEOUT", "5s")
	viper.SetDefault("RATE_CACHE_TTL", "1h")
	viper.SetDefault("RATE_FALLBACK", "36")
	viper.SetDefault("PAYMENT_TOLERANCE_USD", "0.01")
	viper.SetDefault("SMALL_CHANGE_THRESHOLD_BS", "5")
	viper.SetDefault("MAX_COUNTED_AMOUNT", "1000000")
	viper.SetDefault("RATE_LIMIT_RPS", 25)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.RateSourceURL = viper.GetString("RATE_SOURCE_URL")
	cfg.RateLimitRPS = viper.GetInt64("RATE_LIMIT_RPS")

	var err error
	cfg.RateFetchTimeout, err = time.ParseDuration(viper.GetString("RATE_FETCH_TIMEOUT"))
	if err != nil {
		cfg.RateFetchTimeout = 5 * time.Second
		log.Printf("Warning: invalid RATE_FETCH_TIMEOUT, defaulting to %s\n", cfg.RateFetchTimeout)
	}

	cfg.RateCacheTTL, err = time.ParseDuration(viper.GetString("RATE_CACHE_TTL"))
	if err != nil {
		cfg.RateCacheTTL = time.Hour
		log.Printf("Warning: invalid RATE_CACHE_TTL, defaulting to %s\n", cfg.RateCacheTTL)
	}

	cfg.RateFallback = parseDecimal("RATE_FALLBACK", "36")
	cfg.PaymentToleranceUsd = parseDecimal("PAYMENT_TOLERANCE_USD", "0.01")
	cfg.SmallChangeThresholdBs = parseDecimal("SMALL_CHANGE_THRESHOLD_BS", "5")
	cfg.MaxCountedAmount = parseDecimal("MAX_COUNTED_AMOUNT", "1000000")

	return cfg, nil
}

func parseDecimal(key, fallback string) decimal.Decimal {
	d, err := decimal.NewFromString(viper.GetString(key))
	if err != nil {
		d, _ = decimal.NewFromString(fallback)
		log.Printf("Warning: invalid %s, defaulting to %s\n", key, fallback)
	}
	return d
}
