package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/velapos/pos_backend/internal/core/domain"
	"github.com/velapos/pos_backend/internal/dto"
)

// ExchangeRateSvcFacade acquires, caches and administers the Bs/USD rate.
type ExchangeRateSvcFacade interface {
	// GetRate resolves the current rate through the fallback chain: valid
	// cache, active manual rate, in-flight fetch, fresh fetch, last manual
	// rate, stale cache. Upstream failures are absorbed; a (nil, nil) return
	// means no tier could produce a rate.
	GetRate(ctx context.Context, storeID string) (*domain.RateResult, error)

	// GetCurrentRate never fails and always returns a positive rate; fallback
	// is substituted only when every other tier came up empty or non-positive.
	GetCurrentRate(ctx context.Context, storeID string, fallback decimal.Decimal) decimal.Decimal

	// SetManualRate registers an operator override and makes it visible to
	// the very next lookup, bypassing the cache TTL.
	SetManualRate(ctx context.Context, storeID string, req dto.SetManualRateRequest, setBy string) (*domain.ExchangeRate, error)

	// GetRateHistory pages through a store's historical rate records.
	GetRateHistory(ctx context.Context, storeID string, limit, offset int) ([]domain.ExchangeRate, int, error)
}
