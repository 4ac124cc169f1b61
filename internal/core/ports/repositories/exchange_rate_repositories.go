package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/velapos/pos_backend/internal/core/domain"
)

// RateReader defines read operations against the historical rate store.
type RateReader interface {
	// FindActiveManualRate returns the most recent active manual rate whose
	// validity window contains now, or apperrors.ErrNotFound.
	FindActiveManualRate(ctx context.Context, storeID string, now time.Time) (*domain.ExchangeRate, error)

	// FindLastManualRate returns the most recent manual rate by effective_from,
	// ignoring active/validity flags. Last-resort fallback when the upstream
	// source is down.
	FindLastManualRate(ctx context.Context, storeID string) (*domain.ExchangeRate, error)

	// ListRateHistory returns rate records newest-first plus the total count.
	ListRateHistory(ctx context.Context, storeID string, limit, offset int) ([]domain.ExchangeRate, int, error)
}

// RateWriter defines write operations against the historical rate store.
type RateWriter interface {
	// SaveManualRate deactivates every active manual rate overlapping the new
	// record's validity window and inserts the record as active, atomically.
	// Two manual rates must never be simultaneously active for a store.
	SaveManualRate(ctx context.Context, rate domain.ExchangeRate) error

	// DeactivateOverlappingManualRates flips is_active off on manual rates
	// whose window overlaps [from, until). A nil until means open-ended.
	DeactivateOverlappingManualRates(ctx context.Context, storeID string, from time.Time, until *time.Time) error

	// InsertManualRate inserts a manual rate record as-is.
	InsertManualRate(ctx context.Context, rate domain.ExchangeRate) error

	// UpsertAPIRate records the API-sourced reference rate for a store and
	// calendar day, one row per store per day.
	UpsertAPIRate(ctx context.Context, storeID string, rate decimal.Decimal, day time.Time) error
}

// RateRepositoryFacade combines all rate store operations.
type RateRepositoryFacade interface {
	RateReader
	RateWriter
}
