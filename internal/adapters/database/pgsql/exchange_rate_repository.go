package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/velapos/pos_backend/internal/apperrors"
	"github.com/velapos/pos_backend/internal/core/domain"
	portsrepo "github.com/velapos/pos_backend/internal/core/ports/repositories"
)

// PgxRateRepository implements the rate store against PostgreSQL.
type PgxRateRepository struct {
	BaseRepository
}

func newPgxRateRepository(pool *pgxpool.Pool) portsrepo.RateRepositoryFacade {
	return &PgxRateRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.RateRepositoryFacade = (*PgxRateRepository)(nil)

const rateColumns = `
	exchange_rate_id, store_id, rate, rate_type, source,
	effective_from, effective_until, is_active, note,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanRate(row pgx.Row) (*domain.ExchangeRate, error) {
	rate := &domain.ExchangeRate{}
	err := row.Scan(
		&rate.ID, &rate.StoreID, &rate.Rate, &rate.RateType, &rate.Source,
		&rate.EffectiveFrom, &rate.EffectiveUntil, &rate.IsActive, &rate.Note,
		&rate.CreatedAt, &rate.CreatedBy, &rate.LastUpdatedAt, &rate.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning exchange rate: %w", err)
	}
	return rate, nil
}

// FindActiveManualRate returns the newest active manual rate whose validity
// window contains now.
func (r *PgxRateRepository) FindActiveManualRate(ctx context.Context, storeID string, now time.Time) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + rateColumns + `
		FROM exchange_rates
		WHERE store_id = $1
		  AND source = 'manual'
		  AND is_active = TRUE
		  AND effective_from <= $2
		  AND (effective_until IS NULL OR effective_until > $2)
		ORDER BY effective_from DESC
		LIMIT 1
	`
	return scanRate(r.Pool.QueryRow(ctx, query, storeID, now))
}

// FindLastManualRate returns the newest manual rate regardless of flags.
func (r *PgxRateRepository) FindLastManualRate(ctx context.Context, storeID string) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + rateColumns + `
		FROM exchange_rates
		WHERE store_id = $1 AND source = 'manual'
		ORDER BY effective_from DESC
		LIMIT 1
	`
	return scanRate(r.Pool.QueryRow(ctx, query, storeID))
}

// ListRateHistory returns rate records newest-first plus the total count.
func (r *PgxRateRepository) ListRateHistory(ctx context.Context, storeID string, limit, offset int) ([]domain.ExchangeRate, int, error) {
	var total int
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM exchange_rates WHERE store_id = $1`, storeID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting exchange rates: %w", err)
	}

	query := `
		SELECT ` + rateColumns + `
		FROM exchange_rates
		WHERE store_id = $1
		ORDER BY effective_from DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.Pool.Query(ctx, query, storeID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing exchange rates: %w", err)
	}
	defer rows.Close()

	rates := make([]domain.ExchangeRate, 0, limit)
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, 0, err
		}
		rates = append(rates, *rate)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating exchange rates: %w", err)
	}
	return rates, total, nil
}

// SaveManualRate deactivates overlapping active manual rates and inserts the
// new record in one transaction, keeping the one-active-rate invariant.
func (r *PgxRateRepository) SaveManualRate(ctx context.Context, rate domain.ExchangeRate) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := deactivateOverlapping(ctx, tx, rate.StoreID, rate.EffectiveFrom, rate.EffectiveUntil); err != nil {
		return err
	}
	if err := insertManualRate(ctx, tx, rate); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// DeactivateOverlappingManualRates flips is_active off outside a transaction.
func (r *PgxRateRepository) DeactivateOverlappingManualRates(ctx context.Context, storeID string, from time.Time, until *time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)
	if err := deactivateOverlapping(ctx, tx, storeID, from, until); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// InsertManualRate inserts a manual rate record as-is.
func (r *PgxRateRepository) InsertManualRate(ctx context.Context, rate domain.ExchangeRate) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)
	if err := insertManualRate(ctx, tx, rate); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func deactivateOverlapping(ctx context.Context, tx pgx.Tx, storeID string, from time.Time, until *time.Time) error {
	query := `
		UPDATE exchange_rates
		SET is_active = FALSE, last_updated_at = NOW()
		WHERE store_id = $1
		  AND source = 'manual'
		  AND is_active = TRUE
		  AND (effective_until IS NULL OR effective_until > $2)
		  AND ($3::timestamptz IS NULL OR effective_from < $3)
	`
	if _, err := tx.Exec(ctx, query, storeID, from, until); err != nil {
		return fmt.Errorf("error deactivating overlapping rates: %w", err)
	}
	return nil
}

func insertManualRate(ctx context.Context, tx pgx.Tx, rate domain.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (` + rateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := tx.Exec(ctx, query,
		rate.ID, rate.StoreID, rate.Rate, rate.RateType, rate.Source,
		rate.EffectiveFrom, rate.EffectiveUntil, rate.IsActive, rate.Note,
		rate.CreatedAt, rate.CreatedBy, rate.LastUpdatedAt, rate.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("error inserting exchange rate: %w", err)
	}
	return nil
}

// UpsertAPIRate records the API-sourced reference rate, one row per store and
// calendar day.
func (r *PgxRateRepository) UpsertAPIRate(ctx context.Context, storeID string, rate decimal.Decimal, day time.Time) error {
	query := `
		INSERT INTO api_rate_snapshots (store_id, rate_day, rate, fetched_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (store_id, rate_day)
		DO UPDATE SET rate = EXCLUDED.rate, fetched_at = NOW()
	`
	if _, err := r.Pool.Exec(ctx, query, storeID, day, rate); err != nil {
		return fmt.Errorf("error upserting api rate snapshot: %w", err)
	}
	return nil
}
