package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/velapos/pos_backend/internal/core/domain"
	portsrepo "github.com/velapos/pos_backend/internal/core/ports/repositories"
)

// PgxCashMovementRepository persists and aggregates manual drawer movements.
type PgxCashMovementRepository struct {
	BaseRepository
}

func newPgxCashMovementRepository(pool *pgxpool.Pool) portsrepo.CashMovementRepositoryFacade {
	return &PgxCashMovementRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CashMovementRepositoryFacade = (*PgxCashMovementRepository)(nil)

// InsertMovement persists one drawer movement.
func (r *PgxCashMovementRepository) InsertMovement(ctx context.Context, movement domain.CashMovement) error {
	query := `
		INSERT INTO cash_movements (
			cash_movement_id, store_id, cash_session_id, movement_type,
			amount_bs, amount_usd, reason, note, created_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.Pool.Exec(ctx, query,
		movement.ID, movement.StoreID, movement.CashSessionID, movement.MovementType,
		movement.AmountBs, movement.AmountUsd, movement.Reason, movement.Note,
		movement.CreatedBy, movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting cash movement: %w", err)
	}
	return nil
}

// SumMovements aggregates the session's movements up to endAt. Rows linked to
// the session by id match directly; legacy rows without a session link match
// by opener and the session's time window.
func (r *PgxCashMovementRepository) SumMovements(ctx context.Context, storeID string, session domain.CashSession, endAt time.Time) (domain.MovementTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(amount_bs)  FILTER (WHERE movement_type = 'ENTRY'), 0),
			COALESCE(SUM(amount_usd) FILTER (WHERE movement_type = 'ENTRY'), 0),
			COALESCE(SUM(amount_bs)  FILTER (WHERE movement_type = 'EXIT'), 0),
			COALESCE(SUM(amount_usd) FILTER (WHERE movement_type = 'EXIT'), 0),
			COUNT(*)
		FROM cash_movements
		WHERE store_id = $1
		  AND (
			cash_session_id = $2
			OR (cash_session_id IS NULL AND created_by = $3 AND created_at >= $4 AND created_at <= $5)
		  )
	`
	var totals domain.MovementTotals
	err := r.Pool.QueryRow(ctx, query,
		storeID, session.ID, session.OpenedBy, session.OpenedAt, endAt,
	).Scan(&totals.EntriesBs, &totals.EntriesUsd, &totals.ExitsBs, &totals.ExitsUsd, &totals.Count)
	if err != nil {
		return domain.MovementTotals{}, fmt.Errorf("error aggregating cash movements: %w", err)
	}

	totals.NetBs = roundCents(totals.EntriesBs.Sub(totals.ExitsBs))
	totals.NetUsd = roundCents(totals.EntriesUsd.Sub(totals.ExitsUsd))
	return totals, nil
}

func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
