package repositories

import (
	"context"
	"time"

	"github.com/velapos/pos_backend/internal/core/domain"
)

// CashMovementRepositoryFacade persists and aggregates manual drawer
// movements.
type CashMovementRepositoryFacade interface {
	InsertMovement(ctx context.Context, movement domain.CashMovement) error

	// SumMovements aggregates the session's movements up to endAt. Rows that
	// predate session linking are matched by opener and time window, same as
	// the legacy data the store migrated from.
	SumMovements(ctx context.Context, storeID string, session domain.CashSession, endAt time.Time) (domain.MovementTotals, error)
}
