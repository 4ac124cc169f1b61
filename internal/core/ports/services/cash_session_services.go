package services

import (
	"context"

	"github.com/velapos/pos_backend/internal/core/domain"
	"github.com/velapos/pos_backend/internal/dto"
)

// CashSessionSvcFacade drives the NO_SESSION → OPEN → CLOSED drawer state
// machine and the expected-cash reconciliation at close.
type CashSessionSvcFacade interface {
	// OpenSession starts a drawer session; ErrConflict when the user already
	// has one open for the store.
	OpenSession(ctx context.Context, storeID, userID string, req dto.OpenCashSessionRequest) (*domain.CashSession, error)

	// GetCurrentSession returns the caller's open session, or ErrNotFound.
	GetCurrentSession(ctx context.Context, storeID, userID string) (*domain.CashSession, error)

	// CloseSession recomputes expected cash from the sale ledger, verifies
	// the computation against itself, checks plausibility of the counted
	// amounts, persists the terminal close and verifies the write by
	// re-reading. The returned session is the re-read row of record.
	CloseSession(ctx context.Context, storeID, userID, sessionID string, req dto.CloseCashSessionRequest) (*domain.CashSession, error)

	// GetSessionSummary reports per-method totals and the cash-flow
	// derivation, using the same folding rules as CloseSession.
	GetSessionSummary(ctx context.Context, storeID, sessionID string) (*dto.SessionSummary, error)

	// ListSessions pages through a store's sessions, newest first.
	ListSessions(ctx context.Context, storeID string, limit, offset int) ([]domain.CashSession, int, error)

	// RegisterMovement records a non-sale drawer entry/exit against the
	// caller's open session.
	RegisterMovement(ctx context.Context, storeID, userID string, req dto.RegisterCashMovementRequest) (*domain.CashMovement, error)
}
