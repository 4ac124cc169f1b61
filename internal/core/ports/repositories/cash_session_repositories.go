package repositories

import (
	"context"

	"github.com/velapos/pos_backend/internal/core/domain"
)

// CashSessionReader defines read operations for cash sessions.
type CashSessionReader interface {
	// FindOpenSession returns the store's open session for a user, or
	// apperrors.ErrNotFound.
	FindOpenSession(ctx context.Context, storeID, userID string) (*domain.CashSession, error)

	// FindOpenSessionForStore returns the store's open session regardless of
	// who opened it. A store has at most one.
	FindOpenSessionForStore(ctx context.Context, storeID string) (*domain.CashSession, error)

	// FindOpenSessionByID returns the session only if it belongs to the store
	// and its closed_at is still null.
	FindOpenSessionByID(ctx context.Context, storeID, sessionID string) (*domain.CashSession, error)

	// FindSessionByID returns the session regardless of state. Used for the
	// post-close verification re-read and for summaries.
	FindSessionByID(ctx context.Context, storeID, sessionID string) (*domain.CashSession, error)

	// ListSessions returns sessions newest-first plus the total count.
	ListSessions(ctx context.Context, storeID string, limit, offset int) ([]domain.CashSession, int, error)
}

// CashSessionWriter defines the two writes a session ever receives.
type CashSessionWriter interface {
	// InsertSession persists a freshly opened session.
	InsertSession(ctx context.Context, session domain.CashSession) error

	// CloseSession applies the terminal closing mutation to a row whose
	// closed_at is still null. Returns apperrors.ErrConflict when the row was
	// already closed by a concurrent caller. There is deliberately no other
	// update method: closed sessions are immutable.
	CloseSession(ctx context.Context, storeID, sessionID string, closing domain.SessionClosing) error
}

// CashSessionRepositoryFacade combines session reads and writes.
type CashSessionRepositoryFacade interface {
	CashSessionReader
	CashSessionWriter
}
