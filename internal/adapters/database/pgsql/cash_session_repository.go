package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/velapos/pos_backend/internal/apperrors"
	"github.com/velapos/pos_backend/internal/core/domain"
	portsrepo "github.com/velapos/pos_backend/internal/core/ports/repositories"
)

// PgxCashSessionRepository implements the session store against PostgreSQL.
type PgxCashSessionRepository struct {
	BaseRepository
}

func newPgxCashSessionRepository(pool *pgxpool.Pool) portsrepo.CashSessionRepositoryFacade {
	return &PgxCashSessionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CashSessionRepositoryFacade = (*PgxCashSessionRepository)(nil)

const sessionColumns = `
	cash_session_id, store_id, opened_by, opened_at,
	opening_amount_bs, opening_amount_usd,
	closed_at, closed_by,
	expected_bs, expected_usd, counted_bs, counted_usd, note
`

func scanSession(row pgx.Row) (*domain.CashSession, error) {
	s := &domain.CashSession{}
	var expectedBs, expectedUsd, countedBs, countedUsd *decimal.Decimal
	err := row.Scan(
		&s.ID, &s.StoreID, &s.OpenedBy, &s.OpenedAt,
		&s.OpeningAmountBs, &s.OpeningAmountUsd,
		&s.ClosedAt, &s.ClosedBy,
		&expectedBs, &expectedUsd, &countedBs, &countedUsd, &s.Note,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning cash session: %w", err)
	}
	if expectedBs != nil && expectedUsd != nil {
		s.Expected = &domain.CashAmounts{Bs: *expectedBs, Usd: *expectedUsd}
	}
	if countedBs != nil && countedUsd != nil {
		s.Counted = &domain.CashAmounts{Bs: *countedBs, Usd: *countedUsd}
	}
	return s, nil
}

// FindOpenSession returns the store's open session for a user.
func (r *PgxCashSessionRepository) FindOpenSession(ctx context.Context, storeID, userID string) (*domain.CashSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM cash_sessions
		WHERE store_id = $1 AND opened_by = $2 AND closed_at IS NULL
		ORDER BY opened_at DESC
		LIMIT 1
	`
	return scanSession(r.Pool.QueryRow(ctx, query, storeID, userID))
}

// FindOpenSessionForStore returns the store's open session regardless of opener.
func (r *PgxCashSessionRepository) FindOpenSessionForStore(ctx context.Context, storeID string) (*domain.CashSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM cash_sessions
		WHERE store_id = $1 AND closed_at IS NULL
		ORDER BY opened_at DESC
		LIMIT 1
	`
	return scanSession(r.Pool.QueryRow(ctx, query, storeID))
}

// FindOpenSessionByID returns the session only while it is still open.
func (r *PgxCashSessionRepository) FindOpenSessionByID(ctx context.Context, storeID, sessionID string) (*domain.CashSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM cash_sessions
		WHERE cash_session_id = $1 AND store_id = $2 AND closed_at IS NULL
	`
	return scanSession(r.Pool.QueryRow(ctx, query, sessionID, storeID))
}

// FindSessionByID returns the session regardless of state.
func (r *PgxCashSessionRepository) FindSessionByID(ctx context.Context, storeID, sessionID string) (*domain.CashSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM cash_sessions
		WHERE cash_session_id = $1 AND store_id = $2
	`
	return scanSession(r.Pool.QueryRow(ctx, query, sessionID, storeID))
}

// ListSessions returns sessions newest-first plus the total count.
func (r *PgxCashSessionRepository) ListSessions(ctx context.Context, storeID string, limit, offset int) ([]domain.CashSession, int, error) {
	var total int
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM cash_sessions WHERE store_id = $1`, storeID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting cash sessions: %w", err)
	}

	query := `
		SELECT ` + sessionColumns + `
		FROM cash_sessions
		WHERE store_id = $1
		ORDER BY opened_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.Pool.Query(ctx, query, storeID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing cash sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]domain.CashSession, 0, limit)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating cash sessions: %w", err)
	}
	return sessions, total, nil
}

// InsertSession persists a freshly opened session.
func (r *PgxCashSessionRepository) InsertSession(ctx context.Context, session domain.CashSession) error {
	query := `
		INSERT INTO cash_sessions (
			cash_session_id, store_id, opened_by, opened_at,
			opening_amount_bs, opening_amount_usd, note
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.Pool.Exec(ctx, query,
		session.ID, session.StoreID, session.OpenedBy, session.OpenedAt,
		session.OpeningAmountBs, session.OpeningAmountUsd, session.Note,
	)
	if err != nil {
		return fmt.Errorf("error inserting cash session: %w", err)
	}
	return nil
}

// CloseSession applies the terminal close mutation. The closed_at IS NULL
// predicate makes the write race-safe: a concurrent close wins or loses at
// the row level and the loser sees zero affected rows.
func (r *PgxCashSessionRepository) CloseSession(ctx context.Context, storeID, sessionID string, closing domain.SessionClosing) error {
	query := `
		UPDATE cash_sessions
		SET closed_at = $1, closed_by = $2,
		    expected_bs = $3, expected_usd = $4,
		    counted_bs = $5, counted_usd = $6,
		    note = $7
		WHERE cash_session_id = $8 AND store_id = $9 AND closed_at IS NULL
	`
	tag, err := r.Pool.Exec(ctx, query,
		closing.ClosedAt, closing.ClosedBy,
		closing.Expected.Bs, closing.Expected.Usd,
		closing.Counted.Bs, closing.Counted.Usd,
		closing.Note, sessionID, storeID,
	)
	if err != nil {
		return fmt.Errorf("error closing cash session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: cash session already closed or missing", apperrors.ErrConflict)
	}
	return nil
}
