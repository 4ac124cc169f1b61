package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velapos/pos_backend/internal/core/domain"
	portsrepo "github.com/velapos/pos_backend/internal/core/ports/repositories"
)

// PgxAuditRepository persists security audit events. Details is jsonb.
type PgxAuditRepository struct {
	BaseRepository
}

func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

// InsertAuditEvent writes one audit row.
func (r *PgxAuditRepository) InsertAuditEvent(ctx context.Context, event domain.AuditEvent) error {
	query := `
		INSERT INTO audit_events (audit_event_id, event_type, store_id, user_id, status, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.Pool.Exec(ctx, query,
		event.ID, event.EventType, event.StoreID, event.UserID,
		event.Status, event.Details, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting audit event: %w", err)
	}
	return nil
}
