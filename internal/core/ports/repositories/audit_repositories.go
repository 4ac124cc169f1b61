package repositories

import (
	"context"

	"github.com/velapos/pos_backend/internal/core/domain"
)

// AuditRepositoryFacade persists security audit events.
type AuditRepositoryFacade interface {
	InsertAuditEvent(ctx context.Context, event domain.AuditEvent) error
}
