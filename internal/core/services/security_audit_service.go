package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/velapos/pos_backend/internal/core/domain"
	portsrepo "github.com/velapos/pos_backend/internal/core/ports/repositories"
	portssvc "github.com/velapos/pos_backend/internal/core/ports/services"
	"github.com/velapos/pos_backend/internal/middleware"
)

// securityAuditService persists anomaly events best-effort. A lost audit row
// is logged, never surfaced to the caller.
type securityAuditService struct {
	auditRepo portsrepo.AuditRepositoryFacade
}

// NewSecurityAuditService creates the audit service.
func NewSecurityAuditService(auditRepo portsrepo.AuditRepositoryFacade) portssvc.SecurityAuditSvc {
	return &securityAuditService{auditRepo: auditRepo}
}

var _ portssvc.SecurityAuditSvc = (*securityAuditService)(nil)

// Log records the event. The write runs on a context detached from the
// caller's cancellation so an aborted request still leaves its audit trail.
func (s *securityAuditService) Log(ctx context.Context, event domain.AuditEvent) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	if err := s.auditRepo.InsertAuditEvent(writeCtx, event); err != nil {
		logger.Error("Failed to persist audit event",
			slog.String("event_type", event.EventType),
			slog.String("store_id", event.StoreID),
			slog.String("error", err.Error()),
		)
	}
}
