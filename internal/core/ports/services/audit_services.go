package services

import (
	"context"

	"github.com/velapos/pos_backend/internal/core/domain"
)

// SecurityAuditSvc records anomaly and security events. Log is
// fire-and-forget: implementations must never let a failed audit write
// propagate into the caller's control flow.
type SecurityAuditSvc interface {
	Log(ctx context.Context, event domain.AuditEvent)
}
