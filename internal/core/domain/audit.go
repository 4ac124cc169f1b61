package domain

import "time"

// AuditStatus marks whether the audited action succeeded.
type AuditStatus string

const (
	AuditSuccess AuditStatus = "success"
	AuditFailure AuditStatus = "failure"
)

// AuditEvent is one security/anomaly record, e.g. payment_mismatch or
// cash_session_closed. Audit writes are fire-and-forget: a failed write is
// logged and swallowed, never propagated into the caller's control flow.
type AuditEvent struct {
	ID        string         `json:"id"`
	EventType string         `json:"event_type"`
	StoreID   string         `json:"store_id"`
	UserID    string         `json:"user_id,omitempty"`
	Status    AuditStatus    `json:"status"`
	Details   map[string]any `json:"details"`
	CreatedAt time.Time      `json:"created_at"`
}
