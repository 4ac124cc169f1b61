package domain

import "time"

// AuditFields holds the who/when trail carried by persisted records.
type AuditFields struct {
	CreatedAt     time.Time `json:"created_at"`
	CreatedBy     string    `json:"created_by"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
	LastUpdatedBy string    `json:"last_updated_by"`
}
