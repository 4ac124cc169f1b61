package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSource identifies who produced an exchange rate record.
type RateSource string

const (
	// RateSourceManual marks a rate entered by an operator. Manual rates take
	// precedence over anything fetched automatically.
	RateSourceManual RateSource = "manual"
	// RateSourceAPI marks a reference rate fetched from the official source.
	RateSourceAPI RateSource = "api"
)

// RateType distinguishes the market a rate belongs to. Only the official
// (BCV) rate drives reconciliation; the others exist for per-method pricing.
type RateType string

const (
	RateTypeBCV      RateType = "BCV"
	RateTypeParallel RateType = "PARALLEL"
	RateTypeCash     RateType = "CASH"
	RateTypeZelle    RateType = "ZELLE"
)

// ExchangeRate is a persisted Bs-per-USD rate record for a store.
// At most one active manual rate may be effective for a store at any instant;
// overlapping manual rates are deactivated, never deleted, when a new one
// with an explicit validity window is inserted.
type ExchangeRate struct {
	ID             string          `json:"id"`
	StoreID        string          `json:"store_id"`
	Rate           decimal.Decimal `json:"rate"`
	RateType       RateType        `json:"rate_type"`
	Source         RateSource      `json:"source"`
	EffectiveFrom  time.Time       `json:"effective_from"`
	EffectiveUntil *time.Time      `json:"effective_until"`
	IsActive       bool            `json:"is_active"`
	Note           string          `json:"note"`
	AuditFields
}

// EffectiveAt reports whether the record's validity window contains t.
// A nil EffectiveUntil means open-ended.
func (r ExchangeRate) EffectiveAt(t time.Time) bool {
	if t.Before(r.EffectiveFrom) {
		return false
	}
	return r.EffectiveUntil == nil || t.Before(*r.EffectiveUntil)
}

// RateQuote is the parsed payload of one successful upstream fetch.
type RateQuote struct {
	Rate      decimal.Decimal
	UpdatedAt time.Time
}

// RateResult is what a rate lookup hands back: the number plus where it came
// from and when it was obtained.
type RateResult struct {
	Rate      decimal.Decimal `json:"rate"`
	Source    RateSource      `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
}
