package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/velapos/pos_backend/internal/core/domain"
)

// SetManualRateRequest defines the payload for registering an operator rate.
type SetManualRateRequest struct {
	Rate           decimal.Decimal `json:"rate" binding:"gt=0"`
	RateType       string          `json:"rate_type" binding:"omitempty,oneof=BCV PARALLEL CASH ZELLE"`
	EffectiveFrom  *time.Time      `json:"effective_from"`
	EffectiveUntil *time.Time      `json:"effective_until"`
	Note           string          `json:"note" binding:"max=500"`
}

// RateResponse is the API shape of a persisted rate record.
type RateResponse struct {
	ID             string            `json:"id"`
	Rate           decimal.Decimal   `json:"rate"`
	RateType       domain.RateType   `json:"rate_type"`
	Source         domain.RateSource `json:"source"`
	EffectiveFrom  time.Time         `json:"effective_from"`
	EffectiveUntil *time.Time        `json:"effective_until"`
	IsActive       bool              `json:"is_active"`
	Note           string            `json:"note,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// ToRateResponse converts a domain.ExchangeRate to its API shape.
func ToRateResponse(rate *domain.ExchangeRate) RateResponse {
	return RateResponse{
		ID:             rate.ID,
		Rate:           rate.Rate,
		RateType:       rate.RateType,
		Source:         rate.Source,
		EffectiveFrom:  rate.EffectiveFrom,
		EffectiveUntil: rate.EffectiveUntil,
		IsActive:       rate.IsActive,
		Note:           rate.Note,
		CreatedAt:      rate.CreatedAt,
	}
}

// ToListRateResponse converts a slice of rate records.
func ToListRateResponse(rates []domain.ExchangeRate) []RateResponse {
	responses := make([]RateResponse, len(rates))
	for i := range rates {
		responses[i] = ToRateResponse(&rates[i])
	}
	return responses
}

// CurrentRateResponse is returned by the lookup endpoints.
type CurrentRateResponse struct {
	Rate      *decimal.Decimal   `json:"rate"`
	Source    *domain.RateSource `json:"source,omitempty"`
	Timestamp *time.Time         `json:"timestamp,omitempty"`
	Available bool               `json:"available"`
	Message   string             `json:"message,omitempty"`
}

// RateHistoryResponse pages through historical rate records.
type RateHistoryResponse struct {
	Rates []RateResponse `json:"rates"`
	Total int            `json:"total"`
}
