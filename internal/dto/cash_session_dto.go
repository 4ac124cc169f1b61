package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/velapos/pos_backend/internal/core/domain"
)

// OpenCashSessionRequest registers the drawer contents at shift start.
type OpenCashSessionRequest struct {
	CashBs  decimal.Decimal `json:"cash_bs" binding:"gte=0"`
	CashUsd decimal.Decimal `json:"cash_usd" binding:"gte=0"`
	Note    string          `json:"note" binding:"max=500"`
}

// CloseCashSessionRequest carries what the cashier physically counted.
type CloseCashSessionRequest struct {
	CountedBs  decimal.Decimal `json:"counted_bs" binding:"gte=0"`
	CountedUsd decimal.Decimal `json:"counted_usd" binding:"gte=0"`
	Note       string          `json:"note" binding:"max=500"`
}

// RegisterCashMovementRequest registers a non-sale drawer movement.
type RegisterCashMovementRequest struct {
	Type      string          `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Currency  string          `json:"currency" binding:"required,oneof=BS USD"`
	Amount    decimal.Decimal `json:"amount" binding:"gt=0"`
	Reason    string          `json:"reason" binding:"required,max=200"`
	Reference string          `json:"reference" binding:"max=100"`
}

// SessionResponse is the API shape of a cash session.
type SessionResponse struct {
	ID               string              `json:"id"`
	StoreID          string              `json:"store_id"`
	OpenedBy         string              `json:"opened_by"`
	OpenedAt         time.Time           `json:"opened_at"`
	OpeningAmountBs  decimal.Decimal     `json:"opening_amount_bs"`
	OpeningAmountUsd decimal.Decimal     `json:"opening_amount_usd"`
	ClosedAt         *time.Time          `json:"closed_at"`
	ClosedBy         string              `json:"closed_by,omitempty"`
	Expected         *domain.CashAmounts `json:"expected,omitempty"`
	Counted          *domain.CashAmounts `json:"counted,omitempty"`
	Note             string              `json:"note,omitempty"`
}

// ToSessionResponse converts a domain.CashSession to its API shape.
func ToSessionResponse(s *domain.CashSession) SessionResponse {
	return SessionResponse{
		ID:               s.ID,
		StoreID:          s.StoreID,
		OpenedBy:         s.OpenedBy,
		OpenedAt:         s.OpenedAt,
		OpeningAmountBs:  s.OpeningAmountBs,
		OpeningAmountUsd: s.OpeningAmountUsd,
		ClosedAt:         s.ClosedAt,
		ClosedBy:         s.ClosedBy,
		Expected:         s.Expected,
		Counted:          s.Counted,
		Note:             s.Note,
	}
}

// ListSessionsResponse pages through a store's sessions.
type ListSessionsResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Total    int               `json:"total"`
}

// MethodTotals is the per-payment-method sales breakdown of a summary.
// Amounts are in Bs except CASH_USD, reported in USD.
type MethodTotals map[domain.PaymentMethod]decimal.Decimal

// CashFlowSummary shows how the expected drawer contents were derived.
type CashFlowSummary struct {
	OpeningBs    decimal.Decimal `json:"opening_bs"`
	OpeningUsd   decimal.Decimal `json:"opening_usd"`
	SalesBs      decimal.Decimal `json:"sales_bs"`
	SalesUsd     decimal.Decimal `json:"sales_usd"`
	MovementsBs  decimal.Decimal `json:"movements_bs"`
	MovementsUsd decimal.Decimal `json:"movements_usd"`
	ExpectedBs   decimal.Decimal `json:"expected_bs"`
	ExpectedUsd  decimal.Decimal `json:"expected_usd"`
}

// ClosingSummary compares expected vs counted for a closed session.
type ClosingSummary struct {
	Expected      domain.CashAmounts `json:"expected"`
	Counted       domain.CashAmounts `json:"counted"`
	DifferenceBs  decimal.Decimal    `json:"difference_bs"`
	DifferenceUsd decimal.Decimal    `json:"difference_usd"`
	Note          string             `json:"note,omitempty"`
}

// SessionSummary is the full read-only report for one session. Its cash-flow
// block is recomputed from the sale ledger with the same folding rules the
// close algorithm uses; the two must never diverge.
type SessionSummary struct {
	Session    SessionResponse `json:"session"`
	SalesCount int             `json:"sales_count"`
	TotalBs    decimal.Decimal `json:"total_bs"`
	TotalUsd   decimal.Decimal `json:"total_usd"`
	ByMethod   MethodTotals    `json:"by_method"`
	CashFlow   CashFlowSummary `json:"cash_flow"`
	Closing    *ClosingSummary `json:"closing,omitempty"`
}
