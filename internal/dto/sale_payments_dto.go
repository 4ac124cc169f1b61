package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/velapos/pos_backend/internal/core/domain"
)

// SplitPaymentInput is one tendered line of a sale. Exactly one of AmountUsd
// or AmountBs must be set; the other side is derived at the applied rate.
type SplitPaymentInput struct {
	Method            domain.PaymentMethod `json:"method" binding:"required"`
	AmountUsd         *decimal.Decimal     `json:"amount_usd"`
	AmountBs          *decimal.Decimal     `json:"amount_bs"`
	Reference         string               `json:"reference" binding:"max=100"`
	BankCode          string               `json:"bank_code" binding:"max=10"`
	Phone             string               `json:"phone" binding:"max=20"`
	CardLast4         string               `json:"card_last_4" binding:"max=4"`
	AuthorizationCode string               `json:"authorization_code" binding:"max=50"`
	Note              string               `json:"note" binding:"max=500"`
}

// ProcessPaymentsRequest records all payment lines of a sale at once.
type ProcessPaymentsRequest struct {
	TotalDueUsd decimal.Decimal     `json:"total_due_usd" binding:"gt=0"`
	Payments    []SplitPaymentInput `json:"payments" binding:"required,min=1,dive"`
}

// PaymentResponse is the API shape of a persisted payment line.
type PaymentResponse struct {
	ID           string               `json:"id"`
	SaleID       string               `json:"sale_id"`
	PaymentOrder int                  `json:"payment_order"`
	Method       domain.PaymentMethod `json:"method"`
	AmountUsd    decimal.Decimal      `json:"amount_usd"`
	AmountBs     decimal.Decimal      `json:"amount_bs"`
	RateType     domain.RateType      `json:"rate_type"`
	AppliedRate  decimal.Decimal      `json:"applied_rate"`
	Reference    string               `json:"reference,omitempty"`
	Status       domain.PaymentStatus `json:"status"`
	ConfirmedAt  time.Time            `json:"confirmed_at"`
}

// ToPaymentResponse converts a domain.SalePayment to its API shape.
func ToPaymentResponse(p *domain.SalePayment) PaymentResponse {
	return PaymentResponse{
		ID:           p.ID,
		SaleID:       p.SaleID,
		PaymentOrder: p.PaymentOrder,
		Method:       p.Method,
		AmountUsd:    p.AmountUsd,
		AmountBs:     p.AmountBs,
		RateType:     p.RateType,
		AppliedRate:  p.AppliedRate,
		Reference:    p.Reference,
		Status:       p.Status,
		ConfirmedAt:  p.ConfirmedAt,
	}
}

// ToListPaymentResponse converts a slice of payment lines.
func ToListPaymentResponse(payments []domain.SalePayment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}

// PaymentTotals summarizes what was tendered against what was due.
type PaymentTotals struct {
	TotalPaidUsd decimal.Decimal `json:"total_paid_usd"`
	TotalPaidBs  decimal.Decimal `json:"total_paid_bs"`
	TotalDueUsd  decimal.Decimal `json:"total_due_usd"`
	ChangeUsd    decimal.Decimal `json:"change_usd"`
	ChangeBs     decimal.Decimal `json:"change_bs"`
	IsComplete   bool            `json:"is_complete"`
	IsOverpaid   bool            `json:"is_overpaid"`
}

// ProcessPaymentsResult is returned after a successful ProcessPayments.
type ProcessPaymentsResult struct {
	Payments []domain.SalePayment `json:"payments"`
	Change   *domain.SaleChange   `json:"change,omitempty"`
	Totals   PaymentTotals        `json:"totals"`
}

// SaleTotalsSummary reports how much of a sale is still unpaid.
type SaleTotalsSummary struct {
	TotalPaidUsd decimal.Decimal `json:"total_paid_usd"`
	TotalPaidBs  decimal.Decimal `json:"total_paid_bs"`
	RemainingUsd decimal.Decimal `json:"remaining_usd"`
	IsComplete   bool            `json:"is_complete"`
	IsOverpaid   bool            `json:"is_overpaid"`
}
