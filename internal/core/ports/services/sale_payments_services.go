package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/velapos/pos_backend/internal/core/domain"
	"github.com/velapos/pos_backend/internal/dto"
)

// SalePaymentsSvcFacade validates and records a sale's payment lines so the
// recorded total can never silently diverge from the amount due.
type SalePaymentsSvcFacade interface {
	// ProcessPayments validates the batch (unique references, positive
	// amounts, sum within tolerance of totalDueUsd), then persists all lines
	// plus any change record atomically. A mismatch is audited before the
	// rejection is returned.
	ProcessPayments(ctx context.Context, saleID, storeID string, totalDueUsd decimal.Decimal, payments []dto.SplitPaymentInput, userID string) (*dto.ProcessPaymentsResult, error)

	// GetPaymentsBySale returns a sale's payment lines in tender order.
	GetPaymentsBySale(ctx context.Context, saleID string) ([]domain.SalePayment, error)

	// GetChangeBySale returns the change record of a sale, or ErrNotFound.
	GetChangeBySale(ctx context.Context, saleID string) (*domain.SaleChange, error)

	// CalculateSaleTotals sums persisted payment lines against the amount due.
	CalculateSaleTotals(ctx context.Context, saleID string, totalDueUsd decimal.Decimal) (*dto.SaleTotalsSummary, error)
}
