package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velapos/pos_backend/internal/apperrors"
	"github.com/velapos/pos_backend/internal/core/domain"
	portsrepo "github.com/velapos/pos_backend/internal/core/ports/repositories"
	portssvc "github.com/velapos/pos_backend/internal/core/ports/services"
	"github.com/velapos/pos_backend/internal/dto"
	"github.com/velapos/pos_backend/internal/middleware"
)

// salePaymentsService validates and persists split payment lines.
type salePaymentsService struct {
	paymentRepo portsrepo.SalePaymentRepositoryFacade
	rateSvc     portssvc.ExchangeRateSvcFacade
	audit       portssvc.SecurityAuditSvc

	toleranceUsd decimal.Decimal
	rateFallback decimal.Decimal
}

// NewSalePaymentsService creates the payments service. toleranceUsd is the
// accepted gap between the tendered sum and the amount due.
func NewSalePaymentsService(
	paymentRepo portsrepo.SalePaymentRepositoryFacade,
	rateSvc portssvc.ExchangeRateSvcFacade,
	audit portssvc.SecurityAuditSvc,
	toleranceUsd, rateFallback decimal.Decimal,
) portssvc.SalePaymentsSvcFacade {
	return &salePaymentsService{
		paymentRepo:  paymentRepo,
		rateSvc:      rateSvc,
		audit:        audit,
		toleranceUsd: toleranceUsd,
		rateFallback: rateFallback,
	}
}

var _ portssvc.SalePaymentsSvcFacade = (*salePaymentsService)(nil)

// ProcessPayments validates the whole batch before anything is written, then
// persists all lines plus the optional change record in one transaction.
// A sum/due mismatch beyond tolerance is recorded as a payment_mismatch audit
// event and rejected; nothing is persisted in that case.
func (s *salePaymentsService) ProcessPayments(ctx context.Context, saleID, storeID string, totalDueUsd decimal.Decimal, payments []dto.SplitPaymentInput, userID string) (*dto.ProcessPaymentsResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if saleID == "" {
		return nil, fmt.Errorf("%w: sale id is required", apperrors.ErrValidation)
	}
	if len(payments) == 0 {
		return nil, fmt.Errorf("%w: at least one payment line is required", apperrors.ErrValidation)
	}
	totalDueUsd = domain.Round2(totalDueUsd)
	if !totalDueUsd.IsPositive() {
		return nil, fmt.Errorf("%w: total due must be positive", apperrors.ErrValidation)
	}

	rate := s.rateSvc.GetCurrentRate(ctx, storeID, s.rateFallback)
	now := time.Now()

	lines := make([]domain.SalePayment, 0, len(payments))
	seenRefs := make(map[string]bool, len(payments))
	totalPaidUsd := decimal.Zero
	totalPaidBs := decimal.Zero

	for i, input := range payments {
		if !domain.ValidPaymentMethods[input.Method] {
			return nil, fmt.Errorf("%w: payment %d has invalid method %q", apperrors.ErrValidation, i+1, input.Method)
		}

		// Exactly one side is supplied; the other is derived at the applied
		// rate so both columns are always populated.
		var amountUsd, amountBs decimal.Decimal
		switch {
		case input.AmountUsd != nil && input.AmountBs != nil:
			return nil, fmt.Errorf("%w: payment %d must set amount_usd or amount_bs, not both", apperrors.ErrValidation, i+1)
		case input.AmountUsd != nil:
			amountUsd = domain.Round2(*input.AmountUsd)
			amountBs = domain.UsdToBs(amountUsd, rate)
		case input.AmountBs != nil:
			amountBs = domain.Round2(*input.AmountBs)
			amountUsd = domain.BsToUsd(amountBs, rate)
		default:
			return nil, fmt.Errorf("%w: payment %d has no amount", apperrors.ErrValidation, i+1)
		}
		if !amountUsd.IsPositive() {
			return nil, fmt.Errorf("%w: payment %d amount must be positive", apperrors.ErrValidation, i+1)
		}

		// Electronic methods carry an external reference that must be unique
		// within the batch and across the sale's history.
		ref := strings.TrimSpace(input.Reference)
		if ref != "" {
			key := string(input.Method) + ":" + strings.ToLower(ref)
			if seenRefs[key] {
				return nil, fmt.Errorf("%w: duplicate reference %q for method %s", apperrors.ErrValidation, ref, input.Method)
			}
			seenRefs[key] = true
		}

		lines = append(lines, domain.SalePayment{
			ID:                uuid.NewString(),
			SaleID:            saleID,
			PaymentOrder:      i + 1,
			Method:            input.Method,
			AmountUsd:         amountUsd,
			AmountBs:          amountBs,
			RateType:          domain.RateTypeBCV,
			AppliedRate:       rate,
			Reference:         ref,
			BankCode:          input.BankCode,
			Phone:             input.Phone,
			CardLast4:         input.CardLast4,
			AuthorizationCode: input.AuthorizationCode,
			Status:            domain.PaymentConfirmed,
			ConfirmedAt:       now,
			ConfirmedBy:       userID,
			Note:              input.Note,
		})

		totalPaidUsd = domain.Round2(totalPaidUsd.Add(amountUsd))
		totalPaidBs = domain.Round2(totalPaidBs.Add(amountBs))
	}

	existing, err := s.paymentRepo.FindPaymentsBySaleID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing payments: %w", err)
	}
	for _, prior := range existing {
		if prior.Reference == "" {
			continue
		}
		key := string(prior.Method) + ":" + strings.ToLower(prior.Reference)
		if seenRefs[key] {
			return nil, fmt.Errorf("%w: reference %q was already used on this sale", apperrors.ErrValidation, prior.Reference)
		}
	}

	diff := totalPaidUsd.Sub(totalDueUsd)
	if diff.IsNegative() && diff.Abs().GreaterThan(s.toleranceUsd) {
		s.audit.Log(ctx, domain.AuditEvent{
			EventType: "payment_mismatch",
			StoreID:   storeID,
			UserID:    userID,
			Status:    domain.AuditFailure,
			Details: map[string]any{
				"sale_id":        saleID,
				"total_due_usd":  totalDueUsd.String(),
				"total_paid_usd": totalPaidUsd.String(),
				"difference_usd": diff.String(),
			},
		})
		return nil, fmt.Errorf("%w: payments sum to %s USD but %s USD is due", apperrors.ErrValidation, totalPaidUsd.StringFixed(2), totalDueUsd.StringFixed(2))
	}

	var change *domain.SaleChange
	overpaid := diff.GreaterThan(s.toleranceUsd)
	if overpaid {
		// Overpayment beyond tolerance is only legitimate for cash tenders
		// where change can physically be handed back. Anything else is a
		// recording error and is audited before rejection.
		if !hasCashLine(lines) {
			s.audit.Log(ctx, domain.AuditEvent{
				EventType: "payment_mismatch",
				StoreID:   storeID,
				UserID:    userID,
				Status:    domain.AuditFailure,
				Details: map[string]any{
					"sale_id":        saleID,
					"total_due_usd":  totalDueUsd.String(),
					"total_paid_usd": totalPaidUsd.String(),
					"difference_usd": diff.String(),
				},
			})
			return nil, fmt.Errorf("%w: non-cash payments exceed the amount due by %s USD", apperrors.ErrValidation, diff.StringFixed(2))
		}

		change = &domain.SaleChange{
			ID:           uuid.NewString(),
			SaleID:       saleID,
			ChangeUsd:    domain.Round2(diff),
			ChangeBs:     domain.UsdToBs(diff, rate),
			ChangeMethod: domain.ChangeCashBs,
			AppliedRate:  rate,
			CreatedAt:    now,
		}
	}

	if err := s.paymentRepo.SavePayments(ctx, lines, change); err != nil {
		return nil, fmt.Errorf("failed to persist payment lines: %w", err)
	}

	logger.Info("Sale payments recorded",
		slog.String("sale_id", saleID),
		slog.Int("lines", len(lines)),
		slog.String("total_paid_usd", totalPaidUsd.String()),
		slog.Bool("change_issued", change != nil),
	)

	result := &dto.ProcessPaymentsResult{
		Payments: lines,
		Change:   change,
		Totals: dto.PaymentTotals{
			TotalPaidUsd: totalPaidUsd,
			TotalPaidBs:  totalPaidBs,
			TotalDueUsd:  totalDueUsd,
			IsComplete:   !diff.IsNegative() || diff.Abs().LessThanOrEqual(s.toleranceUsd),
			IsOverpaid:   overpaid,
		},
	}
	if change != nil {
		result.Totals.ChangeUsd = change.ChangeUsd
		result.Totals.ChangeBs = change.ChangeBs
	}
	return result, nil
}

// GetPaymentsBySale returns a sale's payment lines in tender order.
func (s *salePaymentsService) GetPaymentsBySale(ctx context.Context, saleID string) ([]domain.SalePayment, error) {
	return s.paymentRepo.FindPaymentsBySaleID(ctx, saleID)
}

// GetChangeBySale returns the sale's change record, or ErrNotFound.
func (s *salePaymentsService) GetChangeBySale(ctx context.Context, saleID string) (*domain.SaleChange, error) {
	return s.paymentRepo.FindChangeBySaleID(ctx, saleID)
}

// CalculateSaleTotals sums the persisted confirmed lines against the due
// amount without mutating anything.
func (s *salePaymentsService) CalculateSaleTotals(ctx context.Context, saleID string, totalDueUsd decimal.Decimal) (*dto.SaleTotalsSummary, error) {
	payments, err := s.paymentRepo.FindPaymentsBySaleID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	paidUsd := decimal.Zero
	paidBs := decimal.Zero
	for i := range payments {
		if payments[i].Status != domain.PaymentConfirmed {
			continue
		}
		paidUsd = domain.Round2(paidUsd.Add(payments[i].AmountUsd))
		paidBs = domain.Round2(paidBs.Add(payments[i].AmountBs))
	}

	totalDueUsd = domain.Round2(totalDueUsd)
	remaining := domain.Round2(totalDueUsd.Sub(paidUsd))
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return &dto.SaleTotalsSummary{
		TotalPaidUsd: paidUsd,
		TotalPaidBs:  paidBs,
		RemainingUsd: remaining,
		IsComplete:   paidUsd.Add(s.toleranceUsd).GreaterThanOrEqual(totalDueUsd),
		IsOverpaid:   paidUsd.Sub(totalDueUsd).GreaterThan(s.toleranceUsd),
	}, nil
}

func hasCashLine(lines []domain.SalePayment) bool {
	for i := range lines {
		if lines[i].Method == domain.MethodCashBs || lines[i].Method == domain.MethodCashUsd {
			return true
		}
	}
	return false
}
