package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/velapos/pos_backend/internal/apperrors"
	"github.com/velapos/pos_backend/internal/core/domain"
)

// Two implementations of the same expected-cash fold live in this file on
// purpose. CloseSession runs both over the sale ledger and refuses to close
// the session when they disagree, so a bug introduced into one copy is caught
// at close time instead of silently corrupting the reconciliation. Keep them
// textually independent: never refactor one to call the other.

// accumulateSaleCash folds one sale's physical-cash effect into acc.
// Electronic and credit methods contribute nothing. Amounts are rounded to
// two decimals after every step.
func accumulateSaleCash(acc domain.CashAmounts, sale domain.Sale) (domain.CashAmounts, error) {
	if sale.Payment == nil {
		return acc, nil
	}

	switch sale.Payment.Method {
	case domain.MethodCashBs:
		// Received minus change when the tender was recorded; the sale total
		// is the exact-payment fallback. Change rounded to zero upstream is
		// absent or non-positive and stays in the drawer.
		cash := sale.Payment.CashPaymentBs
		if cash != nil && cash.ReceivedBs.IsPositive() {
			acc.Bs = domain.Round2(acc.Bs.Add(cash.ReceivedBs))
			if cash.ChangeBs != nil && cash.ChangeBs.IsPositive() {
				acc.Bs = domain.Round2(acc.Bs.Sub(*cash.ChangeBs))
			}
		} else {
			acc.Bs = domain.Round2(acc.Bs.Add(sale.Totals.TotalBs))
		}

	case domain.MethodCashUsd:
		// Dollars in, bolívars out: change for a USD sale is issued in Bs and
		// can legitimately drive the Bs accumulator negative.
		cash := sale.Payment.CashPayment
		if cash != nil && cash.ReceivedUsd.IsPositive() {
			acc.Usd = domain.Round2(acc.Usd.Add(cash.ReceivedUsd))
			if cash.ChangeBs != nil && cash.ChangeBs.IsPositive() {
				acc.Bs = domain.Round2(acc.Bs.Sub(*cash.ChangeBs))
			}
		} else {
			acc.Usd = domain.Round2(acc.Usd.Add(sale.Totals.TotalUsd))
		}

	case domain.MethodSplit:
		// Only the cash buckets of a split touch the drawer.
		if split := sale.Payment.Split; split != nil {
			acc.Bs = domain.Round2(acc.Bs.Add(split.CashBs))
			acc.Usd = domain.Round2(acc.Usd.Add(split.CashUsd))
		}

	case domain.MethodPagoMovil, domain.MethodTransfer, domain.MethodPointOfSale,
		domain.MethodZelle, domain.MethodFiao, domain.MethodOther:
		// No physical cash.

	default:
		return acc, fmt.Errorf("%w: sale %s has unknown payment method %q", apperrors.ErrIntegrity, sale.ID, sale.Payment.Method)
	}

	return acc, nil
}

// verifySaleCash is the independent re-derivation of accumulateSaleCash. It
// is structured differently by intent: per-sale deltas are computed in full
// and applied at the end.
func verifySaleCash(acc domain.CashAmounts, sale domain.Sale) (domain.CashAmounts, error) {
	payment := sale.Payment
	if payment == nil {
		return acc, nil
	}

	deltaBs := decimal.Zero
	deltaUsd := decimal.Zero

	switch payment.Method {
	case domain.MethodCashBs:
		received := decimal.Zero
		if payment.CashPaymentBs != nil {
			received = payment.CashPaymentBs.ReceivedBs
		}
		if received.IsPositive() {
			deltaBs = received
			if change := payment.CashPaymentBs.ChangeBs; change != nil && change.IsPositive() {
				deltaBs = deltaBs.Sub(*change)
			}
		} else {
			deltaBs = sale.Totals.TotalBs
		}

	case domain.MethodCashUsd:
		received := decimal.Zero
		if payment.CashPayment != nil {
			received = payment.CashPayment.ReceivedUsd
		}
		if received.IsPositive() {
			deltaUsd = received
			if change := payment.CashPayment.ChangeBs; change != nil && change.IsPositive() {
				deltaBs = deltaBs.Sub(*change)
			}
		} else {
			deltaUsd = sale.Totals.TotalUsd
		}

	case domain.MethodSplit:
		if payment.Split != nil {
			deltaBs = payment.Split.CashBs
			deltaUsd = payment.Split.CashUsd
		}

	case domain.MethodPagoMovil, domain.MethodTransfer, domain.MethodPointOfSale,
		domain.MethodZelle, domain.MethodFiao, domain.MethodOther:
		// No drawer effect.

	default:
		return acc, fmt.Errorf("%w: sale %s has unknown payment method %q", apperrors.ErrIntegrity, sale.ID, payment.Method)
	}

	acc.Bs = domain.Round2(acc.Bs.Add(deltaBs))
	acc.Usd = domain.Round2(acc.Usd.Add(deltaUsd))
	return acc, nil
}
