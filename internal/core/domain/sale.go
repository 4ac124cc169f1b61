package domain

import "github.com/shopspring/decimal"

// PaymentMethod enumerates how a sale was paid.
type PaymentMethod string

const (
	MethodCashBs      PaymentMethod = "CASH_BS"
	MethodCashUsd     PaymentMethod = "CASH_USD"
	MethodPagoMovil   PaymentMethod = "PAGO_MOVIL"
	MethodTransfer    PaymentMethod = "TRANSFER"
	MethodPointOfSale PaymentMethod = "POINT_OF_SALE"
	MethodZelle       PaymentMethod = "ZELLE"
	MethodFiao        PaymentMethod = "FIAO"
	MethodOther       PaymentMethod = "OTHER"
	MethodSplit       PaymentMethod = "SPLIT"
)

// ValidPaymentMethods is the closed set accepted on payment lines.
// SPLIT is a sale-level shape, not a valid line method.
var ValidPaymentMethods = map[PaymentMethod]bool{
	MethodCashBs:      true,
	MethodCashUsd:     true,
	MethodPagoMovil:   true,
	MethodTransfer:    true,
	MethodPointOfSale: true,
	MethodZelle:       true,
	MethodFiao:        true,
	MethodOther:       true,
}

// CashPaymentBs records physical bolívars tendered for a CASH_BS sale.
// ChangeBs is nil when no change was issued, including the case where the
// computed change fell under the small-change threshold and was rounded to
// zero upstream; the rounding surplus stays in the register.
type CashPaymentBs struct {
	ReceivedBs decimal.Decimal  `json:"received_bs"`
	ChangeBs   *decimal.Decimal `json:"change_bs,omitempty"`
}

// CashPaymentUsd records physical USD tendered for a CASH_USD sale.
// Change, when issued, is always handed back in bolívars.
type CashPaymentUsd struct {
	ReceivedUsd decimal.Decimal  `json:"received_usd"`
	ChangeBs    *decimal.Decimal `json:"change_bs,omitempty"`
}

// SplitBreakdown holds per-method sub-amounts of a SPLIT sale. Only the two
// cash buckets represent physical money in the drawer.
type SplitBreakdown struct {
	CashBs      decimal.Decimal `json:"cash_bs"`
	CashUsd     decimal.Decimal `json:"cash_usd"`
	PagoMovilBs decimal.Decimal `json:"pago_movil_bs"`
	TransferBs  decimal.Decimal `json:"transfer_bs"`
	OtherBs     decimal.Decimal `json:"other_bs"`
}

// SalePaymentInfo is the tagged union stored on a sale. Which of the optional
// branches is populated depends on Method; the cash-flow folds switch on
// Method exhaustively and never look at a branch that doesn't belong to it.
type SalePaymentInfo struct {
	Method        PaymentMethod   `json:"method"`
	CashPaymentBs *CashPaymentBs  `json:"cash_payment_bs,omitempty"`
	CashPayment   *CashPaymentUsd `json:"cash_payment,omitempty"`
	Split         *SplitBreakdown `json:"split,omitempty"`
}

// SaleTotals is the currency-tagged amount due for a sale.
type SaleTotals struct {
	TotalBs  decimal.Decimal `json:"total_bs"`
	TotalUsd decimal.Decimal `json:"total_usd"`
}

// Sale is a completed sale row as the reconciliation core sees it: read-only,
// with payment info and totals populated. Sales without a recorded payment
// never reach this package.
type Sale struct {
	ID            string           `json:"id"`
	StoreID       string           `json:"store_id"`
	CashSessionID string           `json:"cash_session_id"`
	Payment       *SalePaymentInfo `json:"payment"`
	Totals        SaleTotals       `json:"totals"`
}
