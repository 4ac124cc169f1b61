package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus tracks the lifecycle of a payment line.
type PaymentStatus string

const (
	PaymentConfirmed PaymentStatus = "CONFIRMED"
	PaymentRejected  PaymentStatus = "REJECTED"
)

// SalePayment is one tendered line of a (possibly split) sale. Lines are
// created transactionally alongside the sale and never mutated afterwards,
// except for the status flip a rejection performs.
type SalePayment struct {
	ID                string          `json:"id"`
	SaleID            string          `json:"sale_id"`
	PaymentOrder      int             `json:"payment_order"`
	Method            PaymentMethod   `json:"method"`
	AmountUsd         decimal.Decimal `json:"amount_usd"`
	AmountBs          decimal.Decimal `json:"amount_bs"`
	RateType          RateType        `json:"rate_type"`
	AppliedRate       decimal.Decimal `json:"applied_rate"`
	Reference         string          `json:"reference,omitempty"`
	BankCode          string          `json:"bank_code,omitempty"`
	Phone             string          `json:"phone,omitempty"`
	CardLast4         string          `json:"card_last_4,omitempty"`
	AuthorizationCode string          `json:"authorization_code,omitempty"`
	Status            PaymentStatus   `json:"status"`
	ConfirmedAt       time.Time       `json:"confirmed_at"`
	ConfirmedBy       string          `json:"confirmed_by,omitempty"`
	Note              string          `json:"note,omitempty"`
}

// ChangeMethod says in which physical currency change was returned.
type ChangeMethod string

const (
	ChangeCashBs  ChangeMethod = "CASH_BS"
	ChangeCashUsd ChangeMethod = "CASH_USD"
)

// SaleChange records change issued for an overpaid sale. At most one per
// sale, written in the same transaction as the payment lines.
type SaleChange struct {
	ID           string          `json:"id"`
	SaleID       string          `json:"sale_id"`
	ChangeUsd    decimal.Decimal `json:"change_usd"`
	ChangeBs     decimal.Decimal `json:"change_bs"`
	ChangeMethod ChangeMethod    `json:"change_method"`
	AppliedRate  decimal.Decimal `json:"applied_rate"`
	CreatedAt    time.Time       `json:"created_at"`
}
