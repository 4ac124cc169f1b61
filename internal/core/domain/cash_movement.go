package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashMovementType classifies a manual drawer movement.
type CashMovementType string

const (
	MovementEntry CashMovementType = "ENTRY"
	MovementExit  CashMovementType = "EXIT"
)

// MovementCurrency is the single currency a movement touches.
type MovementCurrency string

const (
	MovementBs  MovementCurrency = "BS"
	MovementUsd MovementCurrency = "USD"
)

// CashMovement is cash put into or taken out of the drawer outside of a
// sale: supplier payouts, petty cash, owner drops. Movements adjust the
// expected-cash derivation at close.
type CashMovement struct {
	ID            string           `json:"id"`
	StoreID       string           `json:"store_id"`
	CashSessionID string           `json:"cash_session_id"`
	MovementType  CashMovementType `json:"movement_type"`
	AmountBs      decimal.Decimal  `json:"amount_bs"`
	AmountUsd     decimal.Decimal  `json:"amount_usd"`
	Reason        string           `json:"reason"`
	Note          string           `json:"note,omitempty"`
	CreatedBy     string           `json:"created_by"`
	CreatedAt     time.Time        `json:"created_at"`
}

// MovementTotals aggregates a session's movements per direction and currency.
type MovementTotals struct {
	EntriesBs  decimal.Decimal `json:"entries_bs"`
	EntriesUsd decimal.Decimal `json:"entries_usd"`
	ExitsBs    decimal.Decimal `json:"exits_bs"`
	ExitsUsd   decimal.Decimal `json:"exits_usd"`
	NetBs      decimal.Decimal `json:"net_bs"`
	NetUsd     decimal.Decimal `json:"net_usd"`
	Count      int             `json:"count"`
}
