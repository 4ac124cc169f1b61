package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashSession is one open-to-close interval of a till. A store has at most
// one session with a null ClosedAt at any time. Once ClosedAt is set the row
// is immutable: no update path for closed sessions exists anywhere in the
// codebase, and SessionClosing is the only write the repository accepts.
type CashSession struct {
	ID              string          `json:"id"`
	StoreID         string          `json:"store_id"`
	OpenedBy        string          `json:"opened_by"`
	OpenedAt        time.Time       `json:"opened_at"`
	OpeningAmountBs decimal.Decimal `json:"opening_amount_bs"`
	OpeningAmountUsd decimal.Decimal `json:"opening_amount_usd"`
	ClosedAt        *time.Time      `json:"closed_at"`
	ClosedBy        string          `json:"closed_by,omitempty"`
	Expected        *CashAmounts    `json:"expected,omitempty"`
	Counted         *CashAmounts    `json:"counted,omitempty"`
	Note            string          `json:"note,omitempty"`
}

// IsClosed reports whether the session reached its terminal state.
func (s CashSession) IsClosed() bool {
	return s.ClosedAt != nil
}

// OpeningAmounts returns the drawer contents registered at open time.
func (s CashSession) OpeningAmounts() CashAmounts {
	return CashAmounts{Bs: Round2(s.OpeningAmountBs), Usd: Round2(s.OpeningAmountUsd)}
}

// SessionClosing carries the one-and-only mutation a session ever receives.
// The repository applies it atomically to a row whose closed_at is still null.
type SessionClosing struct {
	ClosedAt time.Time
	ClosedBy string
	Expected CashAmounts
	Counted  CashAmounts
	Note     string
}
