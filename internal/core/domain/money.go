package domain

import "github.com/shopspring/decimal"

// Round2 rounds a monetary amount to two decimal places. Every accumulation
// step in the cash-flow folds goes through this so floating error can never
// build up across a long session.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// UsdToBs converts a USD amount to bolívars at the given rate.
func UsdToBs(usd, rate decimal.Decimal) decimal.Decimal {
	return usd.Mul(rate).Round(2)
}

// BsToUsd converts a bolívar amount to USD at the given rate.
// A zero rate yields zero rather than dividing by zero; callers are expected
// to source rates through the exchange service, which never hands out zero.
func BsToUsd(bs, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return decimal.Zero
	}
	return bs.Div(rate).Round(2)
}

// CashAmounts is a bolívar/USD pair used for opening, expected and counted
// drawer snapshots.
type CashAmounts struct {
	Bs  decimal.Decimal `json:"cash_bs"`
	Usd decimal.Decimal `json:"cash_usd"`
}

// Sub returns the per-currency difference a - b, rounded to cents.
// Sign is preserved: negative means shortage.
func (a CashAmounts) Sub(b CashAmounts) CashAmounts {
	return CashAmounts{
		Bs:  Round2(a.Bs.Sub(b.Bs)),
		Usd: Round2(a.Usd.Sub(b.Usd)),
	}
}

// WithinCentOf reports whether both currencies of a and b agree within 0.01.
func (a CashAmounts) WithinCentOf(b CashAmounts) bool {
	cent := decimal.NewFromFloat(0.01)
	return a.Bs.Sub(b.Bs).Abs().LessThanOrEqual(cent) &&
		a.Usd.Sub(b.Usd).Abs().LessThanOrEqual(cent)
}
