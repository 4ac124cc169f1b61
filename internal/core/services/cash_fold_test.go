package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velapos/pos_backend/internal/core/domain"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

// The two folds are maintained as independent copies; this grid is the
// regression net that catches an edit applied to only one of them.
func TestFoldsAgreeOnEverySaleShape(t *testing.T) {
	sales := []domain.Sale{
		{Payment: &domain.SalePaymentInfo{Method: domain.MethodCashBs, CashPaymentBs: &domain.CashPaymentBs{ReceivedBs: d("500"), ChangeBs: dp("30.25")}}},
		{Payment: &domain.SalePaymentInfo{Method: domain.MethodCashBs, CashPaymentBs: &domain.CashPaymentBs{ReceivedBs: d("153")}}, Totals: domain.SaleTotals{TotalBs: d("150")}},
		{Payment: &domain.SalePaymentInfo{Method: domain.MethodCashBs}, Totals: domain.SaleTotals{TotalBs: d("200.10")}},
		{Payment: &domain.SalePaymentInfo{Method: domain.MethodCashBs, CashPaymentBs: &domain.CashPaymentBs{ReceivedBs: d("100"), ChangeBs: dp("0")}}},
		{Payment: &domain.SalePaymentInfo{Method: domain.MethodCashUsd, CashPayment: &domain.CashPaymentUsd{ReceivedUsd: d("20"), ChangeBs: dp("36.50")}}},
		{Payment: &domain.SalePaymentInfo{Method: domain.MethodCashUsd}, Totals: domain.SaleTotals{TotalUsd: d("15.75")}},
		{Payment: &domain.SalePaymentInfo{Method: domain.MethodSplit, Split: &domain.SplitBreakdown{CashBs: d("120.33"), CashUsd: d("7"), TransferBs: d("400")}}},
		{Payment: &domain.SalePaymentInfo{Method: domain.MethodSplit}},
		{Payment: &domain.SalePaymentInfo{Method: domain.MethodPagoMovil}, Totals: domain.SaleTotals{TotalBs: d("999")}},
		{Payment: &domain.SalePaymentInfo{Method: domain.MethodZelle}, Totals: domain.SaleTotals{TotalUsd: d("50")}},
		{Payment: &domain.SalePaymentInfo{Method: domain.MethodFiao}, Totals: domain.SaleTotals{TotalBs: d("80")}},
		{Payment: nil},
	}

	primary := domain.CashAmounts{Bs: d("100"), Usd: d("50")}
	verify := domain.CashAmounts{Bs: d("100"), Usd: d("50")}

	var err error
	for _, sale := range sales {
		primary, err = accumulateSaleCash(primary, sale)
		require.NoError(t, err)
		verify, err = verifySaleCash(verify, sale)
		require.NoError(t, err)
	}

	assert.True(t, primary.WithinCentOf(verify), "folds diverged: primary=%v verify=%v", primary, verify)
	assert.True(t, primary.Bs.Equal(verify.Bs))
	assert.True(t, primary.Usd.Equal(verify.Usd))
}

func TestFoldsRejectUnknownMethod(t *testing.T) {
	sale := domain.Sale{ID: "s1", Payment: &domain.SalePaymentInfo{Method: "BARTER"}}

	_, err := accumulateSaleCash(domain.CashAmounts{}, sale)
	assert.Error(t, err)

	_, err = verifySaleCash(domain.CashAmounts{}, sale)
	assert.Error(t, err)
}

// Change recorded as zero stays in the drawer: the cashier rounded it away
// and kept the surplus.
func TestZeroChangeIsNotSubtracted(t *testing.T) {
	sale := domain.Sale{Payment: &domain.SalePaymentInfo{
		Method:        domain.MethodCashBs,
		CashPaymentBs: &domain.CashPaymentBs{ReceivedBs: d("153"), ChangeBs: dp("0")},
	}}

	acc, err := accumulateSaleCash(domain.CashAmounts{Bs: decimal.Zero, Usd: decimal.Zero}, sale)
	require.NoError(t, err)
	assert.True(t, acc.Bs.Equal(d("153")))
}
