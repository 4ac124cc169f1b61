package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/velapos/pos_backend/internal/apperrors"
	"github.com/velapos/pos_backend/internal/core/domain"
	portssvc "github.com/velapos/pos_backend/internal/core/ports/services"
	"github.com/velapos/pos_backend/internal/core/services"
	"github.com/velapos/pos_backend/internal/dto"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func cashBsSale(received, change, totalBs string) domain.Sale {
	payment := &domain.CashPaymentBs{ReceivedBs: dec(received)}
	if change != "" {
		payment.ChangeBs = decPtr(change)
	}
	return domain.Sale{
		ID:      uuid.NewString(),
		StoreID: testStoreID,
		Payment: &domain.SalePaymentInfo{Method: domain.MethodCashBs, CashPaymentBs: payment},
		Totals:  domain.SaleTotals{TotalBs: dec(totalBs)},
	}
}

type CashSessionServiceTestSuite struct {
	suite.Suite
	mockSessions  *MockCashSessionRepository
	mockSales     *MockSaleRepository
	mockMovements *MockCashMovementRepository
	mockAudit     *MockAuditService
	service       portssvc.CashSessionSvcFacade

	session domain.CashSession
}

func (suite *CashSessionServiceTestSuite) SetupTest() {
	suite.mockSessions = new(MockCashSessionRepository)
	suite.mockSales = new(MockSaleRepository)
	suite.mockMovements = new(MockCashMovementRepository)
	suite.mockAudit = new(MockAuditService)
	suite.service = services.NewCashSessionService(
		suite.mockSessions, suite.mockSales, suite.mockMovements, suite.mockAudit,
		dec("1000000"),
	)

	suite.session = domain.CashSession{
		ID:               uuid.NewString(),
		StoreID:          testStoreID,
		OpenedBy:         "user-1",
		OpenedAt:         time.Now().Add(-8 * time.Hour),
		OpeningAmountBs:  dec("100"),
		OpeningAmountUsd: dec("50"),
	}
}

func (suite *CashSessionServiceTestSuite) noMovements() {
	suite.mockMovements.On("SumMovements", mock.Anything, testStoreID, mock.Anything, mock.Anything).
		Return(domain.MovementTotals{NetBs: decimal.Zero, NetUsd: decimal.Zero}, nil)
}

func (suite *CashSessionServiceTestSuite) expectClose() {
	suite.mockSessions.On("CloseSession", mock.Anything, testStoreID, suite.session.ID, mock.Anything).Return(nil)
}

// closedRow builds what the post-write re-read should hand back.
func (suite *CashSessionServiceTestSuite) closedRow(countedBs, countedUsd string) *domain.CashSession {
	closed := suite.session
	now := time.Now()
	closed.ClosedAt = &now
	closed.ClosedBy = "user-1"
	closed.Counted = &domain.CashAmounts{Bs: dec(countedBs), Usd: dec(countedUsd)}
	return &closed
}

// --- OpenSession ---

func (suite *CashSessionServiceTestSuite) TestOpenSession_Success() {
	ctx := context.Background()
	suite.mockSessions.On("FindOpenSessionForStore", ctx, testStoreID).Return(nil, apperrors.ErrNotFound)
	suite.mockSessions.On("InsertSession", ctx, mock.MatchedBy(func(s domain.CashSession) bool {
		return s.StoreID == testStoreID && s.OpenedBy == "user-1" && s.OpeningAmountBs.Equal(dec("250.50"))
	})).Return(nil)

	session, err := suite.service.OpenSession(ctx, testStoreID, "user-1", dto.OpenCashSessionRequest{
		CashBs: dec("250.50"), CashUsd: dec("30"),
	})

	suite.NoError(err)
	suite.NotNil(session)
	suite.False(session.IsClosed())
}

func (suite *CashSessionServiceTestSuite) TestOpenSession_RejectsNegativeOpening() {
	_, err := suite.service.OpenSession(context.Background(), testStoreID, "user-1", dto.OpenCashSessionRequest{
		CashBs: dec("-10"), CashUsd: dec("0"),
	})
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockSessions.AssertNotCalled(suite.T(), "InsertSession")
}

func (suite *CashSessionServiceTestSuite) TestOpenSession_ConflictWhenAlreadyOpen() {
	ctx := context.Background()
	suite.mockSessions.On("FindOpenSessionForStore", ctx, testStoreID).Return(&suite.session, nil)

	_, err := suite.service.OpenSession(ctx, testStoreID, "user-2", dto.OpenCashSessionRequest{
		CashBs: dec("0"), CashUsd: dec("0"),
	})

	suite.ErrorIs(err, apperrors.ErrConflict)
}

// --- CloseSession ---

func (suite *CashSessionServiceTestSuite) TestCloseSession_DerivesExpectedFromLedger() {
	ctx := context.Background()

	usdSale := domain.Sale{
		ID: uuid.NewString(), StoreID: testStoreID,
		Payment: &domain.SalePaymentInfo{
			Method:      domain.MethodCashUsd,
			CashPayment: &domain.CashPaymentUsd{ReceivedUsd: dec("20"), ChangeBs: decPtr("36.50")},
		},
		Totals: domain.SaleTotals{TotalUsd: dec("19")},
	}
	splitSale := domain.Sale{
		ID: uuid.NewString(), StoreID: testStoreID,
		Payment: &domain.SalePaymentInfo{
			Method: domain.MethodSplit,
			Split:  &domain.SplitBreakdown{CashBs: dec("100"), CashUsd: dec("10"), PagoMovilBs: dec("300")},
		},
	}
	electronicSale := domain.Sale{
		ID: uuid.NewString(), StoreID: testStoreID,
		Payment: &domain.SalePaymentInfo{Method: domain.MethodPagoMovil},
		Totals:  domain.SaleTotals{TotalBs: dec("500")},
	}
	sales := []domain.Sale{
		cashBsSale("500", "30", "470"), // received minus change: +470 Bs
		{ // exact payment, no tender recorded: sale total is the fallback
			ID: uuid.NewString(), StoreID: testStoreID,
			Payment: &domain.SalePaymentInfo{Method: domain.MethodCashBs},
			Totals:  domain.SaleTotals{TotalBs: dec("200")},
		},
		cashBsSale("153", "", "150"), // change rounded to zero: surplus stays, +153 Bs
		usdSale,                      // +20 USD, -36.50 Bs
		splitSale,                    // +100 Bs, +10 USD, electronic bucket ignored
		electronicSale,               // nothing
	}

	suite.mockSessions.On("FindOpenSessionByID", ctx, testStoreID, suite.session.ID).Return(&suite.session, nil)
	suite.mockSales.On("ListPaidSales", ctx, testStoreID, suite.session.ID).Return(sales, nil)
	suite.mockMovements.On("SumMovements", mock.Anything, testStoreID, mock.Anything, mock.Anything).
		Return(domain.MovementTotals{NetBs: dec("30"), NetUsd: decimal.Zero}, nil)

	// opening 100 + 470 + 200 + 153 - 36.50 + 100 + movements 30 = 1016.50 Bs
	// opening 50 + 20 + 10 = 80 USD
	expectedBs := dec("1016.50")
	expectedUsd := dec("80")

	suite.mockSessions.On("CloseSession", ctx, testStoreID, suite.session.ID, mock.MatchedBy(func(c domain.SessionClosing) bool {
		return c.Expected.Bs.Equal(expectedBs) && c.Expected.Usd.Equal(expectedUsd)
	})).Return(nil)
	suite.mockSessions.On("FindSessionByID", ctx, testStoreID, suite.session.ID).Return(suite.closedRow("1016.50", "80"), nil)
	suite.mockAudit.On("Log", mock.Anything, mock.MatchedBy(func(e domain.AuditEvent) bool {
		return e.EventType == "cash_session_closed" && e.Status == domain.AuditSuccess
	})).Return()

	closed, err := suite.service.CloseSession(ctx, testStoreID, "user-1", suite.session.ID, dto.CloseCashSessionRequest{
		CountedBs: dec("1016.50"), CountedUsd: dec("80"),
	})

	suite.NoError(err)
	suite.NotNil(closed)
	suite.True(closed.IsClosed())
	suite.mockSessions.AssertExpectations(suite.T())
	suite.mockAudit.AssertExpectations(suite.T())
}

func (suite *CashSessionServiceTestSuite) TestCloseSession_UsdChangeCanDriveBsNegative() {
	ctx := context.Background()
	// Drawer opened empty in Bs; a USD sale hands change back in bolívars.
	suite.session.OpeningAmountBs = decimal.Zero
	suite.session.OpeningAmountUsd = decimal.Zero

	sales := []domain.Sale{{
		ID: uuid.NewString(), StoreID: testStoreID,
		Payment: &domain.SalePaymentInfo{
			Method:      domain.MethodCashUsd,
			CashPayment: &domain.CashPaymentUsd{ReceivedUsd: dec("20"), ChangeBs: decPtr("5")},
		},
	}}

	suite.mockSessions.On("FindOpenSessionByID", ctx, testStoreID, suite.session.ID).Return(&suite.session, nil)
	suite.mockSales.On("ListPaidSales", ctx, testStoreID, suite.session.ID).Return(sales, nil)
	suite.noMovements()

	suite.mockSessions.On("CloseSession", ctx, testStoreID, suite.session.ID, mock.MatchedBy(func(c domain.SessionClosing) bool {
		return c.Expected.Bs.Equal(dec("-5")) && c.Expected.Usd.Equal(dec("20"))
	})).Return(nil)
	suite.mockSessions.On("FindSessionByID", ctx, testStoreID, suite.session.ID).Return(suite.closedRow("0", "20"), nil)
	suite.mockAudit.On("Log", mock.Anything, mock.Anything).Return()

	_, err := suite.service.CloseSession(ctx, testStoreID, "user-1", suite.session.ID, dto.CloseCashSessionRequest{
		CountedBs: dec("0"), CountedUsd: dec("20"),
	})

	suite.NoError(err)
	suite.mockSessions.AssertExpectations(suite.T())
}

func (suite *CashSessionServiceTestSuite) TestCloseSession_RejectsNegativeCounted() {
	_, err := suite.service.CloseSession(context.Background(), testStoreID, "user-1", suite.session.ID, dto.CloseCashSessionRequest{
		CountedBs: dec("-1"), CountedUsd: dec("0"),
	})
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockSessions.AssertNotCalled(suite.T(), "FindOpenSessionByID")
}

func (suite *CashSessionServiceTestSuite) TestCloseSession_RejectsAbsurdCounted() {
	_, err := suite.service.CloseSession(context.Background(), testStoreID, "user-1", suite.session.ID, dto.CloseCashSessionRequest{
		CountedBs: dec("5000000"), CountedUsd: dec("0"),
	})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CashSessionServiceTestSuite) TestCloseSession_NotFoundWhenMissingOrClosed() {
	ctx := context.Background()
	suite.mockSessions.On("FindOpenSessionByID", ctx, testStoreID, "nope").Return(nil, apperrors.ErrNotFound)

	_, err := suite.service.CloseSession(ctx, testStoreID, "user-1", "nope", dto.CloseCashSessionRequest{
		CountedBs: dec("0"), CountedUsd: dec("0"),
	})

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *CashSessionServiceTestSuite) TestCloseSession_ConflictOnRacedClose() {
	ctx := context.Background()
	now := time.Now()
	raced := suite.session
	raced.ClosedAt = &now

	suite.mockSessions.On("FindOpenSessionByID", ctx, testStoreID, suite.session.ID).Return(&raced, nil)

	_, err := suite.service.CloseSession(ctx, testStoreID, "user-1", suite.session.ID, dto.CloseCashSessionRequest{
		CountedBs: dec("0"), CountedUsd: dec("0"),
	})

	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockSessions.AssertNotCalled(suite.T(), "CloseSession")
}

func (suite *CashSessionServiceTestSuite) TestCloseSession_PlausibilityGuard() {
	ctx := context.Background()
	sales := []domain.Sale{cashBsSale("400", "", "400")} // expected 100 + 400 = 500 Bs

	suite.mockSessions.On("FindOpenSessionByID", ctx, testStoreID, suite.session.ID).Return(&suite.session, nil)
	suite.mockSales.On("ListPaidSales", ctx, testStoreID, suite.session.ID).Return(sales, nil)
	suite.noMovements()

	// max reasonable Bs = (500 + 100) * 2 = 1200
	_, err := suite.service.CloseSession(ctx, testStoreID, "user-1", suite.session.ID, dto.CloseCashSessionRequest{
		CountedBs: dec("1201"), CountedUsd: dec("50"),
	})

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockSessions.AssertNotCalled(suite.T(), "CloseSession")
}

func (suite *CashSessionServiceTestSuite) TestCloseSession_PersistenceGuardOnBadReRead() {
	ctx := context.Background()
	suite.mockSessions.On("FindOpenSessionByID", ctx, testStoreID, suite.session.ID).Return(&suite.session, nil)
	suite.mockSales.On("ListPaidSales", ctx, testStoreID, suite.session.ID).Return([]domain.Sale{}, nil)
	suite.noMovements()
	suite.expectClose()

	// Re-read hands back a row that is still open.
	stillOpen := suite.session
	suite.mockSessions.On("FindSessionByID", ctx, testStoreID, suite.session.ID).Return(&stillOpen, nil)

	_, err := suite.service.CloseSession(ctx, testStoreID, "user-1", suite.session.ID, dto.CloseCashSessionRequest{
		CountedBs: dec("100"), CountedUsd: dec("50"),
	})

	suite.ErrorIs(err, apperrors.ErrPersistence)
}

// --- GetSessionSummary ---

func (suite *CashSessionServiceTestSuite) TestGetSessionSummary_ByMethodAndCashFlow() {
	ctx := context.Background()
	sales := []domain.Sale{
		{
			ID: uuid.NewString(), StoreID: testStoreID,
			Payment: &domain.SalePaymentInfo{Method: domain.MethodCashBs, CashPaymentBs: &domain.CashPaymentBs{ReceivedBs: dec("200")}},
			Totals:  domain.SaleTotals{TotalBs: dec("200"), TotalUsd: dec("5.48")},
		},
		{
			ID: uuid.NewString(), StoreID: testStoreID,
			Payment: &domain.SalePaymentInfo{Method: domain.MethodCashUsd, CashPayment: &domain.CashPaymentUsd{ReceivedUsd: dec("10")}},
			Totals:  domain.SaleTotals{TotalBs: dec("365"), TotalUsd: dec("10")},
		},
		{
			ID: uuid.NewString(), StoreID: testStoreID,
			Payment: &domain.SalePaymentInfo{Method: domain.MethodPagoMovil},
			Totals:  domain.SaleTotals{TotalBs: dec("150"), TotalUsd: dec("4.11")},
		},
	}

	suite.mockSessions.On("FindSessionByID", ctx, testStoreID, suite.session.ID).Return(&suite.session, nil)
	suite.mockSales.On("ListPaidSales", ctx, testStoreID, suite.session.ID).Return(sales, nil)
	suite.noMovements()

	summary, err := suite.service.GetSessionSummary(ctx, testStoreID, suite.session.ID)

	suite.NoError(err)
	suite.Equal(3, summary.SalesCount)
	// CASH_USD reported in its own currency, everything else in Bs.
	suite.True(summary.ByMethod[domain.MethodCashBs].Equal(dec("200")))
	suite.True(summary.ByMethod[domain.MethodCashUsd].Equal(dec("10")))
	suite.True(summary.ByMethod[domain.MethodPagoMovil].Equal(dec("150")))
	// Cash flow: only physical cash, plus opening.
	suite.True(summary.CashFlow.ExpectedBs.Equal(dec("300")))
	suite.True(summary.CashFlow.ExpectedUsd.Equal(dec("60")))
	suite.Nil(summary.Closing)
}

// --- RegisterMovement ---

func (suite *CashSessionServiceTestSuite) TestRegisterMovement_RequiresOpenSession() {
	ctx := context.Background()
	suite.mockSessions.On("FindOpenSession", ctx, testStoreID, "user-1").Return(nil, apperrors.ErrNotFound)

	_, err := suite.service.RegisterMovement(ctx, testStoreID, "user-1", dto.RegisterCashMovementRequest{
		Type: "INCOME", Currency: "BS", Amount: dec("50"), Reason: "owner drop",
	})

	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *CashSessionServiceTestSuite) TestRegisterMovement_SingleCurrency() {
	ctx := context.Background()
	suite.mockSessions.On("FindOpenSession", ctx, testStoreID, "user-1").Return(&suite.session, nil)
	suite.mockSessions.On("FindOpenSession", ctx, testStoreID, "user-1").Return(&suite.session, nil)
	suite.mockMovements.On("InsertMovement", ctx, mock.MatchedBy(func(m domain.CashMovement) bool {
		return m.MovementType == domain.MovementExit && m.AmountUsd.Equal(dec("25")) && m.AmountBs.IsZero()
	})).Return(nil)

	movement, err := suite.service.RegisterMovement(ctx, testStoreID, "user-1", dto.RegisterCashMovementRequest{
		Type: "EXPENSE", Currency: "USD", Amount: dec("25"), Reason: "supplier payout",
	})

	suite.NoError(err)
	suite.Equal(suite.session.ID, movement.CashSessionID)

	_, err = suite.service.RegisterMovement(ctx, testStoreID, "user-1", dto.RegisterCashMovementRequest{
		Type: "INCOME", Currency: "BS", Amount: dec("0"), Reason: "noop",
	})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestCashSessionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CashSessionServiceTestSuite))
}
