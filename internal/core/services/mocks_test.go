package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/velapos/pos_backend/internal/core/domain"
)

// --- Mock RateRepository ---
type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) FindActiveManualRate(ctx context.Context, storeID string, now time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, storeID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockRateRepository) FindLastManualRate(ctx context.Context, storeID string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockRateRepository) ListRateHistory(ctx context.Context, storeID string, limit, offset int) ([]domain.ExchangeRate, int, error) {
	args := m.Called(ctx, storeID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Int(1), args.Error(2)
}

func (m *MockRateRepository) SaveManualRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockRateRepository) DeactivateOverlappingManualRates(ctx context.Context, storeID string, from time.Time, until *time.Time) error {
	args := m.Called(ctx, storeID, from, until)
	return args.Error(0)
}

func (m *MockRateRepository) InsertManualRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockRateRepository) UpsertAPIRate(ctx context.Context, storeID string, rate decimal.Decimal, day time.Time) error {
	args := m.Called(ctx, storeID, rate, day)
	return args.Error(0)
}

// --- Mock RateSource ---
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) FetchOfficialRate(ctx context.Context) (*domain.RateQuote, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateQuote), args.Error(1)
}

// --- Mock CashSessionRepository ---
type MockCashSessionRepository struct {
	mock.Mock
}

func (m *MockCashSessionRepository) FindOpenSession(ctx context.Context, storeID, userID string) (*domain.CashSession, error) {
	args := m.Called(ctx, storeID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashSession), args.Error(1)
}

func (m *MockCashSessionRepository) FindOpenSessionForStore(ctx context.Context, storeID string) (*domain.CashSession, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashSession), args.Error(1)
}

func (m *MockCashSessionRepository) FindOpenSessionByID(ctx context.Context, storeID, sessionID string) (*domain.CashSession, error) {
	args := m.Called(ctx, storeID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashSession), args.Error(1)
}

func (m *MockCashSessionRepository) FindSessionByID(ctx context.Context, storeID, sessionID string) (*domain.CashSession, error) {
	args := m.Called(ctx, storeID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashSession), args.Error(1)
}

func (m *MockCashSessionRepository) ListSessions(ctx context.Context, storeID string, limit, offset int) ([]domain.CashSession, int, error) {
	args := m.Called(ctx, storeID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.CashSession), args.Int(1), args.Error(2)
}

func (m *MockCashSessionRepository) InsertSession(ctx context.Context, session domain.CashSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockCashSessionRepository) CloseSession(ctx context.Context, storeID, sessionID string, closing domain.SessionClosing) error {
	args := m.Called(ctx, storeID, sessionID, closing)
	return args.Error(0)
}

// --- Mock SaleLedgerReader ---
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) ListPaidSales(ctx context.Context, storeID, cashSessionID string) ([]domain.Sale, error) {
	args := m.Called(ctx, storeID, cashSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Sale), args.Error(1)
}

// --- Mock CashMovementRepository ---
type MockCashMovementRepository struct {
	mock.Mock
}

func (m *MockCashMovementRepository) InsertMovement(ctx context.Context, movement domain.CashMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockCashMovementRepository) SumMovements(ctx context.Context, storeID string, session domain.CashSession, endAt time.Time) (domain.MovementTotals, error) {
	args := m.Called(ctx, storeID, session, endAt)
	return args.Get(0).(domain.MovementTotals), args.Error(1)
}

// --- Mock SalePaymentRepository ---
type MockSalePaymentRepository struct {
	mock.Mock
}

func (m *MockSalePaymentRepository) FindPaymentsBySaleID(ctx context.Context, saleID string) ([]domain.SalePayment, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SalePayment), args.Error(1)
}

func (m *MockSalePaymentRepository) FindChangeBySaleID(ctx context.Context, saleID string) (*domain.SaleChange, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SaleChange), args.Error(1)
}

func (m *MockSalePaymentRepository) SavePayments(ctx context.Context, payments []domain.SalePayment, change *domain.SaleChange) error {
	args := m.Called(ctx, payments, change)
	return args.Error(0)
}

// --- Mock AuditRepository ---
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) InsertAuditEvent(ctx context.Context, event domain.AuditEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// --- Mock SecurityAuditSvc ---
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Log(ctx context.Context, event domain.AuditEvent) {
	m.Called(ctx, event)
}
