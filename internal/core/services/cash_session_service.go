package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
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

var two = decimal.NewFromInt(2)

// cashSessionService drives drawer sessions and the expected-cash
// reconciliation at close.
type cashSessionService struct {
	sessionRepo  portsrepo.CashSessionRepositoryFacade
	saleRepo     portsrepo.SaleLedgerReader
	movementRepo portsrepo.CashMovementRepositoryFacade
	audit        portssvc.SecurityAuditSvc

	// maxCountedAmount is an absolute sanity ceiling on counted inputs,
	// independent of the relative plausibility bound.
	maxCountedAmount decimal.Decimal
}

// NewCashSessionService creates the session service.
func NewCashSessionService(
	sessionRepo portsrepo.CashSessionRepositoryFacade,
	saleRepo portsrepo.SaleLedgerReader,
	movementRepo portsrepo.CashMovementRepositoryFacade,
	audit portssvc.SecurityAuditSvc,
	maxCountedAmount decimal.Decimal,
) portssvc.CashSessionSvcFacade {
	return &cashSessionService{
		sessionRepo:      sessionRepo,
		saleRepo:         saleRepo,
		movementRepo:     movementRepo,
		audit:            audit,
		maxCountedAmount: maxCountedAmount,
	}
}

var _ portssvc.CashSessionSvcFacade = (*cashSessionService)(nil)

// OpenSession starts a drawer session for the store.
func (s *cashSessionService) OpenSession(ctx context.Context, storeID, userID string, req dto.OpenCashSessionRequest) (*domain.CashSession, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	openingBs := domain.Round2(req.CashBs)
	openingUsd := domain.Round2(req.CashUsd)
	if openingBs.IsNegative() || openingUsd.IsNegative() {
		return nil, fmt.Errorf("%w: opening amounts cannot be negative", apperrors.ErrValidation)
	}

	existing, err := s.sessionRepo.FindOpenSessionForStore(ctx, storeID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for open session: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: store already has an open cash session", apperrors.ErrConflict)
	}

	session := domain.CashSession{
		ID:               uuid.NewString(),
		StoreID:          storeID,
		OpenedBy:         userID,
		OpenedAt:         time.Now(),
		OpeningAmountBs:  openingBs,
		OpeningAmountUsd: openingUsd,
		Note:             req.Note,
	}

	if err := s.sessionRepo.InsertSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to open cash session: %w", err)
	}

	logger.Info("Cash session opened",
		slog.String("session_id", session.ID),
		slog.String("store_id", storeID),
		slog.String("opened_by", userID),
	)
	return &session, nil
}

// GetCurrentSession returns the caller's open session.
func (s *cashSessionService) GetCurrentSession(ctx context.Context, storeID, userID string) (*domain.CashSession, error) {
	return s.sessionRepo.FindOpenSession(ctx, storeID, userID)
}

// CloseSession executes the full close algorithm: normalize and bound the
// counted inputs, load and guard the open session, derive expected cash from
// the raw sale ledger twice, cross-check the two derivations, check
// plausibility, persist the terminal close and verify it by re-reading.
// The re-read row is the result of record.
func (s *cashSessionService) CloseSession(ctx context.Context, storeID, userID, sessionID string, req dto.CloseCashSessionRequest) (*domain.CashSession, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// 1. Input normalization.
	countedBs := domain.Round2(req.CountedBs)
	countedUsd := domain.Round2(req.CountedUsd)
	if countedBs.IsNegative() || countedUsd.IsNegative() {
		return nil, fmt.Errorf("%w: counted amounts cannot be negative", apperrors.ErrValidation)
	}
	if countedBs.GreaterThan(s.maxCountedAmount) || countedUsd.GreaterThan(s.maxCountedAmount) {
		return nil, fmt.Errorf("%w: counted amounts exceed the reasonable limit", apperrors.ErrValidation)
	}
	counted := domain.CashAmounts{Bs: countedBs, Usd: countedUsd}

	// 2. Load and guard. The repository filter already excludes closed rows;
	// the explicit re-check guards the race between that read and this line.
	session, err := s.sessionRepo.FindOpenSessionByID(ctx, storeID, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: cash session not found or already closed", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load cash session: %w", err)
	}
	if session.IsClosed() {
		return nil, fmt.Errorf("%w: cash session was already closed", apperrors.ErrConflict)
	}

	// 3. Expected-cash derivation, twice and independently. The second fold
	// exists to catch drift between edits of the two copies, not real-world
	// discrepancies.
	sales, err := s.saleRepo.ListPaidSales(ctx, storeID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session sales: %w", err)
	}

	expected := session.OpeningAmounts()
	verify := session.OpeningAmounts()
	for i := range sales {
		expected, err = accumulateSaleCash(expected, sales[i])
		if err != nil {
			return nil, err
		}
		verify, err = verifySaleCash(verify, sales[i])
		if err != nil {
			return nil, err
		}
	}

	closedAt := time.Now()
	movements, err := s.movementRepo.SumMovements(ctx, storeID, *session, closedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate cash movements: %w", err)
	}
	expected.Bs = domain.Round2(expected.Bs.Add(movements.NetBs))
	expected.Usd = domain.Round2(expected.Usd.Add(movements.NetUsd))
	verify.Bs = domain.Round2(verify.Bs.Add(movements.NetBs))
	verify.Usd = domain.Round2(verify.Usd.Add(movements.NetUsd))

	// 4. Integrity check.
	if !expected.WithinCentOf(verify) {
		logger.Error("Expected-cash derivations diverged",
			slog.String("session_id", sessionID),
			slog.String("expected_bs", expected.Bs.String()),
			slog.String("verify_bs", verify.Bs.String()),
			slog.String("expected_usd", expected.Usd.String()),
			slog.String("verify_usd", verify.Usd.String()),
		)
		return nil, fmt.Errorf("%w: expected-cash calculations do not agree", apperrors.ErrIntegrity)
	}

	// 5. Plausibility guard: a cheap bound against fat-fingered entry, not a
	// ceiling on legitimate cash flow.
	// A non-positive bound carries no information (a USD-change-heavy session
	// can legitimately expect negative Bs), so the guard only fires on a
	// meaningful bound.
	maxBs := expected.Bs.Add(session.OpeningAmountBs).Mul(two)
	maxUsd := expected.Usd.Add(session.OpeningAmountUsd).Mul(two)
	if maxBs.IsPositive() && countedBs.GreaterThan(maxBs) {
		return nil, fmt.Errorf("%w: counted Bs %s is excessively high (max reasonable %s)", apperrors.ErrValidation, countedBs.StringFixed(2), maxBs.StringFixed(2))
	}
	if maxUsd.IsPositive() && countedUsd.GreaterThan(maxUsd) {
		return nil, fmt.Errorf("%w: counted USD %s is excessively high (max reasonable %s)", apperrors.ErrValidation, countedUsd.StringFixed(2), maxUsd.StringFixed(2))
	}

	// 6. Variance, sign preserved: negative means shortage.
	difference := counted.Sub(expected)

	// 7. Persist the one-and-only mutation this session will ever receive.
	note := req.Note
	if note == "" {
		note = session.Note
	}
	closing := domain.SessionClosing{
		ClosedAt: closedAt,
		ClosedBy: userID,
		Expected: expected,
		Counted:  counted,
		Note:     note,
	}
	if err := s.sessionRepo.CloseSession(ctx, storeID, sessionID, closing); err != nil {
		return nil, fmt.Errorf("failed to close cash session: %w", err)
	}

	// 8. Post-write verification: re-read and compare against what was
	// submitted. Guards silent write failure and concurrent mutation.
	persisted, err := s.sessionRepo.FindSessionByID(ctx, storeID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: session re-read failed after close", apperrors.ErrPersistence)
	}
	if !persisted.IsClosed() || persisted.Counted == nil {
		return nil, fmt.Errorf("%w: session close was not persisted", apperrors.ErrPersistence)
	}
	if !persisted.Counted.WithinCentOf(counted) {
		return nil, fmt.Errorf("%w: persisted counted amounts do not match submission", apperrors.ErrPersistence)
	}

	s.audit.Log(ctx, domain.AuditEvent{
		EventType: "cash_session_closed",
		StoreID:   storeID,
		UserID:    userID,
		Status:    domain.AuditSuccess,
		Details: map[string]any{
			"session_id":     sessionID,
			"expected_bs":    expected.Bs.String(),
			"expected_usd":   expected.Usd.String(),
			"counted_bs":     counted.Bs.String(),
			"counted_usd":    counted.Usd.String(),
			"difference_bs":  difference.Bs.String(),
			"difference_usd": difference.Usd.String(),
		},
	})

	logger.Info("Cash session closed",
		slog.String("session_id", sessionID),
		slog.String("difference_bs", difference.Bs.String()),
		slog.String("difference_usd", difference.Usd.String()),
	)
	return persisted, nil
}

// GetSessionSummary reports per-method sale totals and the cash-flow
// derivation for a session in any state. The cash-flow numbers come from the
// same fold the close algorithm uses; divergence between the two is a defect.
func (s *cashSessionService) GetSessionSummary(ctx context.Context, storeID, sessionID string) (*dto.SessionSummary, error) {
	session, err := s.sessionRepo.FindSessionByID(ctx, storeID, sessionID)
	if err != nil {
		return nil, err
	}

	sales, err := s.saleRepo.ListPaidSales(ctx, storeID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session sales: %w", err)
	}

	summary := &dto.SessionSummary{
		Session:    dto.ToSessionResponse(session),
		SalesCount: len(sales),
		ByMethod:   dto.MethodTotals{},
	}

	salesCash := domain.CashAmounts{Bs: decimal.Zero, Usd: decimal.Zero}
	for i := range sales {
		sale := sales[i]
		totalBs := domain.Round2(sale.Totals.TotalBs)
		totalUsd := domain.Round2(sale.Totals.TotalUsd)
		summary.TotalBs = domain.Round2(summary.TotalBs.Add(totalBs))
		summary.TotalUsd = domain.Round2(summary.TotalUsd.Add(totalUsd))

		if sale.Payment != nil {
			method := sale.Payment.Method
			// CASH_USD sales are reported in their own currency.
			if method == domain.MethodCashUsd {
				summary.ByMethod[method] = summary.ByMethod[method].Add(totalUsd)
			} else {
				summary.ByMethod[method] = summary.ByMethod[method].Add(totalBs)
			}
		}

		salesCash, err = accumulateSaleCash(salesCash, sale)
		if err != nil {
			return nil, err
		}
	}

	endAt := time.Now()
	if session.ClosedAt != nil {
		endAt = *session.ClosedAt
	}
	movements, err := s.movementRepo.SumMovements(ctx, storeID, *session, endAt)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate cash movements: %w", err)
	}

	opening := session.OpeningAmounts()
	summary.CashFlow = dto.CashFlowSummary{
		OpeningBs:    opening.Bs,
		OpeningUsd:   opening.Usd,
		SalesBs:      salesCash.Bs,
		SalesUsd:     salesCash.Usd,
		MovementsBs:  movements.NetBs,
		MovementsUsd: movements.NetUsd,
		ExpectedBs:   domain.Round2(opening.Bs.Add(salesCash.Bs).Add(movements.NetBs)),
		ExpectedUsd:  domain.Round2(opening.Usd.Add(salesCash.Usd).Add(movements.NetUsd)),
	}

	if session.Counted != nil && session.Expected != nil {
		diff := session.Counted.Sub(*session.Expected)
		summary.Closing = &dto.ClosingSummary{
			Expected:      *session.Expected,
			Counted:       *session.Counted,
			DifferenceBs:  diff.Bs,
			DifferenceUsd: diff.Usd,
			Note:          session.Note,
		}
	}

	return summary, nil
}

// ListSessions pages through a store's sessions, newest first.
func (s *cashSessionService) ListSessions(ctx context.Context, storeID string, limit, offset int) ([]domain.CashSession, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.sessionRepo.ListSessions(ctx, storeID, limit, offset)
}

// RegisterMovement records a non-sale drawer movement against the caller's
// open session.
func (s *cashSessionService) RegisterMovement(ctx context.Context, storeID, userID string, req dto.RegisterCashMovementRequest) (*domain.CashMovement, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	amount := domain.Round2(req.Amount)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: movement amount must be positive", apperrors.ErrValidation)
	}

	session, err := s.sessionRepo.FindOpenSession(ctx, storeID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: an open cash session is required to register movements", apperrors.ErrConflict)
		}
		return nil, fmt.Errorf("failed to load open session: %w", err)
	}

	movementType := domain.MovementEntry
	if req.Type == "EXPENSE" {
		movementType = domain.MovementExit
	}

	movement := domain.CashMovement{
		ID:            uuid.NewString(),
		StoreID:       storeID,
		CashSessionID: session.ID,
		MovementType:  movementType,
		Reason:        req.Reason,
		Note:          req.Reference,
		CreatedBy:     userID,
		CreatedAt:     time.Now(),
	}
	if req.Currency == string(domain.MovementUsd) {
		movement.AmountUsd = amount
	} else {
		movement.AmountBs = amount
	}

	if err := s.movementRepo.InsertMovement(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to register cash movement: %w", err)
	}

	logger.Info("Cash movement registered",
		slog.String("movement_id", movement.ID),
		slog.String("session_id", session.ID),
		slog.String("type", string(movementType)),
	)
	return &movement, nil
}
