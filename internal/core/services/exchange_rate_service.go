package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velapos/pos_backend/internal/apperrors"
	"github.com/velapos/pos_backend/internal/core/domain"
	"github.com/velapos/pos_backend/internal/core/ports/gateways"
	portsrepo "github.com/velapos/pos_backend/internal/core/ports/repositories"
	portssvc "github.com/velapos/pos_backend/internal/core/ports/services"
	"github.com/velapos/pos_backend/internal/dto"
	"github.com/velapos/pos_backend/internal/middleware"
)

// defaultRateFallback is the hard floor used when a caller supplies no
// usable fallback of its own. Downstream pricing must never see zero.
var defaultRateFallback = decimal.NewFromInt(36)

// inflightFetch is the shared outcome of one upstream call. Every caller
// that arrives while the fetch is running waits on done and reads the same
// result, success or failure.
type inflightFetch struct {
	done   chan struct{}
	result *domain.RateResult
	err    error
}

// exchangeRateService resolves the current Bs/USD rate through a layered
// fallback chain and guarantees at most one outstanding upstream call at any
// time. The in-memory cache is owned exclusively by this service.
type exchangeRateService struct {
	rateRepo     portsrepo.RateRepositoryFacade
	source       gateways.RateSource
	cacheTTL     time.Duration
	fetchTimeout time.Duration

	mu       sync.Mutex
	cached   *domain.RateResult
	inflight *inflightFetch
}

// NewExchangeRateService creates the rate service. cacheTTL bounds how long
// a fetched rate is served without revalidation; fetchTimeout bounds each
// upstream call.
func NewExchangeRateService(rateRepo portsrepo.RateRepositoryFacade, source gateways.RateSource, cacheTTL, fetchTimeout time.Duration) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{
		rateRepo:     rateRepo,
		source:       source,
		cacheTTL:     cacheTTL,
		fetchTimeout: fetchTimeout,
	}
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// GetRate resolves the current rate. Resolution order: valid cache, active
// manual rate for the store, the in-flight fetch if one is running, a fresh
// upstream fetch, then the failure fallbacks (last manual rate regardless of
// flags, stale cache). Returns (nil, nil) when every tier comes up empty;
// upstream and storage failures never surface here.
func (s *exchangeRateService) GetRate(ctx context.Context, storeID string) (*domain.RateResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now()

	if cached := s.freshCache(now); cached != nil {
		return cached, nil
	}

	// A manual override takes precedence over anything fetched and becomes
	// the new cache entry.
	if storeID != "" {
		manual, err := s.rateRepo.FindActiveManualRate(ctx, storeID, now)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Manual rate lookup failed, continuing down the chain", slog.String("store_id", storeID), slog.String("error", err.Error()))
		}
		if manual != nil && manual.Rate.IsPositive() {
			result := &domain.RateResult{Rate: manual.Rate, Source: domain.RateSourceManual, Timestamp: now}
			s.storeCache(result)
			return result, nil
		}
	}

	result, err := s.fetchShared(ctx, storeID)
	if err == nil {
		return result, nil
	}
	logger.Warn("Upstream rate fetch failed, applying fallbacks", slog.String("error", err.Error()))

	return s.fallbackRate(ctx, storeID), nil
}

// GetCurrentRate never fails and always returns a positive rate. The
// supplied fallback is substituted only when the whole chain in GetRate
// comes up empty or non-positive.
func (s *exchangeRateService) GetCurrentRate(ctx context.Context, storeID string, fallback decimal.Decimal) decimal.Decimal {
	if !fallback.IsPositive() {
		fallback = defaultRateFallback
	}

	result, _ := s.GetRate(ctx, storeID)
	if result != nil && result.Rate.IsPositive() {
		return result.Rate
	}
	return fallback
}

// SetManualRate registers an operator override. Overlapping active manual
// rates are deactivated and the new record inserted in one transaction, then
// the cache is overwritten so the next lookup sees the new rate immediately,
// TTL notwithstanding.
func (s *exchangeRateService) SetManualRate(ctx context.Context, storeID string, req dto.SetManualRateRequest, setBy string) (*domain.ExchangeRate, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Rate.IsPositive() {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if storeID == "" {
		return nil, fmt.Errorf("%w: store id is required", apperrors.ErrValidation)
	}

	now := time.Now()
	effectiveFrom := now
	if req.EffectiveFrom != nil {
		effectiveFrom = *req.EffectiveFrom
	}
	if req.EffectiveUntil != nil && !req.EffectiveUntil.After(effectiveFrom) {
		return nil, fmt.Errorf("%w: effective_until must be after effective_from", apperrors.ErrValidation)
	}

	rateType := domain.RateTypeBCV
	if req.RateType != "" {
		rateType = domain.RateType(req.RateType)
	}

	record := domain.ExchangeRate{
		ID:             uuid.NewString(),
		StoreID:        storeID,
		Rate:           req.Rate,
		RateType:       rateType,
		Source:         domain.RateSourceManual,
		EffectiveFrom:  effectiveFrom,
		EffectiveUntil: req.EffectiveUntil,
		IsActive:       true,
		Note:           req.Note,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     setBy,
			LastUpdatedAt: now,
			LastUpdatedBy: setBy,
		},
	}

	if err := s.rateRepo.SaveManualRate(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save manual rate: %w", err)
	}

	s.storeCache(&domain.RateResult{Rate: record.Rate, Source: domain.RateSourceManual, Timestamp: now})

	logger.Info("Manual exchange rate set",
		slog.String("store_id", storeID),
		slog.String("rate", record.Rate.String()),
		slog.String("rate_type", string(rateType)),
	)
	return &record, nil
}

// GetRateHistory pages through a store's historical rate records.
func (s *exchangeRateService) GetRateHistory(ctx context.Context, storeID string, limit, offset int) ([]domain.ExchangeRate, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.rateRepo.ListRateHistory(ctx, storeID, limit, offset)
}

// fetchShared joins the in-flight upstream call if one exists, otherwise
// starts it. All concurrent callers observe the one outcome.
func (s *exchangeRateService) fetchShared(ctx context.Context, storeID string) (*domain.RateResult, error) {
	s.mu.Lock()
	if s.inflight != nil {
		fetch := s.inflight
		s.mu.Unlock()
		select {
		case <-fetch.done:
			return fetch.result, fetch.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	fetch := &inflightFetch{done: make(chan struct{})}
	s.inflight = fetch
	s.mu.Unlock()

	fetch.result, fetch.err = s.fetchUpstream(ctx, storeID)

	s.mu.Lock()
	s.inflight = nil
	s.mu.Unlock()
	close(fetch.done)

	return fetch.result, fetch.err
}

// fetchUpstream performs one bounded call against the rate source. The
// timeout context is detached from the initiating caller's cancellation so
// one impatient caller cannot poison the outcome for its co-waiters.
func (s *exchangeRateService) fetchUpstream(ctx context.Context, storeID string) (*domain.RateResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
	defer cancel()

	quote, err := s.source.FetchOfficialRate(fetchCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUpstreamUnavailable, err)
	}
	if quote == nil || !quote.Rate.IsPositive() {
		return nil, fmt.Errorf("%w: non-positive rate in payload", apperrors.ErrUpstreamUnavailable)
	}

	result := &domain.RateResult{Rate: quote.Rate, Source: domain.RateSourceAPI, Timestamp: time.Now()}
	s.storeCache(result)

	// Reference record is best-effort: losing it must not fail the lookup.
	if storeID != "" {
		day := result.Timestamp.Truncate(24 * time.Hour)
		if err := s.rateRepo.UpsertAPIRate(fetchCtx, storeID, result.Rate, day); err != nil {
			logger.Warn("Failed to persist API rate reference record", slog.String("store_id", storeID), slog.String("error", err.Error()))
		}
	}

	return result, nil
}

// fallbackRate applies the failure tiers: last manual rate for the store
// regardless of active/validity flags, then the stale in-memory cache.
func (s *exchangeRateService) fallbackRate(ctx context.Context, storeID string) *domain.RateResult {
	logger := middleware.GetLoggerFromCtx(ctx)

	if storeID != "" {
		last, err := s.rateRepo.FindLastManualRate(ctx, storeID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Last manual rate lookup failed", slog.String("store_id", storeID), slog.String("error", err.Error()))
		}
		if last != nil && last.Rate.IsPositive() {
			return &domain.RateResult{Rate: last.Rate, Source: domain.RateSourceManual, Timestamp: last.EffectiveFrom}
		}
	}

	// An expired cache entry is still better than nothing at all.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil {
		stale := *s.cached
		return &stale
	}
	return nil
}

// freshCache returns a copy of the cache entry while it is within TTL.
func (s *exchangeRateService) freshCache(now time.Time) *domain.RateResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached == nil || now.Sub(s.cached.Timestamp) >= s.cacheTTL {
		return nil
	}
	fresh := *s.cached
	return &fresh
}

func (s *exchangeRateService) storeCache(result *domain.RateResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := *result
	s.cached = &entry
}
