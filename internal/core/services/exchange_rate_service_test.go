package services_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/velapos/pos_backend/internal/apperrors"
	"github.com/velapos/pos_backend/internal/core/domain"
	portssvc "github.com/velapos/pos_backend/internal/core/ports/services"
	"github.com/velapos/pos_backend/internal/core/services"
	"github.com/velapos/pos_backend/internal/dto"
)

const testStoreID = "store-1"

type ExchangeRateServiceTestSuite struct {
	suite.Suite
	mockRepo   *MockRateRepository
	mockSource *MockRateSource
	service    portssvc.ExchangeRateSvcFacade
}

func (suite *ExchangeRateServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockRateRepository)
	suite.mockSource = new(MockRateSource)
	suite.service = services.NewExchangeRateService(suite.mockRepo, suite.mockSource, time.Hour, 5*time.Second)
}

func (suite *ExchangeRateServiceTestSuite) TestGetRate_FetchesFromSource() {
	ctx := context.Background()
	suite.mockRepo.On("FindActiveManualRate", ctx, testStoreID, mock.Anything).Return(nil, apperrors.ErrNotFound)
	suite.mockSource.On("FetchOfficialRate", mock.Anything).Return(&domain.RateQuote{Rate: decimal.NewFromFloat(36.5), UpdatedAt: time.Now()}, nil)
	suite.mockRepo.On("UpsertAPIRate", mock.Anything, testStoreID, mock.Anything, mock.Anything).Return(nil)

	result, err := suite.service.GetRate(ctx, testStoreID)

	suite.NoError(err)
	suite.NotNil(result)
	suite.True(result.Rate.Equal(decimal.NewFromFloat(36.5)))
	suite.Equal(domain.RateSourceAPI, result.Source)
}

func (suite *ExchangeRateServiceTestSuite) TestGetRate_CachesWithinTTL() {
	ctx := context.Background()
	suite.mockRepo.On("FindActiveManualRate", ctx, testStoreID, mock.Anything).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockSource.On("FetchOfficialRate", mock.Anything).Return(&domain.RateQuote{Rate: decimal.NewFromFloat(36.5), UpdatedAt: time.Now()}, nil).Once()
	suite.mockRepo.On("UpsertAPIRate", mock.Anything, testStoreID, mock.Anything, mock.Anything).Return(nil)

	first, err := suite.service.GetRate(ctx, testStoreID)
	suite.NoError(err)
	second, err := suite.service.GetRate(ctx, testStoreID)
	suite.NoError(err)

	suite.True(first.Rate.Equal(second.Rate))
	// Second call never touched the source.
	suite.mockSource.AssertNumberOfCalls(suite.T(), "FetchOfficialRate", 1)
}

func (suite *ExchangeRateServiceTestSuite) TestGetRate_ManualTakesPrecedence() {
	ctx := context.Background()
	manual := &domain.ExchangeRate{Rate: decimal.NewFromInt(40), Source: domain.RateSourceManual, IsActive: true, EffectiveFrom: time.Now().Add(-time.Hour)}
	suite.mockRepo.On("FindActiveManualRate", ctx, testStoreID, mock.Anything).Return(manual, nil)

	result, err := suite.service.GetRate(ctx, testStoreID)

	suite.NoError(err)
	suite.True(result.Rate.Equal(decimal.NewFromInt(40)))
	suite.Equal(domain.RateSourceManual, result.Source)
	suite.mockSource.AssertNotCalled(suite.T(), "FetchOfficialRate")
}

func (suite *ExchangeRateServiceTestSuite) TestGetRate_FallsBackToLastManualOnFetchFailure() {
	ctx := context.Background()
	last := &domain.ExchangeRate{Rate: decimal.NewFromInt(38), Source: domain.RateSourceManual, IsActive: false, EffectiveFrom: time.Now().Add(-48 * time.Hour)}
	suite.mockRepo.On("FindActiveManualRate", ctx, testStoreID, mock.Anything).Return(nil, apperrors.ErrNotFound)
	suite.mockSource.On("FetchOfficialRate", mock.Anything).Return(nil, fmt.Errorf("connection refused"))
	suite.mockRepo.On("FindLastManualRate", ctx, testStoreID).Return(last, nil)

	result, err := suite.service.GetRate(ctx, testStoreID)

	suite.NoError(err, "upstream failure must not surface")
	suite.NotNil(result)
	suite.True(result.Rate.Equal(decimal.NewFromInt(38)))
}

func (suite *ExchangeRateServiceTestSuite) TestGetRate_NilWhenEveryTierEmpty() {
	ctx := context.Background()
	suite.mockRepo.On("FindActiveManualRate", ctx, testStoreID, mock.Anything).Return(nil, apperrors.ErrNotFound)
	suite.mockSource.On("FetchOfficialRate", mock.Anything).Return(nil, fmt.Errorf("timeout"))
	suite.mockRepo.On("FindLastManualRate", ctx, testStoreID).Return(nil, apperrors.ErrNotFound)

	result, err := suite.service.GetRate(ctx, testStoreID)

	suite.NoError(err)
	suite.Nil(result)
}

func (suite *ExchangeRateServiceTestSuite) TestGetCurrentRate_NeverReturnsNonPositive() {
	ctx := context.Background()
	suite.mockRepo.On("FindActiveManualRate", ctx, testStoreID, mock.Anything).Return(nil, apperrors.ErrNotFound)
	suite.mockSource.On("FetchOfficialRate", mock.Anything).Return(nil, fmt.Errorf("down"))
	suite.mockRepo.On("FindLastManualRate", ctx, testStoreID).Return(nil, apperrors.ErrNotFound)

	rate := suite.service.GetCurrentRate(ctx, testStoreID, decimal.NewFromInt(36))
	suite.True(rate.Equal(decimal.NewFromInt(36)))

	// A non-positive caller fallback is replaced by the hard floor.
	rate = suite.service.GetCurrentRate(ctx, testStoreID, decimal.Zero)
	suite.True(rate.IsPositive())
}

func (suite *ExchangeRateServiceTestSuite) TestConcurrentLookups_OneUpstreamCall() {
	ctx := context.Background()
	var fetches atomic.Int32

	suite.mockRepo.On("FindActiveManualRate", ctx, testStoreID, mock.Anything).Return(nil, apperrors.ErrNotFound)
	suite.mockRepo.On("UpsertAPIRate", mock.Anything, testStoreID, mock.Anything, mock.Anything).Return(nil)
	suite.mockSource.On("FetchOfficialRate", mock.Anything).Run(func(args mock.Arguments) {
		fetches.Add(1)
		time.Sleep(50 * time.Millisecond)
	}).Return(&domain.RateQuote{Rate: decimal.NewFromFloat(36.5), UpdatedAt: time.Now()}, nil)

	const callers = 20
	results := make([]*domain.RateResult, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], _ = suite.service.GetRate(ctx, testStoreID)
		}(i)
	}
	wg.Wait()

	suite.Equal(int32(1), fetches.Load(), "concurrent callers must share one upstream call")
	for _, r := range results {
		suite.NotNil(r)
		suite.True(r.Rate.Equal(decimal.NewFromFloat(36.5)))
	}
}

func (suite *ExchangeRateServiceTestSuite) TestSetManualRate_Success() {
	ctx := context.Background()
	req := dto.SetManualRateRequest{Rate: decimal.NewFromFloat(41.25), RateType: "BCV"}
	suite.mockRepo.On("SaveManualRate", ctx, mock.MatchedBy(func(r domain.ExchangeRate) bool {
		return r.Rate.Equal(decimal.NewFromFloat(41.25)) && r.IsActive && r.Source == domain.RateSourceManual
	})).Return(nil)

	record, err := suite.service.SetManualRate(ctx, testStoreID, req, "user-1")

	suite.NoError(err)
	suite.NotNil(record)
	suite.NotEmpty(record.ID)

	// The override must be visible to the next lookup without any fetch.
	result, err := suite.service.GetRate(ctx, testStoreID)
	suite.NoError(err)
	suite.True(result.Rate.Equal(decimal.NewFromFloat(41.25)))
	suite.mockSource.AssertNotCalled(suite.T(), "FetchOfficialRate")
}

func (suite *ExchangeRateServiceTestSuite) TestSetManualRate_RejectsNonPositive() {
	ctx := context.Background()

	_, err := suite.service.SetManualRate(ctx, testStoreID, dto.SetManualRateRequest{Rate: decimal.Zero}, "user-1")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.SetManualRate(ctx, testStoreID, dto.SetManualRateRequest{Rate: decimal.NewFromInt(-5)}, "user-1")
	suite.ErrorIs(err, apperrors.ErrValidation)

	suite.mockRepo.AssertNotCalled(suite.T(), "SaveManualRate")
}

func (suite *ExchangeRateServiceTestSuite) TestSetManualRate_RejectsInvertedWindow() {
	ctx := context.Background()
	from := time.Now()
	until := from.Add(-time.Hour)
	req := dto.SetManualRateRequest{Rate: decimal.NewFromInt(40), EffectiveFrom: &from, EffectiveUntil: &until}

	_, err := suite.service.SetManualRate(ctx, testStoreID, req, "user-1")

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExchangeRateServiceTestSuite) TestGetRate_StaleCacheAsLastResort() {
	ctx := context.Background()
	// Prime the cache through a manual rate, then make every tier fail.
	shortTTL := services.NewExchangeRateService(suite.mockRepo, suite.mockSource, time.Millisecond, 5*time.Second)

	manual := &domain.ExchangeRate{Rate: decimal.NewFromInt(39), Source: domain.RateSourceManual, IsActive: true, EffectiveFrom: time.Now().Add(-time.Hour)}
	suite.mockRepo.On("FindActiveManualRate", ctx, testStoreID, mock.Anything).Return(manual, nil).Once()

	first, err := shortTTL.GetRate(ctx, testStoreID)
	suite.NoError(err)
	suite.NotNil(first)

	time.Sleep(5 * time.Millisecond)

	suite.mockRepo.On("FindActiveManualRate", ctx, testStoreID, mock.Anything).Return(nil, apperrors.ErrNotFound)
	suite.mockSource.On("FetchOfficialRate", mock.Anything).Return(nil, fmt.Errorf("down"))
	suite.mockRepo.On("FindLastManualRate", ctx, testStoreID).Return(nil, apperrors.ErrNotFound)

	stale, err := shortTTL.GetRate(ctx, testStoreID)
	suite.NoError(err)
	suite.NotNil(stale, "expired cache entry still serves as last resort")
	suite.True(stale.Rate.Equal(decimal.NewFromInt(39)))
}

func TestExchangeRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}

func TestGetRateHistory_ClampsPagination(t *testing.T) {
	mockRepo := new(MockRateRepository)
	mockSource := new(MockRateSource)
	svc := services.NewExchangeRateService(mockRepo, mockSource, time.Hour, time.Second)

	mockRepo.On("ListRateHistory", mock.Anything, testStoreID, 50, 0).Return([]domain.ExchangeRate{}, 0, nil)

	_, _, err := svc.GetRateHistory(context.Background(), testStoreID, -3, -10)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
