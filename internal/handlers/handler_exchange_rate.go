package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/velapos/pos_backend/internal/core/ports/services"
	"github.com/velapos/pos_backend/internal/dto"
	"github.com/velapos/pos_backend/internal/middleware"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	rateService portssvc.ExchangeRateSvcFacade
}

func newExchangeRateHandler(rateService portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{rateService: rateService}
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, rateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(rateService)

	rates := rg.Group("/exchange-rates")
	{
		rates.GET("/current", h.getCurrentRate)
		rates.POST("/manual", h.setManualRate)
		rates.GET("/history", h.getRateHistory)
	}
}

// getCurrentRate resolves the current Bs/USD rate through the fallback chain.
// A fully exhausted chain is still a 200: the response says no rate is
// available rather than failing the caller.
func (h *exchangeRateHandler) getCurrentRate(c *gin.Context) {
	storeID, _, ok := identity(c)
	if !ok {
		return
	}

	result, err := h.rateService.GetRate(c.Request.Context(), storeID)
	if err != nil {
		respondError(c, err, "Failed to resolve exchange rate")
		return
	}

	if result == nil {
		c.JSON(http.StatusOK, dto.CurrentRateResponse{
			Available: false,
			Message:   "No exchange rate available from any source",
		})
		return
	}

	c.JSON(http.StatusOK, dto.CurrentRateResponse{
		Rate:      &result.Rate,
		Source:    &result.Source,
		Timestamp: &result.Timestamp,
		Available: true,
	})
}

// setManualRate registers an operator override for the store.
func (h *exchangeRateHandler) setManualRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	storeID, userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.SetManualRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetManualRate")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	rate, err := h.rateService.SetManualRate(c.Request.Context(), storeID, req, userID)
	if err != nil {
		respondError(c, err, "Failed to set manual rate")
		return
	}

	c.JSON(http.StatusCreated, dto.ToRateResponse(rate))
}

// getRateHistory pages through the store's historical rate records.
func (h *exchangeRateHandler) getRateHistory(c *gin.Context) {
	storeID, _, ok := identity(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	rates, total, err := h.rateService.GetRateHistory(c.Request.Context(), storeID, limit, offset)
	if err != nil {
		respondError(c, err, "Failed to retrieve rate history")
		return
	}

	c.JSON(http.StatusOK, dto.RateHistoryResponse{
		Rates: dto.ToListRateResponse(rates),
		Total: total,
	})
}
