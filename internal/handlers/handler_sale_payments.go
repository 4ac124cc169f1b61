package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	portssvc "github.com/velapos/pos_backend/internal/core/ports/services"
	"github.com/velapos/pos_backend/internal/dto"
	"github.com/velapos/pos_backend/internal/middleware"
)

// salePaymentsHandler handles HTTP requests for split payment recording.
type salePaymentsHandler struct {
	paymentsService portssvc.SalePaymentsSvcFacade
}

func newSalePaymentsHandler(paymentsService portssvc.SalePaymentsSvcFacade) *salePaymentsHandler {
	return &salePaymentsHandler{paymentsService: paymentsService}
}

// registerSalePaymentRoutes registers payment recording and lookup routes.
func registerSalePaymentRoutes(rg *gin.RouterGroup, paymentsService portssvc.SalePaymentsSvcFacade) {
	h := newSalePaymentsHandler(paymentsService)

	sales := rg.Group("/sales/:saleID")
	{
		sales.POST("/payments", h.processPayments)
		sales.GET("/payments", h.getPayments)
		sales.GET("/change", h.getChange)
		sales.GET("/totals", h.getTotals)
	}
}

// processPayments validates and persists the sale's payment lines.
func (h *salePaymentsHandler) processPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	storeID, userID, ok := requireUser(c)
	if !ok {
		return
	}
	saleID := c.Param("saleID")

	var req dto.ProcessPaymentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ProcessPayments")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.paymentsService.ProcessPayments(c.Request.Context(), saleID, storeID, req.TotalDueUsd, req.Payments, userID)
	if err != nil {
		respondError(c, err, "Failed to process payments")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// getPayments returns the sale's payment lines in tender order.
func (h *salePaymentsHandler) getPayments(c *gin.Context) {
	if _, _, ok := identity(c); !ok {
		return
	}

	payments, err := h.paymentsService.GetPaymentsBySale(c.Request.Context(), c.Param("saleID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve payments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": dto.ToListPaymentResponse(payments)})
}

// getChange returns the sale's change record if one was issued.
func (h *salePaymentsHandler) getChange(c *gin.Context) {
	if _, _, ok := identity(c); !ok {
		return
	}

	change, err := h.paymentsService.GetChangeBySale(c.Request.Context(), c.Param("saleID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve change record")
		return
	}

	c.JSON(http.StatusOK, change)
}

// getTotals sums persisted lines against the amount due from the query.
func (h *salePaymentsHandler) getTotals(c *gin.Context) {
	if _, _, ok := identity(c); !ok {
		return
	}

	due, err := decimal.NewFromString(c.Query("total_due_usd"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "total_due_usd query parameter must be a decimal"})
		return
	}

	summary, err := h.paymentsService.CalculateSaleTotals(c.Request.Context(), c.Param("saleID"), due)
	if err != nil {
		respondError(c, err, "Failed to calculate sale totals")
		return
	}

	c.JSON(http.StatusOK, summary)
}
