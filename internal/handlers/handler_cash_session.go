package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/velapos/pos_backend/internal/core/ports/services"
	"github.com/velapos/pos_backend/internal/dto"
	"github.com/velapos/pos_backend/internal/middleware"
)

// cashSessionHandler handles HTTP requests for the drawer session lifecycle.
type cashSessionHandler struct {
	sessionService portssvc.CashSessionSvcFacade
}

func newCashSessionHandler(sessionService portssvc.CashSessionSvcFacade) *cashSessionHandler {
	return &cashSessionHandler{sessionService: sessionService}
}

// registerCashSessionRoutes registers the session lifecycle routes.
func registerCashSessionRoutes(rg *gin.RouterGroup, sessionService portssvc.CashSessionSvcFacade) {
	h := newCashSessionHandler(sessionService)

	sessions := rg.Group("/cash-sessions")
	{
		sessions.POST("/open", h.openSession)
		sessions.GET("/current", h.getCurrentSession)
		sessions.GET("", h.listSessions)
		sessions.GET("/:sessionID/summary", h.getSessionSummary)
		sessions.POST("/:sessionID/close", h.closeSession)
		sessions.POST("/movements", h.registerMovement)
	}
}

// openSession starts a drawer session with the counted opening amounts.
func (h *cashSessionHandler) openSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	storeID, userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.OpenCashSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for OpenSession")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	session, err := h.sessionService.OpenSession(c.Request.Context(), storeID, userID, req)
	if err != nil {
		respondError(c, err, "Failed to open cash session")
		return
	}

	c.JSON(http.StatusCreated, dto.ToSessionResponse(session))
}

// getCurrentSession returns the caller's open session.
func (h *cashSessionHandler) getCurrentSession(c *gin.Context) {
	storeID, userID, ok := requireUser(c)
	if !ok {
		return
	}

	session, err := h.sessionService.GetCurrentSession(c.Request.Context(), storeID, userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve current session")
		return
	}

	c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

// closeSession runs the reconciliation close.
func (h *cashSessionHandler) closeSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	storeID, userID, ok := requireUser(c)
	if !ok {
		return
	}
	sessionID := c.Param("sessionID")

	var req dto.CloseCashSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CloseSession", slog.String("session_id", sessionID))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	session, err := h.sessionService.CloseSession(c.Request.Context(), storeID, userID, sessionID, req)
	if err != nil {
		respondError(c, err, "Failed to close cash session")
		return
	}

	c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

// getSessionSummary reports per-method totals and the cash-flow derivation.
func (h *cashSessionHandler) getSessionSummary(c *gin.Context) {
	storeID, _, ok := identity(c)
	if !ok {
		return
	}

	summary, err := h.sessionService.GetSessionSummary(c.Request.Context(), storeID, c.Param("sessionID"))
	if err != nil {
		respondError(c, err, "Failed to build session summary")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// listSessions pages through the store's sessions.
func (h *cashSessionHandler) listSessions(c *gin.Context) {
	storeID, _, ok := identity(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	sessions, total, err := h.sessionService.ListSessions(c.Request.Context(), storeID, limit, offset)
	if err != nil {
		respondError(c, err, "Failed to list cash sessions")
		return
	}

	responses := make([]dto.SessionResponse, len(sessions))
	for i := range sessions {
		responses[i] = dto.ToSessionResponse(&sessions[i])
	}
	c.JSON(http.StatusOK, dto.ListSessionsResponse{Sessions: responses, Total: total})
}

// registerMovement records a non-sale drawer entry or exit.
func (h *cashSessionHandler) registerMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	storeID, userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.RegisterCashMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RegisterMovement")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	movement, err := h.sessionService.RegisterMovement(c.Request.Context(), storeID, userID, req)
	if err != nil {
		respondError(c, err, "Failed to register cash movement")
		return
	}

	c.JSON(http.StatusCreated, movement)
}
