package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/velapos/pos_backend/internal/apperrors"
	"github.com/velapos/pos_backend/internal/middleware"
)

// respondError maps the service error taxonomy onto HTTP statuses. Internal
// detail is logged, never leaked: 5xx responses carry the generic fallback
// message instead of err.Error().
func respondError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Conflict", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrIntegrity):
		logger.Error("Integrity failure", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	case errors.Is(err, apperrors.ErrPersistence):
		logger.Error("Persistence failure", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	case errors.Is(err, apperrors.ErrUpstreamUnavailable):
		logger.Warn("Upstream unavailable", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": fallback})
	default:
		logger.Error("Unhandled service error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// identity pulls the acting store and user from the request context. Routes
// registered behind IdentityMiddleware always have a store; user may be
// empty for read-only calls.
func identity(c *gin.Context) (storeID, userID string, ok bool) {
	storeID, ok = middleware.GetStoreIDFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Store context missing"})
		return "", "", false
	}
	userID, _ = middleware.GetUserIDFromContext(c)
	return storeID, userID, true
}

// requireUser is identity plus a mandatory acting user for mutating routes.
func requireUser(c *gin.Context) (storeID, userID string, ok bool) {
	storeID, userID, ok = identity(c)
	if !ok {
		return "", "", false
	}
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-User-ID header required"})
		return "", "", false
	}
	return storeID, userID, true
}
