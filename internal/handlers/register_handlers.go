package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/velapos/pos_backend/internal/core/ports/services"
	"github.com/velapos/pos_backend/internal/middleware"
	"github.com/velapos/pos_backend/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// through the service container interfaces.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to the
// per-entity route registrations. Every v1 route requires store identity.
func setupAPIV1Routes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1", middleware.IdentityMiddleware())

	registerExchangeRateRoutes(v1, services.ExchangeRate)
	registerCashSessionRoutes(v1, services.CashSession)
	registerSalePaymentRoutes(v1, services.SalePayments)
}
