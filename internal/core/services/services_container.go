package services

import (
	"github.com/velapos/pos_backend/internal/core/ports/gateways"
	portsrepo "github.com/velapos/pos_backend/internal/core/ports/repositories"
	portssvc "github.com/velapos/pos_backend/internal/core/ports/services"
	"github.com/velapos/pos_backend/pkg/config"
)

// NewServiceContainer wires all application services with their dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, rateSource gateways.RateSource) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Audit first: the reconciliation services report anomalies through it.
	container.Audit = NewSecurityAuditService(repos.AuditRepo)

	container.ExchangeRate = NewExchangeRateService(
		repos.RateRepo,
		rateSource,
		cfg.RateCacheTTL,
		cfg.RateFetchTimeout,
	)

	container.CashSession = NewCashSessionService(
		repos.CashSessionRepo,
		repos.SaleRepo,
		repos.CashMovementRepo,
		container.Audit,
		cfg.MaxCountedAmount,
	)

	container.SalePayments = NewSalePaymentsService(
		repos.SalePaymentRepo,
		container.ExchangeRate,
		container.Audit,
		cfg.PaymentToleranceUsd,
		cfg.RateFallback,
	)

	return container
}
