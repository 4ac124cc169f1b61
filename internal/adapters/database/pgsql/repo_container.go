package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/velapos/pos_backend/internal/core/ports/repositories"
)

// NewRepositoryProvider builds every repository over one shared pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		RateRepo:         newPgxRateRepository(dbPool),
		CashSessionRepo:  newPgxCashSessionRepository(dbPool),
		SaleRepo:         newPgxSaleRepository(dbPool),
		SalePaymentRepo:  newPgxSalePaymentRepository(dbPool),
		CashMovementRepo: newPgxCashMovementRepository(dbPool),
		AuditRepo:        newPgxAuditRepository(dbPool),
	}
}
