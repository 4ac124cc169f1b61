package repositories

import (
	"context"

	"github.com/velapos/pos_backend/internal/core/domain"
)

// SaleLedgerReader is the core's read-only view of completed sales. The
// close algorithm re-derives expected cash from these raw rows instead of
// trusting any running balance.
type SaleLedgerReader interface {
	// ListPaidSales returns every sale of the session that has a recorded
	// payment. Sales without payment info are excluded at the query level.
	ListPaidSales(ctx context.Context, storeID, cashSessionID string) ([]domain.Sale, error)
}

// SalePaymentReader defines reads over persisted payment lines.
type SalePaymentReader interface {
	FindPaymentsBySaleID(ctx context.Context, saleID string) ([]domain.SalePayment, error)
	FindChangeBySaleID(ctx context.Context, saleID string) (*domain.SaleChange, error)
}

// SalePaymentWriter persists a sale's payment lines and optional change
// record in one transaction, all-or-nothing.
type SalePaymentWriter interface {
	SavePayments(ctx context.Context, payments []domain.SalePayment, change *domain.SaleChange) error
}

// SalePaymentRepositoryFacade combines payment line reads and writes.
type SalePaymentRepositoryFacade interface {
	SalePaymentReader
	SalePaymentWriter
}
