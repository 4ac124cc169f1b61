package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velapos/pos_backend/internal/core/domain"
	portsrepo "github.com/velapos/pos_backend/internal/core/ports/repositories"
)

// PgxSaleRepository is the read-only sale ledger view the reconciliation
// core folds over.
type PgxSaleRepository struct {
	BaseRepository
}

func newPgxSaleRepository(pool *pgxpool.Pool) portsrepo.SaleLedgerReader {
	return &PgxSaleRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SaleLedgerReader = (*PgxSaleRepository)(nil)

// ListPaidSales returns every sale of the session with recorded payment info.
// payment_info is a jsonb column; rows where it is null never had a payment
// recorded and are excluded at the query level.
func (r *PgxSaleRepository) ListPaidSales(ctx context.Context, storeID, cashSessionID string) ([]domain.Sale, error) {
	query := `
		SELECT sale_id, store_id, cash_session_id, payment_info, total_bs, total_usd
		FROM sales
		WHERE store_id = $1 AND cash_session_id = $2 AND payment_info IS NOT NULL
		ORDER BY created_at ASC
	`
	rows, err := r.Pool.Query(ctx, query, storeID, cashSessionID)
	if err != nil {
		return nil, fmt.Errorf("error listing session sales: %w", err)
	}
	defer rows.Close()

	var sales []domain.Sale
	for rows.Next() {
		var sale domain.Sale
		if err := rows.Scan(
			&sale.ID, &sale.StoreID, &sale.CashSessionID,
			&sale.Payment, &sale.Totals.TotalBs, &sale.Totals.TotalUsd,
		); err != nil {
			return nil, fmt.Errorf("error scanning sale: %w", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}
	return sales, nil
}
