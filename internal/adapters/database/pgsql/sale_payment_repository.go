package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velapos/pos_backend/internal/apperrors"
	"github.com/velapos/pos_backend/internal/core/domain"
	portsrepo "github.com/velapos/pos_backend/internal/core/ports/repositories"
)

// PgxSalePaymentRepository persists payment lines and change records.
type PgxSalePaymentRepository struct {
	BaseRepository
}

func newPgxSalePaymentRepository(pool *pgxpool.Pool) portsrepo.SalePaymentRepositoryFacade {
	return &PgxSalePaymentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SalePaymentRepositoryFacade = (*PgxSalePaymentRepository)(nil)

const paymentColumns = `
	sale_payment_id, sale_id, payment_order, method, amount_usd, amount_bs,
	rate_type, applied_rate, reference, bank_code, phone, card_last_4,
	authorization_code, status, confirmed_at, confirmed_by, note
`

// FindPaymentsBySaleID returns a sale's payment lines in tender order.
func (r *PgxSalePaymentRepository) FindPaymentsBySaleID(ctx context.Context, saleID string) ([]domain.SalePayment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM sale_payments
		WHERE sale_id = $1
		ORDER BY payment_order ASC
	`
	rows, err := r.Pool.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("error listing sale payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.SalePayment
	for rows.Next() {
		var p domain.SalePayment
		if err := rows.Scan(
			&p.ID, &p.SaleID, &p.PaymentOrder, &p.Method, &p.AmountUsd, &p.AmountBs,
			&p.RateType, &p.AppliedRate, &p.Reference, &p.BankCode, &p.Phone, &p.CardLast4,
			&p.AuthorizationCode, &p.Status, &p.ConfirmedAt, &p.ConfirmedBy, &p.Note,
		); err != nil {
			return nil, fmt.Errorf("error scanning sale payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale payments: %w", err)
	}
	return payments, nil
}

// FindChangeBySaleID returns the sale's change record, or ErrNotFound.
func (r *PgxSalePaymentRepository) FindChangeBySaleID(ctx context.Context, saleID string) (*domain.SaleChange, error) {
	query := `
		SELECT sale_change_id, sale_id, change_usd, change_bs, change_method, applied_rate, created_at
		FROM sale_changes
		WHERE sale_id = $1
	`
	change := &domain.SaleChange{}
	err := r.Pool.QueryRow(ctx, query, saleID).Scan(
		&change.ID, &change.SaleID, &change.ChangeUsd, &change.ChangeBs,
		&change.ChangeMethod, &change.AppliedRate, &change.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error finding sale change: %w", err)
	}
	return change, nil
}

// SavePayments writes all lines plus the optional change record in one
// transaction, all-or-nothing.
func (r *PgxSalePaymentRepository) SavePayments(ctx context.Context, payments []domain.SalePayment, change *domain.SaleChange) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	batch := &pgx.Batch{}
	insertQuery := `
		INSERT INTO sale_payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	for _, p := range payments {
		batch.Queue(insertQuery,
			p.ID, p.SaleID, p.PaymentOrder, p.Method, p.AmountUsd, p.AmountBs,
			p.RateType, p.AppliedRate, p.Reference, p.BankCode, p.Phone, p.CardLast4,
			p.AuthorizationCode, p.Status, p.ConfirmedAt, p.ConfirmedBy, p.Note,
		)
	}
	if change != nil {
		batch.Queue(`
			INSERT INTO sale_changes (sale_change_id, sale_id, change_usd, change_bs, change_method, applied_rate, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			change.ID, change.SaleID, change.ChangeUsd, change.ChangeBs,
			change.ChangeMethod, change.AppliedRate, change.CreatedAt,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("error inserting payment batch item %d: %w", i, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("error closing payment batch: %w", err)
	}

	return r.Commit(ctx, tx)
}
