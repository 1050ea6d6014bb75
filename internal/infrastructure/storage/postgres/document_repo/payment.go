package document_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/documents/payment"
	"shopledger/internal/infrastructure/storage/postgres"
)

const paymentsTable = "payments"

var paymentColumns = []string{
	"id", "shop_id", "branch_id", "customer_id", "bank_account_id",
	"amount", "method", "status",
	"cheque_number", "cheque_date", "notes",
	"created_at", "updated_at",
}

// PaymentRepo implements payment.Repository.
type PaymentRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewPaymentRepo creates a new payment repository.
func NewPaymentRepo(txm *postgres.TxManager) *PaymentRepo {
	return &PaymentRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ payment.Repository = (*PaymentRepo)(nil)

// Create inserts a new payment.
func (r *PaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	q := r.builder.Insert(paymentsTable).
		Columns(paymentColumns...).
		Values(
			p.ID, p.ShopID, p.BranchID, p.CustomerID, p.BankAccountID,
			p.Amount, p.Method, p.Status,
			p.ChequeNumber, p.ChequeDate, p.Notes,
			p.CreatedAt, p.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// Get retrieves a payment by ID.
func (r *PaymentRepo) Get(ctx context.Context, paymentID id.ID) (*payment.Payment, error) {
	return r.get(ctx, paymentID, false)
}

// GetForUpdate retrieves a payment with a FOR UPDATE row lock.
func (r *PaymentRepo) GetForUpdate(ctx context.Context, paymentID id.ID) (*payment.Payment, error) {
	return r.get(ctx, paymentID, true)
}

func (r *PaymentRepo) get(ctx context.Context, paymentID id.ID, forUpdate bool) (*payment.Payment, error) {
	q := r.builder.Select(paymentColumns...).
		From(paymentsTable).
		Where(squirrel.Eq{"id": paymentID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p payment.Payment
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("payment", paymentID.String())
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

// List retrieves payments matching the filter with a total count.
func (r *PaymentRepo) List(ctx context.Context, filter payment.ListFilter) ([]payment.Payment, int64, error) {
	base := r.builder.Select().From(paymentsTable)

	if filter.CustomerID != nil {
		base = base.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.Status != nil {
		base = base.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.Method != nil {
		base = base.Where(squirrel.Eq{"method": *filter.Method})
	}
	if filter.DateRange.From != nil {
		base = base.Where(squirrel.GtOrEq{"created_at": *filter.DateRange.From})
	}
	if filter.DateRange.To != nil {
		base = base.Where(squirrel.LtOrEq{"created_at": *filter.DateRange.To})
	}

	countSQL, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	var total int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	listSQL, listArgs, err := base.Columns(paymentColumns...).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var payments []payment.Payment
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &payments, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("select payments: %w", err)
	}
	return payments, total, nil
}

// ListPendingCheques returns cheque payments awaiting clearance, oldest first.
func (r *PaymentRepo) ListPendingCheques(ctx context.Context) ([]payment.Payment, error) {
	q := r.builder.Select(paymentColumns...).
		From(paymentsTable).
		Where(squirrel.Eq{"method": payment.MethodCheque}).
		Where(squirrel.Eq{"status": payment.StatusPending}).
		OrderBy("cheque_date NULLS LAST", "created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var payments []payment.Payment
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &payments, sql, args...); err != nil {
		return nil, fmt.Errorf("select pending cheques: %w", err)
	}
	return payments, nil
}

// UpdateStatus persists a status transition.
func (r *PaymentRepo) UpdateStatus(ctx context.Context, paymentID id.ID, status payment.Status) error {
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx,
		`UPDATE payments SET status = $1, updated_at = now() WHERE id = $2`,
		status, paymentID)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("payment", paymentID.String())
	}
	return nil
}

// Delete removes the payment.
func (r *PaymentRepo) Delete(ctx context.Context, paymentID id.ID) error {
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx,
		`DELETE FROM payments WHERE id = $1`, paymentID)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("payment", paymentID.String())
	}
	return nil
}
