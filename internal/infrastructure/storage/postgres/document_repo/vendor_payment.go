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
	"shopledger/internal/domain/documents/vendorpayment"
	"shopledger/internal/infrastructure/storage/postgres"
)

const vendorPaymentsTable = "vendor_payments"

var vendorPaymentColumns = []string{
	"id", "shop_id", "branch_id", "vendor_id",
	"amount", "method", "notes", "paid_at", "created_at",
}

// VendorPaymentRepo implements vendorpayment.Repository.
type VendorPaymentRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewVendorPaymentRepo creates a new vendor payment repository.
func NewVendorPaymentRepo(txm *postgres.TxManager) *VendorPaymentRepo {
	return &VendorPaymentRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ vendorpayment.Repository = (*VendorPaymentRepo)(nil)

// Create inserts a new vendor payment.
func (r *VendorPaymentRepo) Create(ctx context.Context, p *vendorpayment.Payment) error {
	q := r.builder.Insert(vendorPaymentsTable).
		Columns(vendorPaymentColumns...).
		Values(
			p.ID, p.ShopID, p.BranchID, p.VendorID,
			p.Amount, p.Method, p.Notes, p.PaidAt, p.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert vendor payment: %w", err)
	}
	return nil
}

// Get retrieves a vendor payment by ID.
func (r *VendorPaymentRepo) Get(ctx context.Context, paymentID id.ID) (*vendorpayment.Payment, error) {
	q := r.builder.Select(vendorPaymentColumns...).
		From(vendorPaymentsTable).
		Where(squirrel.Eq{"id": paymentID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p vendorpayment.Payment
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("vendor payment", paymentID.String())
		}
		return nil, fmt.Errorf("get vendor payment: %w", err)
	}
	return &p, nil
}

// List retrieves vendor payments matching the filter with a total count.
func (r *VendorPaymentRepo) List(ctx context.Context, filter vendorpayment.ListFilter) ([]vendorpayment.Payment, int64, error) {
	base := r.builder.Select().From(vendorPaymentsTable)

	if filter.VendorID != nil {
		base = base.Where(squirrel.Eq{"vendor_id": *filter.VendorID})
	}
	if filter.DateRange.From != nil {
		base = base.Where(squirrel.GtOrEq{"paid_at": *filter.DateRange.From})
	}
	if filter.DateRange.To != nil {
		base = base.Where(squirrel.LtOrEq{"paid_at": *filter.DateRange.To})
	}

	countSQL, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	var total int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count vendor payments: %w", err)
	}

	listSQL, listArgs, err := base.Columns(vendorPaymentColumns...).
		OrderBy("paid_at DESC", "id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var payments []vendorpayment.Payment
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &payments, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("select vendor payments: %w", err)
	}
	return payments, total, nil
}

// Delete removes a vendor payment.
func (r *VendorPaymentRepo) Delete(ctx context.Context, paymentID id.ID) error {
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx,
		`DELETE FROM vendor_payments WHERE id = $1`, paymentID)
	if err != nil {
		return fmt.Errorf("delete vendor payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("vendor payment", paymentID.String())
	}
	return nil
}
