// Package document_repo provides PostgreSQL implementations for document
// repositories.
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
	"shopledger/internal/domain/documents/invoice"
	"shopledger/internal/infrastructure/storage/postgres"
)

const (
	invoicesTable     = "invoices"
	invoiceItemsTable = "invoice_items"
)

var invoiceColumns = []string{
	"id", "shop_id", "branch_id", "reference", "customer_id",
	"subtotal", "discount", "tax", "grand_total",
	"notes", "created_at", "updated_at",
}

var invoiceItemColumns = []string{
	"id", "invoice_id", "product_name", "quantity", "unit_price", "total",
}

// InvoiceRepo implements invoice.Repository.
type InvoiceRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txm *postgres.TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ invoice.Repository = (*InvoiceRepo)(nil)

// Create inserts the invoice header.
func (r *InvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	q := r.builder.Insert(invoicesTable).
		Columns(invoiceColumns...).
		Values(
			inv.ID, inv.ShopID, inv.BranchID, inv.Reference, inv.CustomerID,
			inv.Subtotal, inv.Discount, inv.Tax, inv.GrandTotal,
			inv.Notes, inv.CreatedAt, inv.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// Update rewrites the invoice header.
func (r *InvoiceRepo) Update(ctx context.Context, inv *invoice.Invoice) error {
	q := r.builder.Update(invoicesTable).
		Set("subtotal", inv.Subtotal).
		Set("discount", inv.Discount).
		Set("tax", inv.Tax).
		Set("grand_total", inv.GrandTotal).
		Set("notes", inv.Notes).
		Set("updated_at", inv.UpdatedAt).
		Where(squirrel.Eq{"id": inv.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice", inv.ID.String())
	}
	return nil
}

// Get retrieves the invoice header.
func (r *InvoiceRepo) Get(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	q := r.builder.Select(invoiceColumns...).
		From(invoicesTable).
		Where(squirrel.Eq{"id": invoiceID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var inv invoice.Invoice
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &inv, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("invoice", invoiceID.String())
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// List retrieves invoices matching the filter with a total count.
func (r *InvoiceRepo) List(ctx context.Context, filter invoice.ListFilter) ([]invoice.Invoice, int64, error) {
	base := r.builder.Select().From(invoicesTable)

	if filter.CustomerID != nil {
		base = base.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.Search != "" {
		base = base.Where(squirrel.ILike{"reference": "%" + filter.Search + "%"})
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
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	listSQL, listArgs, err := base.Columns(invoiceColumns...).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var invoices []invoice.Invoice
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &invoices, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("select invoices: %w", err)
	}
	return invoices, total, nil
}

// Delete removes the invoice header.
func (r *InvoiceRepo) Delete(ctx context.Context, invoiceID id.ID) error {
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx,
		`DELETE FROM invoices WHERE id = $1`, invoiceID)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice", invoiceID.String())
	}
	return nil
}

// SaveItems replaces the invoice's lines (delete + insert).
func (r *InvoiceRepo) SaveItems(ctx context.Context, invoiceID id.ID, items []invoice.Item) error {
	if err := r.DeleteItems(ctx, invoiceID); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	q := r.builder.Insert(invoiceItemsTable).Columns(invoiceItemColumns...)
	for i := range items {
		item := &items[i]
		if id.IsNil(item.ID) {
			item.ID = id.New()
		}
		item.InvoiceID = invoiceID
		q = q.Values(item.ID, item.InvoiceID, item.ProductName, item.Quantity, item.UnitPrice, item.Total)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}
	return nil
}

// GetItems retrieves the invoice's lines.
func (r *InvoiceRepo) GetItems(ctx context.Context, invoiceID id.ID) ([]invoice.Item, error) {
	q := r.builder.Select(invoiceItemColumns...).
		From(invoiceItemsTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []invoice.Item
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	return items, nil
}

// DeleteItems removes all lines of the invoice.
func (r *InvoiceRepo) DeleteItems(ctx context.Context, invoiceID id.ID) error {
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx,
		`DELETE FROM invoice_items WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	return nil
}
