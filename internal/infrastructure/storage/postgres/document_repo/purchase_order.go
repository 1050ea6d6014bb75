package document_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain/documents/purchaseorder"
	"shopledger/internal/infrastructure/storage/postgres"
)

const (
	purchaseOrdersTable     = "purchase_orders"
	purchaseOrderItemsTable = "purchase_order_items"
)

var purchaseOrderColumns = []string{
	"id", "shop_id", "branch_id", "reference", "vendor_id",
	"total_amount", "status", "received_at", "notes",
	"created_at", "updated_at",
}

var purchaseOrderItemColumns = []string{
	"id", "order_id", "product_name", "quantity", "unit_cost", "total",
}

// PurchaseOrderRepo implements purchaseorder.Repository.
type PurchaseOrderRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewPurchaseOrderRepo creates a new purchase order repository.
func NewPurchaseOrderRepo(txm *postgres.TxManager) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ purchaseorder.Repository = (*PurchaseOrderRepo)(nil)

// Create inserts the order header.
func (r *PurchaseOrderRepo) Create(ctx context.Context, o *purchaseorder.Order) error {
	q := r.builder.Insert(purchaseOrdersTable).
		Columns(purchaseOrderColumns...).
		Values(
			o.ID, o.ShopID, o.BranchID, o.Reference, o.VendorID,
			o.TotalAmount, o.Status, o.ReceivedAt, o.Notes,
			o.CreatedAt, o.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// Update rewrites the order header.
func (r *PurchaseOrderRepo) Update(ctx context.Context, o *purchaseorder.Order) error {
	q := r.builder.Update(purchaseOrdersTable).
		Set("total_amount", o.TotalAmount).
		Set("notes", o.Notes).
		Set("updated_at", o.UpdatedAt).
		Where(squirrel.Eq{"id": o.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("purchase order", o.ID.String())
	}
	return nil
}

// Get retrieves the order header.
func (r *PurchaseOrderRepo) Get(ctx context.Context, orderID id.ID) (*purchaseorder.Order, error) {
	q := r.builder.Select(purchaseOrderColumns...).
		From(purchaseOrdersTable).
		Where(squirrel.Eq{"id": orderID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var o purchaseorder.Order
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &o, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("purchase order", orderID.String())
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

// List retrieves orders matching the filter with a total count.
func (r *PurchaseOrderRepo) List(ctx context.Context, filter purchaseorder.ListFilter) ([]purchaseorder.Order, int64, error) {
	base := r.builder.Select().From(purchaseOrdersTable)

	if filter.VendorID != nil {
		base = base.Where(squirrel.Eq{"vendor_id": *filter.VendorID})
	}
	if filter.Status != nil {
		base = base.Where(squirrel.Eq{"status": *filter.Status})
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
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	listSQL, listArgs, err := base.Columns(purchaseOrderColumns...).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var orders []purchaseorder.Order
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &orders, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("select orders: %w", err)
	}
	return orders, total, nil
}

// Delete removes the order header.
func (r *PurchaseOrderRepo) Delete(ctx context.Context, orderID id.ID) error {
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx,
		`DELETE FROM purchase_orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("purchase order", orderID.String())
	}
	return nil
}

// SaveItems replaces the order's lines (delete + insert).
func (r *PurchaseOrderRepo) SaveItems(ctx context.Context, orderID id.ID, items []purchaseorder.Item) error {
	if err := r.DeleteItems(ctx, orderID); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	q := r.builder.Insert(purchaseOrderItemsTable).Columns(purchaseOrderItemColumns...)
	for i := range items {
		item := &items[i]
		if id.IsNil(item.ID) {
			item.ID = id.New()
		}
		item.OrderID = orderID
		q = q.Values(item.ID, item.OrderID, item.ProductName, item.Quantity, item.UnitCost, item.Total)
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

// GetItems retrieves the order's lines.
func (r *PurchaseOrderRepo) GetItems(ctx context.Context, orderID id.ID) ([]purchaseorder.Item, error) {
	q := r.builder.Select(purchaseOrderItemColumns...).
		From(purchaseOrderItemsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []purchaseorder.Item
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	return items, nil
}

// DeleteItems removes all lines of the order.
func (r *PurchaseOrderRepo) DeleteItems(ctx context.Context, orderID id.ID) error {
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx,
		`DELETE FROM purchase_order_items WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	return nil
}

// SetStatus persists a fulfilment state change.
func (r *PurchaseOrderRepo) SetStatus(ctx context.Context, orderID id.ID, status purchaseorder.Status, receivedAt *time.Time) error {
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx,
		`UPDATE purchase_orders SET status = $1, received_at = $2, updated_at = now() WHERE id = $3`,
		status, receivedAt, orderID)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("purchase order", orderID.String())
	}
	return nil
}
