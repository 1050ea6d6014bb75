// Package report_repo provides PostgreSQL implementations for report
// repositories.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/reports/vendorledger"
	"shopledger/internal/infrastructure/storage/postgres"
)

// VendorLedgerRepo implements vendorledger.Repository.
type VendorLedgerRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewVendorLedgerRepo creates a new vendor ledger repository.
func NewVendorLedgerRepo(txm *postgres.TxManager) *VendorLedgerRepo {
	return &VendorLedgerRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ vendorledger.Repository = (*VendorLedgerRepo)(nil)

type purchaseRow struct {
	ID          id.ID       `db:"id"`
	Reference   string      `db:"reference"`
	TotalAmount types.Money `db:"total_amount"`
	ReceivedAt  time.Time   `db:"received_at"`
}

type purchaseItemRow struct {
	OrderID     id.ID       `db:"order_id"`
	ProductName string      `db:"product_name"`
	Quantity    int         `db:"quantity"`
	UnitCost    types.Money `db:"unit_cost"`
	Total       types.Money `db:"total"`
}

// PurchaseLines returns received purchase orders as credit lines with their
// items attached.
func (r *VendorLedgerRepo) PurchaseLines(ctx context.Context, vendorID id.ID, dateRange types.DateRange) ([]vendorledger.Line, error) {
	q := r.builder.Select("id", "reference", "total_amount", "received_at").
		From("purchase_orders").
		Where(squirrel.Eq{"vendor_id": vendorID}).
		Where(squirrel.Eq{"status": "received"}).
		OrderBy("received_at", "id")

	if dateRange.From != nil {
		q = q.Where(squirrel.GtOrEq{"received_at": *dateRange.From})
	}
	if dateRange.To != nil {
		q = q.Where(squirrel.LtOrEq{"received_at": *dateRange.To})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var orders []purchaseRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &orders, sql, args...); err != nil {
		return nil, fmt.Errorf("select received orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, nil
	}

	orderIDs := make([]id.ID, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}

	itemsSQL, itemsArgs, err := r.builder.
		Select("order_id", "product_name", "quantity", "unit_cost", "total").
		From("purchase_order_items").
		Where(squirrel.Eq{"order_id": orderIDs}).
		OrderBy("order_id", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	var itemRows []purchaseItemRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &itemRows, itemsSQL, itemsArgs...); err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}

	itemsByOrder := make(map[id.ID][]vendorledger.Item, len(orders))
	for _, row := range itemRows {
		itemsByOrder[row.OrderID] = append(itemsByOrder[row.OrderID], vendorledger.Item{
			ProductName: row.ProductName,
			Quantity:    row.Quantity,
			UnitCost:    row.UnitCost,
			Total:       row.Total,
		})
	}

	lines := make([]vendorledger.Line, 0, len(orders))
	for _, o := range orders {
		lines = append(lines, vendorledger.Line{
			Kind:         vendorledger.KindPurchase,
			SourceID:     o.ID,
			Date:         o.ReceivedAt,
			Reference:    o.Reference,
			Description:  fmt.Sprintf("Purchase order %s received", o.Reference),
			CreditAmount: o.TotalAmount,
			DebitAmount:  types.Zero(),
			Items:        itemsByOrder[o.ID],
		})
	}
	return lines, nil
}

type vendorPaymentRow struct {
	ID     id.ID       `db:"id"`
	Amount types.Money `db:"amount"`
	Method string      `db:"method"`
	PaidAt time.Time   `db:"paid_at"`
}

// PaymentLines returns vendor payments as debit lines.
func (r *VendorLedgerRepo) PaymentLines(ctx context.Context, vendorID id.ID, dateRange types.DateRange) ([]vendorledger.Line, error) {
	q := r.builder.Select("id", "amount", "method", "paid_at").
		From("vendor_payments").
		Where(squirrel.Eq{"vendor_id": vendorID}).
		OrderBy("paid_at", "id")

	if dateRange.From != nil {
		q = q.Where(squirrel.GtOrEq{"paid_at": *dateRange.From})
	}
	if dateRange.To != nil {
		q = q.Where(squirrel.LtOrEq{"paid_at": *dateRange.To})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []vendorPaymentRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select vendor payments: %w", err)
	}

	lines := make([]vendorledger.Line, 0, len(rows))
	for _, p := range rows {
		lines = append(lines, vendorledger.Line{
			Kind:         vendorledger.KindPayment,
			SourceID:     p.ID,
			Date:         p.PaidAt,
			Reference:    fmt.Sprintf("VPAY-%s", p.ID),
			Description:  fmt.Sprintf("Payment - %s", p.Method),
			CreditAmount: types.Zero(),
			DebitAmount:  p.Amount,
		})
	}
	return lines, nil
}

// VendorBalances aggregates purchases and payments per vendor.
func (r *VendorLedgerRepo) VendorBalances(ctx context.Context, shopID id.ID) ([]vendorledger.VendorBalance, error) {
	sql := `
		WITH purchases AS (
			SELECT vendor_id, COALESCE(SUM(total_amount), 0) AS total_purchases
			FROM purchase_orders
			WHERE status = 'received'
			GROUP BY vendor_id
		),
		paid AS (
			SELECT vendor_id, COALESCE(SUM(amount), 0) AS total_paid
			FROM vendor_payments
			GROUP BY vendor_id
		)
		SELECT
			v.id AS vendor_id,
			v.name,
			v.phone,
			COALESCE(p.total_purchases, 0) AS total_purchases,
			COALESCE(pd.total_paid, 0) AS total_paid,
			COALESCE(p.total_purchases, 0) - COALESCE(pd.total_paid, 0) AS current_balance
		FROM vendors v
		LEFT JOIN purchases p ON p.vendor_id = v.id
		LEFT JOIN paid pd ON pd.vendor_id = v.id
		WHERE v.deletion_mark = false
	`
	args := []any{}
	if !id.IsNil(shopID) {
		sql += ` AND v.shop_id = $1`
		args = append(args, shopID)
	}
	sql += ` ORDER BY v.name`

	var balances []vendorledger.VendorBalance
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select vendor balances: %w", err)
	}
	return balances, nil
}
