// Package ledger_repo provides the PostgreSQL implementation of the ledger
// entry store. Entries are insert-only; no UPDATE or DELETE statement exists
// in this package.
package ledger_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/ledger"
	"shopledger/internal/infrastructure/storage/postgres"
)

const entriesTable = "ledger_entries"

var entryColumns = []string{
	"id", "customer_id", "invoice_id",
	"credit_amount", "debit_amount",
	"description", "payment_method", "reference_number",
	"remaining_balance", "transaction_type", "created_at",
}

// Repo implements ledger.Repository.
type Repo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewRepo creates a new ledger repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ ledger.Repository = (*Repo)(nil)

// Insert appends one entry.
func (r *Repo) Insert(ctx context.Context, e *ledger.Entry) error {
	q := r.builder.Insert(entriesTable).
		Columns(entryColumns...).
		Values(
			e.ID, e.CustomerID, e.InvoiceID,
			e.CreditAmount, e.DebitAmount,
			e.Description, e.PaymentMethod, e.ReferenceNumber,
			e.RemainingBalance, e.TransactionType, e.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// Latest returns the customer's most recent entry, or nil when none exist.
// Served by the (customer_id, created_at DESC, id DESC) index.
func (r *Repo) Latest(ctx context.Context, customerID id.ID) (*ledger.Entry, error) {
	q := r.builder.Select(entryColumns...).
		From(entriesTable).
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e ledger.Entry
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &e, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest entry: %w", err)
	}
	return &e, nil
}

// ListForCustomer returns entries most-recent-first, optionally date-filtered.
func (r *Repo) ListForCustomer(ctx context.Context, customerID id.ID, dateRange types.DateRange) ([]ledger.Entry, error) {
	q := r.builder.Select(entryColumns...).
		From(entriesTable).
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("created_at DESC", "id DESC")

	if dateRange.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *dateRange.From})
	}
	if dateRange.To != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *dateRange.To})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var entries []ledger.Entry
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	return entries, nil
}

// HasEntriesForInvoice reports whether the invoice left any ledger trace.
func (r *Repo) HasEntriesForInvoice(ctx context.Context, invoiceID id.ID) (bool, error) {
	var exists bool
	err := r.txm.GetQuerier(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE invoice_id = $1)`,
		invoiceID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check invoice entries: %w", err)
	}
	return exists, nil
}

// HasEntryForReference reports whether an entry with the reference exists.
func (r *Repo) HasEntryForReference(ctx context.Context, reference string) (bool, error) {
	var exists bool
	err := r.txm.GetQuerier(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE reference_number = $1)`,
		reference,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check reference: %w", err)
	}
	return exists, nil
}

// latestBalancesCTE selects each customer's most recent snapshot. DISTINCT ON
// with the same ordering as Latest, so both read the same answer.
const latestBalancesCTE = `
	latest AS (
		SELECT DISTINCT ON (customer_id)
			customer_id, remaining_balance, created_at
		FROM ledger_entries
		ORDER BY customer_id, created_at DESC, id DESC
	)
`

// CustomersSummary returns every active customer with their current balance.
func (r *Repo) CustomersSummary(ctx context.Context) ([]ledger.CustomerBalance, error) {
	sql := `
		WITH ` + latestBalancesCTE + `,
		counts AS (
			SELECT customer_id, COUNT(*) AS transaction_count, MAX(created_at) AS last_transaction_date
			FROM ledger_entries
			GROUP BY customer_id
		)
		SELECT
			c.id AS customer_id,
			c.name,
			COALESCE(c.phone, '') AS phone,
			COALESCE(l.remaining_balance, 0) AS current_balance,
			COALESCE(ct.transaction_count, 0) AS transaction_count,
			ct.last_transaction_date
		FROM customers c
		LEFT JOIN latest l ON l.customer_id = c.id
		LEFT JOIN counts ct ON ct.customer_id = c.id
		WHERE c.deletion_mark = false
		ORDER BY c.name
	`

	var rows []ledger.CustomerBalance
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql); err != nil {
		return nil, fmt.Errorf("select customer summary: %w", err)
	}
	return rows, nil
}

// Statistics returns the shop-wide ledger overview.
func (r *Repo) Statistics(ctx context.Context) (*ledger.Statistics, error) {
	sql := `
		WITH ` + latestBalancesCTE + `
		SELECT
			(SELECT COUNT(*) FROM customers WHERE deletion_mark = false) AS total_customers,
			COALESCE((SELECT SUM(credit_amount) FROM ledger_entries WHERE transaction_type = 'invoice'), 0) AS total_sales,
			COALESCE((SELECT SUM(debit_amount) FROM ledger_entries WHERE transaction_type = 'payment'), 0) AS total_payments,
			COALESCE((SELECT COUNT(*) FROM latest WHERE remaining_balance > 0), 0) AS customers_with_balance,
			COALESCE((SELECT SUM(remaining_balance) FROM latest WHERE remaining_balance > 0), 0) AS total_outstanding
	`

	var stats ledger.Statistics
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &stats, sql); err != nil {
		return nil, fmt.Errorf("select statistics: %w", err)
	}
	return &stats, nil
}

// TopCustomers returns customers ordered by current balance descending.
func (r *Repo) TopCustomers(ctx context.Context, limit int) ([]ledger.CustomerBalance, error) {
	sql := `
		WITH ` + latestBalancesCTE + `,
		counts AS (
			SELECT customer_id, COUNT(*) AS transaction_count, MAX(created_at) AS last_transaction_date
			FROM ledger_entries
			GROUP BY customer_id
		)
		SELECT
			c.id AS customer_id,
			c.name,
			COALESCE(c.phone, '') AS phone,
			l.remaining_balance AS current_balance,
			ct.transaction_count,
			ct.last_transaction_date
		FROM latest l
		JOIN customers c ON c.id = l.customer_id
		JOIN counts ct ON ct.customer_id = l.customer_id
		WHERE c.deletion_mark = false AND l.remaining_balance > 0
		ORDER BY l.remaining_balance DESC
		LIMIT $1
	`

	var rows []ledger.CustomerBalance
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, limit); err != nil {
		return nil, fmt.Errorf("select top customers: %w", err)
	}
	return rows, nil
}
