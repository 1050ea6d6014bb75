package ledger

import (
	"context"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// Repository defines persistence operations for the ledger entry store.
type Repository interface {
	// Insert appends one entry. Entries are never updated or deleted.
	Insert(ctx context.Context, entry *Entry) error

	// Latest returns the entry with the greatest (created_at, id) for the
	// customer, or nil when the customer has no entries. This is the balance
	// resolver's single query; it must use the (customer_id, created_at DESC,
	// id DESC) index, never an aggregation.
	Latest(ctx context.Context, customerID id.ID) (*Entry, error)

	// ListForCustomer returns entries most-recent-first, optionally filtered
	// by date range.
	ListForCustomer(ctx context.Context, customerID id.ID, dateRange types.DateRange) ([]Entry, error)

	// HasEntriesForInvoice reports whether the invoice left any ledger trace.
	HasEntriesForInvoice(ctx context.Context, invoiceID id.ID) (bool, error)

	// HasEntryForReference reports whether an entry with the given reference
	// number exists (used for payment reversals, reference "PAY-{id}").
	HasEntryForReference(ctx context.Context, reference string) (bool, error)

	// CustomersSummary returns every customer with their current balance.
	CustomersSummary(ctx context.Context) ([]CustomerBalance, error)

	// Statistics returns the shop-wide ledger overview.
	Statistics(ctx context.Context) (*Statistics, error)

	// TopCustomers returns customers ordered by current balance descending.
	TopCustomers(ctx context.Context, limit int) ([]CustomerBalance, error)
}
