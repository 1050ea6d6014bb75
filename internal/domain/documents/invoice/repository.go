package invoice

import (
	"context"

	"shopledger/internal/core/id"
)

// Repository defines persistence operations for invoices.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	Update(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, invoiceID id.ID) (*Invoice, error)
	List(ctx context.Context, filter ListFilter) ([]Invoice, int64, error)
	Delete(ctx context.Context, invoiceID id.ID) error

	// SaveItems replaces the invoice's lines (delete + insert).
	SaveItems(ctx context.Context, invoiceID id.ID, items []Item) error
	GetItems(ctx context.Context, invoiceID id.ID) ([]Item, error)
	DeleteItems(ctx context.Context, invoiceID id.ID) error
}
