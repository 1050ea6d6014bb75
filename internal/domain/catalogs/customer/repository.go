package customer

import (
	"context"

	"shopledger/internal/core/id"
)

// Repository defines persistence operations for customers.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	Get(ctx context.Context, customerID id.ID) (*Customer, error)

	// GetForUpdate retrieves the customer with a row lock. Transaction
	// coordinators take this lock before reading the ledger balance so
	// concurrent writers for the same customer serialize.
	GetForUpdate(ctx context.Context, customerID id.ID) (*Customer, error)

	List(ctx context.Context, filter ListFilter) ([]Customer, int64, error)

	// SetDeletionMark soft-deletes or restores the customer.
	SetDeletionMark(ctx context.Context, customerID id.ID, mark bool) error
}
