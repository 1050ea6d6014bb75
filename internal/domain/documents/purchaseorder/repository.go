package purchaseorder

import (
	"context"
	"time"

	"shopledger/internal/core/id"
)

// Repository defines persistence operations for purchase orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	Get(ctx context.Context, orderID id.ID) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]Order, int64, error)
	Delete(ctx context.Context, orderID id.ID) error

	SaveItems(ctx context.Context, orderID id.ID, items []Item) error
	GetItems(ctx context.Context, orderID id.ID) ([]Item, error)
	DeleteItems(ctx context.Context, orderID id.ID) error

	SetStatus(ctx context.Context, orderID id.ID, status Status, receivedAt *time.Time) error
}
