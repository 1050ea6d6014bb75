package vendorpayment

import (
	"context"

	"shopledger/internal/core/id"
)

// Repository defines persistence operations for vendor payments.
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	Get(ctx context.Context, paymentID id.ID) (*Payment, error)
	List(ctx context.Context, filter ListFilter) ([]Payment, int64, error)
	Delete(ctx context.Context, paymentID id.ID) error
}
