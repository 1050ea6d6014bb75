package payment

import (
	"context"

	"shopledger/internal/core/id"
)

// Repository defines persistence operations for payments.
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	Get(ctx context.Context, paymentID id.ID) (*Payment, error)

	// GetForUpdate retrieves the payment with a row lock, serializing
	// concurrent status transitions for the same payment.
	GetForUpdate(ctx context.Context, paymentID id.ID) (*Payment, error)

	List(ctx context.Context, filter ListFilter) ([]Payment, int64, error)

	// ListPendingCheques returns cheque payments awaiting clearance,
	// oldest first.
	ListPendingCheques(ctx context.Context) ([]Payment, error)

	UpdateStatus(ctx context.Context, paymentID id.ID, status Status) error
	Delete(ctx context.Context, paymentID id.ID) error
}
