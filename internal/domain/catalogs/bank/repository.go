package bank

import (
	"context"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// Repository defines persistence operations for bank accounts.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	Get(ctx context.Context, accountID id.ID) (*Account, error)

	// GetForUpdate retrieves the account with a row lock. Payment
	// coordinators take this lock before adjusting the balance so
	// concurrent effects on the same account serialize.
	GetForUpdate(ctx context.Context, accountID id.ID) (*Account, error)

	List(ctx context.Context, shopID id.ID) ([]Account, error)

	// AdjustBalance adds delta (negative for cash out) to the stored balance.
	AdjustBalance(ctx context.Context, accountID id.ID, delta types.Money) error

	InsertTransaction(ctx context.Context, t *Transaction) error
	ListTransactions(ctx context.Context, accountID id.ID, limit int) ([]Transaction, error)
}
