package vendorledger

import (
	"context"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// Repository fetches the projection's source rows.
type Repository interface {
	// PurchaseLines returns received purchase orders as unbalanced credit
	// lines (dated at receipt), with their items attached.
	PurchaseLines(ctx context.Context, vendorID id.ID, dateRange types.DateRange) ([]Line, error)

	// PaymentLines returns vendor payments as unbalanced debit lines.
	PaymentLines(ctx context.Context, vendorID id.ID, dateRange types.DateRange) ([]Line, error)

	// VendorBalances aggregates purchases and payments per vendor.
	VendorBalances(ctx context.Context, shopID id.ID) ([]VendorBalance, error)
}
