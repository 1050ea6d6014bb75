// Package vendorpayment provides payments made to vendors. They are the
// debit side of the projected vendor ledger; no stored entry exists.
package vendorpayment

import (
	"context"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// Payment represents money paid out to a vendor.
type Payment struct {
	ID       id.ID `db:"id" json:"id"`
	ShopID   id.ID `db:"shop_id" json:"shopId"`
	BranchID id.ID `db:"branch_id" json:"branchId"`

	VendorID id.ID `db:"vendor_id" json:"vendorId"`

	Amount types.Money `db:"amount" json:"amount"`
	Method string      `db:"method" json:"method"`
	Notes  *string     `db:"notes" json:"notes,omitempty"`

	// PaidAt is the vendor ledger date of the resulting debit.
	PaidAt time.Time `db:"paid_at" json:"paidAt"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Validate checks the payment before persistence.
func (p *Payment) Validate(ctx context.Context) error {
	if id.IsNil(p.VendorID) {
		return apperror.NewValidation("vendor is required").
			WithDetail("field", "vendorId")
	}
	if p.Amount.IsZero() || p.Amount.IsNegative() {
		return apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount")
	}
	return nil
}

// ListFilter narrows vendor payment listings.
type ListFilter struct {
	VendorID  *id.ID
	DateRange types.DateRange
	Limit     int
	Offset    int
}
