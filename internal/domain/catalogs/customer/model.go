// Package customer provides the customer catalog. Customers are the debtor
// side of the ledger: invoices raise their balance, payments lower it.
package customer

import (
	"context"
	"strings"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
)

// Customer represents a shop customer.
type Customer struct {
	ID       id.ID `db:"id" json:"id"`
	ShopID   id.ID `db:"shop_id" json:"shopId"`
	BranchID id.ID `db:"branch_id" json:"branchId"`

	Name    string  `db:"name" json:"name"`
	Phone   *string `db:"phone" json:"phone,omitempty"`
	Address *string `db:"address" json:"address,omitempty"`
	City    *string `db:"city" json:"city,omitempty"`

	// DeletionMark soft-deletes the customer. The ledger history stays
	// intact; marked customers are hidden from listings.
	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate checks required fields before persistence.
func (c *Customer) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("customer name is required").
			WithDetail("field", "name")
	}
	if len(c.Name) > 255 {
		return apperror.NewValidation("customer name is too long").
			WithDetail("field", "name")
	}
	if id.IsNil(c.ShopID) {
		return apperror.NewValidation("shop is required").
			WithDetail("field", "shopId")
	}
	return nil
}

// ListFilter narrows customer listings.
type ListFilter struct {
	Search      string
	City        string
	WithDeleted bool
	Limit       int
	Offset      int
}
