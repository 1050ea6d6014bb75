// Package purchaseorder provides purchase orders placed with vendors.
// A received order is what the shop owes the vendor; the vendor ledger
// projector reads received orders as credits.
package purchaseorder

import (
	"context"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// Status is the order's fulfilment state.
type Status string

const (
	StatusOrdered   Status = "ordered"
	StatusReceived  Status = "received"
	StatusCancelled Status = "cancelled"
)

// Order represents a purchase order document.
type Order struct {
	ID       id.ID `db:"id" json:"id"`
	ShopID   id.ID `db:"shop_id" json:"shopId"`
	BranchID id.ID `db:"branch_id" json:"branchId"`

	Reference string `db:"reference" json:"reference"`
	VendorID  id.ID  `db:"vendor_id" json:"vendorId"`

	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`
	Status      Status      `db:"status" json:"status"`

	// ReceivedAt is set when goods arrive; it is the vendor ledger date of
	// the resulting credit.
	ReceivedAt *time.Time `db:"received_at" json:"receivedAt,omitempty"`

	Notes *string `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	Items []Item `db:"-" json:"items"`
}

// Item is one purchase order line.
type Item struct {
	ID      id.ID `db:"id" json:"id"`
	OrderID id.ID `db:"order_id" json:"orderId"`

	ProductName string      `db:"product_name" json:"productName"`
	Quantity    int         `db:"quantity" json:"quantity"`
	UnitCost    types.Money `db:"unit_cost" json:"unitCost"`
	Total       types.Money `db:"total" json:"total"`
}

// Validate checks the document before persistence.
func (o *Order) Validate(ctx context.Context) error {
	if id.IsNil(o.VendorID) {
		return apperror.NewValidation("vendor is required").
			WithDetail("field", "vendorId")
	}
	if len(o.Items) == 0 {
		return apperror.NewValidation("order must have at least one item").
			WithDetail("field", "items")
	}
	for i, item := range o.Items {
		if item.ProductName == "" {
			return apperror.NewValidation("item product name is required").
				WithDetail("field", "items").WithDetail("index", i)
		}
		if item.Quantity <= 0 {
			return apperror.NewValidation("item quantity must be positive").
				WithDetail("field", "items").WithDetail("index", i)
		}
		if item.UnitCost.IsNegative() {
			return apperror.NewValidation("item unit cost must not be negative").
				WithDetail("field", "items").WithDetail("index", i)
		}
	}
	return nil
}

// CalculateTotal recomputes line totals and the order total.
func (o *Order) CalculateTotal() {
	total := types.Zero()
	for i := range o.Items {
		line := &o.Items[i]
		line.Total = line.UnitCost.Mul(types.NewMoneyFromInt(int64(line.Quantity)))
		total = total.Add(line.Total)
	}
	o.TotalAmount = total
}

// ListFilter narrows purchase order listings.
type ListFilter struct {
	VendorID  *id.ID
	Status    *Status
	DateRange types.DateRange
	Limit     int
	Offset    int
}
