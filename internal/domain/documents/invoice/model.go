// Package invoice provides sales invoices and the transaction coordinator
// that keeps the document, its lines and the customer ledger consistent.
package invoice

import (
	"context"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// Invoice represents a sales invoice document.
type Invoice struct {
	ID       id.ID `db:"id" json:"id"`
	ShopID   id.ID `db:"shop_id" json:"shopId"`
	BranchID id.ID `db:"branch_id" json:"branchId"`

	// Reference is the human-facing document number ("A-0001").
	Reference string `db:"reference" json:"reference"`

	// CustomerID links the invoice to a ledger customer. Nil means a walk-in
	// cash sale that never touches the ledger.
	CustomerID *id.ID `db:"customer_id" json:"customerId,omitempty"`

	Subtotal   types.Money `db:"subtotal" json:"subtotal"`
	Discount   types.Money `db:"discount" json:"discount"`
	Tax        types.Money `db:"tax" json:"tax"`
	GrandTotal types.Money `db:"grand_total" json:"grandTotal"`

	Notes *string `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	Items []Item `db:"-" json:"items"`
}

// Item is one invoice line.
type Item struct {
	ID        id.ID `db:"id" json:"id"`
	InvoiceID id.ID `db:"invoice_id" json:"invoiceId"`

	ProductName string      `db:"product_name" json:"productName"`
	Quantity    int         `db:"quantity" json:"quantity"`
	UnitPrice   types.Money `db:"unit_price" json:"unitPrice"`
	Total       types.Money `db:"total" json:"total"`
}

// Validate checks the document before persistence.
func (inv *Invoice) Validate(ctx context.Context) error {
	if len(inv.Items) == 0 {
		return apperror.NewValidation("invoice must have at least one item").
			WithDetail("field", "items")
	}
	for i, item := range inv.Items {
		if item.ProductName == "" {
			return apperror.NewValidation("item product name is required").
				WithDetail("field", "items").WithDetail("index", i)
		}
		if item.Quantity <= 0 {
			return apperror.NewValidation("item quantity must be positive").
				WithDetail("field", "items").WithDetail("index", i)
		}
		if item.UnitPrice.IsNegative() {
			return apperror.NewValidation("item unit price must not be negative").
				WithDetail("field", "items").WithDetail("index", i)
		}
	}
	if inv.Discount.IsNegative() {
		return apperror.NewValidation("discount must not be negative").
			WithDetail("field", "discount")
	}
	if inv.Tax.IsNegative() {
		return apperror.NewValidation("tax must not be negative").
			WithDetail("field", "tax")
	}
	return nil
}

// CalculateTotals recomputes line totals, subtotal and grand total.
// Line totals always derive from quantity and unit price; client-supplied
// totals are ignored.
func (inv *Invoice) CalculateTotals() {
	subtotal := types.Zero()
	for i := range inv.Items {
		line := &inv.Items[i]
		line.Total = line.UnitPrice.Mul(types.NewMoneyFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(line.Total)
	}
	inv.Subtotal = subtotal
	inv.GrandTotal = subtotal.Sub(inv.Discount).Add(inv.Tax)
}

// ListFilter narrows invoice listings.
type ListFilter struct {
	CustomerID *id.ID
	DateRange  types.DateRange
	Search     string
	Limit      int
	Offset     int
}
