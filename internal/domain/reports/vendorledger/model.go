// Package vendorledger projects a vendor's ledger on read. Nothing is
// stored: received purchase orders are the credits, vendor payments the
// debits, and the running balance is recomputed from scratch per request.
// The projection is therefore always consistent with its sources.
package vendorledger

import (
	"time"

	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// LineKind tags a projected line's source.
type LineKind string

const (
	KindPurchase LineKind = "purchase"
	KindPayment  LineKind = "payment"
)

// Item is a purchase order line attached to a purchase entry.
type Item struct {
	ProductName string      `json:"productName"`
	Quantity    int         `json:"quantity"`
	UnitCost    types.Money `json:"unitCost"`
	Total       types.Money `json:"total"`
}

// Line is one projected ledger row.
type Line struct {
	Kind        LineKind  `json:"kind"`
	SourceID    id.ID     `json:"sourceId"`
	Date        time.Time `json:"date"`
	Reference   string    `json:"reference"`
	Description string    `json:"description"`

	CreditAmount types.Money `json:"creditAmount"`
	DebitAmount  types.Money `json:"debitAmount"`

	// RunningBalance is the amount owed to the vendor after this line,
	// computed during projection.
	RunningBalance types.Money `json:"runningBalance"`

	// Items holds the purchase order lines for purchase entries.
	Items []Item `json:"items,omitempty"`
}

// Summary aggregates the projection.
type Summary struct {
	TotalPurchases types.Money `json:"totalPurchases"`
	TotalPaid      types.Money `json:"totalPaid"`
	CurrentBalance types.Money `json:"currentBalance"`
}

// View is one vendor's projected ledger, most recent line first.
type View struct {
	VendorID id.ID   `json:"vendorId"`
	Lines    []Line  `json:"lines"`
	Summary  Summary `json:"summary"`
}

// VendorBalance is one row of the all-vendors balance summary.
type VendorBalance struct {
	VendorID       id.ID       `db:"vendor_id" json:"vendorId"`
	Name           string      `db:"name" json:"name"`
	Phone          *string     `db:"phone" json:"phone,omitempty"`
	TotalPurchases types.Money `db:"total_purchases" json:"totalPurchases"`
	TotalPaid      types.Money `db:"total_paid" json:"totalPaid"`
	CurrentBalance types.Money `db:"current_balance" json:"currentBalance"`
}
