// Package ledger provides the customer ledger: an append-only log of credit
// and debit movements, each carrying a snapshot of the resulting running
// balance. The latest entry's snapshot is the authoritative current balance,
// which makes balance lookup O(1) instead of an aggregation over history.
//
// The log is strictly append-only. Edits and deletions of the events that
// produced entries are handled with compensating entries (a reversal and,
// where needed, a replacement), never by rewriting history. That keeps every
// stored snapshot valid forever.
package ledger

import (
	"context"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// TransactionType tags the event stream an entry belongs to.
type TransactionType string

const (
	TypeInvoice TransactionType = "invoice"
	TypePayment TransactionType = "payment"
)

// Entry is one immutable record of a credit or debit event against a customer.
type Entry struct {
	ID         id.ID  `db:"id" json:"id"`
	CustomerID id.ID  `db:"customer_id" json:"customerId"`
	InvoiceID  *id.ID `db:"invoice_id" json:"invoiceId,omitempty"`

	// Exactly one side is semantically active per entry (invoice -> credit,
	// payment -> debit); both columns always exist and default to 0.
	CreditAmount types.Money `db:"credit_amount" json:"creditAmount"`
	DebitAmount  types.Money `db:"debit_amount" json:"debitAmount"`

	Description     string `db:"description" json:"description"`
	PaymentMethod   string `db:"payment_method" json:"paymentMethod"`
	ReferenceNumber string `db:"reference_number" json:"referenceNumber"`

	// RemainingBalance is the snapshot of the customer's balance immediately
	// after this entry is applied.
	RemainingBalance types.Money `db:"remaining_balance" json:"remainingBalance"`

	TransactionType TransactionType `db:"transaction_type" json:"transactionType"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
}

// AppendParams describes a new entry before balance resolution.
type AppendParams struct {
	CustomerID      id.ID
	InvoiceID       *id.ID
	CreditAmount    types.Money
	DebitAmount     types.Money
	Description     string
	PaymentMethod   string
	ReferenceNumber string
	TransactionType TransactionType
}

// Validate implements basic amount sanity checks. Rejected before any write.
func (p AppendParams) Validate(ctx context.Context) error {
	if id.IsNil(p.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	if p.CreditAmount.IsNegative() {
		return apperror.NewValidation("credit amount must not be negative").
			WithDetail("field", "creditAmount")
	}
	if p.DebitAmount.IsNegative() {
		return apperror.NewValidation("debit amount must not be negative").
			WithDetail("field", "debitAmount")
	}
	if p.TransactionType != TypeInvoice && p.TransactionType != TypePayment {
		return apperror.NewValidation("unknown transaction type").
			WithDetail("field", "transactionType").
			WithDetail("value", string(p.TransactionType))
	}
	return nil
}

// Summary aggregates a customer's ledger for display.
type Summary struct {
	TotalCredit    types.Money `json:"totalCredit"`
	TotalDebit     types.Money `json:"totalDebit"`
	CurrentBalance types.Money `json:"currentBalance"`
}

// View is a customer's ledger page: entries most-recent-first plus totals.
type View struct {
	CustomerID id.ID   `json:"customerId"`
	Entries    []Entry `json:"entries"`
	Summary    Summary `json:"summary"`
}

// CustomerBalance is one row of the all-customers balance summary.
type CustomerBalance struct {
	CustomerID          id.ID       `db:"customer_id" json:"customerId"`
	Name                string      `db:"name" json:"name"`
	Phone               string      `db:"phone" json:"phone"`
	CurrentBalance      types.Money `db:"current_balance" json:"currentBalance"`
	TransactionCount    int64       `db:"transaction_count" json:"transactionCount"`
	LastTransactionDate *time.Time  `db:"last_transaction_date" json:"lastTransactionDate,omitempty"`
}

// Statistics is the shop-wide ledger overview.
type Statistics struct {
	TotalCustomers       int64       `db:"total_customers" json:"totalCustomers"`
	TotalSales           types.Money `db:"total_sales" json:"totalSales"`
	TotalPayments        types.Money `db:"total_payments" json:"totalPayments"`
	CustomersWithBalance int64       `db:"customers_with_balance" json:"customersWithBalance"`
	TotalOutstanding     types.Money `db:"total_outstanding" json:"totalOutstanding"`
}
