// Package payment provides customer payments and the coordinator that applies
// their ledger and bank effects through the cheque clearing state machine.
package payment

import (
	"context"
	"fmt"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// Method is how the payment was made.
type Method string

const (
	MethodCash         Method = "cash"
	MethodCheque       Method = "cheque"
	MethodBankTransfer Method = "bank_transfer"
	MethodCard         Method = "card"
)

// Status is the payment's clearing state.
//
// Cheques start pending and clear (or cancel) later; every other method
// clears immediately. Only cleared payments touch the customer ledger and
// the bank balance.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCleared   Status = "cleared"
	StatusCancelled Status = "cancelled"
)

// Payment represents money received from a customer.
type Payment struct {
	ID       id.ID `db:"id" json:"id"`
	ShopID   id.ID `db:"shop_id" json:"shopId"`
	BranchID id.ID `db:"branch_id" json:"branchId"`

	// CustomerID links the payment to a ledger customer. Nil payments (e.g.
	// anonymous counter cash) never touch the ledger.
	CustomerID *id.ID `db:"customer_id" json:"customerId,omitempty"`

	// BankAccountID routes the money into a bank account. Nil means cash
	// kept outside tracked accounts.
	BankAccountID *id.ID `db:"bank_account_id" json:"bankAccountId,omitempty"`

	Amount types.Money `db:"amount" json:"amount"`
	Method Method      `db:"method" json:"method"`
	Status Status      `db:"status" json:"status"`

	ChequeNumber *string    `db:"cheque_number" json:"chequeNumber,omitempty"`
	ChequeDate   *time.Time `db:"cheque_date" json:"chequeDate,omitempty"`

	Notes *string `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Reference is the ledger reference number for this payment.
func (p *Payment) Reference() string {
	return fmt.Sprintf("PAY-%s", p.ID)
}

// DeriveStatus returns the initial status for the method: cheques wait for
// clearing, everything else clears immediately.
func DeriveStatus(m Method) Status {
	if m == MethodCheque {
		return StatusPending
	}
	return StatusCleared
}

// Validate checks the payment before persistence.
func (p *Payment) Validate(ctx context.Context) error {
	if p.Amount.IsZero() || p.Amount.IsNegative() {
		return apperror.NewValidation("payment amount must be positive").
			WithDetail("field", "amount")
	}
	switch p.Method {
	case MethodCash, MethodCheque, MethodBankTransfer, MethodCard:
	default:
		return apperror.NewValidation("unknown payment method").
			WithDetail("field", "method").
			WithDetail("value", string(p.Method))
	}
	if p.Method == MethodCheque && (p.ChequeNumber == nil || *p.ChequeNumber == "") {
		return apperror.NewValidation("cheque number is required for cheque payments").
			WithDetail("field", "chequeNumber")
	}
	return nil
}

// ListFilter narrows payment listings.
type ListFilter struct {
	CustomerID *id.ID
	Status     *Status
	Method     *Method
	DateRange  types.DateRange
	Limit      int
	Offset     int
}
