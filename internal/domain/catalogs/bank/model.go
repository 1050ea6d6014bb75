// Package bank provides bank accounts and their cash movement log. Cleared
// payments received into a bank account raise its balance and leave a
// cash_in transaction row; reversals do the opposite.
package bank

import (
	"context"
	"strings"
	"time"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// Direction tags a bank transaction as money in or out.
type Direction string

const (
	CashIn  Direction = "cash_in"
	CashOut Direction = "cash_out"
)

// Account represents a shop bank account.
type Account struct {
	ID       id.ID `db:"id" json:"id"`
	ShopID   id.ID `db:"shop_id" json:"shopId"`
	BranchID id.ID `db:"branch_id" json:"branchId"`

	Name          string  `db:"name" json:"name"`
	BankName      *string `db:"bank_name" json:"bankName,omitempty"`
	AccountNumber *string `db:"account_number" json:"accountNumber,omitempty"`

	// Balance is maintained transactionally alongside the transaction log.
	Balance types.Money `db:"balance" json:"balance"`

	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate checks required fields before persistence.
func (a *Account) Validate(ctx context.Context) error {
	if strings.TrimSpace(a.Name) == "" {
		return apperror.NewValidation("account name is required").
			WithDetail("field", "name")
	}
	if id.IsNil(a.ShopID) {
		return apperror.NewValidation("shop is required").
			WithDetail("field", "shopId")
	}
	return nil
}

// Transaction is one cash movement on an account.
type Transaction struct {
	ID          id.ID       `db:"id" json:"id"`
	AccountID   id.ID       `db:"account_id" json:"accountId"`
	Direction   Direction   `db:"direction" json:"direction"`
	Amount      types.Money `db:"amount" json:"amount"`
	Description string      `db:"description" json:"description"`
	Reference   string      `db:"reference" json:"reference"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
}

// Effect describes a balance change to apply to an account.
type Effect struct {
	AccountID   id.ID
	Direction   Direction
	Amount      types.Money
	Description string
	Reference   string
}
