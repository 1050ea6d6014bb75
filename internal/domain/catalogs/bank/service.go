package bank

import (
	"context"
	"fmt"
	"time"

	"shopledger/internal/core/appctx"
	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/tx"
	"shopledger/pkg/logger"
)

// Service provides business logic for bank accounts.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new bank service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Create registers a new bank account.
func (s *Service) Create(ctx context.Context, a *Account) error {
	if user := appctx.GetUser(ctx); user != nil {
		if id.IsNil(a.ShopID) {
			a.ShopID = user.ShopID
		}
		if id.IsNil(a.BranchID) {
			a.BranchID = user.BranchID
		}
	}

	if err := a.Validate(ctx); err != nil {
		return err
	}
	if a.Balance.IsNegative() {
		return apperror.NewValidation("opening balance must not be negative").
			WithDetail("field", "balance")
	}

	a.ID = id.New()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, a)
	})
}

// Get retrieves an account by ID.
func (s *Service) Get(ctx context.Context, accountID id.ID) (*Account, error) {
	return s.repo.Get(ctx, accountID)
}

// List retrieves all accounts for the caller's shop.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.repo.List(ctx, appctx.GetShopID(ctx))
}

// Transactions returns the most recent cash movements of an account.
func (s *Service) Transactions(ctx context.Context, accountID id.ID, limit int) ([]Transaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if _, err := s.repo.Get(ctx, accountID); err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, accountID, limit)
}

// ApplyEffect locks the account, adjusts its balance and writes the matching
// transaction row. Must run inside the caller's transaction so the bank
// effect commits or rolls back together with the payment that caused it.
func (s *Service) ApplyEffect(ctx context.Context, e Effect) error {
	account, err := s.repo.GetForUpdate(ctx, e.AccountID)
	if err != nil {
		return err
	}
	if e.Amount.IsNegative() || e.Amount.IsZero() {
		return apperror.NewValidation("effect amount must be positive").
			WithDetail("field", "amount")
	}

	delta := e.Amount
	if e.Direction == CashOut {
		delta = delta.Neg()
	}

	if err := s.repo.AdjustBalance(ctx, account.ID, delta); err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}

	t := &Transaction{
		ID:          id.New(),
		AccountID:   account.ID,
		Direction:   e.Direction,
		Amount:      e.Amount,
		Description: e.Description,
		Reference:   e.Reference,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.InsertTransaction(ctx, t); err != nil {
		return fmt.Errorf("record bank transaction: %w", err)
	}

	logger.Debug(ctx, "bank effect applied",
		"account_id", account.ID,
		"direction", e.Direction,
		"amount", e.Amount,
	)
	return nil
}
