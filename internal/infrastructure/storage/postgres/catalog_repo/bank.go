package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalogs/bank"
	"shopledger/internal/infrastructure/storage/postgres"
)

const (
	bankAccountsTable     = "bank_accounts"
	bankTransactionsTable = "bank_transactions"
)

var bankAccountColumns = []string{
	"id", "shop_id", "branch_id",
	"name", "bank_name", "account_number", "balance",
	"deletion_mark", "created_at", "updated_at",
}

// BankRepo implements bank.Repository.
type BankRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewBankRepo creates a new bank repository.
func NewBankRepo(txm *postgres.TxManager) *BankRepo {
	return &BankRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ bank.Repository = (*BankRepo)(nil)

// Create inserts a new account.
func (r *BankRepo) Create(ctx context.Context, a *bank.Account) error {
	q := r.builder.Insert(bankAccountsTable).
		Columns(bankAccountColumns...).
		Values(
			a.ID, a.ShopID, a.BranchID,
			a.Name, a.BankName, a.AccountNumber, a.Balance,
			a.DeletionMark, a.CreatedAt, a.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// Get retrieves an account by ID.
func (r *BankRepo) Get(ctx context.Context, accountID id.ID) (*bank.Account, error) {
	return r.get(ctx, accountID, false)
}

// GetForUpdate retrieves an account with a FOR UPDATE row lock.
func (r *BankRepo) GetForUpdate(ctx context.Context, accountID id.ID) (*bank.Account, error) {
	return r.get(ctx, accountID, true)
}

func (r *BankRepo) get(ctx context.Context, accountID id.ID, forUpdate bool) (*bank.Account, error) {
	q := r.builder.Select(bankAccountColumns...).
		From(bankAccountsTable).
		Where(squirrel.Eq{"id": accountID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var a bank.Account
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &a, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("bank account", accountID.String())
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}

// List retrieves all accounts for a shop.
func (r *BankRepo) List(ctx context.Context, shopID id.ID) ([]bank.Account, error) {
	q := r.builder.Select(bankAccountColumns...).
		From(bankAccountsTable).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name")
	if !id.IsNil(shopID) {
		q = q.Where(squirrel.Eq{"shop_id": shopID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var accounts []bank.Account
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &accounts, sql, args...); err != nil {
		return nil, fmt.Errorf("select accounts: %w", err)
	}
	return accounts, nil
}

// AdjustBalance adds delta to the stored balance.
func (r *BankRepo) AdjustBalance(ctx context.Context, accountID id.ID, delta types.Money) error {
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx,
		`UPDATE bank_accounts SET balance = balance + $1, updated_at = now() WHERE id = $2`,
		delta, accountID,
	)
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("bank account", accountID.String())
	}
	return nil
}

// InsertTransaction records one cash movement.
func (r *BankRepo) InsertTransaction(ctx context.Context, t *bank.Transaction) error {
	q := r.builder.Insert(bankTransactionsTable).
		Columns("id", "account_id", "direction", "amount", "description", "reference", "created_at").
		Values(t.ID, t.AccountID, t.Direction, t.Amount, t.Description, t.Reference, t.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListTransactions returns the most recent cash movements of an account.
func (r *BankRepo) ListTransactions(ctx context.Context, accountID id.ID, limit int) ([]bank.Transaction, error) {
	q := r.builder.Select("id", "account_id", "direction", "amount", "description", "reference", "created_at").
		From(bankTransactionsTable).
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var transactions []bank.Transaction
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &transactions, sql, args...); err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	return transactions, nil
}
