package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// fakeRepo is an in-memory entry store. Insertion order stands in for the
// (created_at, id) ordering of the real table.
type fakeRepo struct {
	entries []Entry
}

func (r *fakeRepo) Insert(_ context.Context, entry *Entry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeRepo) Latest(_ context.Context, customerID id.ID) (*Entry, error) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].CustomerID == customerID {
			e := r.entries[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) ListForCustomer(_ context.Context, customerID id.ID, dateRange types.DateRange) ([]Entry, error) {
	var out []Entry
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.CustomerID != customerID {
			continue
		}
		if !dateRange.Contains(e.CreatedAt) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeRepo) HasEntriesForInvoice(_ context.Context, invoiceID id.ID) (bool, error) {
	for _, e := range r.entries {
		if e.InvoiceID != nil && *e.InvoiceID == invoiceID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) HasEntryForReference(_ context.Context, reference string) (bool, error) {
	for _, e := range r.entries {
		if e.ReferenceNumber == reference {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) CustomersSummary(context.Context) ([]CustomerBalance, error) { return nil, nil }
func (r *fakeRepo) Statistics(context.Context) (*Statistics, error)            { return nil, nil }
func (r *fakeRepo) TopCustomers(context.Context, int) ([]CustomerBalance, error) {
	return nil, nil
}

func TestCurrentBalance_EmptyLedgerIsZero(t *testing.T) {
	svc := NewService(&fakeRepo{})

	balance, err := svc.CurrentBalance(context.Background(), id.New())
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestAppend_SnapshotsRunningBalance(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&fakeRepo{})
	customerID := id.New()
	invoiceID := id.New()

	// Invoice for 500 -> balance 500.
	entry, err := svc.AppendInvoice(ctx, customerID, invoiceID, types.MustMoney("500"), "A-0001")
	require.NoError(t, err)
	assert.True(t, entry.RemainingBalance.Equal(types.MustMoney("500")), "got %s", entry.RemainingBalance)
	assert.Equal(t, TypeInvoice, entry.TransactionType)
	assert.Equal(t, "Invoice created - A-0001", entry.Description)

	// Payment of 200 -> balance 300.
	entry, err = svc.AppendPayment(ctx, customerID, types.MustMoney("200"), "cash", "PAY-x", "")
	require.NoError(t, err)
	assert.True(t, entry.RemainingBalance.Equal(types.MustMoney("300")), "got %s", entry.RemainingBalance)
	assert.Equal(t, "Payment received via cash", entry.Description)

	balance, err := svc.CurrentBalance(ctx, customerID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(types.MustMoney("300")))
}

func TestAppend_RejectsNegativeAmounts(t *testing.T) {
	svc := NewService(&fakeRepo{})

	_, err := svc.Append(context.Background(), AppendParams{
		CustomerID:      id.New(),
		CreditAmount:    types.MustMoney("-1"),
		TransactionType: TypeInvoice,
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCurrentBalance_ReadDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := NewService(repo)
	customerID := id.New()

	_, err := svc.AppendInvoice(ctx, customerID, id.New(), types.MustMoney("100"), "A-0001")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		balance, err := svc.CurrentBalance(ctx, customerID)
		require.NoError(t, err)
		assert.True(t, balance.Equal(types.MustMoney("100")))
	}
	assert.Len(t, repo.entries, 1)
}

func TestReviseForInvoice_AppendsDeltaEntry(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := NewService(repo)
	customerID := id.New()
	invoiceID := id.New()

	_, err := svc.AppendInvoice(ctx, customerID, invoiceID, types.MustMoney("500"), "A-0001")
	require.NoError(t, err)

	// Total raised 500 -> 700: credit adjustment of 200.
	entry, err := svc.ReviseForInvoice(ctx, customerID, invoiceID, "A-0001",
		types.MustMoney("500"), types.MustMoney("700"))
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.CreditAmount.Equal(types.MustMoney("200")))
	assert.True(t, entry.DebitAmount.IsZero())
	assert.True(t, entry.RemainingBalance.Equal(types.MustMoney("700")))
	assert.Equal(t, "Invoice updated - A-0001", entry.Description)

	// Total lowered 700 -> 400: debit adjustment of 300.
	entry, err = svc.ReviseForInvoice(ctx, customerID, invoiceID, "A-0001",
		types.MustMoney("700"), types.MustMoney("400"))
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.CreditAmount.IsZero())
	assert.True(t, entry.DebitAmount.Equal(types.MustMoney("300")))
	assert.True(t, entry.RemainingBalance.Equal(types.MustMoney("400")))
}

func TestReviseForInvoice_UnchangedTotalIsNoOp(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	entry, err := svc.ReviseForInvoice(context.Background(), id.New(), id.New(), "A-0001",
		types.MustMoney("500"), types.MustMoney("500.00"))
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.Empty(t, repo.entries)
}

func TestReviseForInvoice_MissingTraceIsDesync(t *testing.T) {
	svc := NewService(&fakeRepo{})

	_, err := svc.ReviseForInvoice(context.Background(), id.New(), id.New(), "A-0001",
		types.MustMoney("500"), types.MustMoney("700"))
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeLedgerDesync, appErr.Code)
}

func TestReverseForInvoice_AppendsDebit(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := NewService(repo)
	customerID := id.New()
	invoiceID := id.New()

	_, err := svc.AppendInvoice(ctx, customerID, invoiceID, types.MustMoney("500"), "A-0001")
	require.NoError(t, err)

	entry, err := svc.ReverseForInvoice(ctx, customerID, invoiceID, "A-0001", types.MustMoney("500"))
	require.NoError(t, err)
	assert.True(t, entry.DebitAmount.Equal(types.MustMoney("500")))
	assert.True(t, entry.RemainingBalance.IsZero())
	assert.Equal(t, "Invoice deleted - A-0001", entry.Description)

	// Both the original and the reversal survive in history.
	assert.Len(t, repo.entries, 2)
}

func TestReverseForPayment_AppendsCredit(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := NewService(repo)
	customerID := id.New()

	_, err := svc.AppendInvoice(ctx, customerID, id.New(), types.MustMoney("500"), "A-0001")
	require.NoError(t, err)
	_, err = svc.AppendPayment(ctx, customerID, types.MustMoney("200"), "cash", "PAY-1", "")
	require.NoError(t, err)

	entry, err := svc.ReverseForPayment(ctx, customerID, "PAY-1", types.MustMoney("200"), "cash")
	require.NoError(t, err)
	assert.True(t, entry.CreditAmount.Equal(types.MustMoney("200")))
	assert.True(t, entry.RemainingBalance.Equal(types.MustMoney("500")))
	assert.Equal(t, "Payment deleted - PAY-1", entry.Description)
}

func TestReverseForPayment_MissingTraceIsDesync(t *testing.T) {
	svc := NewService(&fakeRepo{})

	_, err := svc.ReverseForPayment(context.Background(), id.New(), "PAY-missing",
		types.MustMoney("200"), "cash")
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeLedgerDesync, appErr.Code)
}

func TestCustomerLedger_TotalsAndBalance(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&fakeRepo{})
	customerID := id.New()

	_, err := svc.AppendInvoice(ctx, customerID, id.New(), types.MustMoney("500"), "A-0001")
	require.NoError(t, err)
	_, err = svc.AppendInvoice(ctx, customerID, id.New(), types.MustMoney("300"), "A-0002")
	require.NoError(t, err)
	_, err = svc.AppendPayment(ctx, customerID, types.MustMoney("200"), "cash", "PAY-1", "")
	require.NoError(t, err)

	view, err := svc.CustomerLedger(ctx, customerID, types.DateRange{})
	require.NoError(t, err)
	require.Len(t, view.Entries, 3)

	// Most-recent-first: the head is the payment.
	assert.True(t, view.Entries[0].DebitAmount.Equal(types.MustMoney("200")))
	assert.True(t, view.Summary.TotalCredit.Equal(types.MustMoney("800")))
	assert.True(t, view.Summary.TotalDebit.Equal(types.MustMoney("200")))
	assert.True(t, view.Summary.CurrentBalance.Equal(types.MustMoney("600")))
}

func TestCustomerLedger_EmptyLedger(t *testing.T) {
	svc := NewService(&fakeRepo{})

	view, err := svc.CustomerLedger(context.Background(), id.New(), types.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, view.Entries)
	assert.True(t, view.Summary.CurrentBalance.IsZero())
}
