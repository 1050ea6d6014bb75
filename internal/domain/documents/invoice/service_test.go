package invoice

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/lock"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/catalogs/customer"
	"shopledger/internal/domain/ledger"
	"shopledger/pkg/refnum"
)

// --- fakes ---

type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeInvoiceRepo struct {
	invoices map[id.ID]*Invoice
	items    map[id.ID][]Item

	failSaveItems bool
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		invoices: make(map[id.ID]*Invoice),
		items:    make(map[id.ID][]Item),
	}
}

func (r *fakeInvoiceRepo) Create(_ context.Context, inv *Invoice) error {
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) Update(_ context.Context, inv *Invoice) error {
	if _, ok := r.invoices[inv.ID]; !ok {
		return apperror.NewNotFound("invoice", inv.ID.String())
	}
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) Get(_ context.Context, invoiceID id.ID) (*Invoice, error) {
	inv, ok := r.invoices[invoiceID]
	if !ok {
		return nil, apperror.NewNotFound("invoice", invoiceID.String())
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvoiceRepo) List(context.Context, ListFilter) ([]Invoice, int64, error) {
	return nil, 0, nil
}

func (r *fakeInvoiceRepo) Delete(_ context.Context, invoiceID id.ID) error {
	delete(r.invoices, invoiceID)
	return nil
}

func (r *fakeInvoiceRepo) SaveItems(_ context.Context, invoiceID id.ID, items []Item) error {
	if r.failSaveItems {
		return errors.New("save items failed")
	}
	r.items[invoiceID] = items
	return nil
}

func (r *fakeInvoiceRepo) GetItems(_ context.Context, invoiceID id.ID) ([]Item, error) {
	return r.items[invoiceID], nil
}

func (r *fakeInvoiceRepo) DeleteItems(_ context.Context, invoiceID id.ID) error {
	delete(r.items, invoiceID)
	return nil
}

type fakeCustomerRepo struct {
	customers map[id.ID]*customer.Customer
}

func (r *fakeCustomerRepo) Create(context.Context, *customer.Customer) error { return nil }
func (r *fakeCustomerRepo) Update(context.Context, *customer.Customer) error { return nil }

func (r *fakeCustomerRepo) Get(_ context.Context, customerID id.ID) (*customer.Customer, error) {
	c, ok := r.customers[customerID]
	if !ok {
		return nil, apperror.NewNotFound("customer", customerID.String())
	}
	return c, nil
}

func (r *fakeCustomerRepo) GetForUpdate(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	return r.Get(ctx, customerID)
}

func (r *fakeCustomerRepo) List(context.Context, customer.ListFilter) ([]customer.Customer, int64, error) {
	return nil, 0, nil
}

func (r *fakeCustomerRepo) SetDeletionMark(context.Context, id.ID, bool) error { return nil }

type fakeLedgerRepo struct {
	entries []ledger.Entry
}

func (r *fakeLedgerRepo) Insert(_ context.Context, entry *ledger.Entry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeLedgerRepo) Latest(_ context.Context, customerID id.ID) (*ledger.Entry, error) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].CustomerID == customerID {
			e := r.entries[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (r *fakeLedgerRepo) ListForCustomer(context.Context, id.ID, types.DateRange) ([]ledger.Entry, error) {
	return nil, nil
}

func (r *fakeLedgerRepo) HasEntriesForInvoice(_ context.Context, invoiceID id.ID) (bool, error) {
	for _, e := range r.entries {
		if e.InvoiceID != nil && *e.InvoiceID == invoiceID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLedgerRepo) HasEntryForReference(_ context.Context, reference string) (bool, error) {
	for _, e := range r.entries {
		if e.ReferenceNumber == reference {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLedgerRepo) CustomersSummary(context.Context) ([]ledger.CustomerBalance, error) {
	return nil, nil
}

func (r *fakeLedgerRepo) Statistics(context.Context) (*ledger.Statistics, error) { return nil, nil }

func (r *fakeLedgerRepo) TopCustomers(context.Context, int) ([]ledger.CustomerBalance, error) {
	return nil, nil
}

// seqRow satisfies pgx.Row for the refnum querier.
type seqRow struct {
	val int64
}

func (r seqRow) Scan(dest ...any) error {
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = r.val
		}
	}
	return nil
}

type seqQuerier struct {
	current int64
}

func (q *seqQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	q.current++
	return seqRow{val: q.current}
}

// --- fixture ---

type fixture struct {
	service    *Service
	repo       *fakeInvoiceRepo
	ledgerRepo *fakeLedgerRepo
	ledgerSvc  *ledger.Service
	customerID id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	customerID := id.New()
	customers := &fakeCustomerRepo{customers: map[id.ID]*customer.Customer{
		customerID: {ID: customerID, Name: "Test Customer"},
	}}

	repo := newFakeInvoiceRepo()
	ledgerRepo := &fakeLedgerRepo{}
	ledgerSvc := ledger.NewService(ledgerRepo)

	svc := NewService(
		repo, customers, ledgerSvc, refnum.New(&seqQuerier{}),
		passthroughTxManager{}, audit.Nop{}, lock.NewKeyed(), nil,
	)

	return &fixture{
		service:    svc,
		repo:       repo,
		ledgerRepo: ledgerRepo,
		ledgerSvc:  ledgerSvc,
		customerID: customerID,
	}
}

func (f *fixture) newInvoice(unitPrice string, quantity int) *Invoice {
	return &Invoice{
		CustomerID: &f.customerID,
		Discount:   types.Zero(),
		Tax:        types.Zero(),
		Items: []Item{
			{ProductName: "Widget", Quantity: quantity, UnitPrice: types.MustMoney(unitPrice)},
		},
	}
}

// --- tests ---

func TestCreate_AppendsLedgerCredit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	inv := f.newInvoice("250", 2)
	require.NoError(t, f.service.Create(ctx, inv))

	assert.Equal(t, "A-0001", inv.Reference)
	assert.True(t, inv.GrandTotal.Equal(types.MustMoney("500")))

	require.Len(t, f.ledgerRepo.entries, 1)
	entry := f.ledgerRepo.entries[0]
	assert.True(t, entry.CreditAmount.Equal(types.MustMoney("500")))
	assert.True(t, entry.RemainingBalance.Equal(types.MustMoney("500")))
	assert.Equal(t, ledger.TypeInvoice, entry.TransactionType)
	require.NotNil(t, entry.InvoiceID)
	assert.Equal(t, inv.ID, *entry.InvoiceID)
}

func TestCreate_SequentialReferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i := 1; i <= 3; i++ {
		inv := f.newInvoice("100", 1)
		require.NoError(t, f.service.Create(ctx, inv))
		assert.Equal(t, fmt.Sprintf("A-%04d", i), inv.Reference)
	}
}

func TestCreate_WalkInSaleSkipsLedger(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	inv := f.newInvoice("100", 1)
	inv.CustomerID = nil
	require.NoError(t, f.service.Create(ctx, inv))

	assert.Empty(t, f.ledgerRepo.entries)
}

func TestCreate_FailedItemSaveAppendsNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.repo.failSaveItems = true

	inv := f.newInvoice("100", 1)
	require.Error(t, f.service.Create(ctx, inv))

	assert.Empty(t, f.ledgerRepo.entries)
}

func TestCreate_RejectsEmptyItems(t *testing.T) {
	f := newFixture(t)

	err := f.service.Create(context.Background(), &Invoice{CustomerID: &f.customerID})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestUpdate_AppendsAdjustmentEntry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	inv := f.newInvoice("250", 2)
	require.NoError(t, f.service.Create(ctx, inv))

	updated := f.newInvoice("350", 2)
	updated.ID = inv.ID
	require.NoError(t, f.service.Update(ctx, updated))

	require.Len(t, f.ledgerRepo.entries, 2)
	adjustment := f.ledgerRepo.entries[1]
	assert.True(t, adjustment.CreditAmount.Equal(types.MustMoney("200")))
	assert.True(t, adjustment.RemainingBalance.Equal(types.MustMoney("700")))
	assert.Equal(t, "Invoice updated - A-0001", adjustment.Description)
}

func TestUpdate_UnchangedTotalAppendsNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	inv := f.newInvoice("250", 2)
	require.NoError(t, f.service.Create(ctx, inv))

	updated := f.newInvoice("250", 2)
	updated.ID = inv.ID
	note := "rush order"
	updated.Notes = &note
	require.NoError(t, f.service.Update(ctx, updated))

	assert.Len(t, f.ledgerRepo.entries, 1)
}

func TestUpdate_CustomerChangeForbidden(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	inv := f.newInvoice("250", 2)
	require.NoError(t, f.service.Create(ctx, inv))

	other := id.New()
	updated := f.newInvoice("250", 2)
	updated.ID = inv.ID
	updated.CustomerID = &other
	err := f.service.Update(ctx, updated)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)
}

func TestUpdate_AttachingCustomerToWalkInForbidden(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	inv := f.newInvoice("100", 1)
	inv.CustomerID = nil
	require.NoError(t, f.service.Create(ctx, inv))

	updated := f.newInvoice("100", 1)
	updated.ID = inv.ID
	err := f.service.Update(ctx, updated)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)
	// No phantom credit for a sale that never had a ledger customer.
	assert.Empty(t, f.ledgerRepo.entries)
}

func TestDelete_AppendsReversalAndRemovesDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	inv := f.newInvoice("250", 2)
	require.NoError(t, f.service.Create(ctx, inv))

	require.NoError(t, f.service.Delete(ctx, inv.ID))

	// The original credit and the reversal debit both survive.
	require.Len(t, f.ledgerRepo.entries, 2)
	reversal := f.ledgerRepo.entries[1]
	assert.True(t, reversal.DebitAmount.Equal(types.MustMoney("500")))
	assert.True(t, reversal.RemainingBalance.IsZero())
	assert.Equal(t, "Invoice deleted - A-0001", reversal.Description)

	_, err := f.service.Get(ctx, inv.ID)
	require.Error(t, err)
}

func TestCalculateTotals_DerivesLineTotals(t *testing.T) {
	inv := &Invoice{
		Discount: types.MustMoney("50"),
		Tax:      types.MustMoney("25"),
		Items: []Item{
			{ProductName: "A", Quantity: 3, UnitPrice: types.MustMoney("100")},
			{ProductName: "B", Quantity: 2, UnitPrice: types.MustMoney("49.50")},
			// Client-supplied total is ignored.
			{ProductName: "C", Quantity: 1, UnitPrice: types.MustMoney("1"), Total: types.MustMoney("999")},
		},
	}

	inv.CalculateTotals()

	assert.True(t, inv.Items[0].Total.Equal(types.MustMoney("300")))
	assert.True(t, inv.Items[1].Total.Equal(types.MustMoney("99")))
	assert.True(t, inv.Items[2].Total.Equal(types.MustMoney("1")))
	assert.True(t, inv.Subtotal.Equal(types.MustMoney("400")))
	assert.True(t, inv.GrandTotal.Equal(types.MustMoney("375")))
}
