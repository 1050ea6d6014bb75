package payment

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/lock"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/catalogs/bank"
	"shopledger/internal/domain/catalogs/customer"
	"shopledger/internal/domain/ledger"
)

// --- fakes ---

// passthroughTxManager runs the closure directly; the fakes below are their
// own source of truth so there is nothing to commit or roll back.
type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[id.ID]*Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[id.ID]*Payment)}
}

func (r *fakePaymentRepo) Create(_ context.Context, p *Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *fakePaymentRepo) Get(_ context.Context, paymentID id.ID) (*Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[paymentID]
	if !ok {
		return nil, apperror.NewNotFound("payment", paymentID.String())
	}
	cp := *p
	return &cp, nil
}

func (r *fakePaymentRepo) GetForUpdate(ctx context.Context, paymentID id.ID) (*Payment, error) {
	return r.Get(ctx, paymentID)
}

func (r *fakePaymentRepo) List(context.Context, ListFilter) ([]Payment, int64, error) {
	return nil, 0, nil
}

func (r *fakePaymentRepo) ListPendingCheques(context.Context) ([]Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Payment
	for _, p := range r.payments {
		if p.Method == MethodCheque && p.Status == StatusPending {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) UpdateStatus(_ context.Context, paymentID id.ID, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[paymentID]
	if !ok {
		return apperror.NewNotFound("payment", paymentID.String())
	}
	p.Status = status
	return nil
}

func (r *fakePaymentRepo) Delete(_ context.Context, paymentID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.payments, paymentID)
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

type fakeBankRepo struct {
	mu           sync.Mutex
	accounts     map[id.ID]*bank.Account
	transactions []bank.Transaction
}

func newFakeBankRepo() *fakeBankRepo {
	return &fakeBankRepo{accounts: make(map[id.ID]*bank.Account)}
}

func (r *fakeBankRepo) Create(_ context.Context, a *bank.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *fakeBankRepo) Get(_ context.Context, accountID id.ID) (*bank.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return nil, apperror.NewNotFound("bank account", accountID.String())
	}
	cp := *a
	return &cp, nil
}

func (r *fakeBankRepo) GetForUpdate(ctx context.Context, accountID id.ID) (*bank.Account, error) {
	return r.Get(ctx, accountID)
}

func (r *fakeBankRepo) List(context.Context, id.ID) ([]bank.Account, error) { return nil, nil }

func (r *fakeBankRepo) AdjustBalance(_ context.Context, accountID id.ID, delta types.Money) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return apperror.NewNotFound("bank account", accountID.String())
	}
	a.Balance = a.Balance.Add(delta)
	return nil
}

func (r *fakeBankRepo) InsertTransaction(_ context.Context, t *bank.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = append(r.transactions, *t)
	return nil
}

func (r *fakeBankRepo) ListTransactions(context.Context, id.ID, int) ([]bank.Transaction, error) {
	return nil, nil
}

func (r *fakeBankRepo) balance(accountID id.ID) types.Money {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[accountID].Balance
}

// fakeLedgerRepo mirrors the append-only entry store with a mutex so the
// concurrency test can hammer it from multiple goroutines.
type fakeLedgerRepo struct {
	mu      sync.Mutex
	entries []ledger.Entry
}

func (r *fakeLedgerRepo) Insert(_ context.Context, entry *ledger.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeLedgerRepo) Latest(_ context.Context, customerID id.ID) (*ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].CustomerID == customerID {
			e := r.entries[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (r *fakeLedgerRepo) ListForCustomer(_ context.Context, customerID id.ID, _ types.DateRange) ([]ledger.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Entry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].CustomerID == customerID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) HasEntriesForInvoice(_ context.Context, invoiceID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.InvoiceID != nil && *e.InvoiceID == invoiceID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLedgerRepo) HasEntryForReference(_ context.Context, reference string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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

func (r *fakeLedgerRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// --- fixture ---

type fixture struct {
	service    *Service
	payments   *fakePaymentRepo
	ledgerRepo *fakeLedgerRepo
	bankRepo   *fakeBankRepo
	ledgerSvc  *ledger.Service
	customerID id.ID
	accountID  id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	customerID := id.New()
	accountID := id.New()

	customers := &fakeCustomerRepo{customers: map[id.ID]*customer.Customer{
		customerID: {ID: customerID, Name: "Test Customer"},
	}}

	bankRepo := newFakeBankRepo()
	require.NoError(t, bankRepo.Create(context.Background(), &bank.Account{
		ID:      accountID,
		Name:    "Main",
		Balance: types.Zero(),
	}))

	txm := passthroughTxManager{}
	paymentRepo := newFakePaymentRepo()
	ledgerRepo := &fakeLedgerRepo{}
	ledgerSvc := ledger.NewService(ledgerRepo)
	bankSvc := bank.NewService(bankRepo, txm)

	svc := NewService(
		paymentRepo, customers, bankSvc, ledgerSvc,
		txm, audit.Nop{}, lock.NewKeyed(), nil,
	)

	return &fixture{
		service:    svc,
		payments:   paymentRepo,
		ledgerRepo: ledgerRepo,
		bankRepo:   bankRepo,
		ledgerSvc:  ledgerSvc,
		customerID: customerID,
		accountID:  accountID,
	}
}

func (f *fixture) newPayment(method Method, amount string) *Payment {
	p := &Payment{
		CustomerID:    &f.customerID,
		BankAccountID: &f.accountID,
		Amount:        types.MustMoney(amount),
		Method:        method,
	}
	if method == MethodCheque {
		num := "CHQ-001"
		p.ChequeNumber = &num
	}
	return p
}

// --- tests ---

func TestCreate_CashClearsImmediately(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p := f.newPayment(MethodCash, "200")
	require.NoError(t, f.service.Create(ctx, p))

	assert.Equal(t, StatusCleared, p.Status)
	assert.Equal(t, 1, f.ledgerRepo.count())
	assert.True(t, f.bankRepo.balance(f.accountID).Equal(types.MustMoney("200")))

	balance, err := f.ledgerSvc.CurrentBalance(ctx, f.customerID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(types.MustMoney("-200")))
}

func TestCreate_ChequeStaysPendingWithoutEffects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p := f.newPayment(MethodCheque, "300")
	require.NoError(t, f.service.Create(ctx, p))

	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, 0, f.ledgerRepo.count())
	assert.True(t, f.bankRepo.balance(f.accountID).IsZero())

	cheques, err := f.service.PendingCheques(ctx)
	require.NoError(t, err)
	assert.Len(t, cheques, 1)
}

func TestCreate_RejectsChequeWithoutNumber(t *testing.T) {
	f := newFixture(t)

	p := f.newPayment(MethodCheque, "300")
	p.ChequeNumber = nil
	err := f.service.Create(context.Background(), p)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestUpdateStatus_ClearingAppliesEffects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p := f.newPayment(MethodCheque, "300")
	require.NoError(t, f.service.Create(ctx, p))

	require.NoError(t, f.service.UpdateStatus(ctx, p.ID, StatusCleared))

	stored, err := f.service.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCleared, stored.Status)
	assert.Equal(t, 1, f.ledgerRepo.count())
	assert.True(t, f.bankRepo.balance(f.accountID).Equal(types.MustMoney("300")))
}

func TestUpdateStatus_BouncedChequeHasNoEffects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p := f.newPayment(MethodCheque, "300")
	require.NoError(t, f.service.Create(ctx, p))

	require.NoError(t, f.service.UpdateStatus(ctx, p.ID, StatusCancelled))

	assert.Equal(t, 0, f.ledgerRepo.count())
	assert.True(t, f.bankRepo.balance(f.accountID).IsZero())
}

func TestUpdateStatus_UnclearingReversesBankOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p := f.newPayment(MethodCheque, "300")
	require.NoError(t, f.service.Create(ctx, p))
	require.NoError(t, f.service.UpdateStatus(ctx, p.ID, StatusCleared))

	// Dispute: back to pending. Cash comes out, the ledger entry stays.
	require.NoError(t, f.service.UpdateStatus(ctx, p.ID, StatusPending))

	assert.True(t, f.bankRepo.balance(f.accountID).IsZero())
	assert.Equal(t, 1, f.ledgerRepo.count())
}

func TestUpdateStatus_CancelledToClearedReappliesBank(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p := f.newPayment(MethodCheque, "300")
	require.NoError(t, f.service.Create(ctx, p))
	require.NoError(t, f.service.UpdateStatus(ctx, p.ID, StatusCleared))
	require.NoError(t, f.service.UpdateStatus(ctx, p.ID, StatusCancelled))

	require.NoError(t, f.service.UpdateStatus(ctx, p.ID, StatusCleared))

	assert.True(t, f.bankRepo.balance(f.accountID).Equal(types.MustMoney("300")))
	// The ledger debit from the first clearing is still the only entry.
	assert.Equal(t, 1, f.ledgerRepo.count())
}

func TestUpdateStatus_SameStatusIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p := f.newPayment(MethodCash, "200")
	require.NoError(t, f.service.Create(ctx, p))

	require.NoError(t, f.service.UpdateStatus(ctx, p.ID, StatusCleared))

	assert.Equal(t, 1, f.ledgerRepo.count())
	assert.True(t, f.bankRepo.balance(f.accountID).Equal(types.MustMoney("200")))
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p := f.newPayment(MethodCash, "200")
	require.NoError(t, f.service.Create(ctx, p))

	err := f.service.UpdateStatus(ctx, p.ID, Status("bogus"))
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestDelete_ClearedPaymentReversesEverything(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p := f.newPayment(MethodCash, "200")
	require.NoError(t, f.service.Create(ctx, p))

	require.NoError(t, f.service.Delete(ctx, p.ID))

	// Compensating credit restores the ledger balance; cash comes out.
	assert.Equal(t, 2, f.ledgerRepo.count())
	balance, err := f.ledgerSvc.CurrentBalance(ctx, f.customerID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
	assert.True(t, f.bankRepo.balance(f.accountID).IsZero())

	_, err = f.service.Get(ctx, p.ID)
	require.Error(t, err)
}

func TestDelete_AfterUnclearingStillReversesLedger(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p := f.newPayment(MethodCheque, "200")
	require.NoError(t, f.service.Create(ctx, p))
	require.NoError(t, f.service.UpdateStatus(ctx, p.ID, StatusCleared))

	// Dispute: un-clearing reversed the bank but left the ledger debit.
	require.NoError(t, f.service.UpdateStatus(ctx, p.ID, StatusPending))

	require.NoError(t, f.service.Delete(ctx, p.ID))

	// The surviving debit gets its compensating credit even though the
	// payment was no longer cleared; the bank was already settled.
	assert.Equal(t, 2, f.ledgerRepo.count())
	balance, err := f.ledgerSvc.CurrentBalance(ctx, f.customerID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "got %s", balance)
	assert.True(t, f.bankRepo.balance(f.accountID).IsZero())
}

func TestDelete_PendingChequeHasNothingToReverse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p := f.newPayment(MethodCheque, "300")
	require.NoError(t, f.service.Create(ctx, p))

	require.NoError(t, f.service.Delete(ctx, p.ID))

	assert.Equal(t, 0, f.ledgerRepo.count())
	assert.True(t, f.bankRepo.balance(f.accountID).IsZero())
}

func TestCreate_ConcurrentPaymentsSerialize(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			p := f.newPayment(MethodCash, "10")
			_ = f.service.Create(ctx, p)
		}()
	}
	wg.Wait()

	// Every debit landed and the snapshots never lost an update.
	assert.Equal(t, workers, f.ledgerRepo.count())
	balance, err := f.ledgerSvc.CurrentBalance(ctx, f.customerID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(types.MustMoney("-200")), "got %s", balance)
	assert.True(t, f.bankRepo.balance(f.accountID).Equal(types.MustMoney("200")))
}
