package vendorledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/catalogs/vendor"
)

// passthroughTxManager runs closures directly; the fakes are their own
// source of truth so there is no snapshot to take.
type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	purchases []Line
	payments  []Line
}

func (r *fakeRepo) PurchaseLines(_ context.Context, _ id.ID, dateRange types.DateRange) ([]Line, error) {
	return filterLines(r.purchases, dateRange), nil
}

func (r *fakeRepo) PaymentLines(_ context.Context, _ id.ID, dateRange types.DateRange) ([]Line, error) {
	return filterLines(r.payments, dateRange), nil
}

func (r *fakeRepo) VendorBalances(context.Context, id.ID) ([]VendorBalance, error) {
	return nil, nil
}

func filterLines(lines []Line, dateRange types.DateRange) []Line {
	var out []Line
	for _, l := range lines {
		if dateRange.Contains(l.Date) {
			out = append(out, l)
		}
	}
	return out
}

type fakeVendorRepo struct {
	vendors map[id.ID]*vendor.Vendor
}

func (r *fakeVendorRepo) Create(context.Context, *vendor.Vendor) error { return nil }
func (r *fakeVendorRepo) Update(context.Context, *vendor.Vendor) error { return nil }

func (r *fakeVendorRepo) Get(_ context.Context, vendorID id.ID) (*vendor.Vendor, error) {
	v, ok := r.vendors[vendorID]
	if !ok {
		return nil, apperror.NewNotFound("vendor", vendorID.String())
	}
	return v, nil
}

func (r *fakeVendorRepo) List(context.Context, vendor.ListFilter) ([]vendor.Vendor, int64, error) {
	return nil, 0, nil
}

func (r *fakeVendorRepo) SetDeletionMark(context.Context, id.ID, bool) error { return nil }

func day(n int) time.Time {
	return time.Date(2026, 3, n, 0, 0, 0, 0, time.UTC)
}

func purchase(sourceID id.ID, date time.Time, amount string) Line {
	return Line{
		Kind:         KindPurchase,
		SourceID:     sourceID,
		Date:         date,
		CreditAmount: types.MustMoney(amount),
		DebitAmount:  types.Zero(),
	}
}

func payment(sourceID id.ID, date time.Time, amount string) Line {
	return Line{
		Kind:         KindPayment,
		SourceID:     sourceID,
		Date:         date,
		CreditAmount: types.Zero(),
		DebitAmount:  types.MustMoney(amount),
	}
}

func newService(repo *fakeRepo, vendorID id.ID) *Service {
	vendors := &fakeVendorRepo{vendors: map[id.ID]*vendor.Vendor{
		vendorID: {ID: vendorID, Name: "Acme Supply"},
	}}
	return NewService(repo, vendors, passthroughTxManager{})
}

func TestLedger_RunningBalanceAndOrder(t *testing.T) {
	vendorID := id.New()
	repo := &fakeRepo{
		purchases: []Line{
			purchase(id.New(), day(1), "1000"),
			purchase(id.New(), day(5), "500"),
		},
		payments: []Line{
			payment(id.New(), day(3), "400"),
		},
	}
	svc := newService(repo, vendorID)

	view, err := svc.Ledger(context.Background(), vendorID, types.DateRange{})
	require.NoError(t, err)
	require.Len(t, view.Lines, 3)

	// Most recent first: day 5 purchase, day 3 payment, day 1 purchase.
	assert.True(t, view.Lines[0].RunningBalance.Equal(types.MustMoney("1100")))
	assert.True(t, view.Lines[1].RunningBalance.Equal(types.MustMoney("600")))
	assert.True(t, view.Lines[2].RunningBalance.Equal(types.MustMoney("1000")))

	assert.True(t, view.Summary.TotalPurchases.Equal(types.MustMoney("1500")))
	assert.True(t, view.Summary.TotalPaid.Equal(types.MustMoney("400")))
	assert.True(t, view.Summary.CurrentBalance.Equal(types.MustMoney("1100")))
}

func TestLedger_SameDateCreditsBeforeDebits(t *testing.T) {
	vendorID := id.New()
	repo := &fakeRepo{
		purchases: []Line{purchase(id.New(), day(2), "300")},
		payments:  []Line{payment(id.New(), day(2), "300")},
	}
	svc := newService(repo, vendorID)

	view, err := svc.Ledger(context.Background(), vendorID, types.DateRange{})
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)

	// Chronologically the purchase applies first, so no line ever dips
	// negative. Display order puts the payment on top.
	assert.Equal(t, KindPayment, view.Lines[0].Kind)
	assert.True(t, view.Lines[0].RunningBalance.IsZero())
	assert.Equal(t, KindPurchase, view.Lines[1].Kind)
	assert.True(t, view.Lines[1].RunningBalance.Equal(types.MustMoney("300")))
}

func TestLedger_Reproducible(t *testing.T) {
	vendorID := id.New()
	sameDay := day(4)
	repo := &fakeRepo{
		purchases: []Line{
			purchase(id.New(), sameDay, "100"),
			purchase(id.New(), sameDay, "200"),
			purchase(id.New(), sameDay, "300"),
		},
		payments: []Line{
			payment(id.New(), sameDay, "150"),
			payment(id.New(), sameDay, "250"),
		},
	}
	svc := newService(repo, vendorID)
	ctx := context.Background()

	first, err := svc.Ledger(ctx, vendorID, types.DateRange{})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := svc.Ledger(ctx, vendorID, types.DateRange{})
		require.NoError(t, err)
		require.Len(t, again.Lines, len(first.Lines))
		for j := range first.Lines {
			assert.Equal(t, first.Lines[j].SourceID, again.Lines[j].SourceID)
			assert.True(t, first.Lines[j].RunningBalance.Equal(again.Lines[j].RunningBalance))
		}
	}
}

func TestLedger_DateRangeFiltersLines(t *testing.T) {
	vendorID := id.New()
	repo := &fakeRepo{
		purchases: []Line{
			purchase(id.New(), day(1), "1000"),
			purchase(id.New(), day(10), "500"),
		},
		payments: []Line{payment(id.New(), day(12), "200")},
	}
	svc := newService(repo, vendorID)

	from := day(9)
	view, err := svc.Ledger(context.Background(), vendorID, types.DateRange{From: &from})
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)

	// The balance is recomputed over the filtered window only.
	assert.True(t, view.Summary.CurrentBalance.Equal(types.MustMoney("300")))
}

func TestLedger_UnknownVendor(t *testing.T) {
	svc := newService(&fakeRepo{}, id.New())

	_, err := svc.Ledger(context.Background(), id.New(), types.DateRange{})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestLedger_EmptyProjection(t *testing.T) {
	vendorID := id.New()
	svc := newService(&fakeRepo{}, vendorID)

	view, err := svc.Ledger(context.Background(), vendorID, types.DateRange{})
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.True(t, view.Summary.CurrentBalance.IsZero())
}
