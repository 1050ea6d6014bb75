package purchaseorder

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/catalogs/vendor"
	"shopledger/pkg/refnum"
)

type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeOrderRepo struct {
	orders map[id.ID]*Order
	items  map[id.ID][]Item
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[id.ID]*Order),
		items:  make(map[id.ID][]Item),
	}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *Order) error {
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) Update(_ context.Context, o *Order) error {
	if _, ok := r.orders[o.ID]; !ok {
		return apperror.NewNotFound("purchase order", o.ID.String())
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) Get(_ context.Context, orderID id.ID) (*Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("purchase order", orderID.String())
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) List(context.Context, ListFilter) ([]Order, int64, error) {
	return nil, 0, nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, orderID id.ID) error {
	delete(r.orders, orderID)
	return nil
}

func (r *fakeOrderRepo) SaveItems(_ context.Context, orderID id.ID, items []Item) error {
	r.items[orderID] = items
	return nil
}

func (r *fakeOrderRepo) GetItems(_ context.Context, orderID id.ID) ([]Item, error) {
	return r.items[orderID], nil
}

func (r *fakeOrderRepo) DeleteItems(_ context.Context, orderID id.ID) error {
	delete(r.items, orderID)
	return nil
}

func (r *fakeOrderRepo) SetStatus(_ context.Context, orderID id.ID, status Status, receivedAt *time.Time) error {
	o, ok := r.orders[orderID]
	if !ok {
		return apperror.NewNotFound("purchase order", orderID.String())
	}
	o.Status = status
	o.ReceivedAt = receivedAt
	return nil
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

func newFixture(t *testing.T) (*Service, *fakeOrderRepo, id.ID) {
	t.Helper()

	vendorID := id.New()
	vendors := &fakeVendorRepo{vendors: map[id.ID]*vendor.Vendor{
		vendorID: {ID: vendorID, Name: "Acme Supply"},
	}}

	repo := newFakeOrderRepo()
	svc := NewService(repo, vendors, refnum.New(&seqQuerier{}),
		passthroughTxManager{}, audit.Nop{})
	return svc, repo, vendorID
}

func newOrder(vendorID id.ID) *Order {
	return &Order{
		VendorID: vendorID,
		Items: []Item{
			{ProductName: "Crates", Quantity: 10, UnitCost: types.MustMoney("25")},
		},
	}
}

func TestCreate_AssignsReferenceAndTotal(t *testing.T) {
	ctx := context.Background()
	svc, _, vendorID := newFixture(t)

	o := newOrder(vendorID)
	require.NoError(t, svc.Create(ctx, o))

	assert.Equal(t, "PO-0001", o.Reference)
	assert.Equal(t, StatusOrdered, o.Status)
	assert.True(t, o.TotalAmount.Equal(types.MustMoney("250")))
}

func TestCreate_UnknownVendor(t *testing.T) {
	svc, _, _ := newFixture(t)

	err := svc.Create(context.Background(), newOrder(id.New()))
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_RejectsDeletionMarkedVendor(t *testing.T) {
	ctx := context.Background()
	vendorID := id.New()
	vendors := &fakeVendorRepo{vendors: map[id.ID]*vendor.Vendor{
		vendorID: {ID: vendorID, Name: "Gone Supply", DeletionMark: true},
	}}
	svc := NewService(newFakeOrderRepo(), vendors, refnum.New(&seqQuerier{}),
		passthroughTxManager{}, audit.Nop{})

	err := svc.Create(ctx, newOrder(vendorID))
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)
}

func TestMarkReceived_SetsReceivedAt(t *testing.T) {
	ctx := context.Background()
	svc, repo, vendorID := newFixture(t)

	o := newOrder(vendorID)
	require.NoError(t, svc.Create(ctx, o))

	require.NoError(t, svc.MarkReceived(ctx, o.ID))

	stored := repo.orders[o.ID]
	assert.Equal(t, StatusReceived, stored.Status)
	require.NotNil(t, stored.ReceivedAt)
}

func TestMarkReceived_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, repo, vendorID := newFixture(t)

	o := newOrder(vendorID)
	require.NoError(t, svc.Create(ctx, o))
	require.NoError(t, svc.MarkReceived(ctx, o.ID))
	first := repo.orders[o.ID].ReceivedAt

	require.NoError(t, svc.MarkReceived(ctx, o.ID))
	assert.Equal(t, first, repo.orders[o.ID].ReceivedAt)
}

func TestMarkReceived_CancelledOrderRejected(t *testing.T) {
	ctx := context.Background()
	svc, _, vendorID := newFixture(t)

	o := newOrder(vendorID)
	require.NoError(t, svc.Create(ctx, o))
	require.NoError(t, svc.Cancel(ctx, o.ID))

	err := svc.MarkReceived(ctx, o.ID)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidStatusChange, appErr.Code)
}

func TestCancel_ReceivedOrderRejected(t *testing.T) {
	ctx := context.Background()
	svc, _, vendorID := newFixture(t)

	o := newOrder(vendorID)
	require.NoError(t, svc.Create(ctx, o))
	require.NoError(t, svc.MarkReceived(ctx, o.ID))

	err := svc.Cancel(ctx, o.ID)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidStatusChange, appErr.Code)
}

func TestUpdate_ReceivedOrderFrozen(t *testing.T) {
	ctx := context.Background()
	svc, _, vendorID := newFixture(t)

	o := newOrder(vendorID)
	require.NoError(t, svc.Create(ctx, o))
	require.NoError(t, svc.MarkReceived(ctx, o.ID))

	updated := newOrder(vendorID)
	updated.ID = o.ID
	err := svc.Update(ctx, updated)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeBusinessRule, appErr.Code)
}

func TestDelete_ReceivedOrderRejected(t *testing.T) {
	ctx := context.Background()
	svc, repo, vendorID := newFixture(t)

	o := newOrder(vendorID)
	require.NoError(t, svc.Create(ctx, o))
	require.NoError(t, svc.MarkReceived(ctx, o.ID))

	err := svc.Delete(ctx, o.ID)
	require.Error(t, err)
	assert.Contains(t, repo.orders, o.ID)
}

func TestDelete_OrderedOrderRemoved(t *testing.T) {
	ctx := context.Background()
	svc, repo, vendorID := newFixture(t)

	o := newOrder(vendorID)
	require.NoError(t, svc.Create(ctx, o))

	require.NoError(t, svc.Delete(ctx, o.ID))
	assert.NotContains(t, repo.orders, o.ID)
	assert.NotContains(t, repo.items, o.ID)
}
