package service

import (
	"context"
	"testing"

	"blendstock/internal/apierror"
	"blendstock/internal/cache"
	"blendstock/internal/dto"
	"blendstock/internal/model"
	"blendstock/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type poFixture struct {
	svc       PurchaseOrderService
	pos       *stubPORepo
	products  *stubProductRepo
	suppliers *stubSupplierRepo
	movements *stubMovementRepo
}

func newPOFixture() *poFixture {
	products := newStubProductRepo()
	suppliers := newStubSupplierRepo()
	pos := newStubPORepo()
	movements := newStubMovementRepo()
	ledger := NewStockLedger(products, movements, cache.NewMemory())
	return &poFixture{
		svc:       NewPurchaseOrderService(pos, products, suppliers, ledger),
		pos:       pos,
		products:  products,
		suppliers: suppliers,
		movements: movements,
	}
}

func (f *poFixture) createPO(t *testing.T, items ...dto.POItemRequest) *dto.POResponse {
	t.Helper()
	supplier := seedSupplier(f.suppliers, "Acme Supply", true)
	po, err := f.svc.Create(context.Background(), dto.CreatePORequest{
		SupplierID: supplier.ID.String(),
		Items:      items,
	})
	require.NoError(t, err)
	return po
}

func TestCreatePOTotals(t *testing.T) {
	f := newPOFixture()
	a := seedProduct(f.products, "Widget", 0, 5, 4.00)
	b := seedProduct(f.products, "Gadget", 0, 5, 6.00)

	po := f.createPO(t,
		dto.POItemRequest{ProductID: a.ID.String(), Quantity: 10, UnitCost: decimal.RequireFromString("2")},
		dto.POItemRequest{ProductID: b.ID.String(), Quantity: 5, UnitCost: decimal.RequireFromString("3")},
	)

	assert.Equal(t, string(model.PODraft), po.Status)
	assert.True(t, po.TotalAmount.Equal(decimal.RequireFromString("35")),
		"total was %s", po.TotalAmount)
	require.Len(t, po.Items, 2)
	for _, item := range po.Items {
		assert.Zero(t, item.ReceivedQuantity)
		assert.Nil(t, item.ReceivedAt)
	}
}

func TestCreatePORejectsInactiveSupplier(t *testing.T) {
	f := newPOFixture()
	supplier := seedSupplier(f.suppliers, "Dormant Co", false)
	p := seedProduct(f.products, "Widget", 0, 5, 4.00)

	_, err := f.svc.Create(context.Background(), dto.CreatePORequest{
		SupplierID: supplier.ID.String(),
		Items:      []dto.POItemRequest{{ProductID: p.ID.String(), Quantity: 1, UnitCost: decimal.New(1, 0)}},
	})
	require.Error(t, err)
	assert.True(t, apierror.IsConflict(err))
}

func TestCreatePORejectsUnknownSupplier(t *testing.T) {
	f := newPOFixture()
	p := seedProduct(f.products, "Widget", 0, 5, 4.00)

	_, err := f.svc.Create(context.Background(), dto.CreatePORequest{
		SupplierID: uuid.NewString(),
		Items:      []dto.POItemRequest{{ProductID: p.ID.String(), Quantity: 1, UnitCost: decimal.New(1, 0)}},
	})
	require.Error(t, err)
	assert.True(t, apierror.IsNotFound(err))
}

func TestCreatePORejectsUnknownProduct(t *testing.T) {
	f := newPOFixture()
	supplier := seedSupplier(f.suppliers, "Acme Supply", true)

	_, err := f.svc.Create(context.Background(), dto.CreatePORequest{
		SupplierID: supplier.ID.String(),
		Items:      []dto.POItemRequest{{ProductID: uuid.NewString(), Quantity: 1, UnitCost: decimal.New(1, 0)}},
	})
	require.Error(t, err)
	assert.True(t, apierror.IsNotFound(err))
}

func TestCreatePORejectsEmptyItems(t *testing.T) {
	f := newPOFixture()
	supplier := seedSupplier(f.suppliers, "Acme Supply", true)

	_, err := f.svc.Create(context.Background(), dto.CreatePORequest{SupplierID: supplier.ID.String()})
	require.Error(t, err)
	assert.True(t, apierror.IsValidation(err))
}

func TestSetStatusForwardPath(t *testing.T) {
	f := newPOFixture()
	ctx := context.Background()
	p := seedProduct(f.products, "Widget", 0, 5, 4.00)
	po := f.createPO(t, dto.POItemRequest{ProductID: p.ID.String(), Quantity: 1, UnitCost: decimal.New(1, 0)})
	id, _ := uuid.Parse(po.ID)

	require.NoError(t, f.svc.SetStatus(ctx, id, model.POSent))
	require.NoError(t, f.svc.SetStatus(ctx, id, model.POConfirmed))

	got, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(model.POConfirmed), got.Status)
}

func TestSetStatusRejectsSkippedState(t *testing.T) {
	f := newPOFixture()
	ctx := context.Background()
	p := seedProduct(f.products, "Widget", 0, 5, 4.00)
	po := f.createPO(t, dto.POItemRequest{ProductID: p.ID.String(), Quantity: 1, UnitCost: decimal.New(1, 0)})
	id, _ := uuid.Parse(po.ID)

	// draft → confirmed skips "sent".
	err := f.svc.SetStatus(ctx, id, model.POConfirmed)
	require.Error(t, err)
	assert.True(t, apierror.IsInvalidState(err))
}

func TestSetStatusNeverYieldsReceived(t *testing.T) {
	f := newPOFixture()
	p := seedProduct(f.products, "Widget", 0, 5, 4.00)
	po := f.createPO(t, dto.POItemRequest{ProductID: p.ID.String(), Quantity: 1, UnitCost: decimal.New(1, 0)})
	id, _ := uuid.Parse(po.ID)

	err := f.svc.SetStatus(context.Background(), id, model.POReceived)
	require.Error(t, err)
	assert.True(t, apierror.IsInvalidState(err))
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	f := newPOFixture()
	p := seedProduct(f.products, "Widget", 0, 5, 4.00)
	po := f.createPO(t, dto.POItemRequest{ProductID: p.ID.String(), Quantity: 1, UnitCost: decimal.New(1, 0)})
	id, _ := uuid.Parse(po.ID)

	err := f.svc.SetStatus(context.Background(), id, model.POStatus("shipped"))
	require.Error(t, err)
	assert.True(t, apierror.IsValidation(err))
}

func TestCancelledIsTerminal(t *testing.T) {
	f := newPOFixture()
	ctx := context.Background()
	p := seedProduct(f.products, "Widget", 0, 5, 4.00)
	po := f.createPO(t, dto.POItemRequest{ProductID: p.ID.String(), Quantity: 1, UnitCost: decimal.New(1, 0)})
	id, _ := uuid.Parse(po.ID)

	require.NoError(t, f.svc.SetStatus(ctx, id, model.POCancelled))

	err := f.svc.SetStatus(ctx, id, model.POSent)
	require.Error(t, err)
	assert.True(t, apierror.IsInvalidState(err))
}

func TestSetStatusUnknownPO(t *testing.T) {
	f := newPOFixture()
	err := f.svc.SetStatus(context.Background(), uuid.New(), model.POSent)
	require.Error(t, err)
	assert.True(t, apierror.IsNotFound(err))
}

func TestReceiveRequiresConfirmed(t *testing.T) {
	f := newPOFixture()
	ctx := context.Background()
	p := seedProduct(f.products, "Widget", 0, 5, 4.00)
	po := f.createPO(t, dto.POItemRequest{ProductID: p.ID.String(), Quantity: 10, UnitCost: decimal.New(2, 0)})
	id, _ := uuid.Parse(po.ID)

	_, err := f.svc.Receive(ctx, id)
	require.Error(t, err)
	assert.True(t, apierror.IsInvalidState(err))

	// Stock untouched by the failed receive.
	got, _ := f.products.FindByID(ctx, p.ID)
	assert.Equal(t, 0, got.Stock)
}

func TestReceiveBooksStockAndClosesOrder(t *testing.T) {
	f := newPOFixture()
	ctx := context.Background()
	a := seedProduct(f.products, "Widget", 2, 5, 4.00)
	b := seedProduct(f.products, "Gadget", 0, 5, 6.00)
	po := f.createPO(t,
		dto.POItemRequest{ProductID: a.ID.String(), Quantity: 10, UnitCost: decimal.RequireFromString("2")},
		dto.POItemRequest{ProductID: b.ID.String(), Quantity: 5, UnitCost: decimal.RequireFromString("3")},
	)
	id, _ := uuid.Parse(po.ID)
	require.NoError(t, f.svc.SetStatus(ctx, id, model.POSent))
	require.NoError(t, f.svc.SetStatus(ctx, id, model.POConfirmed))

	received, err := f.svc.Receive(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(model.POReceived), received.Status)
	assert.NotNil(t, received.ActualDeliveryDate)
	for _, item := range received.Items {
		assert.Equal(t, item.OrderedQuantity, item.ReceivedQuantity)
		assert.NotNil(t, item.ReceivedAt)
	}

	gotA, _ := f.products.FindByID(ctx, a.ID)
	gotB, _ := f.products.FindByID(ctx, b.ID)
	assert.Equal(t, 12, gotA.Stock)
	assert.Equal(t, 5, gotB.Stock)

	// The ledger carries one inbound movement per item, tagged with the PO.
	rows, total, err := f.movements.List(ctx, repository.MovementFilter{Reference: "PO-" + po.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, m := range rows {
		assert.Equal(t, model.MovementIn, m.Kind)
		assert.Equal(t, "purchase order received", m.Reason)
		require.NotNil(t, m.SupplierID)
		require.NotNil(t, m.UnitCost)
	}
}

func TestReceiveTwiceFails(t *testing.T) {
	f := newPOFixture()
	ctx := context.Background()
	p := seedProduct(f.products, "Widget", 0, 5, 4.00)
	po := f.createPO(t, dto.POItemRequest{ProductID: p.ID.String(), Quantity: 10, UnitCost: decimal.New(2, 0)})
	id, _ := uuid.Parse(po.ID)
	require.NoError(t, f.svc.SetStatus(ctx, id, model.POSent))
	require.NoError(t, f.svc.SetStatus(ctx, id, model.POConfirmed))

	_, err := f.svc.Receive(ctx, id)
	require.NoError(t, err)

	_, err = f.svc.Receive(ctx, id)
	require.Error(t, err)
	assert.True(t, apierror.IsInvalidState(err))

	// Stock was booked exactly once.
	got, _ := f.products.FindByID(ctx, p.ID)
	assert.Equal(t, 10, got.Stock)
}

func TestListPurchaseOrdersByStatus(t *testing.T) {
	f := newPOFixture()
	ctx := context.Background()
	p := seedProduct(f.products, "Widget", 0, 5, 4.00)

	first := f.createPO(t, dto.POItemRequest{ProductID: p.ID.String(), Quantity: 1, UnitCost: decimal.New(1, 0)})
	second := f.createPO(t, dto.POItemRequest{ProductID: p.ID.String(), Quantity: 2, UnitCost: decimal.New(1, 0)})
	id, _ := uuid.Parse(second.ID)
	require.NoError(t, f.svc.SetStatus(ctx, id, model.POSent))

	drafts, total, err := f.svc.List(ctx, repository.POFilter{Status: model.PODraft})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, drafts, 1)
	assert.Equal(t, first.ID, drafts[0].ID)
}
