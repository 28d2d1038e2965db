package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"blendstock/internal/model"
	"blendstock/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory repository stubs ───────────────────────────────────────────────
// All stubs return a nil *gorm.DB from DB(), putting runTx into unit-test mode.
// The product stub guards its stock map with a mutex so the guarded decrement
// is genuinely atomic — the concurrency tests rely on that.

type stubProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) FindAvailable(_ context.Context) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.products {
		if p.Available {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubProductRepo) FindDepleted(_ context.Context, max int) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.products {
		if p.Available && p.Stock <= max {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) DecrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.Stock < qty {
		return 0, gorm.ErrRecordNotFound
	}
	p.Stock -= qty
	return p.Stock, nil
}

func (r *stubProductRepo) IncrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	p.Stock += qty
	return p.Stock, nil
}

func (r *stubProductRepo) SetStockTx(_ *gorm.DB, id uuid.UUID, stock int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock = stock
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ──

type stubMovementRepo struct {
	mu        sync.Mutex
	movements []model.StockMovement
}

func newStubMovementRepo() *stubMovementRepo { return &stubMovementRepo{} }

func (r *stubMovementRepo) Create(_ context.Context, m *model.StockMovement) error {
	return r.CreateTx(nil, m)
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, filter repository.MovementFilter) ([]model.StockMovement, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockMovement
	for _, m := range r.movements {
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Kind != "" && m.Kind != filter.Kind {
			continue
		}
		if filter.Reference != "" && m.Reference != filter.Reference {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMovementRepo) ListByProductSince(_ context.Context, productID uuid.UUID) ([]model.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

// ──

type stubAlertRepo struct {
	mu     sync.Mutex
	alerts map[uuid.UUID]*model.LowStockAlert
}

func newStubAlertRepo() *stubAlertRepo {
	return &stubAlertRepo{alerts: make(map[uuid.UUID]*model.LowStockAlert)}
}

func (r *stubAlertRepo) Create(_ context.Context, a *model.LowStockAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	r.alerts[a.ID] = a
	return nil
}

func (r *stubAlertRepo) Update(_ context.Context, a *model.LowStockAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts[a.ID] = a
	return nil
}

func (r *stubAlertRepo) FindByID(_ context.Context, id uuid.UUID) (*model.LowStockAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *stubAlertRepo) FindOpenByProduct(_ context.Context, productID uuid.UUID) (*model.LowStockAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.alerts {
		if a.ProductID == productID && !a.Resolved {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubAlertRepo) ListOpen(_ context.Context) ([]model.LowStockAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.LowStockAlert
	for _, a := range r.alerts {
		if !a.Resolved {
			out = append(out, *a)
		}
	}
	return out, nil
}

var _ repository.LowStockAlertRepository = (*stubAlertRepo)(nil)

// ──

type stubSupplierRepo struct {
	mu        sync.Mutex
	suppliers map[uuid.UUID]*model.Supplier
	order     []uuid.UUID // insertion order, for FindFirstActive
}

func newStubSupplierRepo() *stubSupplierRepo {
	return &stubSupplierRepo{suppliers: make(map[uuid.UUID]*model.Supplier)}
}

func (r *stubSupplierRepo) Create(_ context.Context, s *model.Supplier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.suppliers[s.ID] = s
	r.order = append(r.order, s.ID)
	return nil
}

func (r *stubSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSupplierRepo) FindFirstActive(_ context.Context) (*model.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if s := r.suppliers[id]; s.Active {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSupplierRepo) ListActive(_ context.Context) ([]model.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Supplier
	for _, id := range r.order {
		if s := r.suppliers[id]; s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSupplierRepo) Update(_ context.Context, s *model.Supplier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suppliers[s.ID] = s
	return nil
}

var _ repository.SupplierRepository = (*stubSupplierRepo)(nil)

// ──

type stubPORepo struct {
	mu  sync.Mutex
	pos map[uuid.UUID]*model.PurchaseOrder
}

func newStubPORepo() *stubPORepo {
	return &stubPORepo{pos: make(map[uuid.UUID]*model.PurchaseOrder)}
}

func (r *stubPORepo) Create(_ context.Context, po *model.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if po.ID == uuid.Nil {
		po.ID = uuid.New()
	}
	po.CreatedAt = time.Now()
	for i := range po.Items {
		if po.Items[i].ID == uuid.Nil {
			po.Items[i].ID = uuid.New()
		}
		po.Items[i].PurchaseOrderID = po.ID
	}
	r.pos[po.ID] = po
	return nil
}

func (r *stubPORepo) FindByID(_ context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	po, ok := r.pos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return po, nil
}

func (r *stubPORepo) List(_ context.Context, filter repository.POFilter) ([]model.PurchaseOrder, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.PurchaseOrder
	for _, po := range r.pos {
		if filter.SupplierID != nil && po.SupplierID != *filter.SupplierID {
			continue
		}
		if filter.Status != "" && po.Status != filter.Status {
			continue
		}
		out = append(out, *po)
	}
	return out, int64(len(out)), nil
}

func (r *stubPORepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	po, ok := r.pos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return po, nil
}

func (r *stubPORepo) SaveTx(_ *gorm.DB, po *model.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pos[po.ID] = po
	return nil
}

func (r *stubPORepo) SaveItemTx(_ *gorm.DB, item *model.PurchaseOrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	po, ok := r.pos[item.PurchaseOrderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range po.Items {
		if po.Items[i].ID == item.ID {
			po.Items[i] = *item
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubPORepo) HasOpenForProduct(_ context.Context, productID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, po := range r.pos {
		if po.Status != model.PODraft && po.Status != model.POSent {
			continue
		}
		for _, item := range po.Items {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *stubPORepo) DB() *gorm.DB { return nil }

var _ repository.PurchaseOrderRepository = (*stubPORepo)(nil)

// ──

type stubOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*model.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (r *stubOrderRepo) CreateTx(_ *gorm.DB, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = time.Now()
	r.orders[o.ID] = o
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

// ── Helpers ──────────────────────────────────────────────────────────────────

func seedProduct(repo *stubProductRepo, name string, stock, minStock int, price float64) *model.Product {
	p := &model.Product{
		ID:        uuid.New(),
		SKU:       "SKU-" + uuid.NewString()[:8],
		Name:      name,
		Category:  "TEST",
		Price:     decimal.NewFromFloat(price),
		Cost:      decimal.NewFromFloat(price / 2),
		Stock:     stock,
		MinStock:  minStock,
		Available: true,
	}
	repo.products[p.ID] = p
	return p
}

func seedSupplier(repo *stubSupplierRepo, name string, active bool) *model.Supplier {
	s := &model.Supplier{
		ID:     uuid.New(),
		Name:   name,
		TaxID:  "TAX-" + uuid.NewString()[:8],
		Active: active,
	}
	repo.suppliers[s.ID] = s
	repo.order = append(repo.order, s.ID)
	return s
}
