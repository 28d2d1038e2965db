package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"blendstock/internal/apierror"
	"blendstock/internal/cache"
	"blendstock/internal/dto"
	"blendstock/internal/model"
	"blendstock/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	stockCacheTTL    = 5 * time.Minute
	movementCacheTTL = 10 * time.Minute
)

func stockCacheKey(productID uuid.UUID) string    { return "stock:" + productID.String() }
func movementCacheKey(productID uuid.UUID) string { return "movements:" + productID.String() }

// MovementParams describes one stock-affecting event to append to the ledger.
type MovementParams struct {
	ProductID  uuid.UUID
	Kind       model.MovementKind
	Quantity   int
	Reason     string
	Reference  string
	SupplierID *uuid.UUID
	UnitCost   *decimal.Decimal
	Notes      string
}

// StockLedger is the single legal path for mutating Product.Stock. Every
// mutation appends an immutable movement row with before/after snapshots and
// drops the product's cached views after the write commits.
type StockLedger interface {
	// Record applies one movement in its own transaction and returns the
	// wire-shaped row.
	Record(ctx context.Context, params MovementParams) (*dto.MovementResponse, error)
	// RecordTx applies one movement inside the caller's transaction. The
	// caller owns commit/rollback and must call InvalidateProduct after a
	// successful commit.
	RecordTx(ctx context.Context, tx *gorm.DB, params MovementParams) (*model.StockMovement, error)

	// CurrentStock serves the cached current-stock view.
	CurrentStock(ctx context.Context, productID uuid.UUID) (int, error)
	// History lists movements, serving the default first page from cache.
	History(ctx context.Context, filter repository.MovementFilter) (*dto.MovementListResponse, error)
	// Reconcile replays the product's movement chain and checks it against
	// the current stock value.
	Reconcile(ctx context.Context, productID uuid.UUID) (*dto.ReconciliationResponse, error)

	// InvalidateProduct drops the cached views for the given products.
	InvalidateProduct(ctx context.Context, productIDs ...uuid.UUID)
}

type stockLedger struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	cache     cache.Cache
}

func NewStockLedger(
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	c cache.Cache,
) StockLedger {
	return &stockLedger{products: products, movements: movements, cache: c}
}

func (s *stockLedger) Record(ctx context.Context, params MovementParams) (*dto.MovementResponse, error) {
	var movement *model.StockMovement
	err := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		var txErr error
		movement, txErr = s.RecordTx(ctx, tx, params)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	// Invalidate only after the write committed — never before, so readers
	// cannot repopulate the cache from a value that is about to roll back.
	s.InvalidateProduct(ctx, params.ProductID)
	resp := movementToResponse(movement)
	return &resp, nil
}

func (s *stockLedger) RecordTx(ctx context.Context, tx *gorm.DB, params MovementParams) (*model.StockMovement, error) {
	if !params.Kind.Valid() {
		return nil, apierror.Validation("unknown movement kind %q", params.Kind)
	}
	switch params.Kind {
	case model.MovementAdjustment:
		if params.Quantity < 0 {
			return nil, apierror.InvalidState("stock cannot be adjusted below zero")
		}
	default:
		if params.Quantity <= 0 {
			return nil, apierror.Validation("quantity must be positive for %s movements", params.Kind)
		}
	}

	// Row lock: serializes every concurrent mutation of this product and
	// pins the before-snapshot for the movement row.
	product, err := s.products.FindByIDForUpdateTx(tx, params.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("product %s not found", params.ProductID)
		}
		return nil, err
	}

	before := product.Stock
	var after int
	switch params.Kind {
	case model.MovementOut:
		after, err = s.products.DecrementStockTx(tx, params.ProductID, params.Quantity)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.InvalidState(
				"stock of product %s would go negative (%d - %d)",
				params.ProductID, before, params.Quantity)
		}
	case model.MovementIn, model.MovementReturn:
		after, err = s.products.IncrementStockTx(tx, params.ProductID, params.Quantity)
	case model.MovementAdjustment:
		after = params.Quantity
		err = s.products.SetStockTx(tx, params.ProductID, params.Quantity)
	}
	if err != nil {
		return nil, err
	}

	movement := &model.StockMovement{
		ProductID:   params.ProductID,
		Kind:        params.Kind,
		Quantity:    params.Quantity,
		StockBefore: before,
		StockAfter:  after,
		Reason:      params.Reason,
		Reference:   params.Reference,
		SupplierID:  params.SupplierID,
		UnitCost:    params.UnitCost,
		Notes:       params.Notes,
	}
	if err := s.movements.CreateTx(tx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

func (s *stockLedger) CurrentStock(ctx context.Context, productID uuid.UUID) (int, error) {
	key := stockCacheKey(productID)
	if b, err := s.cache.Get(ctx, key); err == nil {
		if v, convErr := strconv.Atoi(string(b)); convErr == nil {
			return v, nil
		}
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apierror.NotFound("product %s not found", productID)
		}
		return 0, err
	}

	// Populate cache — best effort, ignore errors.
	_ = s.cache.Set(ctx, key, []byte(strconv.Itoa(product.Stock)), stockCacheTTL)
	return product.Stock, nil
}

func (s *stockLedger) History(ctx context.Context, filter repository.MovementFilter) (*dto.MovementListResponse, error) {
	// Only the default first-page-per-product view is cached; filtered and
	// paginated queries go straight to the DB.
	cacheable := filter.ProductID != nil && filter.Kind == "" && filter.Reference == "" &&
		filter.Page <= 1 && filter.Limit == 0
	var key string
	if cacheable {
		key = movementCacheKey(*filter.ProductID)
		if b, err := s.cache.Get(ctx, key); err == nil {
			var resp dto.MovementListResponse
			if jsonErr := json.Unmarshal(b, &resp); jsonErr == nil {
				return &resp, nil
			}
		}
	}

	movements, total, err := s.movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.MovementListResponse{
		Data:  make([]dto.MovementResponse, 0, len(movements)),
		Total: total,
		Page:  maxInt(filter.Page, 1),
		Limit: filter.Limit,
	}
	for i := range movements {
		resp.Data = append(resp.Data, movementToResponse(&movements[i]))
	}

	if cacheable {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = s.cache.Set(ctx, key, b, movementCacheTTL)
		}
	}
	return resp, nil
}

// Reconcile reads the full chronological chain and verifies three things:
// each row's arithmetic matches its kind, each row's before-snapshot equals
// the previous row's after-snapshot, and the last after-snapshot equals the
// product's current stock. Always reads through to the DB — a reconciliation
// against a cached view would be meaningless.
func (s *stockLedger) Reconcile(ctx context.Context, productID uuid.UUID) (*dto.ReconciliationResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("product %s not found", productID)
		}
		return nil, err
	}

	movements, err := s.movements.ListByProductSince(ctx, productID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ReconciliationResponse{
		ProductID:    productID.String(),
		CurrentStock: product.Stock,
		Movements:    len(movements),
	}
	if len(movements) == 0 {
		// A never-moved product reconciles trivially.
		resp.LedgerStock = product.Stock
		resp.Consistent = true
		return resp, nil
	}

	intact := true
	for i := range movements {
		m := &movements[i]
		if i > 0 && m.StockBefore != movements[i-1].StockAfter {
			intact = false
		}
		want := m.StockBefore
		switch m.Kind {
		case model.MovementOut:
			want -= m.Quantity
		case model.MovementIn, model.MovementReturn:
			want += m.Quantity
		case model.MovementAdjustment:
			want = m.Quantity
		}
		if m.StockAfter != want {
			intact = false
		}
	}

	resp.LedgerStock = movements[len(movements)-1].StockAfter
	resp.Consistent = intact && resp.LedgerStock == product.Stock
	return resp, nil
}

func (s *stockLedger) InvalidateProduct(ctx context.Context, productIDs ...uuid.UUID) {
	keys := make([]string, 0, len(productIDs)*2)
	for _, id := range productIDs {
		keys = append(keys, stockCacheKey(id), movementCacheKey(id))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Msg("ledger: cache invalidation failed")
	}
}

func movementToResponse(m *model.StockMovement) dto.MovementResponse {
	var supplierID *string
	if m.SupplierID != nil {
		s := m.SupplierID.String()
		supplierID = &s
	}
	return dto.MovementResponse{
		ID:          m.ID.String(),
		ProductID:   m.ProductID.String(),
		Kind:        string(m.Kind),
		Quantity:    m.Quantity,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		Reason:      m.Reason,
		Reference:   m.Reference,
		SupplierID:  supplierID,
		UnitCost:    m.UnitCost,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
