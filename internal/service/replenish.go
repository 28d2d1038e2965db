package service

import (
	"context"
	"errors"
	"time"

	"blendstock/internal/dto"
	"blendstock/internal/model"
	"blendstock/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// replenishStockCeiling: products at or below this stock level are
	// candidates for automated reordering.
	replenishStockCeiling = 10
	// replenishMinQuantity is the smallest reorder ever placed.
	replenishMinQuantity = 20
	// replenishLeadTime is the assumed supplier delivery window.
	replenishLeadTime = 7 * 24 * time.Hour
)

// replenishCostFactor: assumed unit cost as a fraction of the sale price when
// the supplier has not quoted one.
var replenishCostFactor = decimal.NewFromFloat(0.6)

// ReplenishService scans for depleted products and opens draft purchase
// orders for them through the purchase order workflow.
type ReplenishService interface {
	// Run executes one sweep. Already-covered products (an open draft/sent
	// purchase order exists) are skipped, so repeated runs are idempotent
	// until the resulting orders are acted upon. Per-product failures are
	// logged and skipped.
	Run(ctx context.Context) error
}

type replenishService struct {
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
	pos       repository.PurchaseOrderRepository
	workflow  PurchaseOrderService
}

func NewReplenishService(
	products repository.ProductRepository,
	suppliers repository.SupplierRepository,
	pos repository.PurchaseOrderRepository,
	workflow PurchaseOrderService,
) ReplenishService {
	return &replenishService{products: products, suppliers: suppliers, pos: pos, workflow: workflow}
}

func (s *replenishService) Run(ctx context.Context) error {
	depleted, err := s.products.FindDepleted(ctx, replenishStockCeiling)
	if err != nil {
		return err
	}
	if len(depleted) == 0 {
		log.Info().Msg("replenish: nothing to reorder")
		return nil
	}

	opened := 0
	for i := range depleted {
		p := &depleted[i]

		covered, err := s.pos.HasOpenForProduct(ctx, p.ID)
		if err != nil {
			log.Error().Err(err).Str("product_id", p.ID.String()).
				Msg("replenish: coverage check failed, skipping product")
			continue
		}
		if covered {
			continue
		}

		supplier, err := s.pickSupplier(ctx, p)
		if err != nil {
			log.Warn().Err(err).Str("product_id", p.ID.String()).
				Msg("replenish: no supplier for product, skipping")
			continue
		}

		qty := 2 * p.Stock
		if qty < replenishMinQuantity {
			qty = replenishMinQuantity
		}
		unitCost := p.Price.Mul(replenishCostFactor)
		expected := time.Now().Add(replenishLeadTime).Format(time.RFC3339)

		po, err := s.workflow.Create(ctx, dto.CreatePORequest{
			SupplierID: supplier.ID.String(),
			Items: []dto.POItemRequest{{
				ProductID: p.ID.String(),
				Quantity:  qty,
				UnitCost:  unitCost,
			}},
			Notes:                "auto-replenishment",
			ExpectedDeliveryDate: &expected,
		})
		if err != nil {
			log.Error().Err(err).Str("product_id", p.ID.String()).
				Msg("replenish: failed to open purchase order, continuing sweep")
			continue
		}

		opened++
		log.Info().
			Str("product_id", p.ID.String()).
			Str("po_id", po.ID).
			Int("quantity", qty).
			Str("supplier_id", supplier.ID.String()).
			Msg("replenish: opened draft purchase order")
	}

	log.Info().Int("depleted", len(depleted)).Int("opened", opened).Msg("replenish: sweep complete")
	return nil
}

// pickSupplier prefers the product's own supplier when it is still active and
// falls back to the first active supplier. Deterministic, but still a
// placeholder for a real supplier-preference rule.
func (s *replenishService) pickSupplier(ctx context.Context, p *model.Product) (*model.Supplier, error) {
	if p.SupplierID != nil {
		supplier, err := s.suppliers.FindByID(ctx, *p.SupplierID)
		if err == nil && supplier.Active {
			return supplier, nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return s.suppliers.FindFirstActive(ctx)
}
