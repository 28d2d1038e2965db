package service

import (
	"context"
	"errors"
	"time"

	"blendstock/internal/apierror"
	"blendstock/internal/dto"
	"blendstock/internal/model"
	"blendstock/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseOrderService drives the restocking state machine:
// draft → sent → confirmed → received, with cancelled reachable from any
// non-terminal state. Receiving feeds the stock ledger.
type PurchaseOrderService interface {
	Create(ctx context.Context, req dto.CreatePORequest) (*dto.POResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.POResponse, error)
	List(ctx context.Context, filter repository.POFilter) ([]dto.POResponse, int64, error)
	// SetStatus applies a direct forward transition. "received" is rejected
	// here — it is only reachable through Receive.
	SetStatus(ctx context.Context, id uuid.UUID, status model.POStatus) error
	// Receive books every item into stock and closes the order. Requires
	// current status "confirmed".
	Receive(ctx context.Context, id uuid.UUID) (*dto.POResponse, error)
}

type purchaseOrderService struct {
	pos       repository.PurchaseOrderRepository
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
	ledger    StockLedger
}

func NewPurchaseOrderService(
	pos repository.PurchaseOrderRepository,
	products repository.ProductRepository,
	suppliers repository.SupplierRepository,
	ledger StockLedger,
) PurchaseOrderService {
	return &purchaseOrderService{pos: pos, products: products, suppliers: suppliers, ledger: ledger}
}

func (s *purchaseOrderService) Create(ctx context.Context, req dto.CreatePORequest) (*dto.POResponse, error) {
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, apierror.Validation("invalid supplier id %q", req.SupplierID)
	}
	if len(req.Items) == 0 {
		return nil, apierror.Validation("purchase order must contain at least one item")
	}

	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("supplier %s not found", req.SupplierID)
		}
		return nil, err
	}
	if !supplier.Active {
		return nil, apierror.Conflict("supplier %s is inactive", supplier.Name)
	}

	po := model.PurchaseOrder{
		SupplierID: supplierID,
		Status:     model.PODraft,
		Notes:      req.Notes,
	}
	if req.ExpectedDeliveryDate != nil {
		t, parseErr := time.Parse(time.RFC3339, *req.ExpectedDeliveryDate)
		if parseErr != nil {
			return nil, apierror.Validation("invalid expected_delivery_date %q", *req.ExpectedDeliveryDate)
		}
		po.ExpectedDeliveryDate = &t
	}

	total := decimal.Zero
	for _, item := range req.Items {
		pid, parseErr := uuid.Parse(item.ProductID)
		if parseErr != nil {
			return nil, apierror.Validation("invalid product id %q", item.ProductID)
		}
		if item.Quantity <= 0 {
			return nil, apierror.Validation("quantity must be positive for product %s", item.ProductID)
		}
		if _, err := s.products.FindByID(ctx, pid); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierror.NotFound("product %s not found", item.ProductID)
			}
			return nil, err
		}
		total = total.Add(item.UnitCost.Mul(decimal.NewFromInt(int64(item.Quantity))))
		po.Items = append(po.Items, model.PurchaseOrderItem{
			ProductID:       pid,
			OrderedQuantity: item.Quantity,
			UnitCost:        item.UnitCost,
		})
	}
	po.TotalAmount = total

	if err := s.pos.Create(ctx, &po); err != nil {
		return nil, err
	}
	return poToResponse(&po), nil
}

func (s *purchaseOrderService) Get(ctx context.Context, id uuid.UUID) (*dto.POResponse, error) {
	po, err := s.pos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("purchase order %s not found", id)
		}
		return nil, err
	}
	return poToResponse(po), nil
}

func (s *purchaseOrderService) List(ctx context.Context, filter repository.POFilter) ([]dto.POResponse, int64, error) {
	pos, total, err := s.pos.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.POResponse, 0, len(pos))
	for i := range pos {
		out = append(out, *poToResponse(&pos[i]))
	}
	return out, total, nil
}

func (s *purchaseOrderService) SetStatus(ctx context.Context, id uuid.UUID, status model.POStatus) error {
	if status == model.POReceived {
		return apierror.InvalidState("status %q is only reachable through receiving", model.POReceived)
	}
	switch status {
	case model.POSent, model.POConfirmed, model.POCancelled:
	default:
		return apierror.Validation("unknown purchase order status %q", status)
	}

	return runTx(ctx, s.pos.DB(), func(tx *gorm.DB) error {
		po, err := s.pos.FindByIDForUpdateTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("purchase order %s not found", id)
			}
			return err
		}
		if !po.Status.CanTransition(status) {
			return apierror.InvalidState(
				"purchase order %s cannot move from %q to %q", id, po.Status, status)
		}
		po.Status = status
		return s.pos.SaveTx(tx, po)
	})
}

func (s *purchaseOrderService) Receive(ctx context.Context, id uuid.UUID) (*dto.POResponse, error) {
	touched := make([]uuid.UUID, 0, 4)
	txErr := runTx(ctx, s.pos.DB(), func(tx *gorm.DB) error {
		po, err := s.pos.FindByIDForUpdateTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("purchase order %s not found", id)
			}
			return err
		}
		if po.Status != model.POConfirmed {
			return apierror.InvalidState(
				"purchase order %s must be %q to receive, is %q", id, model.POConfirmed, po.Status)
		}

		now := time.Now()
		reference := "PO-" + po.ID.String()
		for i := range po.Items {
			item := &po.Items[i]
			if item.ReceivedQuantity == item.OrderedQuantity {
				continue
			}
			qty := item.OrderedQuantity
			cost := item.UnitCost
			if _, err := s.ledger.RecordTx(ctx, tx, MovementParams{
				ProductID:  item.ProductID,
				Kind:       model.MovementIn,
				Quantity:   qty,
				Reason:     "purchase order received",
				Reference:  reference,
				SupplierID: &po.SupplierID,
				UnitCost:   &cost,
			}); err != nil {
				return err
			}
			item.ReceivedQuantity = qty
			item.ReceivedAt = &now
			if err := s.pos.SaveItemTx(tx, item); err != nil {
				return err
			}
			touched = append(touched, item.ProductID)
		}

		po.Status = model.POReceived
		po.ActualDeliveryDate = &now
		return s.pos.SaveTx(tx, po)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.ledger.InvalidateProduct(ctx, touched...)
	return s.Get(ctx, id)
}

func poToResponse(po *model.PurchaseOrder) *dto.POResponse {
	items := make([]dto.POItemResponse, 0, len(po.Items))
	for _, item := range po.Items {
		r := dto.POItemResponse{
			ID:               item.ID.String(),
			ProductID:        item.ProductID.String(),
			OrderedQuantity:  item.OrderedQuantity,
			UnitCost:         item.UnitCost,
			ReceivedQuantity: item.ReceivedQuantity,
		}
		if item.Product != nil {
			r.Product = item.Product.Name
		}
		if item.ReceivedAt != nil {
			t := item.ReceivedAt.Format(time.RFC3339)
			r.ReceivedAt = &t
		}
		items = append(items, r)
	}
	resp := &dto.POResponse{
		ID:          po.ID.String(),
		SupplierID:  po.SupplierID.String(),
		Status:      string(po.Status),
		TotalAmount: po.TotalAmount,
		Notes:       po.Notes,
		Items:       items,
		CreatedAt:   po.CreatedAt.Format(time.RFC3339),
	}
	if po.ExpectedDeliveryDate != nil {
		t := po.ExpectedDeliveryDate.Format(time.RFC3339)
		resp.ExpectedDeliveryDate = &t
	}
	if po.ActualDeliveryDate != nil {
		t := po.ActualDeliveryDate.Format(time.RFC3339)
		resp.ActualDeliveryDate = &t
	}
	return resp
}
