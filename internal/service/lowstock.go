package service

import (
	"context"
	"errors"
	"time"

	"blendstock/internal/apierror"
	"blendstock/internal/dto"
	"blendstock/internal/model"
	"blendstock/internal/repository"
	"blendstock/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// minThresholdFloor is the lowest threshold any product can carry. A product
// configured below this still alerts at the floor.
const minThresholdFloor = 5

// LowStockService derives alert state from current stock. Alerts deduplicate:
// a product has at most one unresolved alert, updated in place while the
// condition persists.
type LowStockService interface {
	// CheckAll sweeps every available product. Per-product failures are
	// logged and skipped so one bad row never aborts the sweep.
	CheckAll(ctx context.Context) error
	RaiseOrUpdate(ctx context.Context, productID uuid.UUID, threshold, currentStock int) (*model.LowStockAlert, error)
	Resolve(ctx context.Context, alertID uuid.UUID, resolvedBy, notes string) error
	ListOpen(ctx context.Context) ([]dto.AlertResponse, error)
}

type lowStockService struct {
	products repository.ProductRepository
	alerts   repository.LowStockAlertRepository
	notifier *worker.Dispatcher // nil disables out-of-band notifications
}

func NewLowStockService(
	products repository.ProductRepository,
	alerts repository.LowStockAlertRepository,
	notifier *worker.Dispatcher,
) LowStockService {
	return &lowStockService{products: products, alerts: alerts, notifier: notifier}
}

// threshold returns the product's alert threshold: its configured MinStock,
// floored at minThresholdFloor. This replaces percent-of-stock formulas, whose
// sensitivity shrinks as stock depletes.
func threshold(p *model.Product) int {
	if p.MinStock < minThresholdFloor {
		return minThresholdFloor
	}
	return p.MinStock
}

func (s *lowStockService) CheckAll(ctx context.Context) error {
	products, err := s.products.FindAvailable(ctx)
	if err != nil {
		return err
	}

	raised := 0
	for i := range products {
		p := &products[i]
		t := threshold(p)
		if p.Stock > t {
			continue
		}
		if _, err := s.RaiseOrUpdate(ctx, p.ID, t, p.Stock); err != nil {
			log.Error().Err(err).
				Str("product_id", p.ID.String()).
				Msg("lowstock: failed to raise alert, continuing sweep")
			continue
		}
		raised++
	}
	log.Info().Int("checked", len(products)).Int("low", raised).Msg("lowstock: sweep complete")
	return nil
}

func (s *lowStockService) RaiseOrUpdate(ctx context.Context, productID uuid.UUID, threshold, currentStock int) (*model.LowStockAlert, error) {
	existing, err := s.alerts.FindOpenByProduct(ctx, productID)
	if err == nil {
		// Open alert already exists — refresh its snapshots, never duplicate.
		existing.Threshold = threshold
		existing.CurrentStock = currentStock
		if err := s.alerts.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	alert := &model.LowStockAlert{
		ProductID:    productID,
		Threshold:    threshold,
		CurrentStock: currentStock,
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}

	// New alert — push a notification job, best effort.
	if s.notifier != nil {
		_ = s.notifier.EnqueueAlert(ctx, worker.AlertPayload{
			AlertID:      alert.ID.String(),
			ProductID:    productID.String(),
			Threshold:    threshold,
			CurrentStock: currentStock,
		})
	}
	return alert, nil
}

func (s *lowStockService) Resolve(ctx context.Context, alertID uuid.UUID, resolvedBy, notes string) error {
	alert, err := s.alerts.FindByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("alert %s not found", alertID)
		}
		return err
	}
	if alert.Resolved {
		return apierror.Conflict("alert %s is already resolved", alertID)
	}

	now := time.Now()
	alert.Resolved = true
	alert.ResolvedBy = &resolvedBy
	alert.ResolvedAt = &now
	alert.Notes = notes
	return s.alerts.Update(ctx, alert)
}

func (s *lowStockService) ListOpen(ctx context.Context) ([]dto.AlertResponse, error) {
	alerts, err := s.alerts.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AlertResponse, 0, len(alerts))
	for i := range alerts {
		out = append(out, alertToResponse(&alerts[i]))
	}
	return out, nil
}

func alertToResponse(a *model.LowStockAlert) dto.AlertResponse {
	resp := dto.AlertResponse{
		ID:           a.ID.String(),
		ProductID:    a.ProductID.String(),
		Threshold:    a.Threshold,
		CurrentStock: a.CurrentStock,
		Resolved:     a.Resolved,
		ResolvedBy:   a.ResolvedBy,
		Notes:        a.Notes,
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
	}
	if a.Product != nil {
		resp.Product = a.Product.Name
	}
	if a.ResolvedAt != nil {
		t := a.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &t
	}
	return resp
}
