package repository

import (
	"context"

	"blendstock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LowStockAlertRepository manages alert rows. The unresolved-uniqueness
// invariant is enforced by the monitor service via FindOpenByProduct.
type LowStockAlertRepository interface {
	Create(ctx context.Context, a *model.LowStockAlert) error
	Update(ctx context.Context, a *model.LowStockAlert) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.LowStockAlert, error)
	// FindOpenByProduct returns the single unresolved alert for a product,
	// or gorm.ErrRecordNotFound when none is open.
	FindOpenByProduct(ctx context.Context, productID uuid.UUID) (*model.LowStockAlert, error)
	ListOpen(ctx context.Context) ([]model.LowStockAlert, error)
}

type lowStockAlertRepo struct{ db *gorm.DB }

func NewLowStockAlertRepository(db *gorm.DB) LowStockAlertRepository {
	return &lowStockAlertRepo{db: db}
}

func (r *lowStockAlertRepo) Create(ctx context.Context, a *model.LowStockAlert) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *lowStockAlertRepo) Update(ctx context.Context, a *model.LowStockAlert) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *lowStockAlertRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.LowStockAlert, error) {
	var a model.LowStockAlert
	err := r.db.WithContext(ctx).First(&a, id).Error
	return &a, err
}

func (r *lowStockAlertRepo) FindOpenByProduct(ctx context.Context, productID uuid.UUID) (*model.LowStockAlert, error) {
	var a model.LowStockAlert
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND resolved = false", productID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *lowStockAlertRepo) ListOpen(ctx context.Context) ([]model.LowStockAlert, error) {
	var alerts []model.LowStockAlert
	err := r.db.WithContext(ctx).Preload("Product").
		Where("resolved = false").
		Order("created_at DESC").Find(&alerts).Error
	return alerts, err
}
