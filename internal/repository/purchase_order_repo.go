package repository

import (
	"context"

	"blendstock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// POFilter defines filters for listing purchase orders.
type POFilter struct {
	SupplierID *uuid.UUID
	Status     model.POStatus
	Page       int
	Limit      int
}

type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *model.PurchaseOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	List(ctx context.Context, filter POFilter) ([]model.PurchaseOrder, int64, error)

	// FindByIDForUpdateTx locks the purchase order row and loads its items,
	// serializing concurrent receive/status attempts against the same PO.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error)
	SaveTx(tx *gorm.DB, po *model.PurchaseOrder) error
	SaveItemTx(tx *gorm.DB, item *model.PurchaseOrderItem) error

	// HasOpenForProduct reports whether any draft or sent purchase order
	// already contains the product. Used to suppress duplicate reorders.
	HasOpenForProduct(ctx context.Context, productID uuid.UUID) (bool, error)

	DB() *gorm.DB
}

type purchaseOrderRepo struct{ db *gorm.DB }

func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepo{db: db}
}

func (r *purchaseOrderRepo) Create(ctx context.Context, po *model.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

func (r *purchaseOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Items.Product").Preload("Supplier").
		First(&po, id).Error
	return &po, err
}

func (r *purchaseOrderRepo) List(ctx context.Context, filter POFilter) ([]model.PurchaseOrder, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.PurchaseOrder{}).Preload("Items")
	if filter.SupplierID != nil {
		q = q.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit

	var pos []model.PurchaseOrder
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&pos).Error
	return pos, total, err
}

func (r *purchaseOrderRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&po, id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("purchase_order_id = ?", id).Find(&po.Items).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *purchaseOrderRepo) SaveTx(tx *gorm.DB, po *model.PurchaseOrder) error {
	return tx.Omit("Items").Save(po).Error
}

func (r *purchaseOrderRepo) SaveItemTx(tx *gorm.DB, item *model.PurchaseOrderItem) error {
	return tx.Save(item).Error
}

func (r *purchaseOrderRepo) HasOpenForProduct(ctx context.Context, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PurchaseOrderItem{}).
		Joins("JOIN purchase_orders ON purchase_orders.id = purchase_order_items.purchase_order_id").
		Where("purchase_order_items.product_id = ? AND purchase_orders.status IN ?",
			productID, []model.POStatus{model.PODraft, model.POSent}).
		Count(&count).Error
	return count > 0, err
}

func (r *purchaseOrderRepo) DB() *gorm.DB { return r.db }
