package repository

import (
	"context"

	"blendstock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory stubs.
//
// Stock writes only exist in their Tx variants: every stock mutation happens
// inside a transaction owned by the stock ledger.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindAvailable(ctx context.Context) ([]model.Product, error)
	// FindDepleted returns available products with stock <= max, for the
	// replenishment sweep.
	FindDepleted(ctx context.Context, max int) ([]model.Product, error)
	Update(ctx context.Context, p *model.Product) error

	// FindByIDForUpdateTx locks the product row (SELECT ... FOR UPDATE) for
	// the remainder of the transaction.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	// DecrementStockTx atomically decrements stock, guarded so the value can
	// never go negative. Returns the new stock, or gorm.ErrRecordNotFound
	// when the guard rejects the write (missing row or insufficient stock).
	DecrementStockTx(tx *gorm.DB, id uuid.UUID, qty int) (int, error)
	// IncrementStockTx atomically increments stock and returns the new value.
	IncrementStockTx(tx *gorm.DB, id uuid.UUID, qty int) (int, error)
	// SetStockTx writes an absolute stock value. Callers must hold the row
	// lock via FindByIDForUpdateTx.
	SetStockTx(tx *gorm.DB, id uuid.UUID, stock int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productRepo) FindAvailable(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Where("available = true").Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindDepleted(ctx context.Context, max int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("available = true AND stock <= ?", max).
		Order("stock ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error
	return &p, err
}

func (r *productRepo) DecrementStockTx(tx *gorm.DB, id uuid.UUID, qty int) (int, error) {
	// Conditional UPDATE — the stock >= qty guard and the write are one
	// statement, so two concurrent decrements can never jointly oversell.
	var newStock int
	res := tx.Raw(
		`UPDATE products SET stock = stock - ?, updated_at = NOW()
		 WHERE id = ? AND stock >= ? RETURNING stock`,
		qty, id, qty,
	).Scan(&newStock)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return newStock, nil
}

func (r *productRepo) IncrementStockTx(tx *gorm.DB, id uuid.UUID, qty int) (int, error) {
	var newStock int
	res := tx.Raw(
		`UPDATE products SET stock = stock + ?, updated_at = NOW()
		 WHERE id = ? RETURNING stock`,
		qty, id,
	).Scan(&newStock)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return newStock, nil
}

func (r *productRepo) SetStockTx(tx *gorm.DB, id uuid.UUID, stock int) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).
		Update("stock", stock).Error
}

func (r *productRepo) DB() *gorm.DB { return r.db }
