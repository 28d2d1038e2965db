package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog entity whose Stock field is the critical shared value.
// Stock is mutated exclusively through the stock ledger service — no handler,
// repository caller, or job may write it directly.
type Product struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SKU      string          `gorm:"uniqueIndex;not null"`
	Name     string          `gorm:"index;not null"`
	Category string          `gorm:"not null"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Cost     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock    int             `gorm:"not null;default:0"` // invariant: >= 0
	// MinStock is the per-product low-stock threshold used by the monitor sweep.
	MinStock   int        `gorm:"not null;default:5"`
	Available  bool       `gorm:"not null;default:true"`
	SupplierID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}
