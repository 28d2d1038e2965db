package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementKind classifies a stock-affecting event.
type MovementKind string

const (
	MovementIn         MovementKind = "in"         // inbound restock: stock += quantity
	MovementOut        MovementKind = "out"        // sale / pick: stock -= quantity
	MovementAdjustment MovementKind = "adjustment" // absolute correction: stock = quantity
	MovementReturn     MovementKind = "return"     // customer return: stock += quantity
)

// Valid reports whether k is one of the four known kinds.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementIn, MovementOut, MovementAdjustment, MovementReturn:
		return true
	}
	return false
}

// StockMovement records one change to a product's stock. Rows are append-only
// and immutable once written — the movement log is the audit trail.
type StockMovement struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID    `gorm:"type:uuid;not null;index"`
	Kind        MovementKind `gorm:"not null"`
	Quantity    int          `gorm:"not null"`
	StockBefore int          `gorm:"not null"`
	StockAfter  int          `gorm:"not null"`
	Reason      string
	// Reference correlates the movement with its origin, e.g. an order id or "PO-<id>".
	Reference  string
	SupplierID *uuid.UUID       `gorm:"type:uuid"`
	UnitCost   *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Notes      string
	CreatedAt  time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TableName overrides GORM's default pluralization.
func (StockMovement) TableName() string { return "stock_movements" }
