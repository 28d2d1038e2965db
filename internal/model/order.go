package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a committed customer purchase. Items are created atomically with
// the order and cascade with it; totals are derived at placement time from
// the snapshotted product prices, never recomputed from live prices.
type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Address       string          `gorm:"not null"`
	PaymentMethod string          `gorm:"not null"`
	Status        string          `gorm:"not null;default:'placed'"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalItems    int             `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem is one product line on an order, with the unit price snapshotted
// at placement.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
