package model

import (
	"time"

	"github.com/google/uuid"
)

// LowStockAlert flags a product whose stock fell to or below its threshold.
// Invariant: at most one unresolved alert per product — a repeated low-stock
// condition updates the open alert's snapshots instead of creating a second row.
type LowStockAlert struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Threshold    int       `gorm:"not null"` // threshold at detection time
	CurrentStock int       `gorm:"not null"` // stock snapshot at detection time
	Resolved     bool      `gorm:"not null;default:false;index"`
	ResolvedBy   *string
	ResolvedAt   *time.Time
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
