package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// POStatus is the closed set of purchase-order states.
type POStatus string

const (
	PODraft     POStatus = "draft"
	POSent      POStatus = "sent"
	POConfirmed POStatus = "confirmed"
	POReceived  POStatus = "received"
	POCancelled POStatus = "cancelled"
)

// poTransitions is the legal forward-only transition table. "received" is
// deliberately absent from every row: it is reachable only through the
// receive flow, never by a direct status write.
var poTransitions = map[POStatus][]POStatus{
	PODraft:     {POSent, POCancelled},
	POSent:      {POConfirmed, POCancelled},
	POConfirmed: {POCancelled},
}

// CanTransition reports whether a direct status change from s to next is legal.
func (s POStatus) CanTransition(next POStatus) bool {
	for _, allowed := range poTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions exist from s.
func (s POStatus) Terminal() bool { return s == POReceived || s == POCancelled }

// PurchaseOrder is a restocking request against a supplier. It exclusively
// owns its items; TotalAmount is fixed at creation (Σ quantity × unit cost).
type PurchaseOrder struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SupplierID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status               POStatus        `gorm:"not null;default:'draft';index"`
	TotalAmount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notes                string
	ExpectedDeliveryDate *time.Time
	ActualDeliveryDate   *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Supplier *Supplier           `gorm:"foreignKey:SupplierID"`
	Items    []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`
}

// PurchaseOrderItem is one product line on a purchase order.
type PurchaseOrderItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderedQuantity  int             `gorm:"not null"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ReceivedQuantity int             `gorm:"not null;default:0"`
	ReceivedAt       *time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
