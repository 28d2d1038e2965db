package dto

import "github.com/shopspring/decimal"

type RecordMovementRequest struct {
	ProductID  string           `json:"product_id" binding:"required,uuid"`
	Kind       string           `json:"kind" binding:"required"`
	Quantity   int              `json:"quantity" binding:"required"`
	Reason     string           `json:"reason"`
	Reference  string           `json:"reference"`
	SupplierID *string          `json:"supplier_id"`
	UnitCost   *decimal.Decimal `json:"unit_cost"`
	Notes      string           `json:"notes"`
}

type MovementResponse struct {
	ID          string           `json:"id"`
	ProductID   string           `json:"product_id"`
	Kind        string           `json:"kind"`
	Quantity    int              `json:"quantity"`
	StockBefore int              `json:"stock_before"`
	StockAfter  int              `json:"stock_after"`
	Reason      string           `json:"reason,omitempty"`
	Reference   string           `json:"reference,omitempty"`
	SupplierID  *string          `json:"supplier_id,omitempty"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	CreatedAt   string           `json:"created_at"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type AlertResponse struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"product_id"`
	Product      string  `json:"product,omitempty"`
	Threshold    int     `json:"threshold"`
	CurrentStock int     `json:"current_stock"`
	Resolved     bool    `json:"resolved"`
	ResolvedBy   *string `json:"resolved_by,omitempty"`
	ResolvedAt   *string `json:"resolved_at,omitempty"`
	Notes        string  `json:"notes,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

type ResolveAlertRequest struct {
	ResolvedBy string `json:"resolved_by" binding:"required"`
	Notes      string `json:"notes"`
}

// ReconciliationResponse reports whether a product's movement chain accounts
// for its current stock.
type ReconciliationResponse struct {
	ProductID    string `json:"product_id"`
	CurrentStock int    `json:"current_stock"`
	LedgerStock  int    `json:"ledger_stock"`
	Movements    int    `json:"movements"`
	Consistent   bool   `json:"consistent"`
}
