package dto

import "github.com/shopspring/decimal"

type POItemRequest struct {
	ProductID string          `json:"product_id" binding:"required,uuid"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	UnitCost  decimal.Decimal `json:"unit_cost" binding:"required"`
}

type CreatePORequest struct {
	SupplierID           string          `json:"supplier_id" binding:"required,uuid"`
	Items                []POItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes                string          `json:"notes"`
	ExpectedDeliveryDate *string         `json:"expected_delivery_date"` // RFC 3339
}

type SetPOStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type POItemResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	Product          string          `json:"product,omitempty"`
	OrderedQuantity  int             `json:"ordered_quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	ReceivedQuantity int             `json:"received_quantity"`
	ReceivedAt       *string         `json:"received_at,omitempty"`
}

type POResponse struct {
	ID                   string           `json:"id"`
	SupplierID           string           `json:"supplier_id"`
	Status               string           `json:"status"`
	TotalAmount          decimal.Decimal  `json:"total_amount"`
	Notes                string           `json:"notes,omitempty"`
	ExpectedDeliveryDate *string          `json:"expected_delivery_date,omitempty"`
	ActualDeliveryDate   *string          `json:"actual_delivery_date,omitempty"`
	Items                []POItemResponse `json:"items"`
	CreatedAt            string           `json:"created_at"`
}
