package dto

import "github.com/shopspring/decimal"

type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type PlaceOrderRequest struct {
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Address       string             `json:"address" binding:"required"`
	PaymentMethod string             `json:"payment_method" binding:"required"`
}

type OrderItemResponse struct {
	ProductID string          `json:"product_id"`
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderSummary is returned by order placement. Totals are derived from the
// line items at placement time.
type OrderSummary struct {
	ID            string              `json:"id"`
	UserID        string              `json:"user_id"`
	Status        string              `json:"status"`
	Address       string              `json:"address"`
	PaymentMethod string              `json:"payment_method"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	TotalItems    int                 `json:"total_items"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     string              `json:"created_at"`
}
