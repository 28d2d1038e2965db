package dto

import "github.com/shopspring/decimal"

// Products are created with zero stock: stock only ever changes through the
// ledger, so an opening balance is booked as a movement after creation.
type CreateProductRequest struct {
	SKU        string          `json:"sku" binding:"required"`
	Name       string          `json:"name" binding:"required"`
	Category   string          `json:"category" binding:"required"`
	Price      decimal.Decimal `json:"price" binding:"required"`
	Cost       decimal.Decimal `json:"cost" binding:"required"`
	MinStock   *int            `json:"min_stock"`
	SupplierID *string         `json:"supplier_id"`
}

// UpdateProductRequest applies a partial update. Stock is deliberately
// absent — it is not writable here.
type UpdateProductRequest struct {
	Name       *string          `json:"name"`
	Category   *string          `json:"category"`
	Price      *decimal.Decimal `json:"price"`
	Cost       *decimal.Decimal `json:"cost"`
	MinStock   *int             `json:"min_stock"`
	Available  *bool            `json:"available"`
	SupplierID *string          `json:"supplier_id"`
}

type ProductResponse struct {
	ID         string          `json:"id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Price      decimal.Decimal `json:"price"`
	Cost       decimal.Decimal `json:"cost"`
	Stock      int             `json:"stock"`
	MinStock   int             `json:"min_stock"`
	Available  bool            `json:"available"`
	SupplierID *string         `json:"supplier_id,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

type CreateSupplierRequest struct {
	Name         string  `json:"name" binding:"required"`
	TaxID        string  `json:"tax_id" binding:"required"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	Address      *string `json:"address"`
	PaymentTerms *string `json:"payment_terms"`
}

type UpdateSupplierRequest struct {
	Name         *string `json:"name"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	Address      *string `json:"address"`
	PaymentTerms *string `json:"payment_terms"`
	Active       *bool   `json:"active"`
}

type SupplierResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	TaxID        string  `json:"tax_id"`
	Phone        *string `json:"phone,omitempty"`
	Email        *string `json:"email,omitempty"`
	Address      *string `json:"address,omitempty"`
	PaymentTerms *string `json:"payment_terms,omitempty"`
	Active       bool    `json:"active"`
	CreatedAt    string  `json:"created_at"`
}
