package service

import (
	"context"
	"errors"
	"time"

	"blendstock/internal/apierror"
	"blendstock/internal/dto"
	"blendstock/internal/model"
	"blendstock/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogService maintains the product and supplier records the other
// services operate on. It never touches Product.Stock — opening balances and
// corrections go through the stock ledger.
type CatalogService interface {
	CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	ListProducts(ctx context.Context) ([]dto.ProductResponse, error)

	CreateSupplier(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	UpdateSupplier(ctx context.Context, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error)
	ListSuppliers(ctx context.Context) ([]dto.SupplierResponse, error)
}

type catalogService struct {
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
}

func NewCatalogService(
	products repository.ProductRepository,
	suppliers repository.SupplierRepository,
) CatalogService {
	return &catalogService{products: products, suppliers: suppliers}
}

func (s *catalogService) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	p := model.Product{
		SKU:       req.SKU,
		Name:      req.Name,
		Category:  req.Category,
		Price:     req.Price,
		Cost:      req.Cost,
		MinStock:  5,
		Available: true,
	}
	if req.MinStock != nil {
		if *req.MinStock < 0 {
			return nil, apierror.Validation("min_stock cannot be negative")
		}
		p.MinStock = *req.MinStock
	}
	if req.SupplierID != nil {
		sid, err := s.resolveSupplier(ctx, *req.SupplierID)
		if err != nil {
			return nil, err
		}
		p.SupplierID = &sid
	}

	if err := s.products.Create(ctx, &p); err != nil {
		return nil, err
	}
	return productToResponse(&p), nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("product %s not found", id)
		}
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Cost != nil {
		p.Cost = *req.Cost
	}
	if req.MinStock != nil {
		if *req.MinStock < 0 {
			return nil, apierror.Validation("min_stock cannot be negative")
		}
		p.MinStock = *req.MinStock
	}
	if req.Available != nil {
		p.Available = *req.Available
	}
	if req.SupplierID != nil {
		sid, err := s.resolveSupplier(ctx, *req.SupplierID)
		if err != nil {
			return nil, err
		}
		p.SupplierID = &sid
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.products.FindAvailable(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *productToResponse(&products[i]))
	}
	return out, nil
}

func (s *catalogService) CreateSupplier(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	sup := model.Supplier{
		Name:         req.Name,
		TaxID:        req.TaxID,
		Phone:        req.Phone,
		Email:        req.Email,
		Address:      req.Address,
		PaymentTerms: req.PaymentTerms,
		Active:       true,
	}
	if err := s.suppliers.Create(ctx, &sup); err != nil {
		return nil, err
	}
	return supplierToResponse(&sup), nil
}

func (s *catalogService) UpdateSupplier(ctx context.Context, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	sup, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("supplier %s not found", id)
		}
		return nil, err
	}

	if req.Name != nil {
		sup.Name = *req.Name
	}
	if req.Phone != nil {
		sup.Phone = req.Phone
	}
	if req.Email != nil {
		sup.Email = req.Email
	}
	if req.Address != nil {
		sup.Address = req.Address
	}
	if req.PaymentTerms != nil {
		sup.PaymentTerms = req.PaymentTerms
	}
	if req.Active != nil {
		sup.Active = *req.Active
	}

	if err := s.suppliers.Update(ctx, sup); err != nil {
		return nil, err
	}
	return supplierToResponse(sup), nil
}

func (s *catalogService) ListSuppliers(ctx context.Context) ([]dto.SupplierResponse, error) {
	suppliers, err := s.suppliers.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		out = append(out, *supplierToResponse(&suppliers[i]))
	}
	return out, nil
}

// resolveSupplier validates a supplier assignment: it must exist and be active.
func (s *catalogService) resolveSupplier(ctx context.Context, raw string) (uuid.UUID, error) {
	sid, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apierror.Validation("invalid supplier id %q", raw)
	}
	sup, err := s.suppliers.FindByID(ctx, sid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, apierror.NotFound("supplier %s not found", raw)
		}
		return uuid.Nil, err
	}
	if !sup.Active {
		return uuid.Nil, apierror.Conflict("supplier %s is inactive", sup.Name)
	}
	return sid, nil
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:        p.ID.String(),
		SKU:       p.SKU,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price,
		Cost:      p.Cost,
		Stock:     p.Stock,
		MinStock:  p.MinStock,
		Available: p.Available,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
	if p.SupplierID != nil {
		sid := p.SupplierID.String()
		resp.SupplierID = &sid
	}
	return resp
}

func supplierToResponse(s *model.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:           s.ID.String(),
		Name:         s.Name,
		TaxID:        s.TaxID,
		Phone:        s.Phone,
		Email:        s.Email,
		Address:      s.Address,
		PaymentTerms: s.PaymentTerms,
		Active:       s.Active,
		CreatedAt:    s.CreatedAt.Format(time.RFC3339),
	}
}
