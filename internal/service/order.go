package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"blendstock/internal/apierror"
	"blendstock/internal/dto"
	"blendstock/internal/model"
	"blendstock/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService commits customer orders against the stock ledger.
type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, req dto.PlaceOrderRequest) (*dto.OrderSummary, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*dto.OrderSummary, error)
	// ListUserOrders returns the user's order history, newest first.
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]dto.OrderSummary, error)
}

type orderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	ledger   StockLedger
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	ledger StockLedger,
) OrderService {
	return &orderService{orders: orders, products: products, ledger: ledger}
}

// PlaceOrder validates and commits an order as one atomic unit:
//  1. Pre-flight (outside tx): resolve each product, reject unknown,
//     unavailable, or under-stocked items, snapshot prices.
//  2. One transaction: decrement every item through the ledger, then persist
//     the order with its items. Any failure rolls back every decrement — no
//     partial effect is ever visible to other readers.
//  3. After commit: invalidate the cached views of every touched product.
func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req dto.PlaceOrderRequest) (*dto.OrderSummary, error) {
	if len(req.Items) == 0 {
		return nil, apierror.Validation("order must contain at least one item")
	}

	type resolvedItem struct {
		productID uuid.UUID
		name      string
		price     decimal.Decimal
		quantity  int
	}

	resolved := make([]resolvedItem, 0, len(req.Items))
	seen := make(map[uuid.UUID]bool, len(req.Items))
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, apierror.Validation("invalid product id %q", item.ProductID)
		}
		if item.Quantity <= 0 {
			return nil, apierror.Validation("quantity must be positive for product %s", item.ProductID)
		}
		if seen[pid] {
			return nil, apierror.Validation("duplicate product %s in order", item.ProductID)
		}
		seen[pid] = true

		p, err := s.products.FindByID(ctx, pid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierror.NotFound("product %s not found", item.ProductID)
			}
			return nil, err
		}
		if !p.Available {
			return nil, apierror.Conflict("product %s is not available", p.Name)
		}
		if p.Stock < item.Quantity {
			return nil, apierror.Conflict("insufficient stock for product %s", p.Name)
		}
		resolved = append(resolved, resolvedItem{
			productID: pid,
			name:      p.Name,
			price:     p.Price,
			quantity:  item.Quantity,
		})
	}

	// Stable lock order so two concurrent orders over the same products
	// cannot deadlock on their row locks.
	sort.Slice(resolved, func(i, j int) bool {
		return resolved[i].productID.String() < resolved[j].productID.String()
	})

	orderID := uuid.New()
	total := decimal.Zero
	totalItems := 0
	order := model.Order{
		ID:            orderID,
		UserID:        userID,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		Status:        "placed",
	}

	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		for _, r := range resolved {
			// The ledger re-checks under the row lock; the pre-flight stock
			// value may be stale by now. A failure here rolls back every
			// decrement already applied for this order.
			_, err := s.ledger.RecordTx(ctx, tx, MovementParams{
				ProductID: r.productID,
				Kind:      model.MovementOut,
				Quantity:  r.quantity,
				Reason:    "order placed",
				Reference: orderID.String(),
			})
			if err != nil {
				if apierror.IsInvalidState(err) {
					return apierror.Conflict("insufficient stock for product %s", r.name)
				}
				return err
			}

			lineTotal := r.price.Mul(decimal.NewFromInt(int64(r.quantity)))
			total = total.Add(lineTotal)
			totalItems += r.quantity
			order.Items = append(order.Items, model.OrderItem{
				ProductID: r.productID,
				Quantity:  r.quantity,
				UnitPrice: r.price,
			})
		}

		order.TotalAmount = total
		order.TotalItems = totalItems
		return s.orders.CreateTx(tx, &order)
	})
	if txErr != nil {
		return nil, txErr
	}

	touched := make([]uuid.UUID, 0, len(resolved))
	for _, r := range resolved {
		touched = append(touched, r.productID)
	}
	s.ledger.InvalidateProduct(ctx, touched...)

	summary := orderToSummary(&order)
	for i, r := range resolved {
		summary.Items[i].Product = r.name
	}
	return summary, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*dto.OrderSummary, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("order %s not found", id)
		}
		return nil, err
	}
	summary := orderToSummary(order)
	for i, item := range order.Items {
		if item.Product != nil {
			summary.Items[i].Product = item.Product.Name
		}
	}
	return summary, nil
}

func (s *orderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]dto.OrderSummary, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderSummary, 0, len(orders))
	for i := range orders {
		summary := orderToSummary(&orders[i])
		for j, item := range orders[i].Items {
			if item.Product != nil {
				summary.Items[j].Product = item.Product.Name
			}
		}
		out = append(out, *summary)
	}
	return out, nil
}

func orderToSummary(o *model.Order) *dto.OrderSummary {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return &dto.OrderSummary{
		ID:            o.ID.String(),
		UserID:        o.UserID.String(),
		Status:        o.Status,
		Address:       o.Address,
		PaymentMethod: o.PaymentMethod,
		TotalAmount:   o.TotalAmount,
		TotalItems:    o.TotalItems,
		Items:         items,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}
}
