package handler

import (
	"net/http"

	"blendstock/internal/apierror"
	"blendstock/internal/dto"
	"blendstock/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrdersHandler exposes order placement and retrieval.
type OrdersHandler struct {
	orders service.OrderService
}

func NewOrdersHandler(orders service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// PlaceOrder commits a customer order.
// POST /v1/orders
// The user id comes from the upstream auth layer via the X-User-ID header;
// this service trusts its gateway.
func (h *OrdersHandler) PlaceOrder(c *gin.Context) {
	userID, err := uuid.Parse(c.GetHeader("X-User-ID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("missing or invalid X-User-ID header"))
		return
	}

	var req dto.PlaceOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}

	summary, err := h.orders.PlaceOrder(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

// ListOrders returns the calling user's order history, newest first.
// GET /v1/orders
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	userID, err := uuid.Parse(c.GetHeader("X-User-ID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("missing or invalid X-User-ID header"))
		return
	}
	orders, err := h.orders.ListUserOrders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders})
}

// GetOrder returns one order with its items.
// GET /v1/orders/:id
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	summary, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
