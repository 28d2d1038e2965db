package handler

import (
	"net/http"

	"blendstock/internal/apierror"
	"blendstock/internal/dto"
	"blendstock/internal/model"
	"blendstock/internal/repository"
	"blendstock/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PurchaseOrdersHandler exposes the restocking workflow.
type PurchaseOrdersHandler struct {
	workflow service.PurchaseOrderService
}

func NewPurchaseOrdersHandler(workflow service.PurchaseOrderService) *PurchaseOrdersHandler {
	return &PurchaseOrdersHandler{workflow: workflow}
}

// Create opens a draft purchase order.
// POST /v1/purchase-orders
func (h *PurchaseOrdersHandler) Create(c *gin.Context) {
	var req dto.CreatePORequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.workflow.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get returns one purchase order with its items.
// GET /v1/purchase-orders/:id
func (h *PurchaseOrdersHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.workflow.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List returns purchase orders filtered by supplier and status.
// GET /v1/purchase-orders
func (h *PurchaseOrdersHandler) List(c *gin.Context) {
	filter := repository.POFilter{
		Status: model.POStatus(c.Query("status")),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	}
	if v := c.Query("supplier_id"); v != "" {
		sid, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid supplier id"))
			return
		}
		filter.SupplierID = &sid
	}

	pos, total, err := h.workflow.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": pos, "total": total})
}

// SetStatus applies a direct forward transition (sent, confirmed, cancelled).
// PATCH /v1/purchase-orders/:id/status
func (h *PurchaseOrdersHandler) SetStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.SetPOStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.workflow.SetStatus(c.Request.Context(), id, model.POStatus(req.Status)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Receive books a confirmed purchase order into stock.
// POST /v1/purchase-orders/:id/receive
func (h *PurchaseOrdersHandler) Receive(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.workflow.Receive(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
