package handler

import (
	"net/http"
	"strconv"

	"blendstock/internal/apierror"
	"blendstock/internal/dto"
	"blendstock/internal/model"
	"blendstock/internal/repository"
	"blendstock/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func queryInt(c *gin.Context, key string) int {
	v, _ := strconv.Atoi(c.Query(key))
	return v
}

// InventoryHandler exposes the stock ledger and low-stock alerts.
type InventoryHandler struct {
	ledger   service.StockLedger
	lowStock service.LowStockService
}

func NewInventoryHandler(ledger service.StockLedger, lowStock service.LowStockService) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, lowStock: lowStock}
}

// RecordMovement appends one ledger entry.
// POST /v1/inventory/movements
func (h *InventoryHandler) RecordMovement(c *gin.Context) {
	var req dto.RecordMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}
	params := service.MovementParams{
		ProductID: productID,
		Kind:      model.MovementKind(req.Kind),
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		Reference: req.Reference,
		UnitCost:  req.UnitCost,
		Notes:     req.Notes,
	}
	if req.SupplierID != nil {
		sid, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid supplier id"))
			return
		}
		params.SupplierID = &sid
	}

	movement, err := h.ledger.Record(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, movement)
}

// ListMovements returns the movement history, optionally filtered by product,
// kind, or reference.
// GET /v1/inventory/movements
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	filter := repository.MovementFilter{
		Kind:      model.MovementKind(c.Query("kind")),
		Reference: c.Query("reference"),
		Page:      queryInt(c, "page"),
		Limit:     queryInt(c, "limit"),
	}
	if v := c.Query("product_id"); v != "" {
		pid, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
			return
		}
		filter.ProductID = &pid
	}

	resp, err := h.ledger.History(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetStock serves the cached current-stock view for a product.
// GET /v1/inventory/stock/:id
func (h *InventoryHandler) GetStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	stock, err := h.ledger.CurrentStock(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": id.String(), "stock": stock})
}

// ReconcileStock audits a product's movement chain against its current stock.
// GET /v1/inventory/stock/:id/reconcile
func (h *InventoryHandler) ReconcileStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	report, err := h.ledger.Reconcile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListAlerts returns all open low-stock alerts.
// GET /v1/inventory/alerts
func (h *InventoryHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.lowStock.ListOpen(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// ResolveAlert marks an alert resolved.
// PATCH /v1/inventory/alerts/:id/resolve
func (h *InventoryHandler) ResolveAlert(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ResolveAlertRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.lowStock.Resolve(c.Request.Context(), id, req.ResolvedBy, req.Notes); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
