package router

import (
	"blendstock/internal/config"
	"blendstock/internal/handler"
	"blendstock/internal/middleware"
	"blendstock/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps carries the wired services into the HTTP layer. Construction happens
// in the composition root (cmd/server) so the scheduler and worker pool share
// the same instances.
type Deps struct {
	Ledger         service.StockLedger
	Orders         service.OrderService
	LowStock       service.LowStockService
	PurchaseOrders service.PurchaseOrderService
	Catalog        service.CatalogService
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())

	inventoryH := handler.NewInventoryHandler(deps.Ledger, deps.LowStock)
	ordersH := handler.NewOrdersHandler(deps.Orders)
	purchaseOrdersH := handler.NewPurchaseOrdersHandler(deps.PurchaseOrders)
	catalogH := handler.NewCatalogHandler(deps.Catalog)

	r.GET("/health", handler.Health(db, rdb))

	v1 := r.Group("/v1")
	{
		v1.POST("/orders", ordersH.PlaceOrder)
		v1.GET("/orders", ordersH.ListOrders)
		v1.GET("/orders/:id", ordersH.GetOrder)

		v1.POST("/products", catalogH.CreateProduct)
		v1.GET("/products", catalogH.ListProducts)
		v1.PATCH("/products/:id", catalogH.UpdateProduct)

		v1.POST("/suppliers", catalogH.CreateSupplier)
		v1.GET("/suppliers", catalogH.ListSuppliers)
		v1.PATCH("/suppliers/:id", catalogH.UpdateSupplier)

		inv := v1.Group("/inventory")
		{
			inv.POST("/movements", inventoryH.RecordMovement)
			inv.GET("/movements", inventoryH.ListMovements)
			inv.GET("/stock/:id", inventoryH.GetStock)
			inv.GET("/stock/:id/reconcile", inventoryH.ReconcileStock)
			inv.GET("/alerts", inventoryH.ListAlerts)
			inv.PATCH("/alerts/:id/resolve", inventoryH.ResolveAlert)
		}

		po := v1.Group("/purchase-orders")
		{
			po.POST("", purchaseOrdersH.Create)
			po.GET("", purchaseOrdersH.List)
			po.GET("/:id", purchaseOrdersH.Get)
			po.PATCH("/:id/status", purchaseOrdersH.SetStatus)
			po.POST("/:id/receive", purchaseOrdersH.Receive)
		}
	}

	return r
}
