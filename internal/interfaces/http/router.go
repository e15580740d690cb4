package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/cart"
	"github.com/jhoicas/tienda-api/internal/application/checkout"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/application/usecase"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	CartUC      *cart.UseCase
	CheckoutUC  *checkout.UseCase
	InventoryUC *inventory.UseCase
	JWTSecret   string
	Log         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	// Logger del componente disponible para los handlers (respondError lo
	// usa para registrar errores no mapeados antes de responder opaco).
	if deps.Log != nil {
		httpLog := deps.Log.Component("http").Zerolog()
		app.Use(func(c *fiber.Ctx) error {
			c.Locals(loggerKey, httpLog)
			return c.Next()
		})
	}

	api := app.Group("/api")

	// Catálogo: lectura pública
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo: escritura admin
	adminProducts := protected.Group("/products", RequireRole(checkout.RoleAdmin))
	adminProducts.Post("/", productHandler.Create)
	adminProducts.Put("/:id", productHandler.Update)

	// Carrito (protegido)
	cartGroup := protected.Group("/cart")
	cartHandler := NewCartHandler(deps.CartUC)
	cartGroup.Get("/", cartHandler.Get)
	cartGroup.Post("/items", cartHandler.AddItem)
	cartGroup.Put("/items/:productId", cartHandler.UpdateItem)
	cartGroup.Delete("/items/:productId", cartHandler.RemoveItem)
	cartGroup.Delete("/", cartHandler.Clear)

	// Pedidos (protegido)
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.CheckoutUC)
	orders.Post("/checkout", orderHandler.Checkout)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.ListMine)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Post("/:id/cancel", orderHandler.Cancel)
	orders.Put("/:id/status", RequireRole(checkout.RoleAdmin), orderHandler.UpdateStatus)
	orders.Put("/:id/payment", RequireRole(checkout.RoleAdmin), orderHandler.UpdatePayment)

	// Libro de inventario (admin)
	inv := protected.Group("/inventory", RequireRole(checkout.RoleAdmin))
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	inv.Post("/transactions", inventoryHandler.CreateTransaction)
	inv.Post("/transactions/bulk", inventoryHandler.BulkCreateTransactions)
	inv.Get("/transactions/:productId", inventoryHandler.History)
	inv.Get("/report", inventoryHandler.Report)
	inv.Get("/reconcile/:productId", inventoryHandler.Reconcile)
}
