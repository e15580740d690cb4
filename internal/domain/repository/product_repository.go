package repository

import "github.com/jhoicas/tienda-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (DIP).
// Las mutaciones de stock son primitivas atómicas propias: nunca se escribe
// StockQty desde una lectura previa.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	Update(product *entity.Product) error
	List(onlyActive bool, limit, offset int) ([]*entity.Product, error)

	// DecrementStockIfAvailable ejecuta el decremento condicional atómico:
	// "stock_qty = stock_qty - qty solo si stock_qty >= qty" en una sola
	// operación de storage. Devuelve false si no había stock suficiente.
	DecrementStockIfAvailable(productID string, qty int) (bool, error)
	// IncrementStock incremento atómico simple (liberación/entrada; sin riesgo de underflow).
	IncrementStock(productID string, qty int) error
	// GetStockQty lee la disponibilidad actual (para informar en errores).
	GetStockQty(productID string) (int, error)
}
