package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de la tienda.
// StockQty solo se muta vía operaciones de stock (reserva/liberación/movimientos);
// nunca por asignación directa desde una lectura previa.
type Product struct {
	ID          string
	SKU         string // código único del producto
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta actual
	StockQty    int             // unidades disponibles, siempre >= 0
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
