package repository

import (
	"time"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// TxReportRow fila agregada del reporte de inventario por producto.
type TxReportRow struct {
	ProductID string
	SKU       string
	UnitsIn   int
	UnitsOut  int
	Net       int
}

// InventoryTransactionRepository define el puerto del libro de inventario.
// Solo inserta y lee: las entradas nunca se actualizan ni se borran.
type InventoryTransactionRepository interface {
	Create(tx *entity.InventoryTransaction) error
	GetByID(id string) (*entity.InventoryTransaction, error)
	ListByProduct(productID, txType string, from, to *time.Time, limit, offset int) ([]*entity.InventoryTransaction, error)
	// SumByProduct suma los deltas con signo del producto (para conciliación con stock_qty).
	SumByProduct(productID string) (int, error)
	Report(from, to *time.Time) ([]TxReportRow, error)
}
