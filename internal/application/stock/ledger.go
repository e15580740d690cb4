// Package stock implementa la reserva y liberación atómica de stock.
// Cada mutación del contador escribe su entrada en el libro de inventario
// dentro de la misma transacción: contador y libro no pueden divergir.
package stock

import (
	"time"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// Ledger primitivas de stock para usar dentro de la transacción del caller
// (los repos recibidos deben estar atados a esa tx).
type Ledger struct{}

// NewLedger construye el servicio.
func NewLedger() *Ledger {
	return &Ledger{}
}

// ReserveInTx decrementa stock_qty de forma condicional y atómica
// ("restar qty solo si stock_qty >= qty", una sola operación de storage;
// nunca read-check-then-write) y registra la salida tipo sale en el libro.
// Si no hay stock suficiente devuelve InsufficientStockError con la
// disponibilidad actual y el caller hace rollback.
func (l *Ledger) ReserveInTx(
	productRepo repository.ProductRepository,
	txnRepo repository.InventoryTransactionRepository,
	productID string,
	qty int,
	reference, actorID string,
	now time.Time,
) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	ok, err := productRepo.DecrementStockIfAvailable(productID, qty)
	if err != nil {
		return err
	}
	if !ok {
		available, err := productRepo.GetStockQty(productID)
		if err != nil {
			return err
		}
		return &domain.InsufficientStockError{ProductID: productID, Requested: qty, Available: available}
	}
	return txnRepo.Create(&entity.InventoryTransaction{
		ProductID: productID,
		Type:      entity.TxTypeSale,
		Quantity:  -qty,
		Reason:    "reserva de stock por checkout",
		Reference: reference,
		CreatedBy: actorID,
		CreatedAt: now,
	})
}

// ReleaseInTx devuelve qty unidades al pool (incremento atómico simple,
// sin riesgo de underflow) y registra la entrada tipo return en el libro.
func (l *Ledger) ReleaseInTx(
	productRepo repository.ProductRepository,
	txnRepo repository.InventoryTransactionRepository,
	productID string,
	qty int,
	reference, actorID string,
	now time.Time,
) error {
	if qty <= 0 {
		return domain.ErrInvalidInput
	}
	if err := productRepo.IncrementStock(productID, qty); err != nil {
		return err
	}
	return txnRepo.Create(&entity.InventoryTransaction{
		ProductID: productID,
		Type:      entity.TxTypeReturn,
		Quantity:  qty,
		Reason:    "liberación de stock por cancelación",
		Reference: reference,
		CreatedBy: actorID,
		CreatedAt: now,
	})
}
