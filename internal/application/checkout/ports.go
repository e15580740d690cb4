package checkout

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que reservas de stock, pedido,
// entradas del libro y vaciado del carrito se confirmen o reviertan juntos
// (todo-o-nada; ante fallo parcial se hace rollback, no compensación).
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		cartRepo repository.CartRepository,
		orderRepo repository.OrderRepository,
		txnRepo repository.InventoryTransactionRepository,
	) error) error
}
