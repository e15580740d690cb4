package inventory

import (
	"context"

	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando los
// repositorios de producto y libro atados a esa tx. Garantiza que el delta
// sobre stock_qty y la entrada del libro se confirmen o reviertan juntos.
type TxRunner interface {
	RunInventory(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		txnRepo repository.InventoryTransactionRepository,
	) error) error
}
