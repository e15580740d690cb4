// Package inventory implementa el libro de transacciones de inventario:
// registro individual y por lote (todo-o-nada), historial, reporte y
// conciliación contra el contador vivo de stock.
package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// UseCase casos de uso del libro de inventario.
type UseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	txnRepo     repository.InventoryTransactionRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	txnRepo repository.InventoryTransactionRepository,
) *UseCase {
	return &UseCase{txRunner: txRunner, productRepo: productRepo, txnRepo: txnRepo}
}

// CreateTransaction registra una entrada del libro aplicando su delta al
// stock del producto en la misma transacción. Deltas negativos usan el
// decremento condicional: el stock nunca queda por debajo de cero.
func (uc *UseCase) CreateTransaction(ctx context.Context, actorID string, in dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	txn := fromRequest(actorID, in, time.Now())
	if err := txn.Validate(); err != nil {
		return nil, err
	}
	product, err := uc.productRepo.GetByID(txn.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	err = uc.txRunner.RunInventory(ctx, func(
		productRepo repository.ProductRepository,
		txnRepo repository.InventoryTransactionRepository,
	) error {
		return applyInTx(productRepo, txnRepo, txn)
	})
	if err != nil {
		return nil, err
	}
	return toResponse(txn), nil
}

// BulkCreateTransactions registra un lote con tipo y razón compartidos.
// Todo-o-nada: se valida cada línea antes de persistir nada y antes de tocar
// stock; una línea inválida (o sin stock suficiente) aborta el lote completo.
func (uc *UseCase) BulkCreateTransactions(ctx context.Context, actorID string, in dto.BulkCreateTransactionsRequest) ([]*dto.TransactionResponse, error) {
	if len(in.Entries) == 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	txns := make([]*entity.InventoryTransaction, 0, len(in.Entries))
	for _, e := range in.Entries {
		txn := &entity.InventoryTransaction{
			ID:        uuid.New().String(),
			ProductID: e.ProductID,
			Type:      in.Type,
			Quantity:  e.Quantity,
			Reason:    in.Reason,
			Cost:      e.Cost,
			CreatedBy: actorID,
			CreatedAt: now,
		}
		// Validación completa ANTES de abrir la transacción: ninguna
		// mutación de stock ocurre si cualquier línea es inválida.
		if err := txn.Validate(); err != nil {
			return nil, err
		}
		product, err := uc.productRepo.GetByID(e.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		txns = append(txns, txn)
	}

	err := uc.txRunner.RunInventory(ctx, func(
		productRepo repository.ProductRepository,
		txnRepo repository.InventoryTransactionRepository,
	) error {
		for _, txn := range txns {
			if err := applyInTx(productRepo, txnRepo, txn); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]*dto.TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		out = append(out, toResponse(txn))
	}
	return out, nil
}

// applyInTx aplica el delta con signo al contador y persiste la entrada,
// dentro de la transacción del caller.
func applyInTx(
	productRepo repository.ProductRepository,
	txnRepo repository.InventoryTransactionRepository,
	txn *entity.InventoryTransaction,
) error {
	if txn.Quantity > 0 {
		if err := productRepo.IncrementStock(txn.ProductID, txn.Quantity); err != nil {
			return err
		}
	} else {
		qty := -txn.Quantity
		ok, err := productRepo.DecrementStockIfAvailable(txn.ProductID, qty)
		if err != nil {
			return err
		}
		if !ok {
			available, err := productRepo.GetStockQty(txn.ProductID)
			if err != nil {
				return err
			}
			return &domain.InsufficientStockError{ProductID: txn.ProductID, Requested: qty, Available: available}
		}
	}
	return txnRepo.Create(txn)
}

// History lista el historial de un producto con filtros de tipo y fechas.
func (uc *UseCase) History(ctx context.Context, productID, txType string, from, to *time.Time, page dto.PageRequest) ([]*dto.TransactionResponse, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	if txType != "" && !entity.ValidTxType(txType) {
		return nil, domain.ErrInvalidInput
	}
	page.DefaultPage()
	list, err := uc.txnRepo.ListByProduct(productID, txType, from, to, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.TransactionResponse, 0, len(list))
	for _, txn := range list {
		out = append(out, toResponse(txn))
	}
	return out, nil
}

// Report agrega entradas y salidas por producto en el rango dado.
func (uc *UseCase) Report(ctx context.Context, from, to *time.Time) ([]dto.ReportRowResponse, error) {
	rows, err := uc.txnRepo.Report(from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReportRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ReportRowResponse{
			ProductID: r.ProductID,
			SKU:       r.SKU,
			UnitsIn:   r.UnitsIn,
			UnitsOut:  r.UnitsOut,
			Net:       r.Net,
		})
	}
	return out, nil
}

// Reconcile compara el contador vivo contra la suma con signo del libro.
// Si toda mutación pasó por el libro (y el producto nació con stock 0),
// el drift es cero; cualquier otro valor es una alarma de auditoría.
func (uc *UseCase) Reconcile(ctx context.Context, productID string) (*dto.ReconciliationResponse, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	sum, err := uc.txnRepo.SumByProduct(productID)
	if err != nil {
		return nil, err
	}
	return &dto.ReconciliationResponse{
		ProductID: productID,
		StockQty:  product.StockQty,
		LedgerSum: sum,
		Drift:     product.StockQty - sum,
	}, nil
}

func fromRequest(actorID string, in dto.CreateTransactionRequest, now time.Time) *entity.InventoryTransaction {
	return &entity.InventoryTransaction{
		ID:          uuid.New().String(),
		ProductID:   in.ProductID,
		Type:        in.Type,
		Quantity:    in.Quantity,
		Reason:      in.Reason,
		Cost:        in.Cost,
		Supplier:    in.Supplier,
		BatchNumber: in.BatchNumber,
		ExpiresAt:   in.ExpiresAt,
		CreatedBy:   actorID,
		CreatedAt:   now,
	}
}

func toResponse(t *entity.InventoryTransaction) *dto.TransactionResponse {
	return &dto.TransactionResponse{
		ID:          t.ID,
		ProductID:   t.ProductID,
		Type:        t.Type,
		Quantity:    t.Quantity,
		Reason:      t.Reason,
		Reference:   t.Reference,
		Cost:        t.Cost,
		Supplier:    t.Supplier,
		BatchNumber: t.BatchNumber,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
	}
}
