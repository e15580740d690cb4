package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.InventoryTransactionRepository = (*InventoryTransactionRepo)(nil)

// InventoryTransactionRepo implementación del libro de inventario sobre
// PostgreSQL (usable con pool o tx). Solo INSERT y SELECT: el libro es
// append-only por contrato.
type InventoryTransactionRepo struct {
	q Querier
}

// NewInventoryTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryTransactionRepository(q Querier) *InventoryTransactionRepo {
	return &InventoryTransactionRepo{q: q}
}

const txnColumns = `id, product_id, type, quantity, reason, reference, cost,
		supplier, batch_number, expires_at, created_by, created_at`

// Create persiste una entrada del libro.
func (r *InventoryTransactionRepo) Create(txn *entity.InventoryTransaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_transactions (` + txnColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		txn.ID, txn.ProductID, txn.Type, txn.Quantity, txn.Reason,
		nullIfEmpty(txn.Reference), txn.Cost, nullIfEmpty(txn.Supplier),
		nullIfEmpty(txn.BatchNumber), txn.ExpiresAt, nullIfEmpty(txn.CreatedBy), txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inventory transaction: %w", err)
	}
	return nil
}

// GetByID obtiene una entrada por ID.
func (r *InventoryTransactionRepo) GetByID(id string) (*entity.InventoryTransaction, error) {
	query := `SELECT ` + txnColumns + ` FROM inventory_transactions WHERE id = $1`
	t, err := scanTxn(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, fmt.Errorf("get inventory transaction: %w", err)
	}
	return t, nil
}

// ListByProduct historial de un producto con filtros de tipo y fechas
// (índice product_id+created_at), más reciente primero.
func (r *InventoryTransactionRepo) ListByProduct(productID, txType string, from, to *time.Time, limit, offset int) ([]*entity.InventoryTransaction, error) {
	query := `SELECT ` + txnColumns + ` FROM inventory_transactions WHERE product_id = $1`
	args := []any{productID}
	pos := 2
	if txType != "" {
		query += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, txType)
		pos++
	}
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list by product: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryTransaction
	for rows.Next() {
		t, err := scanTxn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// SumByProduct suma los deltas con signo del producto (conciliación).
func (r *InventoryTransactionRepo) SumByProduct(productID string) (int, error) {
	var sum int
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(quantity), 0) FROM inventory_transactions WHERE product_id = $1`,
		productID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum by product: %w", err)
	}
	return sum, nil
}

// Report agrega entradas/salidas por producto en el rango dado.
func (r *InventoryTransactionRepo) Report(from, to *time.Time) ([]repository.TxReportRow, error) {
	query := `
		SELECT t.product_id, p.sku,
		       COALESCE(SUM(t.quantity) FILTER (WHERE t.quantity > 0), 0) AS units_in,
		       COALESCE(-SUM(t.quantity) FILTER (WHERE t.quantity < 0), 0) AS units_out,
		       COALESCE(SUM(t.quantity), 0) AS net
		FROM inventory_transactions t
		JOIN products p ON p.id = t.product_id`
	args := []any{}
	pos := 1
	where := ""
	if from != nil {
		where += fmt.Sprintf(" AND t.created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		where += fmt.Sprintf(" AND t.created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	if where != "" {
		query += " WHERE true" + where
	}
	query += " GROUP BY t.product_id, p.sku ORDER BY p.sku"

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("inventory report: %w", err)
	}
	defer rows.Close()
	var list []repository.TxReportRow
	for rows.Next() {
		var row repository.TxReportRow
		if err := rows.Scan(&row.ProductID, &row.SKU, &row.UnitsIn, &row.UnitsOut, &row.Net); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

func scanTxn(row pgx.Row) (*entity.InventoryTransaction, error) {
	var t entity.InventoryTransaction
	var reference, supplier, batch, createdBy *string
	err := row.Scan(
		&t.ID, &t.ProductID, &t.Type, &t.Quantity, &t.Reason,
		&reference, &t.Cost, &supplier, &batch, &t.ExpiresAt, &createdBy, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if reference != nil {
		t.Reference = *reference
	}
	if supplier != nil {
		t.Supplier = *supplier
	}
	if batch != nil {
		t.BatchNumber = *batch
	}
	if createdBy != nil {
		t.CreatedBy = *createdBy
	}
	return &t, nil
}
