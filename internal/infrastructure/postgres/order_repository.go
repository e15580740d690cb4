package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
// orders guarda cabecera y dirección (jsonb); order_items las líneas congeladas;
// order_status_history el historial append-only.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, order_number, user_id, total_amount, tax_amount, shipping_amount,
		final_amount, status, payment_status, payment_method, payment_reference,
		shipping_address, cancelled_at, cancellation_reason, version, created_at, updated_at`

// Create persiste cabecera, líneas congeladas e historial inicial.
func (r *OrderRepo) Create(order *entity.Order) error {
	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshal shipping address: %w", err)
	}
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err = r.q.Exec(context.Background(), query,
		order.ID, order.OrderNumber, order.UserID,
		order.TotalAmount, order.TaxAmount, order.ShippingAmount, order.FinalAmount,
		order.Status, order.PaymentStatus, nullIfEmpty(order.PaymentMethod), nullIfEmpty(order.PaymentReference),
		address, order.CancelledAt, nullIfEmpty(order.CancellationReason),
		order.Version, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	for i := range order.Items {
		item := &order.Items[i]
		// position preserva el orden del carrito al releer las líneas.
		_, err := r.q.Exec(context.Background(), `
			INSERT INTO order_items (id, order_id, position, product_id, name, sku, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			item.ID, order.ID, i, item.ProductID, item.Name, item.SKU,
			item.Quantity, item.UnitPrice, item.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	for i := range order.StatusHistory {
		if err := r.AppendStatusHistory(&order.StatusHistory[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetByID obtiene el pedido completo (cabecera, líneas e historial) o nil.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := r.scanOrder(r.q.QueryRow(context.Background(), query, id))
	if err != nil || o == nil {
		return o, err
	}
	if err := r.loadItems(o); err != nil {
		return nil, err
	}
	if err := r.loadHistory(o); err != nil {
		return nil, err
	}
	return o, nil
}

// ListByUser lista pedidos del usuario, más reciente primero (índice user_id+created_at).
func (r *OrderRepo) ListByUser(userID string, limit, offset int) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(query, userID, limit, offset)
}

// ListByStatus lista pedidos por estado (índice status), para tableros admin.
func (r *OrderRepo) ListByStatus(status string, limit, offset int) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders WHERE status = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(query, status, limit, offset)
}

// Update guarda los campos mutables con chequeo optimista de versión.
// Sin fila afectada significa que otro writer ganó: domain.ErrConflict.
func (r *OrderRepo) Update(order *entity.Order) error {
	query := `
		UPDATE orders
		SET status = $2, payment_status = $3, payment_reference = $4,
		    cancelled_at = $5, cancellation_reason = $6,
		    version = version + 1, updated_at = $7
		WHERE id = $1 AND version = $8`
	tag, err := r.q.Exec(context.Background(), query,
		order.ID, order.Status, order.PaymentStatus, nullIfEmpty(order.PaymentReference),
		order.CancelledAt, nullIfEmpty(order.CancellationReason),
		order.UpdatedAt, order.Version,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	order.Version++
	return nil
}

// AppendStatusHistory inserta una entrada del historial (nunca se edita ni borra).
func (r *OrderRepo) AppendStatusHistory(change *entity.StatusChange) error {
	_, err := r.q.Exec(context.Background(), `
		INSERT INTO order_status_history (id, order_id, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		change.ID, change.OrderID, change.Status, nullIfEmpty(change.Notes), change.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}

func (r *OrderRepo) list(query string, arg any, limit, offset int) ([]*entity.Order, error) {
	rows, err := r.q.Query(context.Background(), query, arg, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Los listados cargan líneas (no historial): la vista de lista no lo necesita.
	for _, o := range list {
		if err := r.loadItems(o); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *OrderRepo) scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var paymentMethod, paymentReference, cancellationReason *string
	var address []byte
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID,
		&o.TotalAmount, &o.TaxAmount, &o.ShippingAmount, &o.FinalAmount,
		&o.Status, &o.PaymentStatus, &paymentMethod, &paymentReference,
		&address, &o.CancelledAt, &cancellationReason,
		&o.Version, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	if paymentMethod != nil {
		o.PaymentMethod = *paymentMethod
	}
	if paymentReference != nil {
		o.PaymentReference = *paymentReference
	}
	if cancellationReason != nil {
		o.CancellationReason = *cancellationReason
	}
	if len(address) > 0 {
		if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("unmarshal shipping address: %w", err)
		}
	}
	return &o, nil
}

func (r *OrderRepo) loadItems(o *entity.Order) error {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, order_id, product_id, name, sku, quantity, unit_price, subtotal
		FROM order_items WHERE order_id = $1
		ORDER BY position`, o.ID)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.SKU,
			&it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func (r *OrderRepo) loadHistory(o *entity.Order) error {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, order_id, status, COALESCE(notes, ''), created_at
		FROM order_status_history WHERE order_id = $1
		ORDER BY created_at, id`, o.ID)
	if err != nil {
		return fmt.Errorf("list status history: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var h entity.StatusChange
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &h.Notes, &h.CreatedAt); err != nil {
			return fmt.Errorf("scan status history: %w", err)
		}
		o.StatusHistory = append(o.StatusHistory, h)
	}
	return rows.Err()
}
