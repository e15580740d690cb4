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

var _ repository.CartRepository = (*CartRepo)(nil)

// CartRepo implementación de CartRepository sobre PostgreSQL (usable con pool o tx).
// carts es uno-por-usuario; cart_items guarda las líneas con el precio capturado.
type CartRepo struct {
	q Querier
}

// NewCartRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCartRepository(q Querier) *CartRepo {
	return &CartRepo{q: q}
}

// GetByUser devuelve el carrito con sus líneas en orden de inserción, o nil si no existe.
func (r *CartRepo) GetByUser(userID string) (*entity.Cart, error) {
	var c entity.Cart
	err := r.q.QueryRow(context.Background(),
		`SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`,
		userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if err := r.loadItems(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetOrCreate devuelve el carrito del usuario, creándolo vacío si no existe.
// El ON CONFLICT absorbe la carrera entre dos primeras peticiones del mismo usuario.
func (r *CartRepo) GetOrCreate(userID string) (*entity.Cart, error) {
	cart, err := r.GetByUser(userID)
	if err != nil || cart != nil {
		return cart, err
	}
	now := time.Now()
	_, err = r.q.Exec(context.Background(), `
		INSERT INTO carts (id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id) DO NOTHING`,
		uuid.New().String(), userID, now)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return r.GetByUser(userID)
}

// UpsertItem inserta la línea o, si ya existe, actualiza cantidad y
// re-sincroniza el precio capturado.
func (r *CartRepo) UpsertItem(cartID string, item *entity.CartItem) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, product_name, quantity, price_at_time, added_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity,
		              price_at_time = EXCLUDED.price_at_time,
		              product_name = EXCLUDED.product_name`
	_, err := r.q.Exec(context.Background(), query,
		cartID, item.ProductID, item.ProductName, item.Quantity, item.PriceAtTime, item.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return r.touch(cartID)
}

// UpdateItemQuantity cambia la cantidad de una línea existente.
func (r *CartRepo) UpdateItemQuantity(cartID, productID string, quantity int) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE cart_items SET quantity = $3 WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID, quantity)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	return r.touch(cartID)
}

// RemoveItem elimina la línea del producto.
func (r *CartRepo) RemoveItem(cartID, productID string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return r.touch(cartID)
}

// Clear vacía las líneas; la fila de carts permanece (el carrito nunca se borra).
func (r *CartRepo) Clear(cartID string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return r.touch(cartID)
}

func (r *CartRepo) loadItems(c *entity.Cart) error {
	rows, err := r.q.Query(context.Background(), `
		SELECT product_id, product_name, quantity, price_at_time, added_at
		FROM cart_items WHERE cart_id = $1
		ORDER BY added_at, product_id`, c.ID)
	if err != nil {
		return fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.CartItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &it.PriceAtTime, &it.AddedAt); err != nil {
			return fmt.Errorf("scan cart item: %w", err)
		}
		c.Items = append(c.Items, it)
	}
	return rows.Err()
}

func (r *CartRepo) touch(cartID string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return nil
}
