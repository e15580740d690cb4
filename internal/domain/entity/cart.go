package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem línea del carrito. PriceAtTime es el precio capturado al agregar
// (o al re-sincronizar); el checkout re-cotiza contra el precio vigente.
type CartItem struct {
	ProductID   string
	ProductName string
	Quantity    int // >= 1
	PriceAtTime decimal.Decimal
	AddedAt     time.Time
}

// Cart carrito de un usuario. Uno por usuario, se crea perezosamente y
// nunca se elimina: solo se vacía (al hacer checkout o por petición explícita).
type Cart struct {
	ID        string
	UserID    string
	Items     []CartItem // orden de inserción
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FindItem devuelve la línea del producto o nil si no está en el carrito.
func (c *Cart) FindItem(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// IsEmpty indica si el carrito no tiene líneas.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
