package repository

import "github.com/jhoicas/tienda-api/internal/domain/entity"

// CartRepository define el puerto de persistencia para el carrito.
// Un carrito por usuario; se crea perezosamente y nunca se borra (solo se vacía).
type CartRepository interface {
	// GetByUser devuelve el carrito con sus líneas en orden de inserción, o nil si no existe.
	GetByUser(userID string) (*entity.Cart, error)
	// GetOrCreate devuelve el carrito del usuario, creándolo vacío si no existe.
	GetOrCreate(userID string) (*entity.Cart, error)
	// UpsertItem inserta la línea o actualiza cantidad y precio capturado si ya existe.
	UpsertItem(cartID string, item *entity.CartItem) error
	// UpdateItemQuantity cambia la cantidad de una línea existente.
	UpdateItemQuantity(cartID, productID string, quantity int) error
	RemoveItem(cartID, productID string) error
	// Clear vacía las líneas del carrito; el carrito en sí permanece.
	Clear(cartID string) error
}
