package dto

import "github.com/shopspring/decimal"

// AddCartItemRequest body para POST /api/cart/items.
type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItemRequest body para PUT /api/cart/items/:productId.
// Quantity 0 elimina la línea.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartItemResponse línea del carrito con el precio capturado y el vigente.
type CartItemResponse struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	PriceAtTime  decimal.Decimal `json:"price_at_time"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Subtotal     decimal.Decimal `json:"subtotal"` // Quantity * PriceAtTime
}

// CartResponse carrito completo del usuario.
type CartResponse struct {
	ID       string             `json:"id"`
	UserID   string             `json:"user_id"`
	Items    []CartItemResponse `json:"items"`
	Subtotal decimal.Decimal    `json:"subtotal"`
}
