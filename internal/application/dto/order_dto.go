package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// CheckoutRequest body para POST /api/orders/checkout (desde carrito).
type CheckoutRequest struct {
	ShippingAddress entity.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method"`
}

// OrderItemInput línea explícita para compra directa ("buy now").
type OrderItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest body para POST /api/orders (sin carrito).
type CreateOrderRequest struct {
	Items           []OrderItemInput       `json:"items"`
	ShippingAddress entity.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method"`
}

// CancelOrderRequest body para POST /api/orders/:id/cancel.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// UpdateOrderStatusRequest body para PUT /api/orders/:id/status (admin).
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// UpdatePaymentStatusRequest body para PUT /api/orders/:id/payment.
// TransactionID es la referencia reportada por la pasarela (hecho externo).
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// OrderItemResponse línea congelada del pedido.
type OrderItemResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// StatusChangeResponse entrada del historial de estados.
type StatusChangeResponse struct {
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderResponse representación HTTP de un pedido.
type OrderResponse struct {
	ID                 string                 `json:"id"`
	OrderNumber        string                 `json:"order_number"`
	UserID             string                 `json:"user_id"`
	Items              []OrderItemResponse    `json:"items"`
	TotalAmount        decimal.Decimal        `json:"total_amount"`
	TaxAmount          decimal.Decimal        `json:"tax_amount"`
	ShippingAmount     decimal.Decimal        `json:"shipping_amount"`
	FinalAmount        decimal.Decimal        `json:"final_amount"`
	Status             string                 `json:"status"`
	PaymentStatus      string                 `json:"payment_status"`
	PaymentMethod      string                 `json:"payment_method,omitempty"`
	StatusHistory      []StatusChangeResponse `json:"status_history"`
	ShippingAddress    entity.ShippingAddress `json:"shipping_address"`
	CancelledAt        *time.Time             `json:"cancelled_at,omitempty"`
	CancellationReason string                 `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
}
