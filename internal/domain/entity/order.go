package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del pedido. El flujo permitido vive en internal/domain/order.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Estados de pago (eje ortogonal al estado del pedido).
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// OrderItem copia congelada de la línea al momento del checkout.
// Nombre y precio quedan capturados: la deriva posterior del catálogo no los altera.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Name      string
	SKU       string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// StatusChange registro inmutable del historial de estados (append-only).
type StatusChange struct {
	ID        string
	OrderID   string
	Status    string
	Notes     string
	CreatedAt time.Time
}

// ShippingAddress dirección de envío embebida en el pedido.
type ShippingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Order pedido creado en el checkout. Items es inmutable tras la creación;
// solo mutan Status, PaymentStatus, el historial y los campos de cancelación.
// Version implementa concurrencia optimista: un update con versión vieja falla.
type Order struct {
	ID                 string
	OrderNumber        string // único
	UserID             string
	Items              []OrderItem
	TotalAmount        decimal.Decimal // suma de subtotales
	TaxAmount          decimal.Decimal
	ShippingAmount     decimal.Decimal
	FinalAmount        decimal.Decimal // TotalAmount + TaxAmount + ShippingAmount
	Status             string
	PaymentStatus      string
	PaymentMethod      string
	PaymentReference   string // ID de transacción reportado por la pasarela
	StatusHistory      []StatusChange
	ShippingAddress    ShippingAddress
	CancelledAt        *time.Time
	CancellationReason string
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsOwnedBy indica si el pedido pertenece al usuario.
func (o *Order) IsOwnedBy(userID string) bool {
	return o.UserID == userID
}
