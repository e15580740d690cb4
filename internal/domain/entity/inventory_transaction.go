package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/domain"
)

// Tipos de transacción de inventario (enum cerrado).
const (
	TxTypePurchase   = "purchase"   // compra a proveedor (+)
	TxTypeSale       = "sale"       // venta / reserva de checkout (-)
	TxTypeAdjustment = "adjustment" // ajuste manual (+/-)
	TxTypeTransfer   = "transfer"   // traslado (+/-)
	TxTypeReturn     = "return"     // devolución / liberación de stock (+)
	TxTypeDamage     = "damage"     // merma por daño (-)
	TxTypeExpired    = "expired"    // merma por vencimiento (-)
)

// InventoryTransaction entrada inmutable del libro de inventario.
// Quantity es con signo: positivo aumenta stock, negativo lo disminuye.
// Las entradas nunca se actualizan ni se borran; una corrección es una
// entrada inversa nueva, no un delete.
type InventoryTransaction struct {
	ID          string
	ProductID   string
	Type        string
	Quantity    int // con signo
	Reason      string
	Reference   string // pedido u operación que originó el movimiento
	Cost        *decimal.Decimal
	Supplier    string
	BatchNumber string
	ExpiresAt   *time.Time
	CreatedBy   string
	CreatedAt   time.Time
}

// signRule indica el signo permitido por tipo: +1 solo positivo,
// -1 solo negativo, 0 cualquiera distinto de cero.
var signRule = map[string]int{
	TxTypePurchase:   +1,
	TxTypeReturn:     +1,
	TxTypeSale:       -1,
	TxTypeDamage:     -1,
	TxTypeExpired:    -1,
	TxTypeAdjustment: 0,
	TxTypeTransfer:   0,
}

// ValidTxType indica si el tipo pertenece al enum cerrado.
func ValidTxType(t string) bool {
	_, ok := signRule[t]
	return ok
}

// Validate verifica tipo, razón y consistencia de signo.
func (t *InventoryTransaction) Validate() error {
	rule, ok := signRule[t.Type]
	if !ok {
		return domain.ErrInvalidInput
	}
	if t.ProductID == "" || t.Reason == "" || t.Quantity == 0 {
		return domain.ErrInvalidInput
	}
	if rule > 0 && t.Quantity < 0 {
		return domain.ErrInvalidInput
	}
	if rule < 0 && t.Quantity > 0 {
		return domain.ErrInvalidInput
	}
	return nil
}
