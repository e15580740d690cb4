// Package order implementa la máquina de estados del ciclo de vida del pedido
// (servicio de dominio, sin dependencias de infraestructura).
package order

import (
	"time"

	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// transitions tabla de transiciones permitidas. delivered y cancelled son
// terminales (sin salidas). La cancelación solo es alcanzable desde pending
// o confirmed: una vez en processing el stock ya salió del pool de reserva.
var transitions = map[string][]string{
	entity.OrderStatusPending:    {entity.OrderStatusConfirmed, entity.OrderStatusCancelled},
	entity.OrderStatusConfirmed:  {entity.OrderStatusProcessing, entity.OrderStatusCancelled},
	entity.OrderStatusProcessing: {entity.OrderStatusShipped},
	entity.OrderStatusShipped:    {entity.OrderStatusDelivered},
	entity.OrderStatusDelivered:  {},
	entity.OrderStatusCancelled:  {},
}

// ValidStatus indica si el estado pertenece al enum del pedido.
func ValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// ValidPaymentStatus indica si el estado de pago pertenece a su enum.
func ValidPaymentStatus(s string) bool {
	switch s {
	case entity.PaymentStatusPending, entity.PaymentStatusPaid,
		entity.PaymentStatusFailed, entity.PaymentStatusRefunded:
		return true
	}
	return false
}

// CanTransition verifica si el salto from -> to está en la tabla.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal indica si el estado no tiene transiciones de salida.
func IsTerminal(s string) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// IsCancellable indica si desde el estado actual se permite cancelar.
func IsCancellable(s string) bool {
	return CanTransition(s, entity.OrderStatusCancelled)
}

// Transition aplica el cambio de estado sobre el pedido y agrega la entrada
// al historial. Falla con InvalidTransitionError si el salto no está permitido.
// No persiste nada: el caller guarda el pedido (con chequeo de versión).
func Transition(o *entity.Order, newStatus, notes string, now time.Time) error {
	if !ValidStatus(newStatus) {
		return domain.ErrInvalidInput
	}
	if !CanTransition(o.Status, newStatus) {
		return &domain.InvalidTransitionError{From: o.Status, To: newStatus}
	}
	o.Status = newStatus
	o.UpdatedAt = now
	o.StatusHistory = append(o.StatusHistory, entity.StatusChange{
		OrderID:   o.ID,
		Status:    newStatus,
		Notes:     notes,
		CreatedAt: now,
	})
	return nil
}
