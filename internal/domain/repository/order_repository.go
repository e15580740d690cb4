package repository

import "github.com/jhoicas/tienda-api/internal/domain/entity"

// OrderRepository define el puerto de persistencia para Order.
type OrderRepository interface {
	// Create persiste el pedido con sus líneas y el historial inicial.
	Create(order *entity.Order) error
	// GetByID devuelve el pedido con líneas e historial, o nil si no existe.
	GetByID(id string) (*entity.Order, error)
	ListByUser(userID string, limit, offset int) ([]*entity.Order, error)
	ListByStatus(status string, limit, offset int) ([]*entity.Order, error)
	// Update guarda los campos mutables (status, pago, cancelación) con
	// chequeo optimista de versión: si la versión en BD ya no coincide
	// devuelve domain.ErrConflict y no escribe nada.
	Update(order *entity.Order) error
	// AppendStatusHistory agrega una entrada inmutable al historial.
	AppendStatusHistory(change *entity.StatusChange) error
}
