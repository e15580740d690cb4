package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/order"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// Rol con privilegio elevado sobre pedidos ajenos.
const RoleAdmin = "admin"

// Actor identidad autenticada que ejecuta la operación (la capa de auth es
// colaborador externo; aquí solo se consume la identidad ya resuelta).
type Actor struct {
	UserID string
	Role   string
}

// IsAdmin indica si el actor tiene privilegio elevado.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// canAccess dueño del pedido o admin.
func canAccess(o *entity.Order, actor Actor) bool {
	return actor.IsAdmin() || o.IsOwnedBy(actor.UserID)
}

// GetOrderByID devuelve el pedido si el actor es su dueño o admin.
func (uc *UseCase) GetOrderByID(ctx context.Context, orderID string, actor Actor) (*dto.OrderResponse, error) {
	o, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	if !canAccess(o, actor) {
		return nil, domain.ErrForbidden
	}
	return toOrderResponse(o), nil
}

// ListOrdersByUser lista los pedidos del usuario, más reciente primero.
func (uc *UseCase) ListOrdersByUser(ctx context.Context, userID string, limit, offset int) ([]*dto.OrderResponse, error) {
	orders, err := uc.orderRepo.ListByUser(userID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out, nil
}

// CancelOrder cancela el pedido liberando el stock de cada línea en la misma
// transacción. Solo el dueño o un admin pueden cancelar, y solo desde
// pending o confirmed. Un segundo intento falla con ErrInvalidTransition
// (cancelled es terminal) sin liberar stock otra vez: la liberación ocurre
// exactamente una vez porque va atada a la única transición válida.
func (uc *UseCase) CancelOrder(ctx context.Context, orderID string, actor Actor, reason string) (*dto.OrderResponse, error) {
	var result *entity.Order
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		_ repository.CartRepository,
		orderRepo repository.OrderRepository,
		txnRepo repository.InventoryTransactionRepository,
	) error {
		o, err := orderRepo.GetByID(orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrOrderNotFound
		}
		if !canAccess(o, actor) {
			return domain.ErrForbidden
		}
		if o.Status == entity.OrderStatusCancelled {
			return &domain.InvalidTransitionError{From: o.Status, To: entity.OrderStatusCancelled}
		}
		if !order.IsCancellable(o.Status) {
			// processing en adelante: el stock ya salió del pool de reserva.
			return domain.ErrCannotCancel
		}

		now := time.Now()
		for _, item := range o.Items {
			if err := uc.stockLedger.ReleaseInTx(
				productRepo, txnRepo,
				item.ProductID, item.Quantity,
				o.OrderNumber, actor.UserID, now,
			); err != nil {
				return err
			}
		}
		if err := order.Transition(o, entity.OrderStatusCancelled, reason, now); err != nil {
			return err
		}
		o.CancelledAt = &now
		o.CancellationReason = reason
		if err := uc.persistTransition(orderRepo, o); err != nil {
			return err
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(result), nil
}

// UpdateOrderStatus aplica una transición administrativa de la máquina de
// estados (sin efecto sobre stock). Falla con ErrInvalidTransition si el
// salto no está en la tabla.
func (uc *UseCase) UpdateOrderStatus(ctx context.Context, orderID, newStatus, notes string) (*dto.OrderResponse, error) {
	if !order.ValidStatus(newStatus) {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.Order
	err := uc.txRunner.Run(ctx, func(
		_ repository.ProductRepository,
		_ repository.CartRepository,
		orderRepo repository.OrderRepository,
		_ repository.InventoryTransactionRepository,
	) error {
		o, err := orderRepo.GetByID(orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrOrderNotFound
		}
		// La cancelación administrativa pasa por CancelOrder, que además libera stock.
		if newStatus == entity.OrderStatusCancelled {
			return domain.ErrInvalidInput
		}
		if err := order.Transition(o, newStatus, notes, time.Now()); err != nil {
			return err
		}
		if err := uc.persistTransition(orderRepo, o); err != nil {
			return err
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(result), nil
}

// UpdatePaymentStatus registra el estado de pago reportado externamente.
// Única regla de acople: paid con pedido pending lo avanza a confirmed.
// Ningún otro estado de pago afecta el estado del pedido.
func (uc *UseCase) UpdatePaymentStatus(ctx context.Context, orderID, paymentStatus, transactionID string) (*dto.OrderResponse, error) {
	if !order.ValidPaymentStatus(paymentStatus) {
		return nil, domain.ErrInvalidInput
	}
	var result *entity.Order
	err := uc.txRunner.Run(ctx, func(
		_ repository.ProductRepository,
		_ repository.CartRepository,
		orderRepo repository.OrderRepository,
		_ repository.InventoryTransactionRepository,
	) error {
		o, err := orderRepo.GetByID(orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrOrderNotFound
		}
		now := time.Now()
		o.PaymentStatus = paymentStatus
		if transactionID != "" {
			o.PaymentReference = transactionID
		}
		o.UpdatedAt = now
		if paymentStatus == entity.PaymentStatusPaid && o.Status == entity.OrderStatusPending {
			if err := order.Transition(o, entity.OrderStatusConfirmed, "pago confirmado", now); err != nil {
				return err
			}
		}
		if err := uc.persistTransition(orderRepo, o); err != nil {
			return err
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(result), nil
}

// persistTransition guarda el pedido (update con chequeo de versión) y las
// entradas de historial que la transición agregó en memoria y aún no tienen ID.
func (uc *UseCase) persistTransition(orderRepo repository.OrderRepository, o *entity.Order) error {
	if err := orderRepo.Update(o); err != nil {
		return err
	}
	for i := range o.StatusHistory {
		h := &o.StatusHistory[i]
		if h.ID != "" {
			continue
		}
		h.ID = uuid.New().String()
		if err := orderRepo.AppendStatusHistory(h); err != nil {
			return err
		}
	}
	return nil
}
