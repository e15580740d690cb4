package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/stock"
	"github.com/jhoicas/tienda-api/internal/domain"
	domaincheckout "github.com/jhoicas/tienda-api/internal/domain/checkout"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// UseCase orquesta el checkout: valida el carrito (o la lista explícita)
// contra stock y precio vigentes, reserva stock, persiste el pedido, escribe
// las entradas del libro y retira del carrito las líneas cobradas, todo en
// una transacción.
type UseCase struct {
	txRunner    TxRunner
	stockLedger *stock.Ledger
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	orderRepo   repository.OrderRepository
	pricing     domaincheckout.Pricing
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	stockLedger *stock.Ledger,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	pricing domaincheckout.Pricing,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		stockLedger: stockLedger,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		orderRepo:   orderRepo,
		pricing:     pricing,
	}
}

// orderLine ítem ya validado con el producto vivo re-leído.
type orderLine struct {
	product  *entity.Product
	quantity int
}

// CreateOrderFromCart crea el pedido a partir del carrito del usuario y
// retira las líneas cobradas en la misma transacción. Falla con ErrCartEmpty
// si no hay líneas.
func (uc *UseCase) CreateOrderFromCart(ctx context.Context, userID string, in dto.CheckoutRequest) (*dto.OrderResponse, error) {
	cart, err := uc.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if cart == nil || cart.IsEmpty() {
		return nil, domain.ErrCartEmpty
	}
	items := make([]dto.OrderItemInput, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, dto.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return uc.createOrder(ctx, userID, items, in.ShippingAddress, in.PaymentMethod, cart.ID)
}

// CreateOrder crea el pedido desde una lista explícita de ítems ("buy now"),
// mismo pipeline que el checkout de carrito pero sin tocar ningún carrito.
func (uc *UseCase) CreateOrder(ctx context.Context, userID string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	return uc.createOrder(ctx, userID, in.Items, in.ShippingAddress, in.PaymentMethod, "")
}

// createOrder pipeline común: valida, re-cotiza al precio vigente, reserva
// stock, persiste y (si clearCartID != "") retira del carrito las líneas
// cobradas. Cualquier fallo
// revierte la transacción completa: nada de stock, pedido ni carrito cambia.
func (uc *UseCase) createOrder(
	ctx context.Context,
	userID string,
	items []dto.OrderItemInput,
	address entity.ShippingAddress,
	paymentMethod string,
	clearCartID string,
) (*dto.OrderResponse, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}

	// Validación previa (solo lectura): producto vivo, activo y con stock
	// aparente. La verificación definitiva es el decremento condicional
	// dentro de la tx; esta pasada corta temprano sin abrir transacción.
	lines := make([]orderLine, 0, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Quantity < 1 {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.IsActive {
			return nil, domain.ErrProductNotAvailable
		}
		if product.StockQty < item.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID: product.ID,
				Requested: item.Quantity,
				Available: product.StockQty,
			}
		}
		lines = append(lines, orderLine{product: product, quantity: item.Quantity})
	}

	now := time.Now()
	order := uc.buildOrder(userID, lines, address, paymentMethod, now)

	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		cartRepo repository.CartRepository,
		orderRepo repository.OrderRepository,
		txnRepo repository.InventoryTransactionRepository,
	) error {
		// Reserva por ítem: decremento condicional atómico + entrada en el
		// libro. Un fallo a mitad del lote revierte las reservas anteriores
		// junto con el resto de la transacción.
		for _, line := range lines {
			if err := uc.stockLedger.ReserveInTx(
				productRepo, txnRepo,
				line.product.ID, line.quantity,
				order.OrderNumber, userID, now,
			); err != nil {
				return err
			}
		}
		if err := orderRepo.Create(order); err != nil {
			return err
		}
		// Se retiran solo las líneas que el pedido cobró: una línea agregada
		// en paralelo entre la lectura del carrito y esta transacción
		// sobrevive en el carrito en lugar de borrarse sin ordenarse.
		if clearCartID != "" {
			for _, line := range lines {
				if err := cartRepo.RemoveItem(clearCartID, line.product.ID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// buildOrder congela líneas al precio vigente del catálogo (no al snapshot
// del carrito) y calcula montos: IVA, envío y total final.
func (uc *UseCase) buildOrder(
	userID string,
	lines []orderLine,
	address entity.ShippingAddress,
	paymentMethod string,
	now time.Time,
) *entity.Order {
	orderID := uuid.New().String()
	var subtotal decimal.Decimal
	orderItems := make([]entity.OrderItem, 0, len(lines))
	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.quantity))
		lineSubtotal := line.product.Price.Mul(qty)
		subtotal = subtotal.Add(lineSubtotal)
		orderItems = append(orderItems, entity.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: line.product.ID,
			Name:      line.product.Name,
			SKU:       line.product.SKU,
			Quantity:  line.quantity,
			UnitPrice: line.product.Price,
			Subtotal:  lineSubtotal,
		})
	}
	amounts := uc.pricing.Calculate(subtotal)

	return &entity.Order{
		ID:              orderID,
		OrderNumber:     newOrderNumber(now),
		UserID:          userID,
		Items:           orderItems,
		TotalAmount:     amounts.Total,
		TaxAmount:       amounts.Tax,
		ShippingAmount:  amounts.Shipping,
		FinalAmount:     amounts.Final,
		Status:          entity.OrderStatusPending,
		PaymentStatus:   entity.PaymentStatusPending,
		PaymentMethod:   paymentMethod,
		ShippingAddress: address,
		StatusHistory: []entity.StatusChange{{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			Status:    entity.OrderStatusPending,
			Notes:     "pedido creado",
			CreatedAt: now,
		}},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// newOrderNumber genera el número único de pedido: ORD-aaaammdd-xxxxxxxx.
// El fragmento de UUID evita colisiones entre checkouts del mismo día;
// el índice único en BD es la garantía final.
func newOrderNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return "ORD-" + now.Format("20060102") + "-" + strings.ToUpper(suffix)
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:                 o.ID,
		OrderNumber:        o.OrderNumber,
		UserID:             o.UserID,
		TotalAmount:        o.TotalAmount,
		TaxAmount:          o.TaxAmount,
		ShippingAmount:     o.ShippingAmount,
		FinalAmount:        o.FinalAmount,
		Status:             o.Status,
		PaymentStatus:      o.PaymentStatus,
		PaymentMethod:      o.PaymentMethod,
		ShippingAddress:    o.ShippingAddress,
		CancelledAt:        o.CancelledAt,
		CancellationReason: o.CancellationReason,
		CreatedAt:          o.CreatedAt,
		Items:              make([]dto.OrderItemResponse, 0, len(o.Items)),
		StatusHistory:      make([]dto.StatusChangeResponse, 0, len(o.StatusHistory)),
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		})
	}
	for _, h := range o.StatusHistory {
		resp.StatusHistory = append(resp.StatusHistory, dto.StatusChangeResponse{
			Status:    h.Status,
			Notes:     h.Notes,
			CreatedAt: h.CreatedAt,
		})
	}
	return resp
}
