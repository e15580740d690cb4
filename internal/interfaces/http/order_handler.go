package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/checkout"
	"github.com/jhoicas/tienda-api/internal/application/dto"
)

// OrderHandler maneja checkout y ciclo de vida de pedidos (protegido).
type OrderHandler struct {
	uc *checkout.UseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *checkout.UseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Checkout crea un pedido desde el carrito del usuario y lo vacía.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.CreateOrderFromCart(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Create crea un pedido desde una lista explícita de ítems ("buy now").
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.CreateOrder(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetByID devuelve el pedido si el actor es su dueño o admin.
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.uc.GetOrderByID(c.Context(), c.Params("id"), GetActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// ListMine lista los pedidos del usuario autenticado.
func (h *OrderHandler) ListMine(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	resp, err := h.uc.ListOrdersByUser(c.Context(), GetUserID(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(resp), "orders": resp})
}

// Cancel cancela el pedido liberando su stock (dueño o admin; solo pending/confirmed).
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.CancelOrder(c.Context(), c.Params("id"), GetActor(c), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// UpdateStatus aplica una transición administrativa de estado (admin).
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.UpdateOrderStatus(c.Context(), c.Params("id"), in.Status, in.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// UpdatePayment registra el estado de pago reportado por la pasarela (admin/webhook).
func (h *OrderHandler) UpdatePayment(c *fiber.Ctx) error {
	var in dto.UpdatePaymentStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.UpdatePaymentStatus(c.Context(), c.Params("id"), in.PaymentStatus, in.TransactionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
