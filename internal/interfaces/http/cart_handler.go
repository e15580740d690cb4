package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/cart"
	"github.com/jhoicas/tienda-api/internal/application/dto"
)

// CartHandler maneja las peticiones HTTP del carrito (protegido).
type CartHandler struct {
	uc *cart.UseCase
}

// NewCartHandler construye el handler.
func NewCartHandler(uc *cart.UseCase) *CartHandler {
	return &CartHandler{uc: uc}
}

// Get devuelve el carrito del usuario autenticado (se crea vacío si no existe).
func (h *CartHandler) Get(c *fiber.Ctx) error {
	resp, err := h.uc.GetCart(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// AddItem agrega un producto al carrito capturando el precio vigente.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var in dto.AddCartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.AddItem(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// UpdateItem fija la cantidad de una línea; 0 la elimina.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.UpdateCartItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.UpdateItemQuantity(c.Context(), GetUserID(c), c.Params("productId"), in.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// RemoveItem elimina una línea del carrito.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	resp, err := h.uc.RemoveItem(c.Context(), GetUserID(c), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Clear vacía el carrito del usuario.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	if err := h.uc.Clear(c.Context(), GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "carrito vaciado"})
}
