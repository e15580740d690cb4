package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
)

// loggerKey clave en Locals donde el router deja el logger del componente http.
const loggerKey = "logger"

// requestLogger devuelve el logger inyectado por el router, o el global de
// zerolog si la app se montó sin él.
func requestLogger(c *fiber.Ctx) zerolog.Logger {
	if l, ok := c.Locals(loggerKey).(zerolog.Logger); ok {
		return l
	}
	return zlog.Logger
}

// respondError traduce errores de dominio a respuestas HTTP. Los errores
// inesperados salen como INTERNAL opaco: el detalle queda en el log, no en
// la respuesta.
func respondError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		available := insufficient.Available
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:      "INSUFFICIENT_STOCK",
			Message:   "stock insuficiente para " + insufficient.ProductID,
			Available: &available,
		})
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrCartEmpty):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "CART_EMPTY", Message: "el carrito está vacío"})
	case errors.Is(err, domain.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "ORDER_NOT_FOUND", Message: "pedido no encontrado"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"})
	case errors.Is(err, domain.ErrProductNotAvailable):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "PRODUCT_NOT_AVAILABLE", Message: "producto inactivo o inexistente"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATUS_TRANSITION", Message: err.Error()})
	case errors.Is(err, domain.ErrCannotCancel):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CANNOT_CANCEL", Message: "el pedido ya no puede cancelarse"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "el pedido fue modificado por otra operación; reintente"})
	}
	// Error no mapeado: el detalle completo queda en el log; al cliente
	// solo le llega el cuerpo opaco.
	logger := requestLogger(c)
	logger.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("error interno sin mapear")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
