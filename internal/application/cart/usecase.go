// Package cart implementa las operaciones del carrito por usuario.
// El carrito es fuente de verdad hasta el checkout; el precio capturado
// (price_at_time) es un snapshot, no el precio de cobro.
package cart

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// UseCase operaciones del carrito.
type UseCase struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *UseCase {
	return &UseCase{cartRepo: cartRepo, productRepo: productRepo}
}

// GetCart devuelve el carrito del usuario, creándolo vacío si no existe.
func (uc *UseCase) GetCart(ctx context.Context, userID string) (*dto.CartResponse, error) {
	if userID == "" {
		return nil, domain.ErrInvalidInput
	}
	c, err := uc.cartRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(c)
}

// AddItem agrega el producto al carrito capturando el precio vigente.
// Si la línea ya existe, acumula cantidad y re-sincroniza el snapshot de precio.
func (uc *UseCase) AddItem(ctx context.Context, userID string, in dto.AddCartItemRequest) (*dto.CartResponse, error) {
	if userID == "" || in.ProductID == "" || in.Quantity < 1 {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, domain.ErrProductNotAvailable
	}
	c, err := uc.cartRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	quantity := in.Quantity
	if existing := c.FindItem(in.ProductID); existing != nil {
		quantity += existing.Quantity
	}
	item := &entity.CartItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		PriceAtTime: product.Price,
		AddedAt:     time.Now(),
	}
	if err := uc.cartRepo.UpsertItem(c.ID, item); err != nil {
		return nil, err
	}
	return uc.refresh(userID)
}

// UpdateItemQuantity fija la cantidad de una línea; cantidad 0 la elimina.
func (uc *UseCase) UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) (*dto.CartResponse, error) {
	if userID == "" || productID == "" || quantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	c, err := uc.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.FindItem(productID) == nil {
		return nil, domain.ErrNotFound
	}
	if quantity == 0 {
		if err := uc.cartRepo.RemoveItem(c.ID, productID); err != nil {
			return nil, err
		}
	} else if err := uc.cartRepo.UpdateItemQuantity(c.ID, productID, quantity); err != nil {
		return nil, err
	}
	return uc.refresh(userID)
}

// RemoveItem elimina la línea del producto.
func (uc *UseCase) RemoveItem(ctx context.Context, userID, productID string) (*dto.CartResponse, error) {
	return uc.UpdateItemQuantity(ctx, userID, productID, 0)
}

// Clear vacía el carrito del usuario (el carrito en sí nunca se borra).
func (uc *UseCase) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrInvalidInput
	}
	c, err := uc.cartRepo.GetByUser(userID)
	if err != nil {
		return err
	}
	if c == nil {
		return nil // sin carrito no hay nada que vaciar
	}
	return uc.cartRepo.Clear(c.ID)
}

func (uc *UseCase) refresh(userID string) (*dto.CartResponse, error) {
	c, err := uc.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return uc.toResponse(c)
}

// toResponse arma la respuesta mostrando el precio capturado y el vigente,
// para que el cliente vea la deriva antes del checkout (que re-cotiza).
func (uc *UseCase) toResponse(c *entity.Cart) (*dto.CartResponse, error) {
	resp := &dto.CartResponse{
		ID:     c.ID,
		UserID: c.UserID,
		Items:  make([]dto.CartItemResponse, 0, len(c.Items)),
	}
	var subtotal decimal.Decimal
	for _, it := range c.Items {
		current := it.PriceAtTime
		if product, err := uc.productRepo.GetByID(it.ProductID); err == nil && product != nil {
			current = product.Price
		}
		lineSubtotal := it.PriceAtTime.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(lineSubtotal)
		resp.Items = append(resp.Items, dto.CartItemResponse{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			Quantity:     it.Quantity,
			PriceAtTime:  it.PriceAtTime,
			CurrentPrice: current,
			Subtotal:     lineSubtotal,
		})
	}
	resp.Subtotal = subtotal
	return resp, nil
}
