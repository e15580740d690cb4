package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/application/cart"
	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

const testUserID = "user-1"

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria (carritos por usuario + catálogo mínimo)
// ──────────────────────────────────────────────────────────────────────────────

type cartStore struct {
	products map[string]*entity.Product
	carts    map[string]*entity.Cart
}

func newCartStore() *cartStore {
	return &cartStore{
		products: make(map[string]*entity.Product),
		carts:    make(map[string]*entity.Cart),
	}
}

func (s *cartStore) seed(id, price string, active bool) {
	s.products[id] = &entity.Product{
		ID: id, SKU: "SKU-" + id, Name: "Producto " + id,
		Price: decimal.RequireFromString(price), IsActive: active,
	}
}

func (s *cartStore) setPrice(id, price string) {
	s.products[id].Price = decimal.RequireFromString(price)
}

type fakeProductRepo struct{ s *cartStore }

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

func (r *fakeProductRepo) Create(p *entity.Product) error { return nil }
func (r *fakeProductRepo) Update(p *entity.Product) error { return nil }

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetBySKU(sku string) (*entity.Product, error) { return nil, nil }

func (r *fakeProductRepo) List(onlyActive bool, limit, offset int) ([]*entity.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) DecrementStockIfAvailable(productID string, qty int) (bool, error) {
	return false, nil
}
func (r *fakeProductRepo) IncrementStock(productID string, qty int) error { return nil }
func (r *fakeProductRepo) GetStockQty(productID string) (int, error)     { return 0, nil }

type fakeCartRepo struct{ s *cartStore }

var _ repository.CartRepository = (*fakeCartRepo)(nil)

func (r *fakeCartRepo) GetByUser(userID string) (*entity.Cart, error) {
	c, ok := r.s.carts[userID]
	if !ok {
		return nil, nil
	}
	cp := *c
	cp.Items = append([]entity.CartItem(nil), c.Items...)
	return &cp, nil
}

func (r *fakeCartRepo) GetOrCreate(userID string) (*entity.Cart, error) {
	if c, err := r.GetByUser(userID); err != nil || c != nil {
		return c, err
	}
	now := time.Now()
	c := &entity.Cart{ID: uuid.New().String(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	r.s.carts[userID] = c
	return r.GetByUser(userID)
}

func (r *fakeCartRepo) byID(cartID string) *entity.Cart {
	for _, c := range r.s.carts {
		if c.ID == cartID {
			return c
		}
	}
	return nil
}

func (r *fakeCartRepo) UpsertItem(cartID string, item *entity.CartItem) error {
	c := r.byID(cartID)
	if c == nil {
		return domain.ErrNotFound
	}
	if existing := c.FindItem(item.ProductID); existing != nil {
		existing.Quantity = item.Quantity
		existing.PriceAtTime = item.PriceAtTime
		return nil
	}
	c.Items = append(c.Items, *item)
	return nil
}

func (r *fakeCartRepo) UpdateItemQuantity(cartID, productID string, quantity int) error {
	c := r.byID(cartID)
	if c == nil {
		return domain.ErrNotFound
	}
	item := c.FindItem(productID)
	if item == nil {
		return domain.ErrNotFound
	}
	item.Quantity = quantity
	return nil
}

func (r *fakeCartRepo) RemoveItem(cartID, productID string) error {
	c := r.byID(cartID)
	if c == nil {
		return domain.ErrNotFound
	}
	items := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID != productID {
			items = append(items, it)
		}
	}
	c.Items = items
	return nil
}

func (r *fakeCartRepo) Clear(cartID string) error {
	c := r.byID(cartID)
	if c == nil {
		return domain.ErrNotFound
	}
	c.Items = nil
	return nil
}

func newCartFixture() (*cartStore, *cart.UseCase) {
	s := newCartStore()
	return s, cart.NewUseCase(&fakeCartRepo{s}, &fakeProductRepo{s})
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// El carrito se crea perezosamente en la primera consulta y nunca se borra.
func TestGetCart_CreacionPerezosa(t *testing.T) {
	s, uc := newCartFixture()

	resp, err := uc.GetCart(context.Background(), testUserID)

	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, testUserID, resp.UserID)
	assert.Empty(t, resp.Items)
	assert.True(t, resp.Subtotal.IsZero())

	resp2, err := uc.GetCart(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, resp2.ID, "la segunda consulta devuelve el mismo carrito")
	assert.Len(t, s.carts, 1)
}

// Agregar captura el precio vigente como snapshot.
func TestAddItem_CapturaPrecio(t *testing.T) {
	s, uc := newCartFixture()
	s.seed("p-1", "150", true)

	resp, err := uc.AddItem(context.Background(), testUserID, dto.AddCartItemRequest{
		ProductID: "p-1", Quantity: 2,
	})

	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Items[0].Quantity)
	assert.True(t, resp.Items[0].PriceAtTime.Equal(decimal.NewFromInt(150)))
	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(300)))
}

// Re-agregar el mismo producto acumula cantidad y re-sincroniza el snapshot
// al precio vigente ("último sincronizado").
func TestAddItem_AcumulaYResincronizaPrecio(t *testing.T) {
	s, uc := newCartFixture()
	s.seed("p-1", "100", true)
	ctx := context.Background()

	_, err := uc.AddItem(ctx, testUserID, dto.AddCartItemRequest{ProductID: "p-1", Quantity: 1})
	require.NoError(t, err)

	s.setPrice("p-1", "120") // el catálogo cambia

	resp, err := uc.AddItem(ctx, testUserID, dto.AddCartItemRequest{ProductID: "p-1", Quantity: 2})

	require.NoError(t, err)
	require.Len(t, resp.Items, 1, "misma línea, no una nueva")
	assert.Equal(t, 3, resp.Items[0].Quantity, "1 + 2 acumulado")
	assert.True(t, resp.Items[0].PriceAtTime.Equal(decimal.NewFromInt(120)),
		"el snapshot se refresca al precio vigente")
}

// La respuesta expone el precio capturado y el vigente para ver la deriva.
func TestGetCart_MuestraDerivaDePrecio(t *testing.T) {
	s, uc := newCartFixture()
	s.seed("p-1", "100", true)
	ctx := context.Background()
	_, err := uc.AddItem(ctx, testUserID, dto.AddCartItemRequest{ProductID: "p-1", Quantity: 1})
	require.NoError(t, err)

	s.setPrice("p-1", "130")

	resp, err := uc.GetCart(ctx, testUserID)
	require.NoError(t, err)
	assert.True(t, resp.Items[0].PriceAtTime.Equal(decimal.NewFromInt(100)), "snapshot intacto")
	assert.True(t, resp.Items[0].CurrentPrice.Equal(decimal.NewFromInt(130)), "precio vigente visible")
	assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(100)),
		"el subtotal informativo usa el snapshot; el checkout re-cotiza")
}

func TestAddItem_ProductoInactivoONoExistente(t *testing.T) {
	s, uc := newCartFixture()
	s.seed("p-1", "100", false)
	ctx := context.Background()

	_, err := uc.AddItem(ctx, testUserID, dto.AddCartItemRequest{ProductID: "p-1", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrProductNotAvailable)

	_, err = uc.AddItem(ctx, testUserID, dto.AddCartItemRequest{ProductID: "no-existe", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrProductNotAvailable)
}

func TestAddItem_CantidadInvalida(t *testing.T) {
	s, uc := newCartFixture()
	s.seed("p-1", "100", true)

	_, err := uc.AddItem(context.Background(), testUserID, dto.AddCartItemRequest{
		ProductID: "p-1", Quantity: 0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateItemQuantity_CeroEliminaLaLinea(t *testing.T) {
	s, uc := newCartFixture()
	s.seed("p-1", "100", true)
	ctx := context.Background()
	_, err := uc.AddItem(ctx, testUserID, dto.AddCartItemRequest{ProductID: "p-1", Quantity: 2})
	require.NoError(t, err)

	resp, err := uc.UpdateItemQuantity(ctx, testUserID, "p-1", 0)

	require.NoError(t, err)
	assert.Empty(t, resp.Items, "cantidad 0 elimina la línea")
}

func TestUpdateItemQuantity_LineaInexistente(t *testing.T) {
	s, uc := newCartFixture()
	s.seed("p-1", "100", true)
	ctx := context.Background()
	_, err := uc.GetCart(ctx, testUserID) // carrito existe pero vacío
	require.NoError(t, err)

	_, err = uc.UpdateItemQuantity(ctx, testUserID, "p-1", 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveItem(t *testing.T) {
	s, uc := newCartFixture()
	s.seed("p-1", "100", true)
	s.seed("p-2", "50", true)
	ctx := context.Background()
	_, err := uc.AddItem(ctx, testUserID, dto.AddCartItemRequest{ProductID: "p-1", Quantity: 1})
	require.NoError(t, err)
	_, err = uc.AddItem(ctx, testUserID, dto.AddCartItemRequest{ProductID: "p-2", Quantity: 1})
	require.NoError(t, err)

	resp, err := uc.RemoveItem(ctx, testUserID, "p-1")

	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "p-2", resp.Items[0].ProductID)
}

func TestClear_VaciaSinBorrarElCarrito(t *testing.T) {
	s, uc := newCartFixture()
	s.seed("p-1", "100", true)
	ctx := context.Background()
	before, err := uc.AddItem(ctx, testUserID, dto.AddCartItemRequest{ProductID: "p-1", Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, uc.Clear(ctx, testUserID))

	after, err := uc.GetCart(ctx, testUserID)
	require.NoError(t, err)
	assert.Empty(t, after.Items)
	assert.Equal(t, before.ID, after.ID, "el carrito se vacía, no se reemplaza")
}

func TestClear_SinCarritoNoFalla(t *testing.T) {
	_, uc := newCartFixture()
	assert.NoError(t, uc.Clear(context.Background(), "user-sin-carrito"))
}
