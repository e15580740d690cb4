package checkout_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/application/checkout"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos de persistencia.
//
// memStore guarda copias profundas: las escrituras reemplazan el valor
// almacenado (nunca lo mutan in situ) y las lecturas devuelven copias.
// Eso permite que memTxRunner emule el rollback restaurando un snapshot
// barato (los valores almacenados son inmutables por convención).
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu   sync.Mutex // protege cada operación individual
	txMu sync.Mutex // serializa transacciones completas, como los locks de fila en BD

	products map[string]*entity.Product
	carts    map[string]*entity.Cart // por userID
	orders   map[string]*entity.Order
	txns     []*entity.InventoryTransaction

	failOrderCreate bool   // simula un fallo de storage a mitad de la transacción
	conflictOnce    bool   // simula un escritor concurrente: el próximo Update pierde la carrera de versión
	beforeTx        func() // corre una sola vez justo antes de abrir la próxima transacción
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[string]*entity.Product),
		carts:    make(map[string]*entity.Cart),
		orders:   make(map[string]*entity.Order),
	}
}

type memSnapshot struct {
	products map[string]*entity.Product
	carts    map[string]*entity.Cart
	orders   map[string]*entity.Order
	txns     []*entity.InventoryTransaction
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		products: make(map[string]*entity.Product, len(s.products)),
		carts:    make(map[string]*entity.Cart, len(s.carts)),
		orders:   make(map[string]*entity.Order, len(s.orders)),
		txns:     append([]*entity.InventoryTransaction(nil), s.txns...),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.carts {
		snap.carts[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.carts = snap.carts
	s.orders = snap.orders
	s.txns = snap.txns
}

func copyProduct(p *entity.Product) *entity.Product {
	cp := *p
	return &cp
}

func copyCart(c *entity.Cart) *entity.Cart {
	cp := *c
	cp.Items = append([]entity.CartItem(nil), c.Items...)
	return &cp
}

func copyOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Items = append([]entity.OrderItem(nil), o.Items...)
	cp.StatusHistory = append([]entity.StatusChange(nil), o.StatusHistory...)
	return &cp
}

// ── memTxRunner ───────────────────────────────────────────────────────────────

type memTxRunner struct{ s *memStore }

var _ checkout.TxRunner = (*memTxRunner)(nil)

func (r *memTxRunner) Run(ctx context.Context, fn func(
	repository.ProductRepository,
	repository.CartRepository,
	repository.OrderRepository,
	repository.InventoryTransactionRepository,
) error) error {
	// Punto de interposición: emula a otro request escribiendo entre la
	// lectura previa (fuera de tx) y el inicio de esta transacción.
	if hook := r.s.beforeTx; hook != nil {
		r.s.beforeTx = nil
		hook()
	}
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	snap := r.s.snapshot()
	err := fn(&memProductRepo{r.s}, &memCartRepo{r.s}, &memOrderRepo{r.s}, &memTxnRepo{r.s})
	if err != nil {
		r.s.restore(snap)
	}
	return err
}

// ── memProductRepo ────────────────────────────────────────────────────────────

type memProductRepo struct{ s *memStore }

var _ repository.ProductRepository = (*memProductRepo)(nil)

func (r *memProductRepo) Create(p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.products[p.ID] = copyProduct(p)
	return nil
}

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return copyProduct(p), nil
}

func (r *memProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.SKU == sku {
			return copyProduct(p), nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) Update(p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := copyProduct(p)
	cp.StockQty = stored.StockQty // el stock solo muta vía primitivas atómicas
	r.s.products[p.ID] = cp
	return nil
}

func (r *memProductRepo) List(onlyActive bool, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.s.products {
		if onlyActive && !p.IsActive {
			continue
		}
		out = append(out, copyProduct(p))
	}
	return out, nil
}

func (r *memProductRepo) DecrementStockIfAvailable(productID string, qty int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok {
		return false, nil
	}
	if p.StockQty < qty {
		return false, nil
	}
	cp := copyProduct(p)
	cp.StockQty -= qty
	r.s.products[productID] = cp
	return true, nil
}

func (r *memProductRepo) IncrementStock(productID string, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := copyProduct(p)
	cp.StockQty += qty
	r.s.products[productID] = cp
	return nil
}

func (r *memProductRepo) GetStockQty(productID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[productID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return p.StockQty, nil
}

// ── memCartRepo ───────────────────────────────────────────────────────────────

type memCartRepo struct{ s *memStore }

var _ repository.CartRepository = (*memCartRepo)(nil)

func (r *memCartRepo) GetByUser(userID string) (*entity.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.carts[userID]
	if !ok {
		return nil, nil
	}
	return copyCart(c), nil
}

func (r *memCartRepo) GetOrCreate(userID string) (*entity.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.carts[userID]; ok {
		return copyCart(c), nil
	}
	now := time.Now()
	c := &entity.Cart{ID: uuid.New().String(), UserID: userID, CreatedAt: now, UpdatedAt: now}
	r.s.carts[userID] = c
	return copyCart(c), nil
}

func (r *memCartRepo) findByID(cartID string) (string, *entity.Cart) {
	for userID, c := range r.s.carts {
		if c.ID == cartID {
			return userID, c
		}
	}
	return "", nil
}

func (r *memCartRepo) UpsertItem(cartID string, item *entity.CartItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	userID, c := r.findByID(cartID)
	if c == nil {
		return domain.ErrNotFound
	}
	cp := copyCart(c)
	if existing := cp.FindItem(item.ProductID); existing != nil {
		existing.Quantity = item.Quantity
		existing.PriceAtTime = item.PriceAtTime
	} else {
		cp.Items = append(cp.Items, *item)
	}
	r.s.carts[userID] = cp
	return nil
}

func (r *memCartRepo) UpdateItemQuantity(cartID, productID string, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	userID, c := r.findByID(cartID)
	if c == nil {
		return domain.ErrNotFound
	}
	cp := copyCart(c)
	item := cp.FindItem(productID)
	if item == nil {
		return domain.ErrNotFound
	}
	item.Quantity = quantity
	r.s.carts[userID] = cp
	return nil
}

func (r *memCartRepo) RemoveItem(cartID, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	userID, c := r.findByID(cartID)
	if c == nil {
		return domain.ErrNotFound
	}
	cp := copyCart(c)
	items := cp.Items[:0]
	for _, it := range cp.Items {
		if it.ProductID != productID {
			items = append(items, it)
		}
	}
	cp.Items = items
	r.s.carts[userID] = cp
	return nil
}

func (r *memCartRepo) Clear(cartID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	userID, c := r.findByID(cartID)
	if c == nil {
		return domain.ErrNotFound
	}
	cp := copyCart(c)
	cp.Items = nil
	r.s.carts[userID] = cp
	return nil
}

// ── memOrderRepo ──────────────────────────────────────────────────────────────

type memOrderRepo struct{ s *memStore }

var _ repository.OrderRepository = (*memOrderRepo)(nil)

func (r *memOrderRepo) Create(o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failOrderCreate {
		return errors.New("insert order: fallo simulado de storage")
	}
	if _, ok := r.s.orders[o.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.orders[o.ID] = copyOrder(o)
	return nil
}

func (r *memOrderRepo) GetByID(id string) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return copyOrder(o), nil
}

func (r *memOrderRepo) ListByUser(userID string, limit, offset int) ([]*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, copyOrder(o))
		}
	}
	return out, nil
}

func (r *memOrderRepo) ListByStatus(status string, limit, offset int) ([]*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Order
	for _, o := range r.s.orders {
		if o.Status == status {
			out = append(out, copyOrder(o))
		}
	}
	return out, nil
}

// Update emula el chequeo optimista: versión vieja -> ErrConflict sin escribir.
// El historial no se toca aquí (va por AppendStatusHistory, como en la BD).
func (r *memOrderRepo) Update(o *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.conflictOnce {
		r.s.conflictOnce = false
		return domain.ErrConflict
	}
	stored, ok := r.s.orders[o.ID]
	if !ok || stored.Version != o.Version {
		return domain.ErrConflict
	}
	cp := copyOrder(stored)
	cp.Status = o.Status
	cp.PaymentStatus = o.PaymentStatus
	cp.PaymentReference = o.PaymentReference
	cp.CancelledAt = o.CancelledAt
	cp.CancellationReason = o.CancellationReason
	cp.UpdatedAt = o.UpdatedAt
	cp.Version = stored.Version + 1
	r.s.orders[o.ID] = cp
	o.Version = cp.Version
	return nil
}

func (r *memOrderRepo) AppendStatusHistory(h *entity.StatusChange) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.orders[h.OrderID]
	if !ok {
		return domain.ErrNotFound
	}
	cp := copyOrder(stored)
	cp.StatusHistory = append(cp.StatusHistory, *h)
	r.s.orders[h.OrderID] = cp
	return nil
}

// ── memTxnRepo ────────────────────────────────────────────────────────────────

type memTxnRepo struct{ s *memStore }

var _ repository.InventoryTransactionRepository = (*memTxnRepo)(nil)

func (r *memTxnRepo) Create(t *entity.InventoryTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	cp := *t
	r.s.txns = append(r.s.txns, &cp)
	return nil
}

func (r *memTxnRepo) GetByID(id string) (*entity.InventoryTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.txns {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memTxnRepo) ListByProduct(productID, txType string, from, to *time.Time, limit, offset int) ([]*entity.InventoryTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InventoryTransaction
	for _, t := range r.s.txns {
		if t.ProductID != productID {
			continue
		}
		if txType != "" && t.Type != txType {
			continue
		}
		if from != nil && t.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && t.CreatedAt.After(*to) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memTxnRepo) SumByProduct(productID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := 0
	for _, t := range r.s.txns {
		if t.ProductID == productID {
			sum += t.Quantity
		}
	}
	return sum, nil
}

func (r *memTxnRepo) Report(from, to *time.Time) ([]repository.TxReportRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byProduct := make(map[string]*repository.TxReportRow)
	var order []string
	for _, t := range r.s.txns {
		row, ok := byProduct[t.ProductID]
		if !ok {
			sku := ""
			if p := r.s.products[t.ProductID]; p != nil {
				sku = p.SKU
			}
			row = &repository.TxReportRow{ProductID: t.ProductID, SKU: sku}
			byProduct[t.ProductID] = row
			order = append(order, t.ProductID)
		}
		if t.Quantity > 0 {
			row.UnitsIn += t.Quantity
		} else {
			row.UnitsOut += -t.Quantity
		}
		row.Net += t.Quantity
	}
	out := make([]repository.TxReportRow, 0, len(order))
	for _, id := range order {
		out = append(out, *byProduct[id])
	}
	return out, nil
}

// ── helpers de seed y consulta ────────────────────────────────────────────────

func seedProduct(s *memStore, id, sku, price string, stock int, active bool) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[id] = &entity.Product{
		ID:        id,
		SKU:       sku,
		Name:      "Producto " + strings.ToUpper(sku),
		Price:     decimal.RequireFromString(price),
		StockQty:  stock,
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func seedCart(s *memStore, userID string, items ...entity.CartItem) string {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &entity.Cart{
		ID:        uuid.New().String(),
		UserID:    userID,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.carts[userID] = c
	return c.ID
}

func stockOf(s *memStore, productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].StockQty
}

func cartItemsOf(s *memStore, userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return 0
	}
	return len(c.Items)
}

func txnsOf(s *memStore, productID, txType string) []*entity.InventoryTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.InventoryTransaction
	for _, t := range s.txns {
		if t.ProductID == productID && (txType == "" || t.Type == txType) {
			out = append(out, t)
		}
	}
	return out
}

func orderCount(s *memStore) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func storedOrder(s *memStore, id string) *entity.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil
	}
	return copyOrder(o)
}
