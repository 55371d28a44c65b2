// Package memory — in-memory реализация портов хранилища для локальной
// разработки и тестов. Семантика повторяет postgres-реализацию, включая
// атомарность транзакции оформления.
package memory

import (
	"context"
	"sync"

	"github.com/dmikhailov/estore/internal/domain"
)

// Store держит каталог и заказы под одним мьютексом.
type Store struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	orders   map[string]domain.Order
	byNumber map[string]string
}

// NewStore возвращает пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{
		products: make(map[string]domain.Product),
		orders:   make(map[string]domain.Order),
		byNumber: make(map[string]string),
	}
}

// PutProduct добавляет или перезаписывает товар каталога.
func (s *Store) PutProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// ProductByID возвращает товар без учёта активности; для проверок в тестах.
func (s *Store) ProductByID(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

// WithinTx исполняет fn как одну атомарную единицу работы. Мьютекс
// удерживается на всё время транзакции, поэтому конкурентные резервы
// одного товара сериализованы. Эффекты применяются только при успехе fn.
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.CheckoutTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &checkoutTx{
		store:    s,
		reserved: make(map[string]int32),
	}
	if err := fn(tx); err != nil {
		// Staged-изменения просто отбрасываются.
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for id, qty := range tx.reserved {
		p := s.products[id]
		p.StockQuantity -= qty
		s.products[id] = p
	}
	if tx.order != nil {
		s.orders[tx.order.ID] = cloneOrder(*tx.order)
		s.byNumber[tx.order.Number] = tx.order.ID
	}

	return nil
}

// checkoutTx накапливает изменения транзакции, не трогая живые данные.
type checkoutTx struct {
	store *Store
	// reserved — staged-резервы текущей транзакции по товарам.
	reserved map[string]int32
	order    *domain.Order
}

// Snapshot возвращает срез товара с учётом staged-резервов этой транзакции.
func (tx *checkoutTx) Snapshot(_ context.Context, productID string) (domain.ProductSnapshot, error) {
	p, ok := tx.store.products[productID]
	if !ok {
		return domain.ProductSnapshot{}, domain.ErrProductNotFound
	}
	return domain.ProductSnapshot{
		ID:     p.ID,
		Name:   p.Name,
		Price:  p.Price,
		Stock:  p.StockQuantity - tx.reserved[productID],
		Active: p.IsActive,
	}, nil
}

// Reserve уменьшает доступный остаток в рамках транзакции или возвращает
// InsufficientStockError с актуальным остатком.
func (tx *checkoutTx) Reserve(_ context.Context, productID string, qty int32) error {
	if qty <= 0 {
		return domain.ErrLineQtyInvalid
	}
	p, ok := tx.store.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	available := p.StockQuantity - tx.reserved[productID]
	if available < qty {
		return &domain.InsufficientStockError{
			ProductID: productID,
			Requested: qty,
			Available: available,
		}
	}
	tx.reserved[productID] += qty
	return nil
}

// InsertOrder стейджит заказ, проверяя уникальность номера и ID.
func (tx *checkoutTx) InsertOrder(_ context.Context, order domain.Order) error {
	if _, exists := tx.store.byNumber[order.Number]; exists {
		return domain.ErrOrderNumberConflict
	}
	if _, exists := tx.store.orders[order.ID]; exists {
		return domain.ErrOrderNumberConflict
	}
	staged := cloneOrder(order)
	tx.order = &staged
	return nil
}

// cloneOrder делает глубокую копию, чтобы избежать алиасинга позиций.
func cloneOrder(order domain.Order) domain.Order {
	lines := make([]domain.OrderLine, len(order.Lines))
	copy(lines, order.Lines)
	order.Lines = lines
	return order
}

var _ domain.CheckoutStore = (*Store)(nil)
var _ domain.CheckoutTx = (*checkoutTx)(nil)
