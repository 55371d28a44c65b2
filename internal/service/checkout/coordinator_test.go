package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dmikhailov/estore/internal/domain"
	"github.com/dmikhailov/estore/internal/notification"
	"github.com/dmikhailov/estore/internal/storage/memory"
)

func seedProduct(s *memory.Store, id, name, price string, stock int32, active bool) {
	now := time.Now().UTC()
	s.PutProduct(domain.Product{
		ID:            id,
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Category:      "misc",
		IsActive:      active,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

func validRequest(items ...domain.CartItem) CreateOrderRequest {
	return CreateOrderRequest{
		CustomerName:    "Ivan Petrov",
		CustomerEmail:   "ivan@example.com",
		ShippingAddress: "Some street 1",
		Items:           items,
	}
}

func newTestCoordinator(s *memory.Store) (*Coordinator, *notification.Mock) {
	notifier := notification.NewMock()
	return NewCoordinatorWithoutMetrics(s, notifier, nil), notifier
}

func TestCreateOrder_Success(t *testing.T) {
	s := memory.NewStore()
	seedProduct(s, "p1", "Widget", "49.99", 10, true)
	seedProduct(s, "p2", "Gadget", "29.99", 3, true)
	c, notifier := newTestCoordinator(s)

	order, err := c.CreateOrder(context.Background(), validRequest(
		domain.CartItem{ProductID: "p1", Qty: 2},
		domain.CartItem{ProductID: "p2", Qty: 1},
	))
	require.NoError(t, err)

	// 49.99 * 2 + 29.99 = 129.97
	require.Equal(t, "129.97", order.TotalAmount.String())
	require.Equal(t, domain.OrderStatusPending, order.Status)
	require.Len(t, order.Lines, 2)
	require.Equal(t, "Widget", order.Lines[0].ProductName)
	require.Equal(t, "99.98", order.Lines[0].LineTotal.String())
	require.Regexp(t, `^ORD-[A-Z0-9]{8}$`, order.Number)
	require.NotEmpty(t, order.ID)

	// Заказ и позиции должны читаться из хранилища.
	stored, err := s.GetByNumber(context.Background(), order.Number)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 2)
	require.True(t, stored.TotalAmount.Equal(order.TotalAmount))

	// Остатки уменьшены.
	p1, _ := s.ProductByID("p1")
	require.EqualValues(t, 8, p1.StockQuantity)
	p2, _ := s.ProductByID("p2")
	require.EqualValues(t, 2, p2.StockQuantity)

	// Уведомление запрошено после коммита.
	require.Equal(t, 1, notifier.Calls)
	last, ok := notifier.Last()
	require.True(t, ok)
	require.Equal(t, order.Number, last.Number)
}

func TestCreateOrder_Validation(t *testing.T) {
	s := memory.NewStore()
	seedProduct(s, "p1", "Widget", "10.00", 5, true)
	c, notifier := newTestCoordinator(s)

	cases := []struct {
		name  string
		mut   func(r *CreateOrderRequest)
		field string
	}{
		{
			name:  "empty cart",
			mut:   func(r *CreateOrderRequest) { r.Items = nil },
			field: "items",
		},
		{
			name:  "zero quantity",
			mut:   func(r *CreateOrderRequest) { r.Items[0].Qty = 0 },
			field: "items[0].quantity",
		},
		{
			name:  "missing email",
			mut:   func(r *CreateOrderRequest) { r.CustomerEmail = "" },
			field: "customer_email",
		},
		{
			name:  "malformed email",
			mut:   func(r *CreateOrderRequest) { r.CustomerEmail = "not-an-email" },
			field: "customer_email",
		},
		{
			name:  "missing shipping address",
			mut:   func(r *CreateOrderRequest) { r.ShippingAddress = "" },
			field: "shipping_address",
		},
		{
			name:  "missing customer name",
			mut:   func(r *CreateOrderRequest) { r.CustomerName = "" },
			field: "customer_name",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest(domain.CartItem{ProductID: "p1", Qty: 1})
			tc.mut(&req)

			_, err := c.CreateOrder(context.Background(), req)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			require.Contains(t, ve.Fields, tc.field)
		})
	}

	// Валидация не должна трогать хранилище и уведомления.
	p1, _ := s.ProductByID("p1")
	require.EqualValues(t, 5, p1.StockQuantity)
	require.Zero(t, notifier.Calls)
}

func TestCreateOrder_ProductUnavailable(t *testing.T) {
	s := memory.NewStore()
	seedProduct(s, "active", "Widget", "10.00", 5, true)
	seedProduct(s, "inactive", "Legacy", "10.00", 5, false)
	c, notifier := newTestCoordinator(s)
	ctx := context.Background()

	for _, productID := range []string{"inactive", "missing"} {
		t.Run(productID, func(t *testing.T) {
			_, err := c.CreateOrder(ctx, validRequest(
				domain.CartItem{ProductID: "active", Qty: 1},
				domain.CartItem{ProductID: productID, Qty: 1},
			))

			var pe *domain.ProductUnavailableError
			require.ErrorAs(t, err, &pe)
			require.Equal(t, productID, pe.ProductID)
		})
	}

	// Никаких заказов и резервов после отказа.
	_, total, err := s.List(ctx, domain.OrderFilter{})
	require.NoError(t, err)
	require.Zero(t, total)
	active, _ := s.ProductByID("active")
	require.EqualValues(t, 5, active.StockQuantity)
	require.Zero(t, notifier.Calls)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	s := memory.NewStore()
	seedProduct(s, "p1", "Widget", "10.00", 5, true)
	c, _ := newTestCoordinator(s)

	_, err := c.CreateOrder(context.Background(), validRequest(
		domain.CartItem{ProductID: "p1", Qty: 10},
	))

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, "p1", stockErr.ProductID)
	require.EqualValues(t, 10, stockErr.Requested)
	require.EqualValues(t, 5, stockErr.Available)

	p1, _ := s.ProductByID("p1")
	require.EqualValues(t, 5, p1.StockQuantity)
}

func TestCreateOrder_PartialReservationRollsBack(t *testing.T) {
	s := memory.NewStore()
	seedProduct(s, "p1", "Widget", "10.00", 10, true)
	seedProduct(s, "p2", "Gadget", "10.00", 1, true)
	c, _ := newTestCoordinator(s)
	ctx := context.Background()

	_, err := c.CreateOrder(ctx, validRequest(
		domain.CartItem{ProductID: "p1", Qty: 2},
		domain.CartItem{ProductID: "p2", Qty: 5},
	))
	require.True(t, domain.IsInsufficientStock(err), "got %v", err)

	// Резерв p1 откатился вместе с транзакцией; заказов нет.
	p1, _ := s.ProductByID("p1")
	require.EqualValues(t, 10, p1.StockQuantity)
	_, total, err := s.List(ctx, domain.OrderFilter{})
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestCreateOrder_ConcurrentLastUnit(t *testing.T) {
	s := memory.NewStore()
	seedProduct(s, "p1", "Widget", "10.00", 1, true)
	c, _ := newTestCoordinator(s)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.CreateOrder(context.Background(), validRequest(
				domain.CartItem{ProductID: "p1", Qty: 1},
			))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, insufficient int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case domain.IsInsufficientStock(err):
			var stockErr *domain.InsufficientStockError
			require.ErrorAs(t, err, &stockErr)
			require.EqualValues(t, 0, stockErr.Available)
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, insufficient)

	p1, _ := s.ProductByID("p1")
	require.EqualValues(t, 0, p1.StockQuantity)
}

func TestCreateOrder_PriceImmutableAfterCommit(t *testing.T) {
	s := memory.NewStore()
	seedProduct(s, "p1", "Widget", "49.99", 10, true)
	c, _ := newTestCoordinator(s)
	ctx := context.Background()

	order, err := c.CreateOrder(ctx, validRequest(domain.CartItem{ProductID: "p1", Qty: 1}))
	require.NoError(t, err)

	// Меняем цену в каталоге после коммита.
	p1, _ := s.ProductByID("p1")
	p1.Price = decimal.RequireFromString("99.99")
	s.PutProduct(p1)

	stored, err := s.GetByNumber(ctx, order.Number)
	require.NoError(t, err)
	require.Equal(t, "49.99", stored.Lines[0].UnitPrice.String())
	require.Equal(t, "49.99", stored.TotalAmount.String())
}

func TestCreateOrder_NotificationFailureDoesNotFailOrder(t *testing.T) {
	s := memory.NewStore()
	seedProduct(s, "p1", "Widget", "10.00", 5, true)
	notifier := notification.NewMock()
	notifier.Err = errors.New("broker down")
	c := NewCoordinatorWithoutMetrics(s, notifier, nil)
	ctx := context.Background()

	order, err := c.CreateOrder(ctx, validRequest(domain.CartItem{ProductID: "p1", Qty: 1}))
	require.NoError(t, err)
	require.Equal(t, 1, notifier.Calls)

	// Заказ закоммичен несмотря на сбой уведомления.
	stored, err := s.GetByNumber(ctx, order.Number)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPending, stored.Status)
}

// conflictingStore имитирует коллизию номера заказа на первых n попытках.
type conflictingStore struct {
	inner     domain.CheckoutStore
	conflicts int
	attempts  int
}

func (s *conflictingStore) WithinTx(ctx context.Context, fn func(tx domain.CheckoutTx) error) error {
	s.attempts++
	if s.attempts <= s.conflicts {
		return domain.ErrOrderNumberConflict
	}
	return s.inner.WithinTx(ctx, fn)
}

func TestCreateOrder_NumberConflictRetries(t *testing.T) {
	mem := memory.NewStore()
	seedProduct(mem, "p1", "Widget", "10.00", 5, true)
	store := &conflictingStore{inner: mem, conflicts: 2}
	c := NewCoordinatorWithoutMetrics(store, notification.NewMock(), nil)

	order, err := c.CreateOrder(context.Background(), validRequest(domain.CartItem{ProductID: "p1", Qty: 1}))
	require.NoError(t, err)
	require.Equal(t, 3, store.attempts)
	require.NotEmpty(t, order.Number)
}

func TestCreateOrder_NumberConflictExhausted(t *testing.T) {
	mem := memory.NewStore()
	seedProduct(mem, "p1", "Widget", "10.00", 5, true)
	store := &conflictingStore{inner: mem, conflicts: maxNumberAttempts + 1}
	c := NewCoordinatorWithoutMetrics(store, notification.NewMock(), nil)

	_, err := c.CreateOrder(context.Background(), validRequest(domain.CartItem{ProductID: "p1", Qty: 1}))
	require.ErrorIs(t, err, domain.ErrOrderNumberConflict)
	require.Equal(t, maxNumberAttempts, store.attempts)
}

func TestNumberGenerator_Format(t *testing.T) {
	g := NewNumberGenerator()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		number, err := g.Generate()
		require.NoError(t, err)
		require.Regexp(t, `^ORD-[A-Z0-9]{8}$`, number)
		seen[number] = true
	}
	// 100 генераций практически не могут дать меньше 100 уникальных номеров.
	require.Greater(t, len(seen), 95)
}
