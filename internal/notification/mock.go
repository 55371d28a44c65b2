package notification

import (
	"context"
	"sync"

	"github.com/dmikhailov/estore/internal/domain"
)

// Mock — конфигурируемая заглушка NotificationDispatcher для тестов.
type Mock struct {
	mu sync.Mutex

	Err error

	Calls  int
	Orders []domain.Order
}

// NewMock возвращает mock с успешным сценарием по умолчанию.
func NewMock() *Mock {
	return &Mock{}
}

// OrderConfirmation запоминает заказ и возвращает заранее настроенную ошибку.
func (m *Mock) OrderConfirmation(_ context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.Orders = append(m.Orders, order)
	return m.Err
}

// Last возвращает последний принятый заказ.
func (m *Mock) Last() (domain.Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Orders) == 0 {
		return domain.Order{}, false
	}
	return m.Orders[len(m.Orders)-1], true
}

var _ domain.NotificationDispatcher = (*Mock)(nil)
