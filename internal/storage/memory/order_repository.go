package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dmikhailov/estore/internal/domain"
)

// GetByID возвращает заказ с позициями или ErrOrderNotFound.
func (s *Store) GetByID(_ context.Context, id string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// GetByNumber возвращает заказ по человекочитаемому номеру.
func (s *Store) GetByNumber(_ context.Context, number string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byNumber[number]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(s.orders[id]), nil
}

// List возвращает страницу заказов (новые первыми) и общее число подходящих.
func (s *Store) List(_ context.Context, filter domain.OrderFilter) ([]domain.Order, int, error) {
	filter.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Order, 0, len(s.orders))
	for _, order := range s.orders {
		if filter.CustomerEmail != "" &&
			!strings.Contains(strings.ToLower(order.CustomerEmail), strings.ToLower(filter.CustomerEmail)) {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.DateFrom != nil && order.CreatedAt.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && order.CreatedAt.After(*filter.DateTo) {
			continue
		}
		matched = append(matched, cloneOrder(order))
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := len(matched)
	return paginate(matched, filter.Page, filter.PerPage), total, nil
}

// UpdateStatus меняет статус заказа. Проверяется только принадлежность
// статуса допустимому множеству; произвольные переходы разрешены.
func (s *Store) UpdateStatus(_ context.Context, number string, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, domain.ErrStatusUnknown
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byNumber[number]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	order := s.orders[id]
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	s.orders[id] = order

	return cloneOrder(order), nil
}

var _ domain.OrderRepository = (*Store)(nil)
